package dispatch

import "errors"

// Ошибки отправки одного письма. Диспетчер никогда не прерывает проход
// из-за них: каждая учитывается в итоговой сводке по своему получателю.
var (
	// ErrSendTimeout - попытка отправки не уложилась в таймаут.
	ErrSendTimeout = errors.New("send timed out")
	// ErrSendRejected - сервер отклонил отправителя или получателя.
	ErrSendRejected = errors.New("send rejected by server")
	// ErrTransportUnavailable - не удалось установить соединение с SMTP сервером.
	ErrTransportUnavailable = errors.New("mail transport unavailable")
)

// ErrSweepBusy возвращается, когда проход по напоминаниям уже выполняется.
var ErrSweepBusy = errors.New("sweep already in progress")
