package models

import "time"

// Режимы запуска рассылки.
const (
	DispatchModeSweep = "sweep" // обработка наступивших напоминаний
	DispatchModeBlast = "blast" // разовая рассылка без напоминаний
)

// SendFailure описывает одну неудачную попытку отправки письма.
type SendFailure struct {
	Recipient string `json:"recipient"` // Адрес получателя
	Error     string `json:"error"`     // Текст ошибки отправки
}

// DispatchSummary агрегирует итог одного прохода рассылки.
type DispatchSummary struct {
	Processed     int           `json:"processed"`                // Сколько напоминаний обработано
	Sent          int           `json:"sent"`                     // Сколько писем отправлено успешно
	Failed        int           `json:"failed"`                   // Сколько попыток завершились ошибкой
	FailedDetails []SendFailure `json:"failed_details,omitempty"` // Детали по каждой ошибке
}

// DispatchReport - событие аудита, публикуемое после каждого прохода рассылки
// и сохраняемое воркером в базу.
type DispatchReport struct {
	Mode    string          `json:"mode"` // sweep или blast
	Summary DispatchSummary `json:"summary"`
	RanAt   time.Time       `json:"ran_at"`
}
