package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/charge-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/charge-reminder/internal/lib/smtp"
)

// MailSender отправляет одно письмо через SMTP транспорт, ограничивая
// каждую попытку таймаутом, чтобы недоступный почтовый сервер не
// останавливал весь проход. Повторных попыток внутри нет: политика
// ретраев принадлежит диспетчеру.
type MailSender struct {
	transport smtp.TransportInterface
	timeout   time.Duration
	log       *slog.Logger
}

// NewMailSender создает новый экземпляр MailSender.
func NewMailSender(transport smtp.TransportInterface, timeout time.Duration, log *slog.Logger) *MailSender {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &MailSender{
		transport: transport,
		timeout:   timeout,
		log:       log,
	}
}

// Send отправляет письмо получателю с копией на адрес cc.
//
// Пустой адрес получателя не считается ошибкой: отправлять нечего,
// вызывающая сторона уже отфильтровала такие записи. Ошибки
// классифицируются как ErrSendTimeout, ErrSendRejected или
// ErrTransportUnavailable.
func (s *MailSender) Send(ctx context.Context, recipient, subject, body, cc string) error {
	if recipient == "" {
		s.log.Debug("empty recipient, nothing to send")
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- s.sendEmail(recipient, subject, body, cc)
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(s.timeout):
		s.log.Error("send attempt timed out", slog.String("recipient", recipient))
		return fmt.Errorf("%w: %s", ErrSendTimeout, recipient)
	case <-ctx.Done():
		// Отмена вызывающей стороны - не таймаут попытки.
		return fmt.Errorf("send canceled for %s: %w", recipient, ctx.Err())
	}
}

// Preflight проверяет доступность почтового транспорта до начала рассылки,
// чтобы полная неработоспособность SMTP была одной ошибкой конфигурации,
// а не N ошибками по каждому получателю.
func (s *MailSender) Preflight(_ context.Context) error {
	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}
	if err := client.Quit(); err != nil {
		_ = client.Close()
		return fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}
	return nil
}

func (s *MailSender) sendEmail(recipient, subject, body, cc string) error {
	headers := []string{
		"From: " + s.transport.GetFrom(),
		"To: " + recipient,
	}
	if cc != "" {
		headers = append(headers, "Cc: "+cc)
	}
	headers = append(headers,
		"Subject: "+subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	)
	msg := strings.Join(headers, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetFrom()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetFrom()), sl.Err(err))
		return fmt.Errorf("%w: %v", ErrSendRejected, err)
	}

	rcpts := []string{recipient}
	if cc != "" {
		rcpts = append(rcpts, cc)
	}
	for _, addr := range rcpts {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return fmt.Errorf("%w: %v", ErrSendRejected, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}

	s.log.Info("email sent successfully", slog.String("to", recipient))
	return nil
}
