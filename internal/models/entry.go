// Package models содержит доменные структуры сервиса учета сборов:
// записи о платежах клиентов, напоминания и пользователей,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Статусы оплаты записи. Переходы между ними не ограничены:
// запись можно пометить оплаченной и вернуть обратно в Pending.
const (
	StatusPaid    = "Paid"
	StatusPending = "Pending"
)

// Entry представляет запись о сборе с клиента.
// CollectedByName — снимок имени сборщика на момент создания записи,
// он не синхронизируется с текущим именем пользователя.
type Entry struct {
	ID              string    // Уникальный идентификатор записи
	Name            string    // Имя клиента
	Email           string    // Электронная почта клиента (может быть пустой)
	Charges         float64   // Сумма сбора, неотрицательная
	Status          string    // Статус оплаты: Paid или Pending
	CollectedBy     string    // Идентификатор пользователя, оформившего сбор
	CollectedByName string    // Имя сборщика на момент создания
	CreatedAt       time.Time // Дата создания записи
	UpdatedAt       time.Time // Дата последнего изменения
}

// DummyEntry используется для приёма данных о записи из JSON-запроса,
// прежде чем конвертировать их в Entry.
type DummyEntry struct {
	Name    string  `json:"name" validate:"required"`            // Имя клиента
	Email   string  `json:"email" validate:"omitempty,email"`    // Почта клиента (опционально)
	Charges float64 `json:"charges" validate:"gte=0"`            // Сумма сбора (>=0)
	Status  string  `json:"status" validate:"omitempty,oneof=Paid Pending"` // Статус оплаты
}

// DummyEntryUpdate используется для приёма изменений записи.
// Nil-поле означает "не менять".
type DummyEntryUpdate struct {
	Name    *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Email   *string  `json:"email,omitempty" validate:"omitempty,email"`
	Charges *float64 `json:"charges,omitempty" validate:"omitempty,gte=0"`
	Status  *string  `json:"status,omitempty" validate:"omitempty,oneof=Paid Pending"`
}
