package models

import "time"

// Reminder представляет запланированное напоминание. Напоминание не привязано
// к конкретной записи: в момент обработки получателями становятся все
// неоплаченные записи с непустой почтой. Поле Sent выставляется в true ровно
// один раз и обратно не сбрасывается.
type Reminder struct {
	ID           string    // Уникальный идентификатор напоминания
	ScheduledFor time.Time // Момент, начиная с которого напоминание считается наступившим
	CreatedBy    string    // Идентификатор пользователя, запланировавшего напоминание
	Sent         bool      // Признак того, что напоминание уже обработано
	CreatedAt    time.Time // Дата создания
}

// DummyReminder используется для приёма даты напоминания из JSON-запроса.
// Дата приходит строкой в формате 2006-01-02 и парсится вручную.
type DummyReminder struct {
	Date string `json:"date" validate:"required"` // Дата напоминания в формате 2006-01-02
}
