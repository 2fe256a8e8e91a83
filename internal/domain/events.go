package domain

// EventKind — тип события, которое правила отдают оболочке для показа.
type EventKind string

const (
	EventNotification EventKind = "notification"
	EventWarning      EventKind = "warning"
	EventLevelUp      EventKind = "level_up"
	EventAchievement  EventKind = "achievement_unlocked"
	EventJackpot      EventKind = "jackpot"
)

// Event — одно сообщение для пользователя, порядок событий значим.
type Event struct {
	Kind    EventKind
	Title   string
	Message string

	// Level заполняется для EventLevelUp.
	Level int
	// Achievement заполняется для EventAchievement.
	Achievement *Achievement
}

// Notify создаёт обычное уведомление.
func Notify(title, message string) Event {
	return Event{Kind: EventNotification, Title: title, Message: message}
}

// Warn создаёт предупреждение.
func Warn(title, message string) Event {
	return Event{Kind: EventWarning, Title: title, Message: message}
}
