// Package admin реализует резервную копию и полный сброс данных трекера.
// Сброс защищён паролем (Argon2id) и ограничением на число попыток.
// models.go описывает состояние диалога и журнал попыток.
package admin

import "time"

// Лимит неудачных попыток ввода пароля.
const (
	MaxAttempts   = 3
	AttemptWindow = time.Hour
	// StateTTL — сколько бот ждёт пароль после команды сброса.
	StateTTL = 5 * time.Minute
)

// DialogState — состояние диалога сброса.
type DialogState struct {
	State     string
	ExpiresAt time.Time
}

// Возможные состояния диалога
const (
	StateNone             = ""                  // Нет активного состояния
	StateAwaitingPassword = "awaiting_password" // Ждём пароль для сброса
)

// attemptLog хранит время неудачных попыток.
type attemptLog []time.Time

// recent возвращает число попыток внутри окна.
func (l attemptLog) recent(now time.Time) int {
	n := 0
	for _, at := range l {
		if now.Sub(at) < AttemptWindow {
			n++
		}
	}
	return n
}

// prune отбрасывает попытки старше окна.
func (l attemptLog) prune(now time.Time) attemptLog {
	out := l[:0]
	for _, at := range l {
		if now.Sub(at) < AttemptWindow {
			out = append(out, at)
		}
	}
	return out
}
