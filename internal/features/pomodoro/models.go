// Package pomodoro реализует фокус-таймер: фазы фокуса и перерывов,
// начисление опыта за фокус-сессии и настройки длительностей.
package pomodoro

import (
	"time"

	"github.com/go-playground/validator/v10"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/domain"
	"serotonyl.ru/aprohfy-bot/internal/features/progression"
)

// LongBreakEvery — каждая какая по счёту сессия предлагает длинный перерыв.
const LongBreakEvery = 4

// Phase — фаза таймера.
type Phase string

const (
	PhaseWork       Phase = "work"
	PhaseShortBreak Phase = "short_break"
	PhaseLongBreak  Phase = "long_break"
)

// Label возвращает название фазы для сообщений.
func (p Phase) Label() string {
	switch p {
	case PhaseShortBreak:
		return "короткий перерыв"
	case PhaseLongBreak:
		return "длинный перерыв"
	default:
		return "фокус"
	}
}

// ParsePhase разбирает аргумент команды. Пустой аргумент — фокус.
func ParsePhase(s string) (Phase, bool) {
	switch s {
	case "", "фокус", "работа", "work":
		return PhaseWork, true
	case "перерыв", "короткий", "break":
		return PhaseShortBreak, true
	case "длинный", "long":
		return PhaseLongBreak, true
	}
	return "", false
}

// Minutes возвращает длительность фазы в минутах по настройкам пользователя.
func Minutes(cfg domain.PomodoroConfig, p Phase) int {
	switch p {
	case PhaseShortBreak:
		return cfg.ShortBreakDuration
	case PhaseLongBreak:
		return cfg.LongBreakDuration
	default:
		return cfg.WorkDuration
	}
}

var validate = validator.New()

// ValidateConfig проверяет границы длительностей.
func ValidateConfig(cfg domain.PomodoroConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return common.ErrInvalidPomodoroConfig
	}
	return nil
}

// SessionResult — итог завершённой фокус-сессии.
type SessionResult struct {
	User   domain.User
	Next   Phase
	Events []domain.Event
}

// CompleteSession засчитывает фокус-сессию: счётчики, опыт и следующую фазу.
// Счётчик за день обнуляется, если прошлая сессия была в другой день.
func CompleteSession(u domain.User, now time.Time, points int) (SessionResult, error) {
	key := common.DayKey(now)
	if u.LastSessionDate != key {
		u.PomodoroSessionsToday = 0
		u.LastSessionDate = key
	}
	u.PomodoroSessions++
	u.PomodoroSessionsToday++

	grant, err := progression.Grant(u, points, "Фокус-сессия завершена")
	if err != nil {
		return SessionResult{}, err
	}

	next := PhaseShortBreak
	if grant.User.PomodoroSessions%LongBreakEvery == 0 {
		next = PhaseLongBreak
	}
	return SessionResult{User: grant.User, Next: next, Events: grant.Events}, nil
}
