// Package tasks реализует миссии: разовые задачи с наградой в опыте,
// которую колесо фортуны может усилить.
package tasks

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/domain"
)

var validate = validator.New()

// Input — данные новой миссии.
type Input struct {
	Title   string `validate:"required"`
	Points  int    `validate:"gt=0"`
	DueDate time.Time
}

// NewTask создаёт миссию. Без срока миссия считается на сегодня.
func NewTask(in Input, now time.Time) (domain.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && verrs[0].Field() == "Title" {
			return domain.Task{}, common.ErrEmptyName
		}
		return domain.Task{}, common.ErrInvalidAmount
	}

	due := in.DueDate
	if due.IsZero() {
		due = common.StartOfDay(now)
	}
	return domain.Task{
		ID:        uuid.NewString(),
		Title:     in.Title,
		DueDate:   due,
		Points:    in.Points,
		CreatedAt: now,
	}, nil
}

// ToggleResult — итог переключения миссии.
type ToggleResult struct {
	Task domain.Task
	// Reward — сколько опыта положено начислить. Ноль при снятии отметки.
	Reward int
}

// Toggle переключает выполнение миссии.
// Выполнение снимает подсветку колеса и фиксирует время,
// снятие отметки опыт не забирает.
func Toggle(t domain.Task, now time.Time) ToggleResult {
	t.IsHighlighted = false
	if t.Completed {
		t.Completed = false
		t.CompletedAt = nil
		return ToggleResult{Task: t}
	}

	at := now
	t.Completed = true
	t.CompletedAt = &at
	return ToggleResult{Task: t, Reward: t.EffectiveReward()}
}

// IsOverdue — миссия не выполнена, а срок прошёл.
func IsOverdue(t domain.Task, today time.Time) bool {
	return !t.Completed && common.DaysBetween(t.DueDate, today) > 0
}
