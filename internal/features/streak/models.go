// Package streak управляет привычками: окно дней, отметки, стрики и напоминания.
// models.go содержит чистые операции над привычкой без хранилища.
package streak

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/domain"
)

const (
	// WindowDays — сколько дней получает новая привычка (today-34 … today).
	WindowDays = 35
	// DefaultCategory — категория, если пользователь её не указал.
	DefaultCategory = "Общее"
)

// NewHabit создаёт привычку с окном из WindowDays неотмеченных дней.
func NewHabit(name, category string, today time.Time) (domain.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Habit{}, common.ErrEmptyName
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultCategory
	}

	today = common.StartOfDay(today)
	days := make([]domain.HabitDay, 0, WindowDays)
	for i := WindowDays - 1; i >= 0; i-- {
		days = append(days, domain.HabitDay{Date: today.AddDate(0, 0, -i)})
	}

	return domain.Habit{
		ID:        uuid.NewString(),
		Name:      name,
		Category:  category,
		Days:      days,
		CreatedAt: today,
	}, nil
}

// ExtendWindow дописывает в окно недостающие дни вплоть до today.
// Старые дни не удаляются, поэтому история стрика не теряется.
// Возвращает true, если окно изменилось.
func ExtendWindow(h domain.Habit, today time.Time) (domain.Habit, bool) {
	today = common.StartOfDay(today)
	if len(h.Days) == 0 {
		h.Days = []domain.HabitDay{{Date: today}}
		return h, true
	}

	latest := h.Days[0].Date
	for _, d := range h.Days[1:] {
		if d.Date.After(latest) {
			latest = d.Date
		}
	}

	gap := common.DaysBetween(latest, today)
	if gap <= 0 {
		return h, false
	}

	days := make([]domain.HabitDay, len(h.Days), len(h.Days)+gap)
	copy(days, h.Days)
	for i := gap - 1; i >= 0; i-- {
		days = append(days, domain.HabitDay{Date: today.AddDate(0, 0, -i)})
	}
	h.Days = days
	return h, true
}

// ToggleResult — итог переключения дня привычки.
type ToggleResult struct {
	Habit domain.Habit
	// NowCompleted — день стал отмеченным (за это начисляется опыт).
	NowCompleted bool
}

// ToggleDay переключает отметку дня date и пересчитывает стрик.
// LastChecked обновляется, только если отмечен сегодняшний день.
func ToggleDay(h domain.Habit, date, today time.Time) (ToggleResult, error) {
	h, _ = ExtendWindow(h, today)

	key := common.DayKey(date)
	idx := -1
	for i, d := range h.Days {
		if common.DayKey(d.Date) == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ToggleResult{}, common.ErrDayOutOfWindow
	}

	days := make([]domain.HabitDay, len(h.Days))
	copy(days, h.Days)
	wasCompleted := days[idx].Completed
	days[idx].Completed = !wasCompleted
	h.Days = days

	if !wasCompleted && common.SameDay(date, today) {
		h.LastChecked = common.DayKey(today)
	}
	h.Streak = ComputeStreak(h.Days, today)

	return ToggleResult{Habit: h, NowCompleted: !wasCompleted}, nil
}
