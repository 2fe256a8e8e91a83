// Package streak — service.go содержит операции над привычками поверх контейнера состояния:
// создание, отметка дня с начислением опыта, удаление, ежедневный сдвиг окна и напоминания.
package streak

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/config"
	"serotonyl.ru/aprohfy-bot/internal/domain"
	"serotonyl.ru/aprohfy-bot/internal/features/progression"
	"serotonyl.ru/aprohfy-bot/internal/state"
)

// Service управляет привычками.
type Service struct {
	state *state.Container
	cfg   *config.Config
}

// NewService создаёт сервис привычек.
func NewService(st *state.Container, cfg *config.Config) *Service {
	return &Service{state: st, cfg: cfg}
}

// List возвращает привычки в порядке создания.
func (s *Service) List() []domain.Habit {
	return s.state.Snapshot().Habits
}

// Create добавляет привычку с окном из 35 дней.
func (s *Service) Create(ctx context.Context, name, category string) (domain.Habit, []domain.Event, error) {
	var created domain.Habit
	events, err := s.state.Update(ctx, func(snap *domain.Snapshot, now time.Time) ([]domain.Event, error) {
		h, err := NewHabit(name, category, now)
		if err != nil {
			return nil, err
		}
		snap.Habits = append(snap.Habits, h)
		created = h
		return nil, nil
	})
	if err != nil {
		return domain.Habit{}, nil, err
	}

	log.WithFields(log.Fields{"habit": created.Name, "category": created.Category}).Info("Привычка создана")
	return created, events, nil
}

// Toggle переключает отметку дня date у привычки habitID.
// Новая отметка приносит HABIT_POINTS опыта, снятие отметки опыт не отнимает.
func (s *Service) Toggle(ctx context.Context, habitID string, date time.Time) (domain.Habit, []domain.Event, error) {
	var updated domain.Habit
	events, err := s.state.Update(ctx, func(snap *domain.Snapshot, now time.Time) ([]domain.Event, error) {
		idx := indexOf(snap.Habits, habitID)
		if idx < 0 {
			return nil, common.ErrNotFound
		}

		res, err := ToggleDay(snap.Habits[idx], date, common.StartOfDay(now))
		if err != nil {
			return nil, err
		}
		snap.Habits[idx] = res.Habit
		updated = res.Habit

		if !res.NowCompleted {
			return nil, nil
		}

		grant, err := progression.Grant(snap.User, s.cfg.HabitPoints,
			fmt.Sprintf("Привычка «%s» в процессе", res.Habit.Name))
		if err != nil {
			return nil, err
		}
		snap.User = grant.User
		return grant.Events, nil
	})
	if err != nil {
		return domain.Habit{}, nil, err
	}
	return updated, events, nil
}

// Delete удаляет привычку. Подтверждение запрашивает обработчик.
func (s *Service) Delete(ctx context.Context, habitID string) (domain.Habit, error) {
	var removed domain.Habit
	_, err := s.state.Update(ctx, func(snap *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
		idx := indexOf(snap.Habits, habitID)
		if idx < 0 {
			return nil, common.ErrNotFound
		}
		removed = snap.Habits[idx]
		snap.Habits = append(snap.Habits[:idx:idx], snap.Habits[idx+1:]...)
		return nil, nil
	})
	if err != nil {
		return domain.Habit{}, err
	}
	log.WithField("habit", removed.Name).Info("Привычка удалена")
	return removed, nil
}

// RollDay сдвигает окна всех привычек на текущий день и пересчитывает стрики.
// Запускается кроном в полночь и при старте. Возвращает число сломанных стриков.
func (s *Service) RollDay(ctx context.Context) (int, error) {
	broken := 0
	_, err := s.state.Update(ctx, func(snap *domain.Snapshot, now time.Time) ([]domain.Event, error) {
		broken = 0
		today := common.StartOfDay(now)
		for i, h := range snap.Habits {
			h, _ = ExtendWindow(h, today)
			streak := ComputeStreak(h.Days, today)
			if h.Streak > 0 && streak == 0 {
				broken++
			}
			h.Streak = streak
			snap.Habits[i] = h
		}
		return nil, nil
	})
	if err != nil {
		return 0, fmt.Errorf("сдвиг окна привычек: %w", err)
	}

	log.WithField("broken", broken).Info("Окна привычек обновлены")
	return broken, nil
}

// SendReminders напоминает о привычках с длинным стриком, не отмеченных сегодня.
// Порог — STREAK_REMINDER_THRESHOLD дней.
func (s *Service) SendReminders(ctx context.Context, sendFunc func(text string)) error {
	snap := s.state.Snapshot()
	todayKey := common.DayKey(s.state.Now())

	sent := 0
	for _, h := range snap.Habits {
		if h.Streak < s.cfg.StreakReminderThreshold || h.CompletedOn(todayKey) {
			continue
		}
		sendFunc(fmt.Sprintf("⚠️ У привычки «%s» стрик %d %s! Отметь её сегодня, чтобы не потерять серию.",
			h.Name, h.Streak, common.PluralizeDays(h.Streak)))
		sent++
	}

	log.WithField("sent", sent).Debug("Напоминания о стриках отправлены")
	return nil
}

func indexOf(habits []domain.Habit, id string) int {
	for i, h := range habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}
