package streak

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/config"
	"serotonyl.ru/aprohfy-bot/internal/domain"
	"serotonyl.ru/aprohfy-bot/internal/features/achievements"
	"serotonyl.ru/aprohfy-bot/internal/state"
	"serotonyl.ru/aprohfy-bot/internal/store"
)

// clock — управляемые часы для тестов.
type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTestService(t *testing.T, start time.Time) (*Service, *clock) {
	t.Helper()
	clk := &clock{now: start}
	st, err := state.Open(context.Background(), store.NewMemory(),
		state.WithClock(clk.Now),
		state.WithHook(achievements.Apply),
	)
	require.NoError(t, err)

	cfg := &config.Config{HabitPoints: 50, StreakReminderThreshold: 7}
	return NewService(st, cfg), clk
}

func findAchievement(t *testing.T, achs []domain.Achievement, id string) domain.Achievement {
	t.Helper()
	for _, a := range achs {
		if a.ID == id {
			return a
		}
	}
	t.Fatalf("достижение %q не найдено", id)
	return domain.Achievement{}
}

func TestFirstHabitDay(t *testing.T) {
	ctx := context.Background()
	now := today.Add(10 * time.Hour)
	svc, _ := newTestService(t, now)

	habit, _, err := svc.Create(ctx, "Зарядка", "")
	require.NoError(t, err)
	require.Len(t, habit.Days, WindowDays)
	assert.Equal(t, 0, habit.Streak)

	updated, events, err := svc.Toggle(ctx, habit.ID, today)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Streak)

	snap := svc.state.Snapshot()
	assert.Equal(t, 50, snap.User.TotalPoints)
	assert.Equal(t, 50, snap.User.Points)

	step1 := findAchievement(t, snap.Achievements, "step1")
	assert.True(t, step1.Unlocked)
	assert.Equal(t, 1, step1.Progress)
	assert.Equal(t, 1, step1.Total)

	var kinds []domain.EventKind
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	assert.Contains(t, kinds, domain.EventNotification)
	assert.Contains(t, kinds, domain.EventAchievement)
}

func TestToggleOffGrantsNothing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, today)

	habit, _, err := svc.Create(ctx, "Зарядка", "")
	require.NoError(t, err)

	_, _, err = svc.Toggle(ctx, habit.ID, today)
	require.NoError(t, err)
	_, events, err := svc.Toggle(ctx, habit.ID, today)
	require.NoError(t, err)

	assert.Empty(t, events)
	assert.Equal(t, 50, svc.state.Snapshot().User.TotalPoints)
}

func TestToggleUnknownHabit(t *testing.T) {
	svc, _ := newTestService(t, today)
	_, _, err := svc.Toggle(context.Background(), "nope", today)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteHabit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, today)

	a, _, err := svc.Create(ctx, "A", "")
	require.NoError(t, err)
	b, _, err := svc.Create(ctx, "B", "")
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", removed.Name)

	habits := svc.List()
	require.Len(t, habits, 1)
	assert.Equal(t, b.ID, habits[0].ID)

	_, err = svc.Delete(ctx, a.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRollDayBreaksStreak(t *testing.T) {
	ctx := context.Background()
	svc, clk := newTestService(t, today)

	habit, _, err := svc.Create(ctx, "Чтение", "")
	require.NoError(t, err)
	_, _, err = svc.Toggle(ctx, habit.ID, today)
	require.NoError(t, err)

	clk.now = today.AddDate(0, 0, 1)
	broken, err := svc.RollDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, broken, "вчерашняя отметка держит серию")
	assert.Len(t, svc.List()[0].Days, WindowDays+1)
	assert.Equal(t, 1, svc.List()[0].Streak)

	clk.now = today.AddDate(0, 0, 2)
	broken, err = svc.RollDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, broken)
	assert.Equal(t, 0, svc.List()[0].Streak)
}

func TestSendReminders(t *testing.T) {
	ctx := context.Background()
	svc, clk := newTestService(t, today)

	habit, _, err := svc.Create(ctx, "Спорт", "")
	require.NoError(t, err)
	for i := 7; i >= 1; i-- {
		_, _, err = svc.Toggle(ctx, habit.ID, today.AddDate(0, 0, -i))
		require.NoError(t, err)
	}
	require.Equal(t, 7, svc.List()[0].Streak)

	var sent []string
	require.NoError(t, svc.SendReminders(ctx, func(text string) { sent = append(sent, text) }))
	require.Len(t, sent, 1)
	assert.True(t, strings.Contains(sent[0], "Спорт"))

	_, _, err = svc.Toggle(ctx, habit.ID, clk.now)
	require.NoError(t, err)
	sent = nil
	require.NoError(t, svc.SendReminders(ctx, func(text string) { sent = append(sent, text) }))
	assert.Empty(t, sent)
}
