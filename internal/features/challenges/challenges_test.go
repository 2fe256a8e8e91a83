package challenges

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/aprohfy-bot/internal/domain"
	"serotonyl.ru/aprohfy-bot/internal/notify"
	"serotonyl.ru/aprohfy-bot/internal/state"
	"serotonyl.ru/aprohfy-bot/internal/store"
)

var today = time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

func byID(list []Challenge) map[string]Challenge {
	out := make(map[string]Challenge, len(list))
	for _, c := range list {
		out[c.ID] = c
	}
	return out
}

func TestEvaluateEmpty(t *testing.T) {
	got := Evaluate(domain.Snapshot{}, today)
	require.Len(t, got, 3)
	for _, c := range got {
		assert.Equal(t, 0, c.Progress)
		assert.False(t, c.Completed)
		assert.Equal(t, 0, c.ProgressPercent())
	}
}

func TestEvaluateProgress(t *testing.T) {
	doneToday := today.Add(-2 * time.Hour)
	doneYesterday := today.AddDate(0, 0, -1)
	s := domain.Snapshot{
		User: domain.User{PomodoroSessionsToday: 3, LastSessionDate: "2026-03-10"},
		Habits: []domain.Habit{
			{LastChecked: "2026-03-10"},
			{LastChecked: "2026-03-10"},
			{LastChecked: "2026-03-09"},
		},
		Tasks: []domain.Task{
			{Completed: true, CompletedAt: &doneToday},
			{Completed: true, CompletedAt: &doneYesterday},
			{Completed: false},
		},
	}

	got := byID(Evaluate(s, today))

	assert.Equal(t, 2, got["c1"].Progress)
	assert.False(t, got["c1"].Completed)
	assert.Equal(t, 66, got["c1"].ProgressPercent())

	assert.Equal(t, 3, got["c2"].Progress)
	assert.True(t, got["c2"].Completed)
	assert.Equal(t, 100, got["c2"].ProgressPercent(), "процент не выше 100")

	assert.Equal(t, 1, got["c3"].Progress)
	assert.Equal(t, 80, got["c3"].RewardXP)
}

func TestSessionsFromAnotherDayDoNotCount(t *testing.T) {
	s := domain.Snapshot{User: domain.User{PomodoroSessionsToday: 5, LastSessionDate: "2026-03-09"}}
	got := byID(Evaluate(s, today))
	assert.Equal(t, 0, got["c2"].Progress)
	assert.False(t, got["c2"].Completed)
}

func TestHandleList(t *testing.T) {
	st, err := state.Open(context.Background(), store.NewMemory(), state.WithClock(func() time.Time { return today }))
	require.NoError(t, err)

	rec := &notify.Recorder{}
	NewHandler(st, rec).HandleList(context.Background(), 7)

	require.Equal(t, 1, rec.Count())
	assert.Equal(t, int64(7), rec.Last().ChatID)
	assert.Contains(t, rec.Last().Text, "Мастер рутины")
	assert.Contains(t, rec.Last().Text, "0/3")
}
