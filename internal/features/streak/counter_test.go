package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/domain"
)

var today = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

// history строит дни по смещениям от today: 0 — сегодня, 1 — вчера и т.д.
func history(completed ...int) []domain.HabitDay {
	days := make([]domain.HabitDay, 0, len(completed))
	for _, off := range completed {
		days = append(days, domain.HabitDay{Date: today.AddDate(0, 0, -off), Completed: true})
	}
	return days
}

func TestComputeStreak(t *testing.T) {
	cases := []struct {
		name string
		days []domain.HabitDay
		want int
	}{
		{"empty", nil, 0},
		{"only today", history(0), 1},
		{"today and two before", history(0, 1, 2), 3},
		{"yesterday run still counts", history(1, 2), 2},
		{"two day gap breaks", history(2, 3, 4), 0},
		{"hole in the run", history(0, 1, 3, 4), 2},
		{"unordered input", history(2, 0, 1), 3},
		{"duplicates counted once", history(0, 0, 1, 1), 2},
		{"nothing completed", []domain.HabitDay{{Date: today}, {Date: today.AddDate(0, 0, -1)}}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeStreak(tc.days, today))
		})
	}
}

func TestComputeStreakIgnoresTimeOfDay(t *testing.T) {
	days := []domain.HabitDay{
		{Date: today.Add(23 * time.Hour), Completed: true},
		{Date: today.AddDate(0, 0, -1).Add(30 * time.Minute), Completed: true},
	}
	assert.Equal(t, 2, ComputeStreak(days, today.Add(8*time.Hour)))
}

func TestComputeStreakDoesNotReorderInput(t *testing.T) {
	days := history(2, 0, 1)
	first := days[0].Date
	ComputeStreak(days, today)
	assert.Equal(t, first, days[0].Date)
}

func TestComputeStreakIncompleteEntryStopsRun(t *testing.T) {
	days := history(0, 2)
	days = append(days, domain.HabitDay{Date: today.AddDate(0, 0, -1)})
	assert.Equal(t, 1, ComputeStreak(days, today))
}

func TestNewHabitWindow(t *testing.T) {
	h, err := NewHabit("  Чтение ", "", today.Add(15*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "Чтение", h.Name)
	assert.Equal(t, DefaultCategory, h.Category)
	assert.NotEmpty(t, h.ID)
	assert.Equal(t, 0, h.Streak)
	require.Len(t, h.Days, WindowDays)
	assert.Equal(t, common.DayKey(today.AddDate(0, 0, -34)), common.DayKey(h.Days[0].Date))
	assert.Equal(t, common.DayKey(today), common.DayKey(h.Days[WindowDays-1].Date))
	for _, d := range h.Days {
		assert.False(t, d.Completed)
	}

	_, err = NewHabit("   ", "x", today)
	assert.ErrorIs(t, err, common.ErrEmptyName)
}

func TestExtendWindow(t *testing.T) {
	h, err := NewHabit("Бег", "Спорт", today)
	require.NoError(t, err)

	same, changed := ExtendWindow(h, today)
	assert.False(t, changed)
	assert.Len(t, same.Days, WindowDays)

	later, changed := ExtendWindow(h, today.AddDate(0, 0, 3))
	assert.True(t, changed)
	require.Len(t, later.Days, WindowDays+3)
	assert.Equal(t, common.DayKey(today.AddDate(0, 0, 3)), common.DayKey(later.Days[len(later.Days)-1].Date))
	assert.Len(t, h.Days, WindowDays, "исходная привычка не меняется")
}

func TestToggleDay(t *testing.T) {
	h, err := NewHabit("Медитация", "", today)
	require.NoError(t, err)

	res, err := ToggleDay(h, today, today)
	require.NoError(t, err)
	assert.True(t, res.NowCompleted)
	assert.Equal(t, 1, res.Habit.Streak)
	assert.Equal(t, common.DayKey(today), res.Habit.LastChecked)
	assert.False(t, h.Days[WindowDays-1].Completed, "исходная привычка не меняется")

	res, err = ToggleDay(res.Habit, today.AddDate(0, 0, -1), today)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Habit.Streak)

	res, err = ToggleDay(res.Habit, today, today)
	require.NoError(t, err)
	assert.False(t, res.NowCompleted)
	assert.Equal(t, 1, res.Habit.Streak, "вчерашний день всё ещё держит серию")

	_, err = ToggleDay(res.Habit, today.AddDate(0, 0, -100), today)
	assert.ErrorIs(t, err, common.ErrDayOutOfWindow)
}

func TestToggleYesterdayKeepsLastChecked(t *testing.T) {
	h, err := NewHabit("Вода", "", today)
	require.NoError(t, err)

	res, err := ToggleDay(h, today.AddDate(0, 0, -1), today)
	require.NoError(t, err)
	assert.Empty(t, res.Habit.LastChecked)
}
