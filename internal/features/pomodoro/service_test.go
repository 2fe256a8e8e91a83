package pomodoro

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/config"
	"serotonyl.ru/aprohfy-bot/internal/domain"
	"serotonyl.ru/aprohfy-bot/internal/features/achievements"
	"serotonyl.ru/aprohfy-bot/internal/notify"
	"serotonyl.ru/aprohfy-bot/internal/state"
	"serotonyl.ru/aprohfy-bot/internal/store"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := state.Open(context.Background(), store.NewMemory(),
		state.WithClock(func() time.Time { return now }),
		state.WithHook(achievements.Apply),
	)
	require.NoError(t, err)
	return NewService(st, &config.Config{PomodoroPoints: 25}, WithMinute(time.Millisecond))
}

func TestCompleteSessionCounters(t *testing.T) {
	u := domain.User{Level: 1, PomodoroSessions: 3, PomodoroSessionsToday: 5, LastSessionDate: "2026-03-09"}

	res, err := CompleteSession(u, now, 25)
	require.NoError(t, err)
	assert.Equal(t, 4, res.User.PomodoroSessions)
	assert.Equal(t, 1, res.User.PomodoroSessionsToday, "счётчик дня начинается заново")
	assert.Equal(t, "2026-03-10", res.User.LastSessionDate)
	assert.Equal(t, 25, res.User.TotalPoints)
	assert.Equal(t, PhaseLongBreak, res.Next, "каждая четвёртая сессия — длинный перерыв")

	res, err = CompleteSession(res.User, now, 25)
	require.NoError(t, err)
	assert.Equal(t, 2, res.User.PomodoroSessionsToday)
	assert.Equal(t, PhaseShortBreak, res.Next)
}

func TestValidateConfig(t *testing.T) {
	ok := domain.PomodoroConfig{WorkDuration: 25, ShortBreakDuration: 5, LongBreakDuration: 15}
	assert.NoError(t, ValidateConfig(ok))

	bad := ok
	bad.WorkDuration = 0
	assert.ErrorIs(t, ValidateConfig(bad), common.ErrInvalidPomodoroConfig)

	bad = ok
	bad.LongBreakDuration = 121
	assert.ErrorIs(t, ValidateConfig(bad), common.ErrInvalidPomodoroConfig)
}

func TestCompleteFocusUnlocksPomoStart(t *testing.T) {
	svc := newTestService(t)

	next, events, err := svc.CompleteFocus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseShortBreak, next)

	snap := svc.state.Snapshot()
	assert.Equal(t, 1, snap.User.PomodoroSessions)
	assert.Equal(t, 25, snap.User.TotalPoints)

	var unlocked []string
	for _, e := range events {
		if e.Kind == domain.EventAchievement {
			unlocked = append(unlocked, e.Achievement.ID)
		}
	}
	assert.Contains(t, unlocked, "pomo_start")
}

func TestTimerRunsAndCompletes(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.UpdateConfig(context.Background(), domain.PomodoroConfig{
		WorkDuration: 5, ShortBreakDuration: 1, LongBreakDuration: 2,
	})
	require.NoError(t, err)

	done := make(chan Completion, 1)
	_, err = svc.Start(context.Background(), PhaseWork, func(c Completion) { done <- c })
	require.NoError(t, err)
	assert.True(t, svc.Status().Running)

	_, err = svc.Start(context.Background(), PhaseWork, nil)
	assert.ErrorIs(t, err, common.ErrTimerRunning)

	select {
	case c := <-done:
		require.NoError(t, c.Err)
		assert.Equal(t, PhaseWork, c.Phase)
		assert.Equal(t, PhaseShortBreak, c.Next)
		assert.False(t, c.AutoStarted)
	case <-time.After(2 * time.Second):
		t.Fatal("таймер не сработал")
	}
	assert.False(t, svc.Status().Running)
	assert.Equal(t, 1, svc.state.Snapshot().User.PomodoroSessions)
}

func TestTimerAutoStartsBreak(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.UpdateConfig(context.Background(), domain.PomodoroConfig{
		WorkDuration: 1, ShortBreakDuration: 60, LongBreakDuration: 60, AutoStartBreaks: true,
	})
	require.NoError(t, err)

	done := make(chan Completion, 2)
	_, err = svc.Start(context.Background(), PhaseWork, func(c Completion) { done <- c })
	require.NoError(t, err)

	c := <-done
	assert.True(t, c.AutoStarted)
	st := svc.Status()
	assert.True(t, st.Running)
	assert.Equal(t, PhaseShortBreak, st.Phase)

	_, err = svc.Stop()
	require.NoError(t, err)
}

func TestStopDoesNotCount(t *testing.T) {
	svc := newTestService(t)
	called := make(chan struct{}, 1)

	_, err := svc.Start(context.Background(), PhaseWork, func(Completion) { called <- struct{}{} })
	require.NoError(t, err)
	phase, err := svc.Stop()
	require.NoError(t, err)
	assert.Equal(t, PhaseWork, phase)

	_, err = svc.Stop()
	assert.ErrorIs(t, err, common.ErrTimerIdle)

	select {
	case <-called:
		t.Fatal("остановленный таймер не должен завершаться")
	case <-time.After(60 * time.Millisecond):
	}
	assert.Equal(t, 0, svc.state.Snapshot().User.PomodoroSessions)
}

func TestParseConfigArgs(t *testing.T) {
	cur := domain.PomodoroConfig{WorkDuration: 25, ShortBreakDuration: 5, LongBreakDuration: 15, SoundEnabled: true}

	cfg, ok := parseConfigArgs(cur, []string{"50", "10", "20", "автоперерыв"})
	require.True(t, ok)
	assert.Equal(t, 50, cfg.WorkDuration)
	assert.Equal(t, 10, cfg.ShortBreakDuration)
	assert.Equal(t, 20, cfg.LongBreakDuration)
	assert.True(t, cfg.AutoStartBreaks)
	assert.False(t, cfg.AutoStartPomodoros)
	assert.True(t, cfg.SoundEnabled)

	_, ok = parseConfigArgs(cur, []string{"50", "10"})
	assert.False(t, ok)
}

func TestHandleConfigRejectsOutOfBounds(t *testing.T) {
	svc := newTestService(t)
	rec := &notify.Recorder{}
	NewHandler(svc, rec).HandleConfig(context.Background(), 1, []string{"500", "5", "15"})

	assert.Contains(t, rec.Last().Text, common.ErrInvalidPomodoroConfig.Error())
	assert.Equal(t, 25, svc.Config().WorkDuration)
}
