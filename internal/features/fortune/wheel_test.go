package fortune

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/config"
	"serotonyl.ru/aprohfy-bot/internal/domain"
	"serotonyl.ru/aprohfy-bot/internal/notify"
	"serotonyl.ru/aprohfy-bot/internal/state"
	"serotonyl.ru/aprohfy-bot/internal/store"
)

type outcome struct {
	res    Result
	events []domain.Event
	err    error
}

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func newTestWheel(t *testing.T, delay time.Duration, tasks ...domain.Task) (*Wheel, *state.Container, *testClock) {
	t.Helper()
	ctx := context.Background()
	clk := &testClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}

	st, err := state.Open(ctx, store.NewMemory(), state.WithClock(clk.Now))
	require.NoError(t, err)
	if len(tasks) > 0 {
		_, err = st.Update(ctx, func(s *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
			s.Tasks = append(s.Tasks, tasks...)
			return nil, nil
		})
		require.NoError(t, err)
	}

	cfg := &config.Config{FortuneMaxSpins: 3, FortuneSpinDelay: delay}
	w := NewWheel(st, cfg, WithSource(rand.New(rand.NewPCG(1, 2))))
	return w, st, clk
}

func spinAndWait(t *testing.T, w *Wheel) (outcome, error) {
	t.Helper()
	ch := make(chan outcome, 1)
	err := w.Spin(context.Background(), func(res Result, events []domain.Event, err error) {
		ch <- outcome{res, events, err}
	})
	if err != nil {
		return outcome{}, err
	}
	select {
	case o := <-ch:
		return o, nil
	case <-time.After(2 * time.Second):
		t.Fatal("колесо не остановилось")
		return outcome{}, nil
	}
}

func TestWheelSpinAndAccept(t *testing.T) {
	w, st, _ := newTestWheel(t, 0, domain.Task{ID: "a", Title: "Отчёт", Points: 50})

	o, err := spinAndWait(t, w)
	require.NoError(t, err)
	require.NoError(t, o.err)
	assert.Equal(t, "a", o.res.TaskID)
	assert.Equal(t, PhaseResolved, w.Phase())

	u := st.Snapshot().User
	assert.Equal(t, 1, u.DailySpins)
	assert.Equal(t, 1, u.TotalSpins)
	assert.Equal(t, o.res.Tier.BonusXP, u.BonusXPEarned)

	res, events, err := w.Accept(context.Background())
	require.NoError(t, err)
	assert.Equal(t, o.res, res)
	assert.NotEmpty(t, events)
	assert.Equal(t, PhaseIdle, w.Phase())

	task := st.Snapshot().Tasks[0]
	require.NotNil(t, task.Multiplier)
	assert.Equal(t, o.res.Tier.Multiplier, *task.Multiplier)
	assert.True(t, task.IsHighlighted)

	_, _, err = w.Accept(context.Background())
	assert.ErrorIs(t, err, common.ErrNoPendingResult)
}

func TestWheelDiscardLeavesTasks(t *testing.T) {
	w, st, _ := newTestWheel(t, 0, domain.Task{ID: "a", Title: "Отчёт", Points: 50})

	_, err := spinAndWait(t, w)
	require.NoError(t, err)
	require.NoError(t, w.Discard())

	assert.Nil(t, st.Snapshot().Tasks[0].Multiplier)
	assert.Equal(t, 1, st.Snapshot().User.DailySpins, "вращение всё равно засчитано")
	assert.ErrorIs(t, w.Discard(), common.ErrNoPendingResult)
}

func TestWheelRejectsReentrantSpin(t *testing.T) {
	w, _, _ := newTestWheel(t, 50*time.Millisecond, domain.Task{ID: "a", Points: 10})

	done := make(chan struct{})
	require.NoError(t, w.Spin(context.Background(), func(Result, []domain.Event, error) { close(done) }))
	assert.ErrorIs(t, w.Spin(context.Background(), nil), common.ErrAlreadySpinning)
	<-done
	assert.Equal(t, PhaseResolved, w.Phase())
}

func TestWheelNoTasks(t *testing.T) {
	w, st, _ := newTestWheel(t, 0)
	err := w.Spin(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrNoPendingTasks)
	assert.Equal(t, PhaseIdle, w.Phase())
	assert.Equal(t, 0, st.Snapshot().User.TotalSpins)
}

func TestWheelDailyLimit(t *testing.T) {
	w, st, clk := newTestWheel(t, 0, domain.Task{ID: "a", Points: 10})

	for i := 0; i < 10; i++ {
		_, err := spinAndWait(t, w)
		if i < 3 {
			require.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, common.ErrNoSpinsLeft)
		}
		assert.LessOrEqual(t, st.Snapshot().User.DailySpins, 3)
	}
	assert.Equal(t, 0, w.Stats().SpinsLeft)
	assert.Equal(t, 3, w.Stats().TotalSpins)

	clk.now = clk.now.AddDate(0, 0, 1)
	assert.Equal(t, 3, w.Stats().SpinsLeft)
	require.NoError(t, w.ResetDaily(context.Background()))
	assert.Equal(t, 0, st.Snapshot().User.DailySpins)

	_, err := spinAndWait(t, w)
	require.NoError(t, err)
	assert.Equal(t, 4, st.Snapshot().User.TotalSpins)
}

func TestHandlerSpinFlow(t *testing.T) {
	w, _, _ := newTestWheel(t, 0, domain.Task{ID: "a", Title: "Отчёт", Points: 50})
	rec := &notify.Recorder{}
	h := NewHandler(w, rec)

	h.HandleSpin(context.Background(), 1)
	require.Eventually(t, func() bool { return rec.Count() == 2 }, 2*time.Second, 5*time.Millisecond)

	var result notify.Message
	for _, m := range rec.Messages {
		if len(m.Buttons) > 0 {
			result = m
		}
	}
	assert.Contains(t, result.Text, "Отчёт")
	require.Len(t, result.Buttons, 1)
	assert.Equal(t, CallbackAccept, result.Buttons[0][0].Data)
	assert.Equal(t, CallbackDiscard, result.Buttons[0][1].Data)

	h.HandleAccept(context.Background(), 1)
	assert.Contains(t, rec.Last().Text, "Миссия усилена")
}

func TestHandlerNoTasksWarns(t *testing.T) {
	w, _, _ := newTestWheel(t, 0)
	rec := &notify.Recorder{}
	NewHandler(w, rec).HandleSpin(context.Background(), 1)

	require.Equal(t, 1, rec.Count())
	assert.Contains(t, rec.Last().Text, "Нет миссий")
}
