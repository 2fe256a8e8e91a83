// Package fortune — wheel.go хранит состояние колеса между командами:
// Idle → Spinning → Resolved → Idle. Разыгрывание выполняется через задержку.
package fortune

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/config"
	"serotonyl.ru/aprohfy-bot/internal/domain"
	"serotonyl.ru/aprohfy-bot/internal/state"
)

// ResolvedFunc получает итог вращения после задержки.
type ResolvedFunc func(res Result, events []domain.Event, err error)

// Wheel — колесо фортуны единственного пользователя.
// Собственный мьютекс защищает фазу и ожидающий результат,
// снимок состояния меняется только через контейнер.
type Wheel struct {
	mu      sync.Mutex
	phase   Phase
	pending *Result

	state    *state.Container
	maxSpins int
	delay    time.Duration
	src      Source
}

// WheelOption настраивает колесо.
type WheelOption func(*Wheel)

// WithSource подменяет генератор случайных чисел.
func WithSource(src Source) WheelOption {
	return func(w *Wheel) { w.src = src }
}

// WithDelay задаёт паузу между запуском и результатом.
func WithDelay(d time.Duration) WheelOption {
	return func(w *Wheel) { w.delay = d }
}

// NewWheel создаёт колесо с лимитом FORTUNE_MAX_SPINS и задержкой FORTUNE_SPIN_DELAY.
func NewWheel(st *state.Container, cfg *config.Config, opts ...WheelOption) *Wheel {
	w := &Wheel{
		state:    st,
		maxSpins: cfg.FortuneMaxSpins,
		delay:    cfg.FortuneSpinDelay,
		src:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Phase возвращает текущее состояние колеса.
func (w *Wheel) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// Pending возвращает результат, ожидающий решения.
func (w *Wheel) Pending() (Result, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		return Result{}, false
	}
	return *w.pending, true
}

// Spin запускает вращение. Ошибки предусловий возвращаются сразу,
// итог приходит в done после задержки. Неразобранный прошлый результат сбрасывается.
func (w *Wheel) Spin(ctx context.Context, done ResolvedFunc) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.phase == PhaseSpinning {
		return common.ErrAlreadySpinning
	}
	if err := w.resetDaily(ctx); err != nil {
		return err
	}
	if err := CheckSpin(w.state.Snapshot(), w.maxSpins); err != nil {
		return err
	}

	if w.pending != nil {
		log.WithField("task", w.pending.TaskTitle).Debug("Прошлый результат колеса сброшен")
	}
	w.phase = PhaseSpinning
	w.pending = nil

	ctx = context.WithoutCancel(ctx)
	time.AfterFunc(w.delay, func() {
		res, events, err := w.resolve(ctx)
		if done != nil {
			done(res, events, err)
		}
	})
	return nil
}

func (w *Wheel) resolve(ctx context.Context) (Result, []domain.Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var res Result
	events, err := w.state.Update(ctx, func(s *domain.Snapshot, now time.Time) ([]domain.Event, error) {
		s.User, _ = ResetDaily(s.User, now)
		u, r, events, err := Resolve(*s, w.maxSpins, w.src)
		if err != nil {
			return nil, err
		}
		s.User = u
		res = r
		return events, nil
	})
	if err != nil {
		w.phase = PhaseIdle
		return Result{}, nil, err
	}

	w.phase = PhaseResolved
	w.pending = &res
	log.WithFields(log.Fields{
		"task":  res.TaskTitle,
		"tier":  res.Tier.Name,
		"reels": res.Reels,
	}).Info("Колесо остановилось")
	return res, events, nil
}

// Accept применяет ожидающий результат к миссии.
func (w *Wheel) Accept(ctx context.Context) (Result, []domain.Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.phase != PhaseResolved || w.pending == nil {
		return Result{}, nil, common.ErrNoPendingResult
	}
	res := *w.pending

	events, err := w.state.Update(ctx, func(s *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
		tasks, events, err := Accept(s.Tasks, res)
		if err != nil {
			return nil, err
		}
		s.Tasks = tasks
		return events, nil
	})
	if err != nil {
		return Result{}, nil, err
	}

	w.phase = PhaseIdle
	w.pending = nil
	return res, events, nil
}

// Discard отказывается от ожидающего результата. Счётчики вращений не возвращаются.
func (w *Wheel) Discard() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.phase != PhaseResolved || w.pending == nil {
		return common.ErrNoPendingResult
	}
	w.phase = PhaseIdle
	w.pending = nil
	return nil
}

// ResetDaily обнуляет дневные вращения при смене дня.
// Вызывается при старте и кроном в полночь.
func (w *Wheel) ResetDaily(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.resetDaily(ctx)
}

func (w *Wheel) resetDaily(ctx context.Context) error {
	snap := w.state.Snapshot()
	if snap.User.LastSpinDate == common.DayKey(w.state.Now()) {
		return nil
	}
	_, err := w.state.Update(ctx, func(s *domain.Snapshot, now time.Time) ([]domain.Event, error) {
		s.User, _ = ResetDaily(s.User, now)
		return nil, nil
	})
	return err
}

// Stats возвращает статистику колеса.
func (w *Wheel) Stats() Stats {
	u := w.state.Snapshot().User
	left := w.maxSpins - u.DailySpins
	if u.LastSpinDate != common.DayKey(w.state.Now()) {
		left = w.maxSpins
	}
	return Stats{
		TotalSpins:     u.TotalSpins,
		BonusXPEarned:  u.BonusXPEarned,
		BestMultiplier: u.BestMultiplier,
		SpinsLeft:      max(0, left),
	}
}
