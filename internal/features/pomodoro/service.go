// Package pomodoro — service.go держит запущенный таймер и засчитывает сессии.
// Одновременно идёт не больше одной фазы.
package pomodoro

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/config"
	"serotonyl.ru/aprohfy-bot/internal/domain"
	"serotonyl.ru/aprohfy-bot/internal/state"
)

// Completion — итог завершённой фазы.
type Completion struct {
	Phase Phase
	Next  Phase
	// AutoStarted — следующая фаза запущена автоматически.
	AutoStarted bool
	Events      []domain.Event
	Err         error
}

// DoneFunc получает итог каждой завершённой фазы.
type DoneFunc func(Completion)

// Status — состояние таймера.
type Status struct {
	Running   bool
	Phase     Phase
	Remaining time.Duration
}

type run struct {
	id     uint64
	phase  Phase
	endsAt time.Time
	timer  *time.Timer
}

// Service управляет фокус-таймером.
type Service struct {
	state *state.Container
	cfg   *config.Config

	mu      sync.Mutex
	current *run
	nextID  uint64
	minute  time.Duration
}

// Option настраивает сервис.
type Option func(*Service)

// WithMinute задаёт длину «минуты» таймера.
func WithMinute(d time.Duration) Option {
	return func(s *Service) { s.minute = d }
}

// NewService создаёт сервис таймера.
func NewService(st *state.Container, cfg *config.Config, opts ...Option) *Service {
	s := &Service{state: st, cfg: cfg, minute: time.Minute}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config возвращает текущие настройки таймера.
func (s *Service) Config() domain.PomodoroConfig {
	return s.state.Snapshot().User.PomodoroConfig
}

// UpdateConfig сохраняет новые настройки. Запущенная фаза не меняется.
func (s *Service) UpdateConfig(ctx context.Context, cfg domain.PomodoroConfig) ([]domain.Event, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return s.state.Update(ctx, func(snap *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
		snap.User.PomodoroConfig = cfg
		return []domain.Event{domain.Notify("Настройки сохранены",
			fmt.Sprintf("Фокус %d мин, перерывы %d/%d мин",
				cfg.WorkDuration, cfg.ShortBreakDuration, cfg.LongBreakDuration))}, nil
	})
}

// Start запускает фазу. По окончании вызывается done.
func (s *Service) Start(ctx context.Context, phase Phase, done DoneFunc) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked(context.WithoutCancel(ctx), phase, done)
}

func (s *Service) startLocked(ctx context.Context, phase Phase, done DoneFunc) (time.Duration, error) {
	if s.current != nil {
		return 0, common.ErrTimerRunning
	}

	d := time.Duration(Minutes(s.Config(), phase)) * s.minute
	s.nextID++
	r := &run{id: s.nextID, phase: phase, endsAt: time.Now().Add(d)}
	r.timer = time.AfterFunc(d, func() { s.finish(ctx, r.id, done) })
	s.current = r

	log.WithFields(log.Fields{"phase": phase, "duration": d}).Info("Таймер запущен")
	return d, nil
}

// Stop останавливает таймер без засчитывания сессии.
func (s *Service) Stop() (Phase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return "", common.ErrTimerIdle
	}
	s.current.timer.Stop()
	phase := s.current.phase
	s.current = nil
	log.WithField("phase", phase).Info("Таймер остановлен")
	return phase, nil
}

// Status возвращает состояние таймера.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Status{}
	}
	return Status{
		Running:   true,
		Phase:     s.current.phase,
		Remaining: max(0, time.Until(s.current.endsAt)),
	}
}

// CompleteFocus засчитывает фокус-сессию и возвращает следующую фазу.
func (s *Service) CompleteFocus(ctx context.Context) (Phase, []domain.Event, error) {
	var next Phase
	events, err := s.state.Update(ctx, func(snap *domain.Snapshot, now time.Time) ([]domain.Event, error) {
		res, err := CompleteSession(snap.User, now, s.cfg.PomodoroPoints)
		if err != nil {
			return nil, err
		}
		snap.User = res.User
		next = res.Next
		return res.Events, nil
	})
	if err != nil {
		return "", nil, err
	}
	return next, events, nil
}

func (s *Service) finish(ctx context.Context, id uint64, done DoneFunc) {
	s.mu.Lock()
	if s.current == nil || s.current.id != id {
		// таймер успели остановить
		s.mu.Unlock()
		return
	}
	phase := s.current.phase
	s.current = nil

	c := Completion{Phase: phase, Next: PhaseWork}
	if phase == PhaseWork {
		c.Next, c.Events, c.Err = s.CompleteFocus(ctx)
	}

	cfg := s.Config()
	auto := (phase == PhaseWork && cfg.AutoStartBreaks) || (phase != PhaseWork && cfg.AutoStartPomodoros)
	if c.Err == nil && auto {
		if _, err := s.startLocked(ctx, c.Next, done); err == nil {
			c.AutoStarted = true
		}
	}
	s.mu.Unlock()

	log.WithFields(log.Fields{"phase": phase, "next": c.Next}).Info("Фаза таймера завершена")
	if done != nil {
		done(c)
	}
}
