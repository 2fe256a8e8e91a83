// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: смену дня в полночь,
// вечернее напоминание о стриках и утреннее о счетах.
package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/config"
	"serotonyl.ru/aprohfy-bot/internal/features/economy"
	"serotonyl.ru/aprohfy-bot/internal/features/fortune"
	"serotonyl.ru/aprohfy-bot/internal/features/streak"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron           *cron.Cron
	cfg            *config.Config
	streakService  *streak.Service
	economyService *economy.Service
	wheel          *fortune.Wheel
	sendFunc       func(text string)
}

// NewScheduler создаёт планировщик в часовом поясе приложения.
func NewScheduler(
	cfg *config.Config,
	streakService *streak.Service,
	economyService *economy.Service,
	wheel *fortune.Wheel,
	sendFunc func(text string),
) *Scheduler {
	return &Scheduler{
		cron:           cron.New(cron.WithLocation(common.Location())),
		cfg:            cfg,
		streakService:  streakService,
		economyService: economyService,
		wheel:          wheel,
		sendFunc:       sendFunc,
	}
}

// Rollover — смена дня: сброс вращений колеса и продление окон привычек.
// Вызывается в полночь и один раз при старте (бот мог пропустить полночь).
func (s *Scheduler) Rollover(ctx context.Context) error {
	if err := s.wheel.ResetDaily(ctx); err != nil {
		return fmt.Errorf("сброс вращений: %w", err)
	}
	broken, err := s.streakService.RollDay(ctx)
	if err != nil {
		return fmt.Errorf("смена дня привычек: %w", err)
	}
	log.WithField("broken_streaks", broken).Info("[CRON] День закрыт")
	return nil
}

// Start регистрирует задачи и запускает планировщик.
func (s *Scheduler) Start(ctx context.Context) error {
	jobs := []struct {
		name string
		spec string
		run  func()
	}{
		{"rollover", s.cfg.JobRolloverSpec, func() {
			if err := s.Rollover(ctx); err != nil {
				log.WithError(err).Error("[CRON] Ошибка смены дня")
			}
		}},
		{"streak_reminder", s.cfg.JobStreakReminderSpec, func() {
			log.Debug("[CRON] Проверка напоминаний о стриках")
			if err := s.streakService.SendReminders(ctx, s.sendFunc); err != nil {
				log.WithError(err).Error("[CRON] Ошибка напоминаний о стриках")
			}
		}},
		{"bills_reminder", s.cfg.JobBillsReminderSpec, func() {
			if !s.cfg.FeatureFinanceEnabled {
				return
			}
			log.Debug("[CRON] Проверка счетов")
			if err := s.economyService.SendBillReminders(ctx, s.sendFunc); err != nil {
				log.WithError(err).Error("[CRON] Ошибка напоминаний о счетах")
			}
		}},
	}

	for _, j := range jobs {
		if _, err := s.cron.AddFunc(j.spec, j.run); err != nil {
			return fmt.Errorf("задача %s (%q): %w", j.name, j.spec, err)
		}
	}

	s.cron.Start()
	log.WithField("location", common.Location().String()).Info("Планировщик задач запущен")
	return nil
}

// Stop останавливает планировщик и ждёт завершения текущих задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
