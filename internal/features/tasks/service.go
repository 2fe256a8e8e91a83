// Package tasks — service.go выполняет операции над миссиями через контейнер состояния.
package tasks

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

// Service управляет миссиями.
type Service struct {
	state *state.Container
	cfg   *config.Config
}

// NewService создаёт сервис миссий.
func NewService(st *state.Container, cfg *config.Config) *Service {
	return &Service{state: st, cfg: cfg}
}

// List возвращает миссии: сначала незавершённые, затем выполненные, каждая группа в порядке создания.
func (s *Service) List() []domain.Task {
	all := s.state.Snapshot().Tasks
	out := make([]domain.Task, 0, len(all))
	for _, t := range all {
		if !t.Completed {
			out = append(out, t)
		}
	}
	for _, t := range all {
		if t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// Create добавляет миссию. Нулевые очки заменяются на TASK_DEFAULT_POINTS.
func (s *Service) Create(ctx context.Context, title string, points int, due time.Time) (domain.Task, []domain.Event, error) {
	if points == 0 {
		points = s.cfg.TaskDefaultPoints
	}

	var created domain.Task
	events, err := s.state.Update(ctx, func(snap *domain.Snapshot, now time.Time) ([]domain.Event, error) {
		t, err := NewTask(Input{Title: title, Points: points, DueDate: due}, now)
		if err != nil {
			return nil, err
		}
		snap.Tasks = append(snap.Tasks, t)
		created = t
		return []domain.Event{domain.Notify("Новая миссия", "Цель добавлена в список")}, nil
	})
	if err != nil {
		return domain.Task{}, nil, err
	}

	log.WithFields(log.Fields{"task": created.Title, "points": created.Points}).Info("Миссия создана")
	return created, events, nil
}

// Toggle отмечает миссию выполненной или снимает отметку.
// Выполнение начисляет floor(points × multiplier + bonusXP) опыта.
func (s *Service) Toggle(ctx context.Context, taskID string) (domain.Task, []domain.Event, error) {
	var updated domain.Task
	events, err := s.state.Update(ctx, func(snap *domain.Snapshot, now time.Time) ([]domain.Event, error) {
		idx := indexOf(snap.Tasks, taskID)
		if idx < 0 {
			return nil, common.ErrNotFound
		}

		res := Toggle(snap.Tasks[idx], now)
		snap.Tasks[idx] = res.Task
		updated = res.Task
		if !res.Task.Completed {
			return nil, nil
		}

		grant, err := progression.Grant(snap.User, res.Reward,
			fmt.Sprintf("Миссия «%s» выполнена", res.Task.Title))
		if err != nil {
			return nil, err
		}
		snap.User = grant.User
		return grant.Events, nil
	})
	if err != nil {
		return domain.Task{}, nil, err
	}
	return updated, events, nil
}

// Delete удаляет миссию.
func (s *Service) Delete(ctx context.Context, taskID string) (domain.Task, error) {
	var removed domain.Task
	_, err := s.state.Update(ctx, func(snap *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
		idx := indexOf(snap.Tasks, taskID)
		if idx < 0 {
			return nil, common.ErrNotFound
		}
		removed = snap.Tasks[idx]
		snap.Tasks = append(snap.Tasks[:idx:idx], snap.Tasks[idx+1:]...)
		return nil, nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	log.WithField("task", removed.Title).Info("Миссия удалена")
	return removed, nil
}

func indexOf(tasks []domain.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
