// Package achievements — evaluator.go пересчитывает прогресс и открывает достижения.
package achievements

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/aprohfy-bot/internal/domain"
)

// Evaluate пересчитывает прогресс закрытых достижений по снимку snap.
//
// Правила:
//   - открытые достижения не трогаются (открытие необратимо)
//   - закрытое получает progress из правила; без правила прогресс не меняется
//   - при progress >= total достижение открывается с unlockedAt = now
//     и порождает ровно одно событие
//
// Повторный вызов на том же снимке ничего не меняет и событий не даёт.
func Evaluate(achs []domain.Achievement, snap domain.Snapshot, now time.Time) ([]domain.Achievement, []domain.Event) {
	out := make([]domain.Achievement, len(achs))
	var events []domain.Event

	for i, a := range achs {
		if a.Unlocked {
			out[i] = a
			continue
		}

		if rule, ok := Rules[a.ID]; ok {
			a.Progress = rule(snap)
		}

		if a.Progress >= a.Total {
			at := now
			a.Unlocked = true
			a.UnlockedAt = &at

			unlocked := a
			events = append(events, domain.Event{
				Kind:        domain.EventAchievement,
				Title:       fmt.Sprintf("%s %s", a.Icon, a.Title),
				Message:     a.Description,
				Achievement: &unlocked,
			})
			log.WithFields(log.Fields{
				"id":     a.ID,
				"rarity": a.Rarity,
			}).Info("Достижение открыто")
		}
		out[i] = a
	}

	return out, events
}

// Apply — хук контейнера состояния: проверяет достижения после каждой мутации.
func Apply(s *domain.Snapshot, now time.Time) []domain.Event {
	achs, events := Evaluate(s.Achievements, *s, now)
	s.Achievements = achs
	return events
}

// Summary — сколько открыто из общего числа.
func Summary(achs []domain.Achievement) (unlocked, total int) {
	for _, a := range achs {
		if a.Unlocked {
			unlocked++
		}
	}
	return unlocked, len(achs)
}
