// Package challenges считает дневные челленджи. Они нигде не хранятся
// и пересчитываются по снимку при каждом запросе.
package challenges

import (
	"time"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/domain"
)

// Challenge — состояние челленджа на текущий момент.
type Challenge struct {
	ID          string
	Title       string
	Description string
	Icon        string
	RewardXP    int
	Progress    int
	Total       int
	Completed   bool
}

// ProgressPercent возвращает прогресс в процентах, не больше 100.
func (c Challenge) ProgressPercent() int {
	if c.Total <= 0 {
		return 100
	}
	return min(100, c.Progress*100/c.Total)
}

type template struct {
	id, title, description, icon string
	reward, total                int
	progress                     func(s domain.Snapshot, today time.Time) int
}

// Идентификаторы стабильны: по ним челленджи упоминаются в сообщениях.
var templates = []template{
	{
		id: "c1", title: "Мастер рутины", description: "Отметь 3 привычки сегодня", icon: "🔥",
		reward: 150, total: 3, progress: habitsCheckedToday,
	},
	{
		id: "c2", title: "Элитный фокус", description: "Заверши 2 фокус-сессии сегодня", icon: "🛡️",
		reward: 100, total: 2, progress: sessionsToday,
	},
	{
		id: "c3", title: "Охотник за миссиями", description: "Выполни 2 миссии сегодня", icon: "🎯",
		reward: 80, total: 2, progress: tasksCompletedToday,
	},
}

// Evaluate пересчитывает все челленджи на день today.
func Evaluate(s domain.Snapshot, today time.Time) []Challenge {
	out := make([]Challenge, 0, len(templates))
	for _, t := range templates {
		p := t.progress(s, today)
		out = append(out, Challenge{
			ID:          t.id,
			Title:       t.title,
			Description: t.description,
			Icon:        t.icon,
			RewardXP:    t.reward,
			Progress:    p,
			Total:       t.total,
			Completed:   p >= t.total,
		})
	}
	return out
}

func habitsCheckedToday(s domain.Snapshot, today time.Time) int {
	todayKey := common.DayKey(today)
	n := 0
	for _, h := range s.Habits {
		if h.LastChecked == todayKey {
			n++
		}
	}
	return n
}

func sessionsToday(s domain.Snapshot, today time.Time) int {
	return s.User.SessionsOn(common.DayKey(today))
}

func tasksCompletedToday(s domain.Snapshot, today time.Time) int {
	n := 0
	for _, t := range s.Tasks {
		if t.Completed && t.CompletedAt != nil && common.SameDay(t.CompletedAt.In(today.Location()), today) {
			n++
		}
	}
	return n
}
