// Package progression — dashboard.go собирает сводку «баланса жизни» для профиля.
package progression

import (
	"time"

	"github.com/shopspring/decimal"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/domain"
)

// MaxAreaScore — максимальная оценка одной сферы.
const MaxAreaScore = 20

// Dashboard — оценки пяти сфер (0..20) и общий итог.
type Dashboard struct {
	Habits       int
	Focus        int
	Missions     int
	Achievements int
	Finance      int
	// Total — сумма оценок, от 0 до 100.
	Total int
}

// BuildDashboard считает сводку по снимку на день today.
func BuildDashboard(s domain.Snapshot, today time.Time) Dashboard {
	todayKey := common.DayKey(today)

	var d Dashboard

	if len(s.Habits) > 0 {
		done := 0
		for _, h := range s.Habits {
			if h.CompletedOn(todayKey) {
				done++
			}
		}
		d.Habits = ratioScore(done, len(s.Habits))
	}

	d.Focus = ratioScore(min(s.User.SessionsOn(todayKey), 5), 5)

	if len(s.Tasks) > 0 {
		d.Missions = ratioScore(s.CompletedTasks(), len(s.Tasks))
	}

	unlocked := 0
	for _, a := range s.Achievements {
		if a.Unlocked {
			unlocked++
		}
	}
	d.Achievements = ratioScore(min(unlocked, 10), 10)

	balance := s.Balance()
	if balance.IsPositive() {
		capped := decimal.Min(balance, decimal.NewFromInt(1000))
		d.Finance = int(capped.Mul(decimal.NewFromInt(MaxAreaScore)).Div(decimal.NewFromInt(1000)).IntPart())
	}

	d.Total = d.Habits + d.Focus + d.Missions + d.Achievements + d.Finance
	return d
}

func ratioScore(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return part * MaxAreaScore / whole
}
