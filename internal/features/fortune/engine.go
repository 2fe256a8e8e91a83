// Package fortune — engine.go содержит чистые правила колеса:
// розыгрыш барабанов, выбор миссии, применение и дневной сброс счётчиков.
package fortune

import (
	"fmt"
	"time"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/domain"
)

// Source — источник равномерных случайных чисел в [0, n).
// *rand.Rand из math/rand/v2 подходит напрямую.
type Source interface {
	IntN(n int) int
}

// Draw крутит три барабана независимо друг от друга.
func Draw(src Source) Reels {
	var r Reels
	for i := range r {
		r[i] = Symbols[src.IntN(len(Symbols))]
	}
	return r
}

// Classify определяет уровень выигрыша: три одинаковых, пара или все разные.
func Classify(r Reels) Tier {
	switch {
	case r[0] == r[1] && r[1] == r[2]:
		return TierJackpot
	case r[0] == r[1] || r[1] == r[2] || r[0] == r[2]:
		return TierPair
	default:
		return TierDistinct
	}
}

// ResetDaily обнуляет дневные вращения, если наступил новый день.
func ResetDaily(u domain.User, today time.Time) (domain.User, bool) {
	key := common.DayKey(today)
	if u.LastSpinDate == key {
		return u, false
	}
	u.DailySpins = 0
	u.LastSpinDate = key
	return u, true
}

// CheckSpin проверяет условия вращения без изменения состояния.
func CheckSpin(s domain.Snapshot, maxSpins int) error {
	if len(s.PendingTasks()) == 0 {
		return common.ErrNoPendingTasks
	}
	if s.User.DailySpins >= maxSpins {
		return common.ErrNoSpinsLeft
	}
	return nil
}

// Resolve разыгрывает вращение: выбирает незавершённую миссию, крутит барабаны
// и обновляет счётчики пользователя. Миссии не меняются до Accept.
func Resolve(s domain.Snapshot, maxSpins int, src Source) (domain.User, Result, []domain.Event, error) {
	if err := CheckSpin(s, maxSpins); err != nil {
		return s.User, Result{}, nil, err
	}

	pending := s.PendingTasks()
	task := pending[src.IntN(len(pending))]
	reels := Draw(src)
	tier := Classify(reels)

	u := s.User
	u.DailySpins++
	u.TotalSpins++
	u.BonusXPEarned += tier.BonusXP
	u.BestMultiplier = max(u.BestMultiplier, tier.Multiplier)

	res := Result{TaskID: task.ID, TaskTitle: task.Title, Reels: reels, Tier: tier}

	var events []domain.Event
	if res.IsJackpot() {
		events = append(events, domain.Event{
			Kind:    domain.EventJackpot,
			Title:   "ДЖЕКПОТ!",
			Message: fmt.Sprintf("«%s» может принести ×%g и %s", task.Title, tier.Multiplier, common.FormatXP(tier.BonusXP)),
		})
	}
	return u, res, events, nil
}

// Accept записывает усиление в выбранную миссию, перезаписывая прежнее.
// Если миссию успели выполнить или удалить, возвращает ErrNotFound.
func Accept(tasks []domain.Task, r Result) ([]domain.Task, []domain.Event, error) {
	for i, t := range tasks {
		if t.ID != r.TaskID {
			continue
		}
		if t.Completed {
			return tasks, nil, common.ErrNotFound
		}

		mult := r.Tier.Multiplier
		bonus := r.Tier.BonusXP
		t.Multiplier = &mult
		t.BonusXP = &bonus
		t.IsHighlighted = true
		tasks[i] = t

		return tasks, []domain.Event{domain.Notify("Миссия усилена",
			fmt.Sprintf("«%s» теперь стоит %d XP", t.Title, t.EffectiveReward()))}, nil
	}
	return tasks, nil, common.ErrNotFound
}
