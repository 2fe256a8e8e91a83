package domain

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// Snapshot — полное состояние трекера на один момент времени.
// Правила получают копию и возвращают новое значение, исходное не меняется.
type Snapshot struct {
	User         User
	Habits       []Habit
	Tasks        []Task
	Transactions []Transaction
	Bills        []Bill
	Achievements []Achievement
}

// Clone возвращает глубокую копию снимка.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		User:         s.User.Clone(),
		Transactions: slices.Clone(s.Transactions),
		Bills:        slices.Clone(s.Bills),
	}

	if s.Habits != nil {
		out.Habits = make([]Habit, len(s.Habits))
		for i, h := range s.Habits {
			out.Habits[i] = h.Clone()
		}
	}
	if s.Tasks != nil {
		out.Tasks = make([]Task, len(s.Tasks))
		for i, t := range s.Tasks {
			out.Tasks[i] = t.Clone()
		}
	}
	if s.Achievements != nil {
		out.Achievements = make([]Achievement, len(s.Achievements))
		for i, a := range s.Achievements {
			if a.UnlockedAt != nil {
				at := *a.UnlockedAt
				a.UnlockedAt = &at
			}
			out.Achievements[i] = a
		}
	}
	return out
}

// Clone копирует пользователя вместе с неизвестными полями.
func (u User) Clone() User {
	u.Extra = maps.Clone(u.Extra)
	return u
}

// Clone копирует привычку вместе с окном дней.
func (h Habit) Clone() Habit {
	h.Days = slices.Clone(h.Days)
	return h
}

// Clone копирует миссию вместе с полями усиления.
func (t Task) Clone() Task {
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		t.CompletedAt = &at
	}
	if t.Multiplier != nil {
		m := *t.Multiplier
		t.Multiplier = &m
	}
	if t.BonusXP != nil {
		b := *t.BonusXP
		t.BonusXP = &b
	}
	return t
}

// MaxStreak возвращает наибольший стрик среди привычек.
func (s Snapshot) MaxStreak() int {
	best := 0
	for _, h := range s.Habits {
		best = max(best, h.Streak)
	}
	return best
}

// CompletedTasks возвращает число выполненных миссий.
func (s Snapshot) CompletedTasks() int {
	n := 0
	for _, t := range s.Tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// PendingTasks возвращает незавершённые миссии.
func (s Snapshot) PendingTasks() []Task {
	var out []Task
	for _, t := range s.Tasks {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// Balance возвращает баланс: сумма доходов минус сумма расходов.
func (s Snapshot) Balance() decimal.Decimal {
	return Balance(s.Transactions)
}

// Balance считает Σincome − Σexpense.
func Balance(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case TxIncome:
			total = total.Add(tx.Amount)
		case TxExpense:
			total = total.Sub(tx.Amount)
		}
	}
	return total
}
