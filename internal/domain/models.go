// Package domain описывает сущности трекера: привычки, миссии, финансы,
// достижения и профиль пользователя. Пакет не зависит от хранилища и транспорта:
// правила (стрики, уровни, достижения, колесо) работают со значениями отсюда.
package domain

import (
	"encoding/json"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// HabitDay — отметка привычки за один календарный день.
type HabitDay struct {
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
}

// Habit — ежедневная привычка со скользящим окном дней.
type Habit struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Category string     `json:"category"`
	Streak   int        `json:"streak"`
	Days     []HabitDay `json:"days"`
	// LastChecked — ключ дня (2006-01-02), когда привычка была отмечена «сегодня».
	LastChecked string    `json:"lastChecked,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CompletedOn сообщает, отмечена ли привычка в день с ключом dayKey.
func (h Habit) CompletedOn(dayKey string) bool {
	for _, d := range h.Days {
		if d.Completed && d.Date.Format("2006-01-02") == dayKey {
			return true
		}
	}
	return false
}

// Task — миссия с наградой в опыте.
type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	DueDate       time.Time  `json:"dueDate"`
	Points        int        `json:"points"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	Multiplier    *float64   `json:"multiplier,omitempty"`
	BonusXP       *int       `json:"bonusXP,omitempty"`
	IsHighlighted bool       `json:"isHighlighted,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// EffectiveReward возвращает награду с учётом усиления колеса:
// floor(points × multiplier + bonusXP).
func (t Task) EffectiveReward() int {
	mult := 1.0
	if t.Multiplier != nil {
		mult = *t.Multiplier
	}
	bonus := 0
	if t.BonusXP != nil {
		bonus = *t.BonusXP
	}
	return int(math.Floor(float64(t.Points)*mult + float64(bonus)))
}

// TransactionType — направление денежной операции.
type TransactionType string

const (
	TxIncome  TransactionType = "income"
	TxExpense TransactionType = "expense"
)

// Transaction — доход или расход.
type Transaction struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
}

// Bill — счёт к оплате.
type Bill struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	DueDate time.Time       `json:"dueDate"`
	Amount  decimal.Decimal `json:"amount"`
	Paid    bool            `json:"paid"`
}

// IsOverdue — счёт не оплачен, а срок прошёл раньше today.
func (b Bill) IsOverdue(today time.Time) bool {
	if b.Paid {
		return false
	}
	due := time.Date(b.DueDate.Year(), b.DueDate.Month(), b.DueDate.Day(), 0, 0, 0, 0, time.UTC)
	now := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return due.Before(now)
}

// Rarity — редкость достижения.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Label возвращает название редкости для показа пользователю.
func (r Rarity) Label() string {
	switch r {
	case RarityRare:
		return "редкое"
	case RarityEpic:
		return "эпическое"
	case RarityLegendary:
		return "легендарное"
	default:
		return "обычное"
	}
}

// Achievement — достижение с прогрессом. После открытия не меняется.
type Achievement struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Total       int        `json:"total"`
	Progress    int        `json:"progress"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
	Icon        string     `json:"icon"`
	Rarity      Rarity     `json:"rarity"`
}

// PomodoroConfig — длительности фаз фокус-таймера в минутах.
type PomodoroConfig struct {
	WorkDuration       int  `json:"workDuration" validate:"min=1,max=180"`
	ShortBreakDuration int  `json:"shortBreakDuration" validate:"min=1,max=60"`
	LongBreakDuration  int  `json:"longBreakDuration" validate:"min=1,max=120"`
	AutoStartBreaks    bool `json:"autoStartBreaks"`
	AutoStartPomodoros bool `json:"autoStartPomodoros"`
	SoundEnabled       bool `json:"soundEnabled"`
}

// User — профиль и все счётчики прогресса.
type User struct {
	Name        string `json:"name"`
	Bio         string `json:"bio"`
	Level       int    `json:"level"`
	Points      int    `json:"points"`
	TotalPoints int    `json:"totalPoints"`
	Title       string `json:"title"`

	PomodoroSessions      int            `json:"pomodoroSessions"`
	PomodoroSessionsToday int            `json:"pomodoroSessionsToday"`
	LastSessionDate       string         `json:"lastSessionDate,omitempty"`
	PomodoroConfig        PomodoroConfig `json:"pomodoroConfig"`

	DailySpins     int     `json:"dailySpins"`
	LastSpinDate   string  `json:"lastSpinDate,omitempty"`
	TotalSpins     int     `json:"totalSpins"`
	BonusXPEarned  int     `json:"bonusXPEarned"`
	BestMultiplier float64 `json:"bestMultiplier"`

	JoinDate            time.Time `json:"joinDate"`
	OnboardingCompleted bool      `json:"onboardingCompleted"`

	// Extra хранит поля сохранённого профиля, неизвестные этой версии.
	// Они записываются обратно без изменений.
	Extra map[string]json.RawMessage `json:"-"`
}

// SessionsOn возвращает число фокус-сессий за день dayKey.
func (u User) SessionsOn(dayKey string) int {
	if u.LastSessionDate != dayKey {
		return 0
	}
	return u.PomodoroSessionsToday
}
