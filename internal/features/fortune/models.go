// Package fortune реализует колесо фортуны: до трёх вращений в день,
// каждое усиливает одну случайную незавершённую миссию.
// models.go описывает символы, уровни выигрыша и результат вращения.
package fortune

// Symbols — алфавит барабанов. Все символы равновероятны.
var Symbols = [8]string{"💎", "⚡", "🔥", "⭐", "🎯", "💰", "🏆", "🎁"}

// ReelCount — число барабанов.
const ReelCount = 3

// Tier — уровень выигрыша.
type Tier struct {
	Name       string
	Multiplier float64
	BonusXP    int
}

// Уровни выигрыша в порядке проверки.
var (
	TierJackpot  = Tier{Name: "jackpot", Multiplier: 5, BonusXP: 200}  // три одинаковых
	TierPair     = Tier{Name: "pair", Multiplier: 3, BonusXP: 100}     // любая пара
	TierDistinct = Tier{Name: "distinct", Multiplier: 1.5, BonusXP: 50} // все разные
)

// Reels — выпавшие символы.
type Reels [ReelCount]string

// Result — результат вращения, ожидающий решения пользователя.
type Result struct {
	TaskID    string
	TaskTitle string
	Reels     Reels
	Tier      Tier
}

// IsJackpot сообщает, выпали ли три одинаковых символа.
func (r Result) IsJackpot() bool {
	return r.Tier.Name == TierJackpot.Name
}

// Phase — состояние колеса.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSpinning
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseSpinning:
		return "spinning"
	case PhaseResolved:
		return "resolved"
	default:
		return "idle"
	}
}

// Stats — статистика колеса для /wheelstats.
type Stats struct {
	TotalSpins     int
	BonusXPEarned  int
	BestMultiplier float64
	SpinsLeft      int
}
