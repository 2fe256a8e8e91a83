package fortune

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/domain"
)

// seqSource отдаёт заранее заданные значения по кругу.
type seqSource struct {
	values []int
	i      int
}

func (s *seqSource) IntN(n int) int {
	v := s.values[s.i%len(s.values)] % n
	s.i++
	return v
}

func TestClassify(t *testing.T) {
	cases := []struct {
		reels Reels
		want  Tier
	}{
		{Reels{"💎", "💎", "💎"}, TierJackpot},
		{Reels{"💎", "💎", "🔥"}, TierPair},
		{Reels{"🔥", "💎", "💎"}, TierPair},
		{Reels{"💎", "🔥", "💎"}, TierPair},
		{Reels{"💎", "🔥", "⭐"}, TierDistinct},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.reels), tc.reels)
	}
}

func TestTierFrequencies(t *testing.T) {
	src := rand.New(rand.NewPCG(42, 2026))
	const draws = 10000

	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		counts[Classify(Draw(src)).Name]++
	}

	// 8 символов, 3 барабана: P(три) = 8/512, P(пара) = 168/512, P(разные) = 336/512.
	assert.InDelta(t, draws*8.0/512, counts[TierJackpot.Name], 65)
	assert.InDelta(t, draws*168.0/512, counts[TierPair.Name], 250)
	assert.InDelta(t, draws*336.0/512, counts[TierDistinct.Name], 250)
	assert.Equal(t, draws, counts[TierJackpot.Name]+counts[TierPair.Name]+counts[TierDistinct.Name])
}

func TestDrawCoversAllSymbols(t *testing.T) {
	src := rand.New(rand.NewPCG(7, 7))
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		for _, s := range Draw(src) {
			seen[s] = true
		}
	}
	assert.Len(t, seen, len(Symbols))
}

func snapshotWithTasks(tasks ...domain.Task) domain.Snapshot {
	return domain.Snapshot{
		User:  domain.User{BestMultiplier: 1},
		Tasks: tasks,
	}
}

func TestResolvePreconditions(t *testing.T) {
	src := &seqSource{values: []int{0}}

	_, _, _, err := Resolve(snapshotWithTasks(), 3, src)
	assert.ErrorIs(t, err, common.ErrNoPendingTasks)

	done := snapshotWithTasks(domain.Task{ID: "a", Completed: true})
	_, _, _, err = Resolve(done, 3, src)
	assert.ErrorIs(t, err, common.ErrNoPendingTasks)

	s := snapshotWithTasks(domain.Task{ID: "a"})
	s.User.DailySpins = 3
	_, _, _, err = Resolve(s, 3, src)
	assert.ErrorIs(t, err, common.ErrNoSpinsLeft)
}

func TestResolveJackpot(t *testing.T) {
	s := snapshotWithTasks(
		domain.Task{ID: "done", Title: "Готово", Completed: true},
		domain.Task{ID: "a", Title: "Отчёт", Points: 50},
		domain.Task{ID: "b", Title: "Спорт", Points: 30},
	)
	// первая выборка — миссия (индекс 1 среди незавершённых), затем три барабана
	src := &seqSource{values: []int{1, 4, 4, 4}}

	u, res, events, err := Resolve(s, 3, src)
	require.NoError(t, err)

	assert.Equal(t, "b", res.TaskID)
	assert.Equal(t, Reels{"🎯", "🎯", "🎯"}, res.Reels)
	assert.True(t, res.IsJackpot())
	assert.Equal(t, 1, u.DailySpins)
	assert.Equal(t, 1, u.TotalSpins)
	assert.Equal(t, 200, u.BonusXPEarned)
	assert.Equal(t, 5.0, u.BestMultiplier)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventJackpot, events[0].Kind)

	assert.Nil(t, s.Tasks[2].Multiplier, "миссии не меняются до принятия")
}

func TestResolveKeepsBestMultiplier(t *testing.T) {
	s := snapshotWithTasks(domain.Task{ID: "a", Points: 10})
	s.User.BestMultiplier = 5
	s.User.BonusXPEarned = 100

	u, res, events, err := Resolve(s, 3, &seqSource{values: []int{0, 0, 1, 2}})
	require.NoError(t, err)
	assert.Equal(t, TierDistinct, res.Tier)
	assert.Equal(t, 5.0, u.BestMultiplier)
	assert.Equal(t, 150, u.BonusXPEarned)
	assert.Empty(t, events)
}

func TestAcceptOverwritesBoost(t *testing.T) {
	mult, bonus := 1.5, 50
	tasks := []domain.Task{
		{ID: "a", Title: "Отчёт", Points: 50, Multiplier: &mult, BonusXP: &bonus},
		{ID: "b", Title: "Спорт", Points: 30},
	}
	res := Result{TaskID: "a", TaskTitle: "Отчёт", Tier: TierPair}

	out, events, err := Accept(tasks, res)
	require.NoError(t, err)
	require.NotNil(t, out[0].Multiplier)
	assert.Equal(t, 3.0, *out[0].Multiplier)
	assert.Equal(t, 100, *out[0].BonusXP)
	assert.True(t, out[0].IsHighlighted)
	assert.Equal(t, 250, out[0].EffectiveReward())
	assert.False(t, out[1].IsHighlighted)
	require.Len(t, events, 1)

	_, _, err = Accept(tasks, Result{TaskID: "missing", Tier: TierPair})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestResetDaily(t *testing.T) {
	today := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	u := domain.User{DailySpins: 3, LastSpinDate: "2026-03-09"}

	u, changed := ResetDaily(u, today)
	assert.True(t, changed)
	assert.Equal(t, 0, u.DailySpins)
	assert.Equal(t, "2026-03-10", u.LastSpinDate)

	u.DailySpins = 2
	u, changed = ResetDaily(u, today.Add(10*time.Hour))
	assert.False(t, changed)
	assert.Equal(t, 2, u.DailySpins)
}
