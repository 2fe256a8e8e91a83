package state

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/aprohfy-bot/internal/domain"
	"serotonyl.ru/aprohfy-bot/internal/features/achievements"
	"serotonyl.ru/aprohfy-bot/internal/store"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return now }

// countingStore считает записи и умеет отказывать при чтении или записи.
type countingStore struct {
	*store.Memory
	puts    map[string]int
	failGet error
	failPut error
	failKey string
}

func newCountingStore() *countingStore {
	return &countingStore{Memory: store.NewMemory(), puts: make(map[string]int)}
}

func (s *countingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.failGet != nil {
		return nil, s.failGet
	}
	return s.Memory.Get(ctx, key)
}

// PutMany отказывает целиком, если в пачке есть failKey, как откатившаяся транзакция.
func (s *countingStore) PutMany(ctx context.Context, docs map[string][]byte) error {
	if s.failPut != nil {
		return s.failPut
	}
	if _, ok := docs[s.failKey]; ok && s.failKey != "" {
		return errors.New("диск заполнен")
	}
	for key := range docs {
		s.puts[key]++
	}
	return s.Memory.PutMany(ctx, docs)
}

func seed(t *testing.T, kv store.Store, key, value string) {
	t.Helper()
	require.NoError(t, kv.PutMany(context.Background(), map[string][]byte{key: []byte(value)}))
}

func TestOpenEmptyStoreUsesDefaults(t *testing.T) {
	c, err := Open(context.Background(), store.NewMemory(), WithClock(fixedClock))
	require.NoError(t, err)

	snap := c.Snapshot()
	assert.Equal(t, DefaultName, snap.User.Name)
	assert.Equal(t, 1, snap.User.Level)
	assert.Equal(t, 25, snap.User.PomodoroConfig.WorkDuration)
	assert.Equal(t, now, snap.User.JoinDate)
	assert.Empty(t, snap.Habits)
	assert.Len(t, snap.Achievements, len(achievements.Catalog()))
}

func TestOpenMergesPartialProfile(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	seed(t, kv, store.KeyUser, `{"name":"Аня","totalPoints":120,"points":120,"level":2,"pomodoroConfig":{"workDuration":50},"theme":"dark"}`)

	c, err := Open(ctx, kv, WithClock(fixedClock))
	require.NoError(t, err)

	u := c.Snapshot().User
	assert.Equal(t, "Аня", u.Name)
	assert.Equal(t, 120, u.TotalPoints)
	assert.Equal(t, 50, u.PomodoroConfig.WorkDuration)
	assert.Equal(t, 5, u.PomodoroConfig.ShortBreakDuration, "недостающие поля берутся из значений по умолчанию")
	assert.Equal(t, 1.0, u.BestMultiplier)
	require.Contains(t, u.Extra, "theme")
	assert.JSONEq(t, `"dark"`, string(u.Extra["theme"]))
}

func TestUnknownProfileFieldsSurviveWrite(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	seed(t, kv, store.KeyUser, `{"name":"Аня","theme":"dark"}`)

	c, err := Open(ctx, kv, WithClock(fixedClock))
	require.NoError(t, err)

	_, err = c.Update(ctx, func(s *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
		s.User.Bio = "бегаю по утрам"
		return nil, nil
	})
	require.NoError(t, err)

	raw, err := kv.Get(ctx, store.KeyUser)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "dark", fields["theme"])
	assert.Equal(t, "бегаю по утрам", fields["bio"])
}

func TestOpenCorruptCollectionFallsBack(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	seed(t, kv, store.KeyHabits, `{not json`)
	seed(t, kv, store.KeyTasks, `[{"id":"t1","title":"Отчёт","points":10}]`)

	c, err := Open(ctx, kv, WithClock(fixedClock))
	require.NoError(t, err)

	snap := c.Snapshot()
	assert.Empty(t, snap.Habits)
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, "Отчёт", snap.Tasks[0].Title)
}

func TestOpenReadFailure(t *testing.T) {
	kv := newCountingStore()
	kv.failGet = errors.New("диск недоступен")

	_, err := Open(context.Background(), kv, WithClock(fixedClock))
	assert.Error(t, err)
}

func TestOpenAddsNewCatalogEntries(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	seed(t, kv, store.KeyAchievements, `[{"id":"step1","title":"Первый шаг","total":1,"progress":1,"unlocked":true}]`)

	c, err := Open(ctx, kv, WithClock(fixedClock))
	require.NoError(t, err)

	achs := c.Snapshot().Achievements
	assert.Len(t, achs, len(achievements.Catalog()))
	assert.Equal(t, "step1", achs[0].ID)
	assert.True(t, achs[0].Unlocked)
}

func TestUpdateWritesOnlyChangedCollections(t *testing.T) {
	ctx := context.Background()
	kv := newCountingStore()
	c, err := Open(ctx, kv, WithClock(fixedClock))
	require.NoError(t, err)

	_, err = c.Update(ctx, func(s *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
		s.User.Name = "Лёша"
		return nil, nil
	})
	require.NoError(t, err)
	for _, key := range store.Keys {
		assert.Equal(t, 1, kv.puts[key], key)
	}

	_, err = c.Update(ctx, func(s *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
		s.User.Bio = "новое"
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, kv.puts[store.KeyUser])
	assert.Equal(t, 1, kv.puts[store.KeyHabits])
	assert.Equal(t, 1, kv.puts[store.KeyAchievements])
}

func TestUpdateErrorLeavesSnapshot(t *testing.T) {
	ctx := context.Background()
	c, err := Open(ctx, store.NewMemory(), WithClock(fixedClock))
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = c.Update(ctx, func(s *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
		s.User.Name = "не сохранится"
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, DefaultName, c.Snapshot().User.Name)
}

func TestUpdateWriteFailureKeepsOldSnapshot(t *testing.T) {
	ctx := context.Background()
	kv := newCountingStore()
	c, err := Open(ctx, kv, WithClock(fixedClock))
	require.NoError(t, err)

	kv.failPut = errors.New("нет места")
	_, err = c.Update(ctx, func(s *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
		s.User.Name = "Лёша"
		return nil, nil
	})
	assert.Error(t, err)
	assert.Equal(t, DefaultName, c.Snapshot().User.Name)
}

func TestFailedWriteLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	kv := newCountingStore()
	c, err := Open(ctx, kv, WithClock(fixedClock))
	require.NoError(t, err)
	_, err = c.Update(ctx, func(s *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
		s.Habits = append(s.Habits, domain.Habit{ID: "h1", Name: "Бег"})
		return nil, nil
	})
	require.NoError(t, err)
	before := kv.Dump()

	earn := func(s *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
		s.User.TotalPoints += 50
		s.Habits[0].Streak = 1
		return nil, nil
	}
	kv.failKey = store.KeyHabits
	_, err = c.Update(ctx, earn)
	require.Error(t, err)
	assert.Equal(t, before, kv.Dump())
	assert.Equal(t, 0, c.Snapshot().User.TotalPoints)

	reopened, err := Open(ctx, kv, WithClock(fixedClock))
	require.NoError(t, err)
	assert.Equal(t, 0, reopened.Snapshot().User.TotalPoints)
	assert.Equal(t, 0, reopened.Snapshot().Habits[0].Streak)

	// После восстановления записи повтор сохраняет обе коллекции.
	kv.failKey = ""
	_, err = c.Update(ctx, earn)
	require.NoError(t, err)
	again, err := Open(ctx, kv, WithClock(fixedClock))
	require.NoError(t, err)
	assert.Equal(t, 50, again.Snapshot().User.TotalPoints)
	assert.Equal(t, 1, again.Snapshot().Habits[0].Streak)
}

func TestHooksRunAfterMutation(t *testing.T) {
	ctx := context.Background()
	var seen string
	hook := func(s *domain.Snapshot, _ time.Time) []domain.Event {
		seen = s.User.Name
		return []domain.Event{domain.Notify("hook", "")}
	}
	c, err := Open(ctx, store.NewMemory(), WithClock(fixedClock), WithHook(hook))
	require.NoError(t, err)

	events, err := c.Update(ctx, func(s *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
		s.User.Name = "Лёша"
		return []domain.Event{domain.Notify("first", "")}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Лёша", seen)
	require.Len(t, events, 2)
	assert.Equal(t, "first", events[0].Title)
	assert.Equal(t, "hook", events[1].Title)
}

func TestSnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	c, err := Open(ctx, store.NewMemory(), WithClock(fixedClock))
	require.NoError(t, err)

	snap := c.Snapshot()
	snap.User.Name = "изменено снаружи"
	snap.Achievements[0].Progress = 99

	fresh := c.Snapshot()
	assert.Equal(t, DefaultName, fresh.User.Name)
	assert.Equal(t, 0, fresh.Achievements[0].Progress)
}

func TestReopenRestoresState(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	c, err := Open(ctx, kv, WithClock(fixedClock))
	require.NoError(t, err)

	_, err = c.Update(ctx, func(s *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
		s.User.TotalPoints = 300
		s.Habits = append(s.Habits, domain.Habit{ID: "h1", Name: "Йога", Days: []domain.HabitDay{{Date: now, Completed: true}}})
		return nil, nil
	})
	require.NoError(t, err)

	again, err := Open(ctx, kv, WithClock(fixedClock))
	require.NoError(t, err)
	snap := again.Snapshot()
	assert.Equal(t, 300, snap.User.TotalPoints)
	require.Len(t, snap.Habits, 1)
	assert.Equal(t, "Йога", snap.Habits[0].Name)
	assert.True(t, snap.Habits[0].Days[0].Completed)
}

func TestResetAndExport(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	c, err := Open(ctx, kv, WithClock(fixedClock))
	require.NoError(t, err)

	_, err = c.Update(ctx, func(s *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
		s.User.TotalPoints = 500
		s.Tasks = append(s.Tasks, domain.Task{ID: "t1", Title: "Отчёт", Points: 10})
		return nil, nil
	})
	require.NoError(t, err)

	backup, err := c.Export()
	require.NoError(t, err)
	var docs map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(backup, &docs))
	for _, key := range store.Keys {
		assert.Contains(t, docs, key)
	}
	assert.Contains(t, string(docs[store.KeyTasks]), "Отчёт")

	require.NoError(t, c.Reset(ctx))
	snap := c.Snapshot()
	assert.Equal(t, 0, snap.User.TotalPoints)
	assert.Empty(t, snap.Tasks)

	raw, err := kv.Get(ctx, store.KeyTasks)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}
