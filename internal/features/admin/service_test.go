package admin

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/config"
	"serotonyl.ru/aprohfy-bot/internal/domain"
	"serotonyl.ru/aprohfy-bot/internal/notify"
	"serotonyl.ru/aprohfy-bot/internal/state"
	"serotonyl.ru/aprohfy-bot/internal/store"
)

const password = "correct horse"

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// Лёгкие параметры, чтобы тесты не тратили 64 МБ на хеш.
func testHash(pw string) string {
	return encodeArgon2id(pw, []byte("0123456789abcdef"), 1024, 1, 1)
}

func newTestService(t *testing.T, hash string) (*Service, *time.Time) {
	t.Helper()
	st, err := state.Open(context.Background(), store.NewMemory(),
		state.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	_, err = st.Update(context.Background(), func(s *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
		s.Habits = append(s.Habits, domain.Habit{ID: "h1", Name: "Бег"})
		s.User.TotalPoints = 300
		return nil, nil
	})
	require.NoError(t, err)

	clock := now
	svc := NewService(st, &config.Config{WipePasswordHash: hash})
	svc.clock = func() time.Time { return clock }
	return svc, &clock
}

func TestVerifyArgon2id(t *testing.T) {
	hash := testHash(password)
	assert.True(t, verifyArgon2id(password, hash))
	assert.False(t, verifyArgon2id("wrong", hash))
	assert.False(t, verifyArgon2id(password, "not-a-hash"))
	assert.False(t, verifyArgon2id(password, "$argon2id$v=19$m=x$salt$hash"))
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword(password)
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$v=19$m=65536,t=3,p=2$")
	assert.True(t, verifyArgon2id(password, hash))
}

func TestWipeDisabledWithoutHash(t *testing.T) {
	svc, _ := newTestService(t, "")
	assert.ErrorIs(t, svc.Wipe(context.Background(), password), common.ErrWipeDisabled)
	assert.ErrorIs(t, svc.BeginWipe(), common.ErrWipeDisabled)
	assert.Len(t, svc.state.Snapshot().Habits, 1)
}

func TestAttemptLimit(t *testing.T) {
	svc, clock := newTestService(t, testHash(password))

	for i := 0; i < MaxAttempts; i++ {
		assert.ErrorIs(t, svc.VerifyPassword("wrong"), common.ErrWrongPassword)
	}
	assert.ErrorIs(t, svc.VerifyPassword(password), common.ErrTooManyAttempts,
		"после трёх ошибок блокируется даже верный пароль")

	*clock = clock.Add(AttemptWindow + time.Minute)
	assert.NoError(t, svc.VerifyPassword(password))
}

func TestWipeResetsState(t *testing.T) {
	svc, _ := newTestService(t, testHash(password))

	require.ErrorIs(t, svc.Wipe(context.Background(), "wrong"), common.ErrWrongPassword)
	assert.Len(t, svc.state.Snapshot().Habits, 1)

	require.NoError(t, svc.Wipe(context.Background(), password))
	snap := svc.state.Snapshot()
	assert.Empty(t, snap.Habits)
	assert.Equal(t, 0, snap.User.TotalPoints)
	assert.Equal(t, 1, snap.User.Level)
	assert.NotEmpty(t, snap.Achievements, "каталог достижений восстанавливается")
}

func TestExportContainsCollections(t *testing.T) {
	svc, _ := newTestService(t, "")

	data, err := svc.Export()
	require.NoError(t, err)

	var backup map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &backup))
	for _, key := range []string{"user", "habits", "tasks", "transactions", "bills", "achievements"} {
		assert.Contains(t, backup, key)
	}
	assert.Contains(t, string(backup["habits"]), "Бег")
}

func TestDialogExpires(t *testing.T) {
	svc, clock := newTestService(t, testHash(password))

	require.NoError(t, svc.BeginWipe())
	assert.Equal(t, StateAwaitingPassword, svc.GetState())

	*clock = clock.Add(StateTTL + time.Second)
	assert.Equal(t, StateNone, svc.GetState())
}

func TestWipeDialog(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, testHash(password))
	rec := &notify.Recorder{}
	h := NewHandler(svc, rec)

	assert.False(t, h.HandleMessage(ctx, 1, password), "без диалога сообщение не перехватывается")

	h.HandleWipe(ctx, 1)
	require.Len(t, rec.Last().Buttons, 1)
	assert.Equal(t, CallbackWipe, rec.Last().Buttons[0][0].Data)

	h.HandleWipeConfirmed(ctx, 1)
	assert.True(t, h.HandleMessage(ctx, 1, "wrong"))
	assert.Contains(t, rec.Last().Text, common.ErrWrongPassword.Error())
	assert.Len(t, svc.state.Snapshot().Habits, 1)

	h.HandleWipeConfirmed(ctx, 1)
	assert.True(t, h.HandleMessage(ctx, 1, " "+password+" "))
	assert.Contains(t, rec.Last().Text, "Данные удалены")
	assert.Empty(t, svc.state.Snapshot().Habits)
}

func TestHandleExportSendsDocument(t *testing.T) {
	svc, _ := newTestService(t, "")
	rec := &notify.Recorder{}

	NewHandler(svc, rec).HandleExport(context.Background(), 1)
	require.Equal(t, 1, rec.Count())
	assert.Contains(t, rec.Last().Text, "aprohfy-2026-03-10.json")
	assert.Contains(t, string(rec.Last().Document), "Бег")
}
