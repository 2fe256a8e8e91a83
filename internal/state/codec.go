// Package state — codec.go переводит коллекции снимка в JSON-документы хранилища и обратно.
package state

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"serotonyl.ru/aprohfy-bot/internal/domain"
	"serotonyl.ru/aprohfy-bot/internal/features/achievements"
	"serotonyl.ru/aprohfy-bot/internal/features/progression"
	"serotonyl.ru/aprohfy-bot/internal/store"
)

// DefaultName — имя пользователя до переименования.
const DefaultName = "Герой"

// DefaultUser возвращает профиль нового пользователя.
func DefaultUser(now time.Time) domain.User {
	return domain.User{
		Name:           DefaultName,
		Level:          1,
		Title:          progression.TitleFor(1),
		BestMultiplier: 1,
		PomodoroConfig: domain.PomodoroConfig{
			WorkDuration:       25,
			ShortBreakDuration: 5,
			LongBreakDuration:  15,
			SoundEnabled:       true,
		},
		JoinDate: now,
	}
}

// DefaultSnapshot — состояние при первом запуске.
func DefaultSnapshot(now time.Time) domain.Snapshot {
	return domain.Snapshot{
		User:         DefaultUser(now),
		Habits:       []domain.Habit{},
		Tasks:        []domain.Task{},
		Transactions: []domain.Transaction{},
		Bills:        []domain.Bill{},
		Achievements: achievements.Catalog(),
	}
}

var (
	knownUserFieldsOnce sync.Once
	knownUserFields     map[string]struct{}
)

// userFields возвращает JSON-имена полей, которые знает domain.User.
func userFields() map[string]struct{} {
	knownUserFieldsOnce.Do(func() {
		raw, _ := json.Marshal(domain.User{LastSessionDate: "-", LastSpinDate: "-"})
		var m map[string]json.RawMessage
		_ = json.Unmarshal(raw, &m)
		knownUserFields = make(map[string]struct{}, len(m))
		for k := range m {
			knownUserFields[k] = struct{}{}
		}
	})
	return knownUserFields
}

// decodeUser накладывает сохранённый профиль на defaults.
// Отсутствующие поля берутся из defaults (включая вложенный pomodoroConfig),
// неизвестные поля сохраняются в Extra.
func decodeUser(raw []byte, defaults domain.User) (domain.User, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return defaults, fmt.Errorf("профиль: %w", err)
	}

	u := defaults
	if err := json.Unmarshal(raw, &u); err != nil {
		return defaults, fmt.Errorf("профиль: %w", err)
	}

	known := userFields()
	for k, v := range fields {
		if _, ok := known[k]; ok {
			continue
		}
		if u.Extra == nil {
			u.Extra = make(map[string]json.RawMessage)
		}
		u.Extra[k] = v
	}
	return u, nil
}

// encodeUser сериализует профиль вместе с неизвестными полями.
func encodeUser(u domain.User) ([]byte, error) {
	raw, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	if len(u.Extra) == 0 {
		return raw, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for k, v := range u.Extra {
		if _, ok := fields[k]; !ok {
			fields[k] = v
		}
	}
	return json.Marshal(fields)
}

func decodeList[T any](raw []byte) ([]T, error) {
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func encodeList[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

// mergeCatalog дописывает в сохранённый список достижения,
// которые появились в каталоге позже.
func mergeCatalog(saved []domain.Achievement) []domain.Achievement {
	have := make(map[string]struct{}, len(saved))
	for _, a := range saved {
		have[a.ID] = struct{}{}
	}
	for _, a := range achievements.Catalog() {
		if _, ok := have[a.ID]; !ok {
			saved = append(saved, a)
		}
	}
	return saved
}

// encodeSnapshot сериализует все коллекции по ключам хранилища.
func encodeSnapshot(s domain.Snapshot) (map[string][]byte, error) {
	out := make(map[string][]byte, 6)
	var err error

	if out[store.KeyUser], err = encodeUser(s.User); err != nil {
		return nil, err
	}
	if out[store.KeyHabits], err = encodeList(s.Habits); err != nil {
		return nil, err
	}
	if out[store.KeyTasks], err = encodeList(s.Tasks); err != nil {
		return nil, err
	}
	if out[store.KeyTransactions], err = encodeList(s.Transactions); err != nil {
		return nil, err
	}
	if out[store.KeyBills], err = encodeList(s.Bills); err != nil {
		return nil, err
	}
	if out[store.KeyAchievements], err = encodeList(s.Achievements); err != nil {
		return nil, err
	}
	return out, nil
}
