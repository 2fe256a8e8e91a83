// Package store описывает key-value хранилище, в котором лежит состояние трекера.
// Каждая коллекция (профиль, привычки, миссии, ...) — один JSON-документ под своим ключом.
// Реализации: db/sqlite (по умолчанию), db/postgres и Memory для тестов.
package store

import (
	"bytes"
	"context"
	"errors"
	"sync"
)

// Ключи коллекций.
const (
	KeyUser         = "user"
	KeyHabits       = "habits"
	KeyTasks        = "tasks"
	KeyTransactions = "transactions"
	KeyBills        = "bills"
	KeyAchievements = "achievements"
)

// Keys — все ключи в порядке записи.
var Keys = []string{KeyUser, KeyHabits, KeyTasks, KeyTransactions, KeyBills, KeyAchievements}

// ErrNotFound — ключа нет в хранилище.
var ErrNotFound = errors.New("ключ не найден")

// Store — минимальный контракт хранилища.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// PutMany записывает все документы разом: либо все, либо ни одного.
	PutMany(ctx context.Context, docs map[string][]byte) error
	Close() error
}

// Memory — хранилище в памяти процесса.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory создаёт пустое хранилище в памяти.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (m *Memory) PutMany(_ context.Context, docs map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, value := range docs {
		m.data[key] = bytes.Clone(value)
	}
	return nil
}

func (m *Memory) Close() error { return nil }

// Dump возвращает копию всех ключей.
func (m *Memory) Dump() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]byte, len(m.data))
	for key, value := range m.data {
		out[key] = bytes.Clone(value)
	}
	return out
}
