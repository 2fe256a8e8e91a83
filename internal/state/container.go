// Package state хранит единственный снимок состояния трекера и сериализует изменения.
// container.go: загрузка из хранилища с подстановкой значений по умолчанию,
// изменение снимка под мьютексом и запись изменившихся коллекций.
package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/domain"
	"serotonyl.ru/aprohfy-bot/internal/store"
)

// Mutation меняет копию снимка. Ошибка отменяет изменение целиком.
type Mutation func(s *domain.Snapshot, now time.Time) ([]domain.Event, error)

// Hook выполняется после каждой успешной мутации до записи в хранилище.
// Через него подключается проверка достижений.
type Hook func(s *domain.Snapshot, now time.Time) []domain.Event

// Container — владелец снимка состояния.
type Container struct {
	mu    sync.Mutex
	kv    store.Store
	snap  domain.Snapshot
	saved map[string][]byte // последние записанные документы по ключам
	clock func() time.Time
	hooks []Hook
}

// Option настраивает контейнер.
type Option func(*Container)

// WithClock подменяет источник текущего времени.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) { c.clock = clock }
}

// WithHook добавляет хук после мутаций.
func WithHook(h Hook) Option {
	return func(c *Container) { c.hooks = append(c.hooks, h) }
}

// Open загружает состояние из хранилища.
// Отсутствующие и повреждённые коллекции заменяются значениями по умолчанию,
// повреждения только логируются. Ошибка возвращается лишь при сбое чтения.
func Open(ctx context.Context, kv store.Store, opts ...Option) (*Container, error) {
	c := &Container{
		kv:    kv,
		saved: make(map[string][]byte),
		clock: common.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	snap, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	c.snap = snap
	return c, nil
}

func (c *Container) load(ctx context.Context) (domain.Snapshot, error) {
	snap := DefaultSnapshot(c.clock())

	for _, key := range store.Keys {
		raw, err := c.kv.Get(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("чтение %q: %w", key, err)
		}

		if err := decodeInto(&snap, key, raw); err != nil {
			log.WithError(err).WithField("key", key).Warn("Повреждённые данные, используем значения по умолчанию")
			continue
		}
		c.saved[key] = raw
	}

	snap.Achievements = mergeCatalog(snap.Achievements)
	return snap, nil
}

func decodeInto(snap *domain.Snapshot, key string, raw []byte) error {
	var err error
	switch key {
	case store.KeyUser:
		var u domain.User
		if u, err = decodeUser(raw, snap.User); err == nil {
			snap.User = u
		}
	case store.KeyHabits:
		var v []domain.Habit
		if v, err = decodeList[domain.Habit](raw); err == nil {
			snap.Habits = v
		}
	case store.KeyTasks:
		var v []domain.Task
		if v, err = decodeList[domain.Task](raw); err == nil {
			snap.Tasks = v
		}
	case store.KeyTransactions:
		var v []domain.Transaction
		if v, err = decodeList[domain.Transaction](raw); err == nil {
			snap.Transactions = v
		}
	case store.KeyBills:
		var v []domain.Bill
		if v, err = decodeList[domain.Bill](raw); err == nil {
			snap.Bills = v
		}
	case store.KeyAchievements:
		var v []domain.Achievement
		if v, err = decodeList[domain.Achievement](raw); err == nil {
			snap.Achievements = v
		}
	}
	return err
}

// Snapshot возвращает копию текущего состояния.
func (c *Container) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.Clone()
}

// Now возвращает текущее время по часам контейнера.
func (c *Container) Now() time.Time {
	return c.clock()
}

// Update применяет мутацию к копии снимка, прогоняет хуки и записывает
// изменившиеся коллекции. Снимок заменяется только после успешной записи.
func (c *Container) Update(ctx context.Context, fn Mutation) ([]domain.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	next := c.snap.Clone()

	events, err := fn(&next, now)
	if err != nil {
		return nil, err
	}
	for _, h := range c.hooks {
		events = append(events, h(&next, now)...)
	}

	if err := c.flush(ctx, next, false); err != nil {
		return nil, err
	}
	c.snap = next
	return events, nil
}

// flush записывает одной пачкой только те коллекции, чей JSON изменился.
// При force пишутся все коллекции. saved обновляется только после успешной записи.
func (c *Container) flush(ctx context.Context, s domain.Snapshot, force bool) error {
	docs, err := encodeSnapshot(s)
	if err != nil {
		return fmt.Errorf("сериализация состояния: %w", err)
	}

	changed := make(map[string][]byte, len(docs))
	for _, key := range store.Keys {
		doc := docs[key]
		if prev, ok := c.saved[key]; ok && !force && bytes.Equal(prev, doc) {
			continue
		}
		changed[key] = doc
	}
	if len(changed) == 0 {
		return nil
	}

	if err := c.kv.PutMany(ctx, changed); err != nil {
		return fmt.Errorf("запись состояния: %w", err)
	}
	for key, doc := range changed {
		c.saved[key] = doc
		log.WithFields(log.Fields{"key": key, "bytes": len(doc)}).Debug("Коллекция сохранена")
	}
	return nil
}

// Reset стирает все данные и возвращает трекер к состоянию первого запуска.
// Все коллекции перезаписываются значениями по умолчанию одной пачкой.
func (c *Container) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	fresh := DefaultSnapshot(c.clock())
	if err := c.flush(ctx, fresh, true); err != nil {
		return fmt.Errorf("сброс хранилища: %w", err)
	}
	c.snap = fresh
	log.Warn("Все данные трекера сброшены")
	return nil
}

// Export возвращает резервную копию: JSON-объект с документом на каждый ключ.
func (c *Container) Export() ([]byte, error) {
	c.mu.Lock()
	docs, err := encodeSnapshot(c.snap)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	backup := make(map[string]json.RawMessage, len(docs))
	for k, v := range docs {
		backup[k] = v
	}
	return json.MarshalIndent(backup, "", "  ")
}
