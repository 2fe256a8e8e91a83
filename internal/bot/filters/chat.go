// Package filters решает, обрабатывать ли входящее обновление.
// Трекер личный: бот отвечает только владельцу и только в личном чате.
package filters

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/aprohfy-bot/internal/notify"
)

// Incoming — поля входящего обновления, нужные фильтру.
type Incoming struct {
	ChatID  int64
	UserID  int64
	Private bool
}

// OwnerFilter пропускает только владельца.
type OwnerFilter struct {
	ownerID int64
	sender  notify.Sender

	mu     sync.Mutex
	warned map[int64]bool
}

// NewOwnerFilter создаёт фильтр для владельца ownerID.
func NewOwnerFilter(ownerID int64, sender notify.Sender) *OwnerFilter {
	return &OwnerFilter{ownerID: ownerID, sender: sender, warned: make(map[int64]bool)}
}

// CheckAccess возвращает true, если обновление от владельца в личке.
// Чужим пользователям в личке один раз отвечаем отказом, остальные чаты молча игнорируем.
func (f *OwnerFilter) CheckAccess(ctx context.Context, in Incoming) bool {
	logger := log.WithFields(log.Fields{
		"component": "OwnerFilter",
		"chat_id":   in.ChatID,
		"user_id":   in.UserID,
	})

	if f.ownerID == 0 {
		logger.Error("ownerID is 0 (config bug)")
		return false
	}
	if in.UserID == f.ownerID && in.Private {
		return true
	}
	if !in.Private {
		logger.Debug("deny: not a private chat")
		return false
	}

	f.mu.Lock()
	first := !f.warned[in.UserID]
	f.warned[in.UserID] = true
	f.mu.Unlock()

	logger.Info("deny: not the owner")
	if first {
		if err := f.sender.Send(ctx, in.ChatID, "🔒 Это личный трекер, он отвечает только владельцу"); err != nil {
			logger.WithError(err).Warn("failed to send deny message")
		}
	}
	return false
}
