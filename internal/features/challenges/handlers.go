package challenges

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/aprohfy-bot/internal/notify"
	"serotonyl.ru/aprohfy-bot/internal/state"
)

// Handler показывает челленджи дня.
type Handler struct {
	state  *state.Container
	sender notify.Sender
}

// NewHandler создаёт обработчик челленджей.
func NewHandler(st *state.Container, sender notify.Sender) *Handler {
	return &Handler{state: st, sender: sender}
}

// HandleList обрабатывает !челленджи.
//
// Формат ответа:
//
//	⚡ Челленджи дня
//
//	🔥 Мастер рутины — 2/3 (66%)
//	   Отметь 3 привычки сегодня · 150 XP
func (h *Handler) HandleList(ctx context.Context, chatID int64) {
	var sb strings.Builder
	sb.WriteString("⚡ Челленджи дня\n")
	for _, c := range Evaluate(h.state.Snapshot(), h.state.Now()) {
		status := fmt.Sprintf("%d/%d (%d%%)", min(c.Progress, c.Total), c.Total, c.ProgressPercent())
		if c.Completed {
			status = "✅ выполнен"
		}
		sb.WriteString(fmt.Sprintf("\n%s %s — %s\n   %s · %d XP\n", c.Icon, c.Title, status, c.Description, c.RewardXP))
	}

	if err := h.sender.Send(ctx, chatID, sb.String()); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
