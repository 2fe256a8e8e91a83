// Package fortune — handlers.go обрабатывает команды !колесо и !статколесо
// и кнопки «Принять» / «Сбросить» под результатом.
package fortune

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/domain"
	"serotonyl.ru/aprohfy-bot/internal/notify"
)

// Callback-данные кнопок результата.
const (
	CallbackAccept  = "spin:accept"
	CallbackDiscard = "spin:discard"
)

// Handler обрабатывает команды колеса.
type Handler struct {
	wheel  *Wheel
	sender notify.Sender
}

// NewHandler создаёт обработчик колеса.
func NewHandler(wheel *Wheel, sender notify.Sender) *Handler {
	return &Handler{wheel: wheel, sender: sender}
}

// HandleSpin запускает колесо. Результат приходит отдельным сообщением.
//
// Формат результата:
//
//	🎰 [ 💎 | 💎 | 🔥 ]
//	Пара! Миссия «Отчёт»: ×3 и +100 XP
func (h *Handler) HandleSpin(ctx context.Context, chatID int64) {
	err := h.wheel.Spin(ctx, func(res Result, events []domain.Event, err error) {
		if err != nil {
			h.replyError(context.Background(), chatID, err)
			return
		}
		h.sendResult(context.Background(), chatID, res, events)
	})
	if err != nil {
		h.replyError(ctx, chatID, err)
		return
	}
	h.sendMessage(ctx, chatID, "🎡 Колесо крутится...")
}

// HandleAccept применяет результат к миссии.
func (h *Handler) HandleAccept(ctx context.Context, chatID int64) {
	_, events, err := h.wheel.Accept(ctx)
	if err != nil {
		h.replyError(ctx, chatID, err)
		return
	}
	if err := notify.Reply(ctx, h.sender, chatID, "", events); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}

// HandleDiscard отказывается от результата.
func (h *Handler) HandleDiscard(ctx context.Context, chatID int64) {
	if err := h.wheel.Discard(); err != nil {
		h.replyError(ctx, chatID, err)
		return
	}
	h.sendMessage(ctx, chatID, "🙅 Результат сброшен")
}

// HandleStats показывает статистику колеса.
//
// Формат ответа:
//
//	🎡 Колесо фортуны
//	Всего вращений: 12
//	Бонусного опыта: 1 250 XP
//	Лучший множитель: ×5
//	Осталось сегодня: 2 вращения
func (h *Handler) HandleStats(ctx context.Context, chatID int64) {
	st := h.wheel.Stats()
	text := fmt.Sprintf(
		"🎡 Колесо фортуны\n\n"+
			"Всего вращений: %s\n"+
			"Бонусного опыта: %s XP\n"+
			"Лучший множитель: ×%g\n"+
			"Осталось сегодня: %d %s",
		common.FormatNumber(int64(st.TotalSpins)),
		common.FormatNumber(int64(st.BonusXPEarned)),
		st.BestMultiplier,
		st.SpinsLeft, common.PluralizeSpins(st.SpinsLeft),
	)
	h.sendMessage(ctx, chatID, text)
}

func (h *Handler) sendResult(ctx context.Context, chatID int64, res Result, events []domain.Event) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎰 [ %s ]\n", strings.Join(res.Reels[:], " | ")))
	sb.WriteString(fmt.Sprintf("%s Миссия «%s»: ×%g и %s",
		tierLabel(res.Tier), res.TaskTitle, res.Tier.Multiplier, common.FormatXP(res.Tier.BonusXP)))
	if len(events) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(notify.FormatEvents(events))
	}

	err := h.sender.SendWithButtons(ctx, chatID, sb.String(), [][]notify.Button{{
		{Text: "✅ Принять", Data: CallbackAccept},
		{Text: "🙅 Сбросить", Data: CallbackDiscard},
	}})
	if err != nil {
		log.WithError(err).Error("Ошибка отправки результата колеса")
	}
}

// replyError молча игнорирует исчерпанные вращения и повторный запуск.
func (h *Handler) replyError(ctx context.Context, chatID int64, err error) {
	if errors.Is(err, common.ErrNoSpinsLeft) || errors.Is(err, common.ErrAlreadySpinning) {
		log.WithError(err).Debug("Вращение пропущено")
		return
	}
	if errors.Is(err, common.ErrNoPendingTasks) {
		h.sendMessage(ctx, chatID, notify.FormatEvent(domain.Warn("Нет миссий",
			"Добавь незавершённые миссии, чтобы крутить колесо")))
		return
	}
	notify.ReplyError(ctx, h.sender, chatID, err, "fortune")
}

func tierLabel(t Tier) string {
	switch t.Name {
	case TierJackpot.Name:
		return "🎉 Три в ряд!"
	case TierPair.Name:
		return "✨ Пара!"
	default:
		return "🙂 Все разные."
	}
}

func (h *Handler) sendMessage(ctx context.Context, chatID int64, text string) {
	if err := h.sender.Send(ctx, chatID, text); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
