// Package tasks — handlers.go обрабатывает команды миссий:
// !миссии, !миссия, !выполнить, !удалитьмиссию.
package tasks

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/domain"
	"serotonyl.ru/aprohfy-bot/internal/notify"
)

// CallbackDelete — префикс callback-данных подтверждения удаления.
const CallbackDelete = "task:del:"

// Handler обрабатывает команды миссий.
type Handler struct {
	service *Service
	sender  notify.Sender
}

// NewHandler создаёт обработчик миссий.
func NewHandler(service *Service, sender notify.Sender) *Handler {
	return &Handler{service: service, sender: sender}
}

// HandleList показывает миссии.
//
// Формат ответа:
//
//	🎯 Миссии
//
//	1. ⭐ Отчёт — 250 XP (×3) · до 19.10.2026
//	2. ⬜ Спорт — 50 XP · до 18.10.2026 ⏰
//	3. ✅ Купить молоко — 50 XP
func (h *Handler) HandleList(ctx context.Context, chatID int64) {
	list := h.service.List()
	if len(list) == 0 {
		h.sendMessage(ctx, chatID, "🎯 Миссий нет. Добавь: !миссия Отчёт [+100] [@завтра]")
		return
	}

	today := common.StartOfDay(h.service.state.Now())
	var sb strings.Builder
	sb.WriteString("🎯 Миссии\n\n")
	for i, t := range list {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, formatTask(t, today)))
	}
	sb.WriteString("\nВыполнить: !выполнить <номер>")
	h.sendMessage(ctx, chatID, sb.String())
}

// HandleAdd создаёт миссию: !миссия Название [+очки] [@дата].
func (h *Handler) HandleAdd(ctx context.Context, chatID int64, args []string) {
	title, points, due, err := parseAddArgs(args, h.service.state.Now())
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "task_create")
		return
	}

	task, events, err := h.service.Create(ctx, title, points, due)
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "task_create")
		return
	}
	text := fmt.Sprintf("🎯 «%s» — %d XP, срок %s", task.Title, task.Points, common.FormatDate(task.DueDate))
	h.reply(ctx, chatID, text, events)
}

// HandleToggle выполняет миссию или снимает отметку: !выполнить 2.
func (h *Handler) HandleToggle(ctx context.Context, chatID int64, args []string) {
	task, ok := h.pick(ctx, chatID, args, "Использование: !выполнить <номер>", "task_toggle")
	if !ok {
		return
	}

	updated, events, err := h.service.Toggle(ctx, task.ID)
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "task_toggle")
		return
	}

	text := fmt.Sprintf("↩️ Миссия «%s» снова в работе", updated.Title)
	if updated.Completed {
		text = ""
	}
	h.reply(ctx, chatID, text, events)
}

// HandleDelete спрашивает подтверждение удаления: !удалитьмиссию 2.
func (h *Handler) HandleDelete(ctx context.Context, chatID int64, args []string) {
	task, ok := h.pick(ctx, chatID, args, "Использование: !удалитьмиссию <номер>", "task_delete")
	if !ok {
		return
	}

	err := h.sender.SendWithButtons(ctx, chatID,
		fmt.Sprintf("🗑 Удалить миссию «%s» навсегда?", task.Title),
		[][]notify.Button{{
			{Text: "Удалить", Data: CallbackDelete + task.ID},
			{Text: "Отмена", Data: "cancel"},
		}})
	if err != nil {
		log.WithError(err).Error("Ошибка отправки подтверждения")
	}
}

// HandleDeleteConfirmed удаляет миссию после подтверждения.
func (h *Handler) HandleDeleteConfirmed(ctx context.Context, chatID int64, taskID string) {
	task, err := h.service.Delete(ctx, taskID)
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "task_delete")
		return
	}
	h.sendMessage(ctx, chatID, fmt.Sprintf("🗑 Миссия «%s» удалена", task.Title))
}

// pick находит миссию по номеру из списка !миссии.
func (h *Handler) pick(ctx context.Context, chatID int64, args []string, usage, action string) (domain.Task, bool) {
	if len(args) == 0 {
		h.sendMessage(ctx, chatID, usage)
		return domain.Task{}, false
	}
	list := h.service.List()
	idx, err := common.ParseIndex(args[0], len(list))
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, action)
		return domain.Task{}, false
	}
	return list[idx], true
}

// parseAddArgs разбирает «Название +очки @дата». Очки и дата необязательны.
func parseAddArgs(args []string, now time.Time) (title string, points int, due time.Time, err error) {
	var words []string
	for _, a := range args {
		switch {
		case len(a) > 1 && strings.HasPrefix(a, "+"):
			p, convErr := strconv.Atoi(a[1:])
			if convErr != nil || p <= 0 {
				return "", 0, time.Time{}, common.ErrInvalidAmount
			}
			points = p
		case len(a) > 1 && strings.HasPrefix(a, "@"):
			due, err = common.ParseDay(a[1:], now)
			if err != nil {
				return "", 0, time.Time{}, err
			}
		default:
			words = append(words, a)
		}
	}
	return strings.Join(words, " "), points, due, nil
}

func formatTask(t domain.Task, today time.Time) string {
	mark := "⬜"
	switch {
	case t.Completed:
		mark = "✅"
	case t.IsHighlighted:
		mark = "⭐"
	}

	line := fmt.Sprintf("%s %s — %d XP", mark, t.Title, t.EffectiveReward())
	if t.Multiplier != nil && !t.Completed {
		line += fmt.Sprintf(" (×%g)", *t.Multiplier)
	}
	if !t.Completed {
		line += " · до " + common.FormatDate(t.DueDate)
		if IsOverdue(t, today) {
			line += " ⏰"
		}
	}
	return line
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string, events []domain.Event) {
	if err := notify.Reply(ctx, h.sender, chatID, text, events); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}

func (h *Handler) sendMessage(ctx context.Context, chatID int64, text string) {
	if err := h.sender.Send(ctx, chatID, text); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
