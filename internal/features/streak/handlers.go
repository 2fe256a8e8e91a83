// Package streak — handlers.go обрабатывает команды привычек:
// !привычки (список), !привычка (создать), !отметить (день), !удалитьпривычку.
package streak

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/domain"
	"serotonyl.ru/aprohfy-bot/internal/notify"
)

// CallbackDelete — префикс callback-данных подтверждения удаления.
const CallbackDelete = "habit:del:"

// Handler обрабатывает команды привычек.
type Handler struct {
	service *Service
	sender  notify.Sender
}

// NewHandler создаёт обработчик привычек.
func NewHandler(service *Service, sender notify.Sender) *Handler {
	return &Handler{service: service, sender: sender}
}

// HandleList показывает привычки со стриком и последней неделей.
//
// Формат ответа:
//
//	🔥 Твои привычки
//
//	1. Чтение [Учёба] — 🔥 8 дней
//	   ✅✅✅✅✅✅✅
func (h *Handler) HandleList(ctx context.Context, chatID int64) {
	habits := h.service.List()
	if len(habits) == 0 {
		h.sendMessage(ctx, chatID, "🌱 Привычек пока нет. Добавь первую: !привычка Чтение #Учёба")
		return
	}

	today := common.StartOfDay(h.service.state.Now())
	var sb strings.Builder
	sb.WriteString("🔥 Твои привычки\n")
	for i, habit := range habits {
		sb.WriteString(fmt.Sprintf("\n%d. %s [%s] — 🔥 %d %s\n   %s\n",
			i+1, habit.Name, habit.Category,
			habit.Streak, common.PluralizeDays(habit.Streak),
			lastWeek(habit, today)))
	}
	sb.WriteString("\nОтметить: !отметить <номер> [вчера|ДД.ММ.ГГГГ]")
	h.sendMessage(ctx, chatID, sb.String())
}

// HandleAdd создаёт привычку: !привычка Название [#Категория].
func (h *Handler) HandleAdd(ctx context.Context, chatID int64, args []string) {
	name, category := splitCategory(args)
	habit, events, err := h.service.Create(ctx, name, category)
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "habit_create")
		return
	}
	text := fmt.Sprintf("🌱 Привычка «%s» добавлена в категорию %s", habit.Name, habit.Category)
	h.reply(ctx, chatID, text, events)
}

// HandleToggle отмечает или снимает отметку дня: !отметить 2 [вчера].
func (h *Handler) HandleToggle(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 {
		h.sendMessage(ctx, chatID, "Использование: !отметить <номер> [вчера|ДД.ММ.ГГГГ]")
		return
	}
	habits := h.service.List()
	idx, err := common.ParseIndex(args[0], len(habits))
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "habit_toggle")
		return
	}

	dateArg := ""
	if len(args) > 1 {
		dateArg = args[1]
	}
	date, err := common.ParseDay(dateArg, h.service.state.Now())
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "habit_toggle")
		return
	}

	habit, events, err := h.service.Toggle(ctx, habits[idx].ID, date)
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "habit_toggle")
		return
	}

	mark := "⬜ Отметка снята"
	if habit.CompletedOn(common.DayKey(date)) {
		mark = "✅ Отмечено"
	}
	text := fmt.Sprintf("%s: «%s» за %s\n🔥 Стрик: %d %s",
		mark, habit.Name, common.FormatDate(date), habit.Streak, common.PluralizeDays(habit.Streak))
	h.reply(ctx, chatID, text, events)
}

// HandleDelete спрашивает подтверждение удаления: !удалитьпривычку 2.
func (h *Handler) HandleDelete(ctx context.Context, chatID int64, args []string) {
	habits := h.service.List()
	if len(args) == 0 {
		h.sendMessage(ctx, chatID, "Использование: !удалитьпривычку <номер>")
		return
	}
	idx, err := common.ParseIndex(args[0], len(habits))
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "habit_delete")
		return
	}

	habit := habits[idx]
	err = h.sender.SendWithButtons(ctx, chatID,
		fmt.Sprintf("🗑 Удалить привычку «%s» вместе с историей (стрик %d)?", habit.Name, habit.Streak),
		[][]notify.Button{{
			{Text: "Удалить", Data: CallbackDelete + habit.ID},
			{Text: "Отмена", Data: "cancel"},
		}})
	if err != nil {
		log.WithError(err).Error("Ошибка отправки подтверждения")
	}
}

// HandleDeleteConfirmed удаляет привычку после нажатия «Удалить».
func (h *Handler) HandleDeleteConfirmed(ctx context.Context, chatID int64, habitID string) {
	habit, err := h.service.Delete(ctx, habitID)
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "habit_delete")
		return
	}
	h.sendMessage(ctx, chatID, fmt.Sprintf("🗑 Привычка «%s» удалена", habit.Name))
}

// lastWeek рисует последние 7 дней: ✅ — отмечено, ▪️ — нет.
func lastWeek(habit domain.Habit, today time.Time) string {
	var sb strings.Builder
	for i := 6; i >= 0; i-- {
		if habit.CompletedOn(common.DayKey(today.AddDate(0, 0, -i))) {
			sb.WriteString("✅")
		} else {
			sb.WriteString("▪️")
		}
	}
	return sb.String()
}

// splitCategory отделяет категорию вида #Категория от названия.
func splitCategory(args []string) (name, category string) {
	var words []string
	for _, a := range args {
		if strings.HasPrefix(a, "#") && len(a) > 1 {
			category = strings.TrimPrefix(a, "#")
			continue
		}
		words = append(words, a)
	}
	return strings.Join(words, " "), category
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string, events []domain.Event) {
	if err := notify.Reply(ctx, h.sender, chatID, text, events); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(ctx context.Context, chatID int64, text string) {
	if err := h.sender.Send(ctx, chatID, text); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
