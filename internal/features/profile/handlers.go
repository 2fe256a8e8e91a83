// Package profile — handlers.go обрабатывает !я, !имя, !осебе и !достижения.
package profile

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/domain"
	"serotonyl.ru/aprohfy-bot/internal/notify"
)

// Handler обрабатывает команды профиля.
type Handler struct {
	service *Service
	sender  notify.Sender
}

// NewHandler создаёт обработчик профиля.
func NewHandler(service *Service, sender notify.Sender) *Handler {
	return &Handler{service: service, sender: sender}
}

// HandleProfile показывает профиль.
//
// Формат ответа:
//
//	👤 Алекс — Практик (ур. 3)
//	«Учусь каждый день»
//
//	⭐ 720 XP · до 4-го уровня 55%
//	▰▰▰▰▰▱▱▱▱▱
//	🏅 Достижения: 4/16
//	📆 С нами 12 дней
//
//	⚖️ Баланс жизни: 64/100
//	Привычки 20 · Фокус 8 · Миссии 10 · Награды 8 · Финансы 18
func (h *Handler) HandleProfile(ctx context.Context, chatID int64) {
	v := h.service.View()
	p := v.Progress

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👤 %s — %s (ур. %d)\n", v.User.Name, p.Title, p.Level))
	if v.User.Bio != "" {
		sb.WriteString(fmt.Sprintf("«%s»\n", v.User.Bio))
	}
	sb.WriteString("\n")
	if p.Needed > 0 {
		sb.WriteString(fmt.Sprintf("⭐ %d XP · до %d-го уровня %d%%\n", v.User.TotalPoints, p.Level+1, p.Percent))
	} else {
		sb.WriteString(fmt.Sprintf("⭐ %d XP · максимальный уровень\n", v.User.TotalPoints))
	}
	sb.WriteString(progressBar(p.Percent) + "\n")
	sb.WriteString(fmt.Sprintf("🏅 Достижения: %d/%d\n", v.Unlocked, v.Total))
	if v.DaysWithUs > 0 {
		sb.WriteString(fmt.Sprintf("📆 С нами %d %s\n", v.DaysWithUs, common.PluralizeDays(v.DaysWithUs)))
	}

	d := v.Dashboard
	sb.WriteString(fmt.Sprintf("\n⚖️ Баланс жизни: %d/100\n", d.Total))
	sb.WriteString(fmt.Sprintf("Привычки %d · Фокус %d · Миссии %d · Награды %d · Финансы %d",
		d.Habits, d.Focus, d.Missions, d.Achievements, d.Finance))
	h.sendMessage(ctx, chatID, sb.String())
}

// HandleRename меняет имя: !имя Алекс.
func (h *Handler) HandleRename(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 {
		h.sendMessage(ctx, chatID, "Использование: !имя <новое имя>")
		return
	}
	events, err := h.service.Rename(ctx, strings.Join(args, " "))
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "profile_rename")
		return
	}
	h.reply(ctx, chatID, "", events)
}

// HandleBio меняет описание: !осебе текст. Без аргументов очищает.
func (h *Handler) HandleBio(ctx context.Context, chatID int64, args []string) {
	events, err := h.service.SetBio(ctx, strings.Join(args, " "))
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "profile_bio")
		return
	}
	h.reply(ctx, chatID, "", events)
}

// HandleAchievements показывает все достижения с прогрессом.
func (h *Handler) HandleAchievements(ctx context.Context, chatID int64) {
	achs := h.service.Achievements()
	unlocked := 0
	var sb strings.Builder
	for _, a := range achs {
		if a.Unlocked {
			unlocked++
		}
		sb.WriteString(formatAchievement(a))
		sb.WriteString("\n")
	}
	h.sendMessage(ctx, chatID, fmt.Sprintf("🏅 Достижения %d/%d\n\n%s", unlocked, len(achs), sb.String()))
}

func formatAchievement(a domain.Achievement) string {
	if a.Unlocked {
		return fmt.Sprintf("%s %s — %s [%s]", a.Icon, a.Title, a.Description, a.Rarity.Label())
	}
	return fmt.Sprintf("🔒 %s — %s (%d/%d)", a.Title, a.Description, min(a.Progress, a.Total), a.Total)
}

// progressBar рисует полосу из 10 делений.
func progressBar(percent int) string {
	filled := max(0, min(10, percent/10))
	return strings.Repeat("▰", filled) + strings.Repeat("▱", 10-filled)
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
