// Package notify — контракт отправки сообщений владельцу и форматирование событий.
// Обработчики фич зависят от Sender, а не от Telegram-клиента напрямую.
package notify

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/domain"
)

// Button — inline-кнопка с данными для callback.
type Button struct {
	Text string
	Data string
}

// Sender отправляет сообщения в чат.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
	SendWithButtons(ctx context.Context, chatID int64, text string, rows [][]Button) error
	SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error
}

// FormatEvent превращает событие в строку для чата.
func FormatEvent(e domain.Event) string {
	switch e.Kind {
	case domain.EventLevelUp:
		return fmt.Sprintf("⬆️ %s!\nТеперь ты %s", e.Title, e.Message)
	case domain.EventAchievement:
		rarity := ""
		if e.Achievement != nil {
			rarity = fmt.Sprintf(" (%s)", e.Achievement.Rarity.Label())
		}
		return fmt.Sprintf("🏅 Достижение открыто%s: %s\n%s", rarity, e.Title, e.Message)
	case domain.EventJackpot:
		return fmt.Sprintf("🎉 %s %s", e.Title, e.Message)
	case domain.EventWarning:
		return fmt.Sprintf("⚠️ %s. %s", e.Title, e.Message)
	default:
		if e.Message == "" {
			return "✅ " + e.Title
		}
		return fmt.Sprintf("✅ %s: %s", e.Title, e.Message)
	}
}

// FormatEvents склеивает события в один текст, по строке на событие.
func FormatEvents(events []domain.Event) string {
	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, FormatEvent(e))
	}
	return strings.Join(lines, "\n")
}

// Reply отправляет text и, если есть события, добавляет их ниже.
func Reply(ctx context.Context, s Sender, chatID int64, text string, events []domain.Event) error {
	if len(events) > 0 {
		if text != "" {
			text += "\n\n"
		}
		text += FormatEvents(events)
	}
	if text == "" {
		return nil
	}
	return s.Send(ctx, chatID, text)
}

// ReplyError отвечает на ошибку: понятные пользователю ошибки показываются как есть,
// остальные логируются, а пользователь видит общее сообщение.
func ReplyError(ctx context.Context, s Sender, chatID int64, err error, action string) {
	text := "❌ " + err.Error()
	if !common.IsUserFacing(err) {
		log.WithError(err).WithField("action", action).Error("Ошибка обработки команды")
		text = "❌ Что-то пошло не так, попробуй ещё раз"
	}
	if sendErr := s.Send(ctx, chatID, text); sendErr != nil {
		log.WithError(sendErr).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
