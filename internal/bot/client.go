// Package bot — client.go отправляет сообщения через Telegram Bot API (telego).
// Client реализует notify.Sender, поэтому фичи не зависят от telego напрямую.
package bot

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/aprohfy-bot/internal/notify"
)

// Client — тонкая обёртка над telego.Bot.
type Client struct {
	api *telego.Bot
}

// NewClient создаёт клиента поверх готового API.
func NewClient(api *telego.Bot) *Client {
	return &Client{api: api}
}

func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	if _, err := c.api.SendMessage(ctx, tu.Message(tu.ID(chatID), text)); err != nil {
		return fmt.Errorf("sendMessage: %w", err)
	}
	return nil
}

func (c *Client) SendWithButtons(ctx context.Context, chatID int64, text string, rows [][]notify.Button) error {
	msg := tu.Message(tu.ID(chatID), text).WithReplyMarkup(inlineKeyboard(rows))
	if _, err := c.api.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("sendMessage: %w", err)
	}
	return nil
}

func (c *Client) SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error {
	doc := tu.Document(tu.ID(chatID), tu.File(tu.NameReader(bytes.NewReader(data), name))).
		WithCaption(caption)
	if _, err := c.api.SendDocument(ctx, doc); err != nil {
		return fmt.Errorf("sendDocument: %w", err)
	}
	return nil
}

// AnswerCallback закрывает «часики» на кнопке.
func (c *Client) AnswerCallback(ctx context.Context, queryID string) {
	if err := c.api.AnswerCallbackQuery(ctx, tu.CallbackQuery(queryID)); err != nil {
		log.WithError(err).Debug("Не удалось ответить на callback")
	}
}

// RemoveButtons убирает клавиатуру у сообщения, чтобы кнопку не нажали дважды.
func (c *Client) RemoveButtons(ctx context.Context, chatID int64, messageID int) {
	_, err := c.api.EditMessageReplyMarkup(ctx, &telego.EditMessageReplyMarkupParams{
		ChatID:    tu.ID(chatID),
		MessageID: messageID,
	})
	if err != nil {
		log.WithError(err).Debug("Не удалось убрать кнопки")
	}
}

func inlineKeyboard(rows [][]notify.Button) *telego.InlineKeyboardMarkup {
	kb := make([][]telego.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]telego.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tu.InlineKeyboardButton(b.Text).WithCallbackData(b.Data))
		}
		kb = append(kb, tu.InlineKeyboardRow(buttons...))
	}
	return tu.InlineKeyboard(kb...)
}
