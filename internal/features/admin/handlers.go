// Package admin — handlers.go обрабатывает !экспорт и диалог !сброс.
// Поток сброса: команда → подтверждение кнопкой → ввод пароля следующим сообщением.
package admin

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/notify"
)

// CallbackWipe — данные кнопки подтверждения сброса.
const CallbackWipe = "admin:wipe"

// Handler обрабатывает админ-команды.
type Handler struct {
	service *Service
	sender  notify.Sender
}

// NewHandler создаёт обработчик админки.
func NewHandler(service *Service, sender notify.Sender) *Handler {
	return &Handler{service: service, sender: sender}
}

// HandleExport отправляет полный снимок данных файлом.
func (h *Handler) HandleExport(ctx context.Context, chatID int64) {
	data, err := h.service.Export()
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "export")
		return
	}
	name := fmt.Sprintf("aprohfy-%s.json", common.DayKey(h.service.state.Now()))
	if err := h.sender.SendDocument(ctx, chatID, name, data, "💾 Резервная копия"); err != nil {
		log.WithError(err).Error("Ошибка отправки резервной копии")
	}
}

// HandleWipe спрашивает подтверждение полного сброса.
func (h *Handler) HandleWipe(ctx context.Context, chatID int64) {
	if !h.service.Enabled() {
		notify.ReplyError(ctx, h.sender, chatID, common.ErrWipeDisabled, "wipe")
		return
	}
	rows := [][]notify.Button{{
		{Text: "🗑 Стереть всё", Data: CallbackWipe},
		{Text: "Отмена", Data: "cancel"},
	}}
	if err := h.sender.SendWithButtons(ctx, chatID,
		"⚠️ Будут удалены все привычки, миссии, финансы и прогресс. Продолжить?", rows); err != nil {
		log.WithError(err).Error("Ошибка отправки подтверждения")
	}
}

// HandleWipeConfirmed — кнопка нажата, ждём пароль.
func (h *Handler) HandleWipeConfirmed(ctx context.Context, chatID int64) {
	if err := h.service.BeginWipe(); err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "wipe")
		return
	}
	h.sendMessage(ctx, chatID, "🔐 Введите пароль для сброса:")
}

// HandleMessage перехватывает сообщение, если диалог ждёт пароль.
// Возвращает true, если сообщение обработано.
func (h *Handler) HandleMessage(ctx context.Context, chatID int64, text string) bool {
	if h.service.GetState() != StateAwaitingPassword {
		return false
	}
	h.service.ClearState()

	if err := h.service.Wipe(ctx, strings.TrimSpace(text)); err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "wipe")
		return true
	}
	h.sendMessage(ctx, chatID, "✅ Данные удалены. Начинаем с чистого листа!")
	return true
}

func (h *Handler) sendMessage(ctx context.Context, chatID int64, text string) {
	if err := h.sender.Send(ctx, chatID, text); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
