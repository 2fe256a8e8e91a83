// Package bot содержит главный модуль бота — приём обновлений и маршрутизацию.
// bot.go читает апдейты long polling, проверяет доступ и вызывает обработчики фич.
package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/aprohfy-bot/internal/bot/filters"
	"serotonyl.ru/aprohfy-bot/internal/bot/middleware"
	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/config"
	"serotonyl.ru/aprohfy-bot/internal/domain"
	"serotonyl.ru/aprohfy-bot/internal/features/admin"
	"serotonyl.ru/aprohfy-bot/internal/features/challenges"
	"serotonyl.ru/aprohfy-bot/internal/features/economy"
	"serotonyl.ru/aprohfy-bot/internal/features/fortune"
	"serotonyl.ru/aprohfy-bot/internal/features/pomodoro"
	"serotonyl.ru/aprohfy-bot/internal/features/profile"
	"serotonyl.ru/aprohfy-bot/internal/features/streak"
	"serotonyl.ru/aprohfy-bot/internal/features/tasks"
	"serotonyl.ru/aprohfy-bot/internal/notify"
)

// CallbackCancel — кнопка «Отмена» в подтверждениях.
const CallbackCancel = "cancel"

// Handlers — обработчики всех фич.
type Handlers struct {
	Habits     *streak.Handler
	Tasks      *tasks.Handler
	Finance    *economy.Handler
	Fortune    *fortune.Handler
	Challenges *challenges.Handler
	Pomodoro   *pomodoro.Handler
	Profile    *profile.Handler
	Admin      *admin.Handler
}

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api    *telego.Bot
	client *Client
	sender notify.Sender
	cfg    *config.Config

	ownerFilter *filters.OwnerFilter
	rateLimiter *middleware.RateLimiter

	h      Handlers
	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт бота. api может быть nil, если апдейты подаются напрямую (тесты).
func New(api *telego.Bot, sender notify.Sender, cfg *config.Config, h Handlers) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 8
	}

	b := &Bot{
		api:         api,
		sender:      sender,
		cfg:         cfg,
		ownerFilter: filters.NewOwnerFilter(cfg.OwnerID, sender),
		rateLimiter: middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		h:           h,
		parser:      NewCommandParser(),
		inflight:    make(chan struct{}, maxInFlight),
	}
	if api != nil {
		b.client = NewClient(api)
	}
	return b
}

// Start запускает long polling и обрабатывает апдейты до отмены ctx.
func (b *Bot) Start(ctx context.Context) error {
	updates, err := b.api.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout:        b.cfg.BotUpdateTimeoutSeconds,
		AllowedUpdates: []string{"message", "callback_query"},
	})
	if err != nil {
		return fmt.Errorf("ошибка запуска long polling: %w", err)
	}

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.rateLimiter.Close()
			return nil

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				b.rateLimiter.Close()
				return nil
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd telego.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update telego.Update) {
	defer middleware.RecoverFromPanic(log.Fields{"update_id": update.UpdateID})

	switch {
	case update.Message != nil:
		msg := update.Message
		if msg.From == nil || msg.Text == "" {
			return
		}
		middleware.LogMessage(msg)
		b.dispatch(ctx, filters.Incoming{
			ChatID:  msg.Chat.ID,
			UserID:  msg.From.ID,
			Private: msg.Chat.Type == telego.ChatTypePrivate,
		}, msg.Text)

	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		middleware.LogCallback(q)
		b.client.AnswerCallback(ctx, q.ID)
		if q.Message == nil {
			return
		}
		chat := q.Message.GetChat()
		handled := b.dispatchCallback(ctx, filters.Incoming{
			ChatID:  chat.ID,
			UserID:  q.From.ID,
			Private: chat.Type == telego.ChatTypePrivate,
		}, q.Data)
		if handled {
			b.client.RemoveButtons(ctx, chat.ID, q.Message.GetMessageID())
		}
	}
}

// dispatch обрабатывает текст сообщения после извлечения полей апдейта.
func (b *Bot) dispatch(ctx context.Context, in filters.Incoming, text string) {
	if !b.ownerFilter.CheckAccess(ctx, in) {
		return
	}
	if !b.rateLimiter.Allow(in.UserID) {
		return
	}

	cmd, args, isCommand := b.parser.ParseCommand(text)
	log.WithFields(log.Fields{
		"isCommand": isCommand,
		"cmd":       cmd,
		"args":      len(args),
	}).Debug("parsed command")

	if !isCommand {
		// Диалог сброса ждёт пароль обычным сообщением
		b.h.Admin.HandleMessage(ctx, in.ChatID, text)
		return
	}
	b.routeCommand(ctx, in.ChatID, cmd, args)
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, chatID int64, cmd string, args []string) {
	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("routing command")

	switch cmd {
	case cmdHelp:
		b.sendMessage(ctx, chatID, helpText)

	// --- Профиль ---
	case cmdProfile:
		b.h.Profile.HandleProfile(ctx, chatID)
	case cmdRename:
		b.h.Profile.HandleRename(ctx, chatID, args)
	case cmdBio:
		b.h.Profile.HandleBio(ctx, chatID, args)
	case cmdAchievements:
		b.h.Profile.HandleAchievements(ctx, chatID)

	// --- Привычки ---
	case cmdHabits:
		b.h.Habits.HandleList(ctx, chatID)
	case cmdHabitAdd:
		b.h.Habits.HandleAdd(ctx, chatID, args)
	case cmdHabitCheck:
		b.h.Habits.HandleToggle(ctx, chatID, args)
	case cmdHabitDelete:
		b.h.Habits.HandleDelete(ctx, chatID, args)

	// --- Миссии ---
	case cmdTasks:
		b.h.Tasks.HandleList(ctx, chatID)
	case cmdTaskAdd:
		b.h.Tasks.HandleAdd(ctx, chatID, args)
	case cmdTaskDone:
		b.h.Tasks.HandleToggle(ctx, chatID, args)
	case cmdTaskDelete:
		b.h.Tasks.HandleDelete(ctx, chatID, args)
	case cmdChallenges:
		b.h.Challenges.HandleList(ctx, chatID)

	// --- Колесо ---
	case cmdSpin, cmdSpinStats:
		if !b.cfg.FeatureFortuneEnabled {
			notify.ReplyError(ctx, b.sender, chatID, common.ErrFortuneDisabled, cmd)
			return
		}
		if cmd == cmdSpin {
			b.h.Fortune.HandleSpin(ctx, chatID)
		} else {
			b.h.Fortune.HandleStats(ctx, chatID)
		}

	// --- Финансы ---
	case cmdFinance, cmdIncome, cmdExpense, cmdHistory, cmdTxDelete,
		cmdBills, cmdBillAdd, cmdBillPay, cmdBillDelete:
		if !b.cfg.FeatureFinanceEnabled {
			notify.ReplyError(ctx, b.sender, chatID, common.ErrFinanceDisabled, cmd)
			return
		}
		b.routeFinance(ctx, chatID, cmd, args)

	// --- Фокус ---
	case cmdFocus, cmdStop, cmdTimer, cmdTimerConfig:
		if !b.cfg.FeaturePomodoroEnabled {
			notify.ReplyError(ctx, b.sender, chatID, common.ErrFocusDisabled, cmd)
			return
		}
		b.routePomodoro(ctx, chatID, cmd, args)

	// --- Данные ---
	case cmdExport:
		b.h.Admin.HandleExport(ctx, chatID)
	case cmdWipe:
		b.h.Admin.HandleWipe(ctx, chatID)

	default:
		b.sendMessage(ctx, chatID, "🤔 Не знаю такую команду. Список: !помощь")
	}
}

func (b *Bot) routeFinance(ctx context.Context, chatID int64, cmd string, args []string) {
	switch cmd {
	case cmdFinance:
		b.h.Finance.HandleSummary(ctx, chatID)
	case cmdIncome:
		b.h.Finance.HandleAddTransaction(ctx, chatID, domain.TxIncome, args)
	case cmdExpense:
		b.h.Finance.HandleAddTransaction(ctx, chatID, domain.TxExpense, args)
	case cmdHistory:
		b.h.Finance.HandleHistory(ctx, chatID)
	case cmdTxDelete:
		b.h.Finance.HandleDeleteTransaction(ctx, chatID, args)
	case cmdBills:
		b.h.Finance.HandleBills(ctx, chatID, args)
	case cmdBillAdd:
		b.h.Finance.HandleAddBill(ctx, chatID, args)
	case cmdBillPay:
		b.h.Finance.HandleToggleBill(ctx, chatID, args)
	case cmdBillDelete:
		b.h.Finance.HandleDeleteBill(ctx, chatID, args)
	}
}

func (b *Bot) routePomodoro(ctx context.Context, chatID int64, cmd string, args []string) {
	switch cmd {
	case cmdFocus:
		b.h.Pomodoro.HandleStart(ctx, chatID, args)
	case cmdStop:
		b.h.Pomodoro.HandleStop(ctx, chatID)
	case cmdTimer:
		b.h.Pomodoro.HandleStatus(ctx, chatID)
	case cmdTimerConfig:
		b.h.Pomodoro.HandleConfig(ctx, chatID, args)
	}
}

// dispatchCallback обрабатывает нажатие inline-кнопки.
// Возвращает true, если кнопка распознана и клавиатуру можно убрать.
func (b *Bot) dispatchCallback(ctx context.Context, in filters.Incoming, data string) bool {
	if !b.ownerFilter.CheckAccess(ctx, in) {
		return false
	}
	if !b.rateLimiter.Allow(in.UserID) {
		return false
	}

	chatID := in.ChatID
	switch {
	case data == CallbackCancel:
		b.sendMessage(ctx, chatID, "Отменено")
	case strings.HasPrefix(data, streak.CallbackDelete):
		b.h.Habits.HandleDeleteConfirmed(ctx, chatID, strings.TrimPrefix(data, streak.CallbackDelete))
	case strings.HasPrefix(data, tasks.CallbackDelete):
		b.h.Tasks.HandleDeleteConfirmed(ctx, chatID, strings.TrimPrefix(data, tasks.CallbackDelete))
	case strings.HasPrefix(data, economy.CallbackDeleteTx):
		b.h.Finance.HandleDeleteTransactionConfirmed(ctx, chatID, strings.TrimPrefix(data, economy.CallbackDeleteTx))
	case strings.HasPrefix(data, economy.CallbackDeleteBill):
		b.h.Finance.HandleDeleteBillConfirmed(ctx, chatID, strings.TrimPrefix(data, economy.CallbackDeleteBill))
	case data == fortune.CallbackAccept:
		b.h.Fortune.HandleAccept(ctx, chatID)
	case data == fortune.CallbackDiscard:
		b.h.Fortune.HandleDiscard(ctx, chatID)
	case data == admin.CallbackWipe:
		b.h.Admin.HandleWipeConfirmed(ctx, chatID)
	default:
		log.WithField("data", data).Warn("Неизвестный callback")
		return false
	}
	return true
}

// SendToOwner отправляет сообщение владельцу (для напоминаний по расписанию).
func (b *Bot) SendToOwner(text string) {
	if err := b.sender.Send(context.Background(), b.cfg.OwnerID, text); err != nil {
		log.WithError(err).WithField("owner_id", b.cfg.OwnerID).Warn("Не удалось отправить сообщение владельцу")
	} else {
		log.WithField("owner_id", b.cfg.OwnerID).Debug("message sent")
	}
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string) {
	if err := b.sender.Send(ctx, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
