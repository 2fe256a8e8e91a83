// Package pomodoro — handlers.go обрабатывает команды таймера:
// !фокус [перерыв|длинный], !стоп, !таймер, !настройкитаймера.
package pomodoro

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

// Handler обрабатывает команды таймера.
type Handler struct {
	service *Service
	sender  notify.Sender
}

// NewHandler создаёт обработчик таймера.
func NewHandler(service *Service, sender notify.Sender) *Handler {
	return &Handler{service: service, sender: sender}
}

// HandleStart запускает фазу: !фокус, !фокус перерыв, !фокус длинный.
func (h *Handler) HandleStart(ctx context.Context, chatID int64, args []string) {
	arg := ""
	if len(args) > 0 {
		arg = strings.ToLower(args[0])
	}
	phase, ok := ParsePhase(arg)
	if !ok {
		h.sendMessage(ctx, chatID, "Использование: !фокус [перерыв|длинный]")
		return
	}

	d, err := h.service.Start(ctx, phase, h.onDone(chatID))
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "pomodoro_start")
		return
	}
	h.sendMessage(ctx, chatID, fmt.Sprintf("⏱ Запущен %s на %s", phase.Label(), formatDuration(d)))
}

// HandleStop останавливает таймер.
func (h *Handler) HandleStop(ctx context.Context, chatID int64) {
	phase, err := h.service.Stop()
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "pomodoro_stop")
		return
	}
	h.sendMessage(ctx, chatID, fmt.Sprintf("⏹ %s остановлен, сессия не засчитана", capitalize(phase.Label())))
}

// HandleStatus показывает состояние таймера и настройки.
//
// Формат ответа:
//
//	⏱ Идёт фокус, осталось 12:30
//	🍅 Сегодня: 3 сессии, всего: 41
//	⚙️ Фокус 25 · перерыв 5 · длинный 15 мин
func (h *Handler) HandleStatus(ctx context.Context, chatID int64) {
	st := h.service.Status()
	u := h.service.state.Snapshot().User
	today := u.SessionsOn(common.DayKey(h.service.state.Now()))
	cfg := u.PomodoroConfig

	var sb strings.Builder
	if st.Running {
		sb.WriteString(fmt.Sprintf("⏱ Идёт %s, осталось %s\n", st.Phase.Label(), formatDuration(st.Remaining)))
	} else {
		sb.WriteString("⏱ Таймер не запущен\n")
	}
	sb.WriteString(fmt.Sprintf("🍅 Сегодня: %d %s, всего: %d\n", today, common.PluralizeSessions(today), u.PomodoroSessions))
	sb.WriteString(fmt.Sprintf("⚙️ Фокус %d · перерыв %d · длинный %d мин", cfg.WorkDuration, cfg.ShortBreakDuration, cfg.LongBreakDuration))
	if cfg.AutoStartBreaks || cfg.AutoStartPomodoros {
		sb.WriteString("\n🔁 Автозапуск:")
		if cfg.AutoStartBreaks {
			sb.WriteString(" перерывы")
		}
		if cfg.AutoStartPomodoros {
			sb.WriteString(" фокус")
		}
	}
	h.sendMessage(ctx, chatID, sb.String())
}

// HandleConfig меняет настройки: !настройкитаймера 50 10 20 [автоперерыв] [автофокус].
func (h *Handler) HandleConfig(ctx context.Context, chatID int64, args []string) {
	cfg, ok := parseConfigArgs(h.service.Config(), args)
	if !ok {
		h.sendMessage(ctx, chatID, "Использование: !настройкитаймера <фокус> <перерыв> <длинный> [автоперерыв] [автофокус]")
		return
	}
	events, err := h.service.UpdateConfig(ctx, cfg)
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "pomodoro_config")
		return
	}
	h.reply(ctx, chatID, "", events)
}

func (h *Handler) onDone(chatID int64) DoneFunc {
	return func(c Completion) {
		ctx := context.Background()
		if c.Err != nil {
			notify.ReplyError(ctx, h.sender, chatID, c.Err, "pomodoro_complete")
			return
		}

		var text string
		if c.Phase == PhaseWork {
			text = fmt.Sprintf("🍅 Отличная работа! Время для: %s", c.Next.Label())
		} else {
			text = "☕ Перерыв окончен. Возвращаемся к фокусу!"
		}
		if c.AutoStarted {
			text += "\n▶️ Следующая фаза запущена автоматически"
		} else if c.Phase == PhaseWork {
			text += fmt.Sprintf("\nЗапусти: !фокус %s", nextArg(c.Next))
		}
		h.reply(ctx, chatID, text, c.Events)
	}
}

// parseConfigArgs: три числа по порядку и необязательные флаги автозапуска.
func parseConfigArgs(cur domain.PomodoroConfig, args []string) (domain.PomodoroConfig, bool) {
	var nums []int
	cfg := cur
	cfg.AutoStartBreaks = false
	cfg.AutoStartPomodoros = false
	for _, a := range args {
		switch strings.ToLower(a) {
		case "автоперерыв":
			cfg.AutoStartBreaks = true
		case "автофокус":
			cfg.AutoStartPomodoros = true
		default:
			n, err := strconv.Atoi(a)
			if err != nil {
				return cur, false
			}
			nums = append(nums, n)
		}
	}
	if len(nums) != 3 {
		return cur, false
	}
	cfg.WorkDuration, cfg.ShortBreakDuration, cfg.LongBreakDuration = nums[0], nums[1], nums[2]
	return cfg, true
}

func nextArg(p Phase) string {
	if p == PhaseLongBreak {
		return "длинный"
	}
	return "перерыв"
}

func formatDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return strings.ToUpper(string(r[0])) + string(r[1:])
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
