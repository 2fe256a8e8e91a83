// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: открывает хранилище, загружает состояние, создаёт сервисы,
// обработчики и планировщик и собирает всё в один объект App.
package app

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/aprohfy-bot/internal/bot"
	"serotonyl.ru/aprohfy-bot/internal/config"
	"serotonyl.ru/aprohfy-bot/internal/db/postgres"
	"serotonyl.ru/aprohfy-bot/internal/db/sqlite"
	"serotonyl.ru/aprohfy-bot/internal/features/achievements"
	"serotonyl.ru/aprohfy-bot/internal/features/admin"
	"serotonyl.ru/aprohfy-bot/internal/features/challenges"
	"serotonyl.ru/aprohfy-bot/internal/features/economy"
	"serotonyl.ru/aprohfy-bot/internal/features/fortune"
	"serotonyl.ru/aprohfy-bot/internal/features/pomodoro"
	"serotonyl.ru/aprohfy-bot/internal/features/profile"
	"serotonyl.ru/aprohfy-bot/internal/features/streak"
	"serotonyl.ru/aprohfy-bot/internal/features/tasks"
	"serotonyl.ru/aprohfy-bot/internal/jobs"
	"serotonyl.ru/aprohfy-bot/internal/state"
	"serotonyl.ru/aprohfy-bot/internal/store"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	Store     store.Store
	State     *state.Container
	BotAPI    *telego.Bot
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Хранилище ===
	kv, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия хранилища: %w", err)
	}

	// === 2. Состояние трекера ===
	st, err := state.Open(ctx, kv, state.WithHook(achievements.Apply))
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("ошибка загрузки состояния: %w", err)
	}

	// === 3. Telegram Bot API ===
	var opts []telego.BotOption
	if cfg.AppEnv == "development" {
		opts = append(opts, telego.WithDefaultDebugLogger())
	}
	botAPI, err := telego.NewBot(cfg.TelegramBotToken, opts...)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	me, err := botAPI.GetMe(ctx)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("ошибка авторизации в Telegram: %w", err)
	}
	log.Infof("Авторизован как @%s", me.Username)
	sender := bot.NewClient(botAPI)

	// === 4. Сервисы ===
	streakService := streak.NewService(st, cfg)
	taskService := tasks.NewService(st, cfg)
	economyService := economy.NewService(st, cfg)
	wheel := fortune.NewWheel(st, cfg)
	pomodoroService := pomodoro.NewService(st, cfg)
	profileService := profile.NewService(st)
	adminService := admin.NewService(st, cfg)

	// === 5. Обработчики ===
	handlers := bot.Handlers{
		Habits:     streak.NewHandler(streakService, sender),
		Tasks:      tasks.NewHandler(taskService, sender),
		Finance:    economy.NewHandler(economyService, sender),
		Fortune:    fortune.NewHandler(wheel, sender),
		Challenges: challenges.NewHandler(st, sender),
		Pomodoro:   pomodoro.NewHandler(pomodoroService, sender),
		Profile:    profile.NewHandler(profileService, sender),
		Admin:      admin.NewHandler(adminService, sender),
	}

	// === 6. Собираем бота ===
	b := bot.New(botAPI, sender, cfg, handlers)

	// === 7. Планировщик задач ===
	scheduler := jobs.NewScheduler(cfg, streakService, economyService, wheel, b.SendToOwner)

	// Бот мог пропустить полночь, пока был выключен
	if err := scheduler.Rollover(ctx); err != nil {
		log.WithError(err).Warn("Смена дня при старте не удалась")
	}

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		Store:     kv,
		State:     st,
		BotAPI:    botAPI,
	}, nil
}

// Close закрывает хранилище.
func (a *App) Close() {
	if err := a.Store.Close(); err != nil {
		log.WithError(err).Warn("Ошибка закрытия хранилища")
	}
}

// openStore выбирает хранилище по STORE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ошибка миграций: %w", err)
		}
		return postgres.NewStore(pool), nil

	case config.StoreMemory:
		log.Warn("STORE_DRIVER=memory: данные пропадут после перезапуска")
		return store.NewMemory(), nil

	default:
		return sqlite.Open(ctx, cfg.SQLitePath)
	}
}
