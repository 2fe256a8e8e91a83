// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры
// и validator для проверки допустимых значений.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Драйверы хранилища.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// Владелец трекера: бот отвечает только ему (личный чат).
	OwnerID int64 `envconfig:"OWNER_ID" required:"true" validate:"required"`

	// --- Storage ---
	StoreDriver string `envconfig:"STORE_DRIVER" default:"sqlite" validate:"oneof=sqlite postgres memory"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"data/aprohfy.db"`

	// --- Database (STORE_DRIVER=postgres) ---
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"aprohfy"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"5"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"1"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"info"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"8" validate:"gt=0"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60" validate:"gt=0"`

	// --- Admin ---
	// Argon2id-хеш пароля для полного сброса. Пусто — сброс отключён.
	WipePasswordHash string `envconfig:"WIPE_PASSWORD_HASH"`

	// --- Rewards ---
	HabitPoints       int `envconfig:"HABIT_POINTS" default:"50" validate:"gte=0"`
	TaskDefaultPoints int `envconfig:"TASK_DEFAULT_POINTS" default:"50" validate:"gt=0"`
	PomodoroPoints    int `envconfig:"POMODORO_POINTS" default:"25" validate:"gte=0"`

	// --- Streak ---
	StreakReminderThreshold int `envconfig:"STREAK_REMINDER_THRESHOLD" default:"7" validate:"gt=0"`

	// --- Fortune wheel ---
	FortuneMaxSpins  int           `envconfig:"FORTUNE_MAX_SPINS" default:"3" validate:"gt=0"`
	FortuneSpinDelay time.Duration `envconfig:"FORTUNE_SPIN_DELAY" default:"2500ms" validate:"gte=0"`

	// --- Finance ---
	FinanceCurrency string `envconfig:"FINANCE_CURRENCY" default:"₽"`

	// --- Jobs (cron, часовой пояс APP_TIMEZONE) ---
	JobRolloverSpec       string `envconfig:"JOB_ROLLOVER_SPEC" default:"0 0 * * *"`
	JobStreakReminderSpec string `envconfig:"JOB_STREAK_REMINDER_SPEC" default:"0 20 * * *"`
	JobBillsReminderSpec  string `envconfig:"JOB_BILLS_REMINDER_SPEC" default:"0 9 * * *"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"30" validate:"gt=0"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m" validate:"gt=0"`

	// --- Feature Flags ---
	FeatureFortuneEnabled  bool `envconfig:"FEATURE_FORTUNE_ENABLED" default:"true"`
	FeatureFinanceEnabled  bool `envconfig:"FEATURE_FINANCE_ENABLED" default:"true"`
	FeaturePomodoroEnabled bool `envconfig:"FEATURE_POMODORO_ENABLED" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Validate проверяет значения по тегам validate и связки полей.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("некорректная конфигурация: %w", err)
	}
	if c.StoreDriver == StorePostgres {
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD обязателен для STORE_DRIVER=postgres")
		}
		if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
		}
	}
	if c.StoreDriver == StoreSQLite && c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH не задан")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
