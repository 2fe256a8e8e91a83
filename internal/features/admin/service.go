// Package admin — service.go проверяет пароль сброса, ведёт state-машину
// диалога и выполняет экспорт и полный сброс через state.Container.
package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/config"
	"serotonyl.ru/aprohfy-bot/internal/state"
)

// Параметры Argon2id для новых хешей.
const (
	HashMemory      = 64 * 1024
	HashIterations  = 3
	HashParallelism = 2
	HashKeyLen      = 32
	HashSaltLen     = 16
)

// Service управляет экспортом и сбросом.
type Service struct {
	state *state.Container
	cfg   *config.Config
	clock func() time.Time

	mu       sync.Mutex
	failures attemptLog
	dialog   *DialogState
}

// NewService создаёт сервис админки.
func NewService(st *state.Container, cfg *config.Config) *Service {
	return &Service{state: st, cfg: cfg, clock: time.Now}
}

// Enabled сообщает, задан ли хеш пароля сброса.
func (s *Service) Enabled() bool {
	return s.cfg.WipePasswordHash != ""
}

// VerifyPassword проверяет пароль сброса.
// 3 неудачные попытки за час блокируют проверку до конца окна.
func (s *Service) VerifyPassword(password string) error {
	if !s.Enabled() {
		return common.ErrWipeDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	s.failures = s.failures.prune(now)
	if s.failures.recent(now) >= MaxAttempts {
		return common.ErrTooManyAttempts
	}

	if !verifyArgon2id(password, s.cfg.WipePasswordHash) {
		s.failures = append(s.failures, now)
		log.WithField("failures", len(s.failures)).Warn("Неверный пароль сброса")
		return common.ErrWrongPassword
	}
	s.failures = nil
	return nil
}

// Wipe проверяет пароль и удаляет все данные трекера.
func (s *Service) Wipe(ctx context.Context, password string) error {
	if err := s.VerifyPassword(password); err != nil {
		return err
	}
	if err := s.state.Reset(ctx); err != nil {
		return fmt.Errorf("ошибка сброса данных: %w", err)
	}
	return nil
}

// Export возвращает полный снимок в JSON.
func (s *Service) Export() ([]byte, error) {
	return s.state.Export()
}

// BeginWipe переводит диалог в ожидание пароля.
func (s *Service) BeginWipe() error {
	if !s.Enabled() {
		return common.ErrWipeDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialog = &DialogState{State: StateAwaitingPassword, ExpiresAt: s.clock().Add(StateTTL)}
	return nil
}

// GetState возвращает текущее состояние диалога или StateNone.
func (s *Service) GetState() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dialog == nil {
		return StateNone
	}
	if s.clock().After(s.dialog.ExpiresAt) {
		s.dialog = nil
		return StateNone
	}
	return s.dialog.State
}

// ClearState сбрасывает состояние диалога.
func (s *Service) ClearState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialog = nil
}

// --- Криптографические утилиты ---

// HashPassword возвращает Argon2id-хеш в формате
// $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func HashPassword(password string) (string, error) {
	salt := make([]byte, HashSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("ошибка генерации соли: %w", err)
	}
	return encodeArgon2id(password, salt, HashMemory, HashIterations, HashParallelism), nil
}

func encodeArgon2id(password string, salt []byte, memory, iterations uint32, parallelism uint8) string {
	hash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, HashKeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, memory, iterations, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
}

// verifyArgon2id проверяет пароль по хешу Argon2id.
func verifyArgon2id(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		log.Error("Некорректный формат хеша Argon2id")
		return false
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		log.WithError(err).Error("Ошибка парсинга параметров Argon2id")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования соли")
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования хеша")
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expected)))
	// Сравниваем в постоянном времени
	return subtle.ConstantTimeCompare(computed, expected) == 1
}
