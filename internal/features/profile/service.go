// Package profile показывает профиль владельца: уровень, сводку сфер
// и достижения. Здесь же меняются имя и описание.
package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/domain"
	"serotonyl.ru/aprohfy-bot/internal/features/achievements"
	"serotonyl.ru/aprohfy-bot/internal/features/progression"
	"serotonyl.ru/aprohfy-bot/internal/state"
)

var validate = validator.New()

type nameInput struct {
	Name string `validate:"required,max=64"`
}

type bioInput struct {
	Bio string `validate:"max=280"`
}

// View — всё, что нужно для экрана профиля.
type View struct {
	User      domain.User
	Progress  progression.Progress
	Dashboard progression.Dashboard
	Unlocked  int
	Total     int
	// DaysWithUs — дней с первого запуска.
	DaysWithUs int
}

// Service читает и меняет профиль.
type Service struct {
	state *state.Container
}

// NewService создаёт сервис профиля.
func NewService(st *state.Container) *Service {
	return &Service{state: st}
}

// View собирает профиль на текущий момент.
func (s *Service) View() View {
	snap := s.state.Snapshot()
	now := s.state.Now()
	unlocked, total := achievements.Summary(snap.Achievements)

	v := View{
		User:      snap.User,
		Progress:  progression.LevelProgress(snap.User),
		Dashboard: progression.BuildDashboard(snap, now),
		Unlocked:  unlocked,
		Total:     total,
	}
	if !snap.User.JoinDate.IsZero() {
		v.DaysWithUs = common.DaysBetween(snap.User.JoinDate, now) + 1
	}
	return v
}

// Achievements возвращает достижения: сначала открытые, затем по прогрессу.
func (s *Service) Achievements() []domain.Achievement {
	achs := s.state.Snapshot().Achievements
	unlocked := make([]domain.Achievement, 0, len(achs))
	locked := make([]domain.Achievement, 0, len(achs))
	for _, a := range achs {
		if a.Unlocked {
			unlocked = append(unlocked, a)
		} else {
			locked = append(locked, a)
		}
	}
	return append(unlocked, locked...)
}

// Rename меняет отображаемое имя.
func (s *Service) Rename(ctx context.Context, name string) ([]domain.Event, error) {
	name = strings.TrimSpace(name)
	if err := validate.Struct(nameInput{Name: name}); err != nil {
		return nil, fieldError(err)
	}
	return s.state.Update(ctx, func(snap *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
		snap.User.Name = name
		snap.User.OnboardingCompleted = true
		return []domain.Event{domain.Notify("Имя обновлено", name)}, nil
	})
}

// SetBio меняет описание. Пустая строка очищает его.
func (s *Service) SetBio(ctx context.Context, bio string) ([]domain.Event, error) {
	bio = strings.TrimSpace(bio)
	if err := validate.Struct(bioInput{Bio: bio}); err != nil {
		return nil, fieldError(err)
	}
	return s.state.Update(ctx, func(snap *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
		snap.User.Bio = bio
		return []domain.Event{domain.Notify("Описание обновлено", "")}, nil
	})
}

// fieldError переводит ошибку валидатора в пользовательскую.
func fieldError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "required" {
		return common.ErrEmptyName
	}
	return common.ErrTextTooLong
}
