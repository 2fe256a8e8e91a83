// Package progression — ledger.go начисляет опыт и повышает уровень.
package progression

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/domain"
)

// GrantResult — итог одного начисления.
type GrantResult struct {
	User      domain.User
	LeveledUp bool
	NewLevel  int
	Events    []domain.Event
}

// Grant начисляет amount опыта с причиной reason.
//
// Правила:
//   - totalPoints только растёт, отрицательная сумма — ErrNegativeXP
//   - за один вызов уровень растёт не больше чем на 1, даже если
//     новый опыт перешагнул несколько порогов; догон идёт следующими начислениями
//   - points всегда зеркалит totalPoints
//   - при непустой reason добавляется уведомление «+N XP», при повышении — событие уровня
func Grant(u domain.User, amount int, reason string) (GrantResult, error) {
	if amount < 0 {
		return GrantResult{User: u}, common.ErrNegativeXP
	}

	newTotal := u.TotalPoints + amount
	level := max(u.Level, 1)
	leveledUp := false

	if next, ok := LevelInfo(level + 1); ok && newTotal >= next.MinXP {
		level = next.Level
		leveledUp = true
	}

	u.TotalPoints = newTotal
	u.Points = newTotal
	u.Level = level
	u.Title = TitleFor(level)

	var events []domain.Event
	if reason != "" {
		events = append(events, domain.Notify(reason, common.FormatXP(amount)))
	}
	if leveledUp {
		events = append(events, domain.Event{
			Kind:    domain.EventLevelUp,
			Title:   fmt.Sprintf("Новый уровень: %d", level),
			Message: u.Title,
			Level:   level,
		})
		log.WithFields(log.Fields{
			"level": level,
			"total": newTotal,
		}).Info("Повышение уровня")
	}

	return GrantResult{User: u, LeveledUp: leveledUp, NewLevel: level, Events: events}, nil
}

// Progress — положение пользователя внутри текущего уровня.
type Progress struct {
	Level     int
	Title     string
	IntoLevel int // опыт, набранный сверх порога текущего уровня
	Needed    int // ширина текущего уровня, 0 на последнем
	Percent   int
}

// LevelProgress считает прогресс до следующего уровня.
func LevelProgress(u domain.User) Progress {
	cur, ok := LevelInfo(u.Level)
	if !ok {
		cur = Levels[0]
	}
	p := Progress{Level: cur.Level, Title: cur.Title}

	next, ok := LevelInfo(cur.Level + 1)
	if !ok {
		p.IntoLevel = u.TotalPoints - cur.MinXP
		p.Percent = 100
		return p
	}

	p.Needed = next.MinXP - cur.MinXP
	p.IntoLevel = max(0, u.TotalPoints-cur.MinXP)
	p.Percent = min(100, p.IntoLevel*100/p.Needed)
	return p
}
