// Package achievements — rules.go сопоставляет id достижения с функцией прогресса.
package achievements

import (
	"serotonyl.ru/aprohfy-bot/internal/domain"
)

// ProgressFunc считает текущий прогресс достижения по снимку.
type ProgressFunc func(s domain.Snapshot) int

// NightOwlHour — с этого часа (по местному времени) выполненная миссия считается ночной.
const NightOwlHour = 22

// Rules — правила прогресса по id. Достижения без правила сохраняют свой прогресс.
var Rules = map[string]ProgressFunc{
	"step1":            anyHabitDayCompleted,
	"week_green":       maxStreak,
	"fire_month":       maxStreak,
	"legend":           maxStreak,
	"rocket":           habitsWithStreakAtLeast(7),
	"tasks_10":         completedTasks,
	"multitask":        completedTasks,
	"pomo_start":       flag(pomodoroSessions),
	"pomo_10":          pomodoroSessions,
	"pomo_100":         pomodoroSessions,
	"first_bill":       flag(billCount),
	"savings_5k":       positiveBalance,
	"economist_legend": positiveBalance,
	"level_5":          userLevel,
	"level_10":         userLevel,
	"night":            nightOwl,
}

func anyHabitDayCompleted(s domain.Snapshot) int {
	for _, h := range s.Habits {
		for _, d := range h.Days {
			if d.Completed {
				return 1
			}
		}
	}
	return 0
}

func maxStreak(s domain.Snapshot) int {
	return s.MaxStreak()
}

func habitsWithStreakAtLeast(n int) ProgressFunc {
	return func(s domain.Snapshot) int {
		count := 0
		for _, h := range s.Habits {
			if h.Streak >= n {
				count++
			}
		}
		return count
	}
}

func completedTasks(s domain.Snapshot) int {
	return s.CompletedTasks()
}

func pomodoroSessions(s domain.Snapshot) int {
	return s.User.PomodoroSessions
}

func billCount(s domain.Snapshot) int {
	return len(s.Bills)
}

// flag превращает счётчик в 0/1.
func flag(f ProgressFunc) ProgressFunc {
	return func(s domain.Snapshot) int {
		if f(s) >= 1 {
			return 1
		}
		return 0
	}
}

// positiveBalance — целая часть баланса, отрицательный баланс считается нулём.
func positiveBalance(s domain.Snapshot) int {
	b := s.Balance()
	if !b.IsPositive() {
		return 0
	}
	return int(b.Floor().IntPart())
}

func userLevel(s domain.Snapshot) int {
	return s.User.Level
}

func nightOwl(s domain.Snapshot) int {
	for _, t := range s.Tasks {
		if t.Completed && t.CompletedAt != nil && t.CompletedAt.Hour() >= NightOwlHour {
			return 1
		}
	}
	return 0
}
