// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: работа с календарными днями, часовой пояс приложения, форматирование дат.
package common

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// DayLayout — формат ключа календарного дня.
const DayLayout = "2006-01-02"

var appLocation atomic.Pointer[time.Location]

func init() {
	appLocation.Store(LoadLocation("Europe/Moscow"))
}

// LoadLocation загружает часовой пояс по имени.
// Если tzdata недоступна, для Москвы используем UTC+3 вручную, для остальных — UTC.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc
	}
	log.WithError(err).WithField("tz", name).Warn("Не удалось загрузить часовой пояс")
	if name == "Europe/Moscow" {
		return time.FixedZone("MSK", 3*60*60)
	}
	return time.UTC
}

// SetLocation задаёт часовой пояс, в котором считаются «сегодня» и полночь.
func SetLocation(loc *time.Location) {
	if loc != nil {
		appLocation.Store(loc)
	}
}

// Location возвращает текущий часовой пояс приложения.
func Location() *time.Location {
	return appLocation.Load()
}

// Now возвращает текущее время в часовом поясе приложения.
func Now() time.Time {
	return time.Now().In(Location())
}

// Today возвращает полночь текущего дня в часовом поясе приложения.
func Today() time.Time {
	return StartOfDay(Now())
}

// StartOfDay отбрасывает время суток, сохраняя часовой пояс t.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayKey возвращает календарную дату в формате 2006-01-02.
// Время суток игнорируется, дата берётся в часовом поясе самого t.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// SameDay сообщает, приходятся ли a и b на одну календарную дату.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}

// DaysBetween возвращает количество календарных дней от from до to.
// Переходы на летнее время не влияют на результат.
func DaysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// ParseDay разбирает пользовательский ввод даты относительно today.
//
// Поддерживаются:
//
//	"", "сегодня", "today" → today
//	"вчера", "yesterday"   → today-1
//	"завтра", "tomorrow"   → today+1
//	"2026-10-19", "19.10.2026"
func ParseDay(s string, today time.Time) (time.Time, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	today = StartOfDay(today)

	switch s {
	case "", "сегодня", "today":
		return today, nil
	case "вчера", "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "завтра", "tomorrow":
		return today.AddDate(0, 0, 1), nil
	}

	for _, layout := range []string{DayLayout, "02.01.2006"} {
		if t, err := time.ParseInLocation(layout, s, today.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// FormatDate форматирует дату как "02.01.2006".
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// ParseIndex разбирает номер из списка (с единицы) и возвращает индекс с нуля.
func ParseIndex(arg string, n int) (int, error) {
	i, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(arg), "#"))
	if err != nil || i < 1 || i > n {
		return 0, ErrNotFound
	}
	return i - 1, nil
}
