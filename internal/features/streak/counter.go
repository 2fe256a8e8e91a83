// Package streak — counter.go считает стрик привычки по разреженной истории дней.
package streak

import (
	"sort"
	"time"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/domain"
)

// ComputeStreak возвращает число подряд идущих отмеченных дней,
// заканчивающихся последним отмеченным днём.
//
// Алгоритм:
//  1. Сортируем копию дней по убыванию даты.
//  2. Якорь — самый поздний отмеченный день. Нет такого — стрик 0.
//  3. Если между якорем и today больше одного дня, серия прервана — стрик 0.
//  4. Идём назад от якоря по календарю, пока день есть в истории и отмечен.
//
// Сравнение идёт по календарной дате, время суток игнорируется.
// Каждая дата учитывается один раз, даже если в истории есть дубли.
//
// Примеры (today = 10.03):
//
//	отмечены 10, 9, 8     → 3
//	отмечены 9, 8         → 2 (сегодня ещё можно успеть)
//	отмечены 8, 7         → 0 (вчера пропущено)
//	отмечены 10, 9, 7     → 2
func ComputeStreak(days []domain.HabitDay, today time.Time) int {
	if len(days) == 0 {
		return 0
	}

	sorted := make([]domain.HabitDay, len(days))
	copy(sorted, days)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	// Отмеченность по ключу дня. Если дата встречается несколько раз,
	// день считается отмеченным, когда отмечена хотя бы одна запись.
	completed := make(map[string]bool, len(sorted))
	var anchor *domain.HabitDay
	for i := range sorted {
		key := common.DayKey(sorted[i].Date)
		completed[key] = completed[key] || sorted[i].Completed
		if anchor == nil && sorted[i].Completed {
			anchor = &sorted[i]
		}
	}
	if anchor == nil {
		return 0
	}

	if common.DaysBetween(anchor.Date, today) > 1 {
		return 0
	}

	streak := 0
	cursor := anchor.Date
	for completed[common.DayKey(cursor)] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}
