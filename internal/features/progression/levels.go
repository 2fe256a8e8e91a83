// Package progression ведёт опыт, уровни и титулы пользователя.
// levels.go содержит фиксированную таблицу уровней.
package progression

// Level — ступень прогресса: номер, порог опыта и титул.
type Level struct {
	Level int
	MinXP int
	Title string
}

// Levels — таблица уровней. Пороги строго возрастают.
//
//	1 Новичок 🐣      0
//	2 Исследователь   100
//	3 Искатель        300
//	...
//	10 Вечный         5500
var Levels = []Level{
	{Level: 1, MinXP: 0, Title: "Новичок 🐣"},
	{Level: 2, MinXP: 100, Title: "Исследователь 🧭"},
	{Level: 3, MinXP: 300, Title: "Искатель приключений ⚔️"},
	{Level: 4, MinXP: 600, Title: "Воин 🛡️"},
	{Level: 5, MinXP: 1000, Title: "Легенда 🔥"},
	{Level: 6, MinXP: 1500, Title: "Мастер дзен 🧘"},
	{Level: 7, MinXP: 2100, Title: "Аватар 🌀"},
	{Level: 8, MinXP: 3000, Title: "Полубог ⚡"},
	{Level: 9, MinXP: 4000, Title: "Божество 🌟"},
	{Level: 10, MinXP: 5500, Title: "Вечный ♾️"},
}

// LevelInfo возвращает запись таблицы для уровня n.
func LevelInfo(n int) (Level, bool) {
	for _, l := range Levels {
		if l.Level == n {
			return l, true
		}
	}
	return Level{}, false
}

// TitleFor возвращает титул уровня n, по умолчанию — титул первого уровня.
func TitleFor(n int) string {
	if l, ok := LevelInfo(n); ok {
		return l.Title
	}
	return Levels[0].Title
}

// MaxLevel — последний уровень таблицы.
func MaxLevel() int {
	return Levels[len(Levels)-1].Level
}
