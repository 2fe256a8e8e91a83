// Package achievements хранит каталог достижений и правила их открытия.
// catalog.go — стартовый набор из 16 достижений.
package achievements

import "serotonyl.ru/aprohfy-bot/internal/domain"

var catalog = []domain.Achievement{
	{ID: "step1", Title: "Первый шаг", Description: "Отметь привычку впервые", Total: 1, Icon: "👣", Rarity: domain.RarityCommon},
	{ID: "pomo_start", Title: "Фокус включён", Description: "Заверши первую фокус-сессию", Total: 1, Icon: "⏱️", Rarity: domain.RarityCommon},
	{ID: "first_bill", Title: "Взрослая жизнь", Description: "Добавь первый счёт", Total: 1, Icon: "🧾", Rarity: domain.RarityCommon},
	{ID: "night", Title: "Ночная сова", Description: "Выполни миссию после 22:00", Total: 1, Icon: "🦉", Rarity: domain.RarityRare},
	{ID: "week_green", Title: "Зелёная неделя", Description: "Держи стрик привычки 7 дней", Total: 7, Icon: "🌿", Rarity: domain.RarityRare},
	{ID: "pomo_10", Title: "Сосредоточенный", Description: "Заверши 10 фокус-сессий", Total: 10, Icon: "🎯", Rarity: domain.RarityRare},
	{ID: "tasks_10", Title: "Исполнитель", Description: "Выполни 10 миссий", Total: 10, Icon: "✅", Rarity: domain.RarityRare},
	{ID: "rocket", Title: "Ракета", Description: "Три привычки со стриком от 7 дней", Total: 3, Icon: "🚀", Rarity: domain.RarityEpic},
	{ID: "level_5", Title: "Легенда", Description: "Достигни 5-го уровня", Total: 5, Icon: "🔥", Rarity: domain.RarityEpic},
	{ID: "fire_month", Title: "Месяц в огне", Description: "Держи стрик привычки 30 дней", Total: 30, Icon: "📅", Rarity: domain.RarityEpic},
	{ID: "savings_5k", Title: "Копилка", Description: "Накопи баланс 5 000", Total: 5000, Icon: "🐷", Rarity: domain.RarityEpic},
	{ID: "multitask", Title: "Многозадачный", Description: "Выполни 50 миссий", Total: 50, Icon: "🧠", Rarity: domain.RarityEpic},
	{ID: "level_10", Title: "Вечный", Description: "Достигни 10-го уровня", Total: 10, Icon: "♾️", Rarity: domain.RarityLegendary},
	{ID: "pomo_100", Title: "Монах фокуса", Description: "Заверши 100 фокус-сессий", Total: 100, Icon: "🧘", Rarity: domain.RarityLegendary},
	{ID: "legend", Title: "Живая легенда", Description: "Держи стрик привычки 100 дней", Total: 100, Icon: "👑", Rarity: domain.RarityLegendary},
	{ID: "economist_legend", Title: "Финансовый гуру", Description: "Накопи баланс 50 000", Total: 50000, Icon: "💎", Rarity: domain.RarityLegendary},
}

// Catalog возвращает копию стартового набора достижений (все закрыты, прогресс 0).
func Catalog() []domain.Achievement {
	out := make([]domain.Achievement, len(catalog))
	copy(out, catalog)
	return out
}
