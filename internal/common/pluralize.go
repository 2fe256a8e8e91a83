// Package common — pluralize.go содержит функции склонения русских числительных
// и форматирования чисел и денежных сумм.
package common

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Pluralize выбирает форму слова для числа n по правилам русского языка.
//
// Правила:
//   - n%10==1 И n%100!=11 → one (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → few (2, 3, 4, 22, ...)
//   - остальные случаи → many (0, 5-20, 25-30, 100, ...)
func Pluralize(n int, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	lastDigit := n % 10
	lastTwoDigits := n % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return one
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return few
	}
	return many
}

// PluralizeDays возвращает правильную форму слова «день» для числа n.
func PluralizeDays(n int) string {
	return Pluralize(n, "день", "дня", "дней")
}

// PluralizeSessions — «сессия».
func PluralizeSessions(n int) string {
	return Pluralize(n, "сессия", "сессии", "сессий")
}

// PluralizeSpins — «вращение».
func PluralizeSpins(n int) string {
	return Pluralize(n, "вращение", "вращения", "вращений")
}

// FormatNumber форматирует число с разделителями тысяч (пробелами).
// Пример: FormatNumber(2350) → "2 350"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s %03d", FormatNumber(n/1000), n%1000)
}

// FormatXP создаёт строку вида "+150 XP".
func FormatXP(amount int) string {
	return fmt.Sprintf("+%s XP", FormatNumber(int64(amount)))
}

// FormatMoney форматирует сумму с двумя знаками после запятой и разделителями тысяч.
//
// Примеры:
//
//	FormatMoney(decimal.RequireFromString("1234.5"), "₽")  → "1 234,50 ₽"
//	FormatMoney(decimal.RequireFromString("-20"), "₽")     → "-20,00 ₽"
func FormatMoney(amount decimal.Decimal, currency string) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	whole := decimal.RequireFromString(intPart).IntPart()
	return strings.TrimSpace(fmt.Sprintf("%s%s,%s %s", sign, FormatNumber(whole), frac, currency))
}
