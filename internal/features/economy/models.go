// Package economy ведёт личные финансы: доходы, расходы и счета к оплате.
// models.go содержит правила создания записей и расчёт итогов.
package economy

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/domain"
)

// DefaultCategory — категория операции, если пользователь её не указал.
const DefaultCategory = "Прочее"

// TxInput — данные новой операции.
type TxInput struct {
	Description string
	Amount      decimal.Decimal
	Type        domain.TransactionType
	Category    string
}

// NewTransaction проверяет ввод и создаёт операцию с датой now.
func NewTransaction(in TxInput, now time.Time) (domain.Transaction, error) {
	in.Description = strings.TrimSpace(in.Description)
	switch {
	case !in.Amount.IsPositive():
		return domain.Transaction{}, common.ErrInvalidAmount
	case in.Description == "":
		return domain.Transaction{}, common.ErrEmptyDescription
	case in.Type != domain.TxIncome && in.Type != domain.TxExpense:
		return domain.Transaction{}, common.ErrInvalidTxType
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = DefaultCategory
	}
	return domain.Transaction{
		ID:          uuid.NewString(),
		Description: in.Description,
		Amount:      in.Amount,
		Type:        in.Type,
		Category:    category,
		Date:        now,
	}, nil
}

// ParseAmount разбирает сумму: "1500", "99,90", "12.5".
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil || !d.IsPositive() {
		return decimal.Zero, common.ErrInvalidAmount
	}
	return d.Round(2), nil
}

// Totals — сводка по операциям.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// ComputeTotals суммирует доходы и расходы. Баланс = доходы − расходы.
func ComputeTotals(txs []domain.Transaction) Totals {
	t := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, tx := range txs {
		switch tx.Type {
		case domain.TxIncome:
			t.Income = t.Income.Add(tx.Amount)
		case domain.TxExpense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}

// CategoryTotal — сумма расходов одной категории.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

// ExpensesByCategory группирует расходы по категориям, крупные первыми.
func ExpensesByCategory(txs []domain.Transaction) []CategoryTotal {
	sums := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != domain.TxExpense {
			continue
		}
		sums[tx.Category] = sums[tx.Category].Add(tx.Amount)
	}

	out := make([]CategoryTotal, 0, len(sums))
	for c, a := range sums {
		out = append(out, CategoryTotal{Category: c, Amount: a})
	}
	slices.SortFunc(out, func(a, b CategoryTotal) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})
	return out
}

// NewBill создаёт счёт. Сумма необязательна, но не может быть отрицательной.
func NewBill(name string, due time.Time, amount decimal.Decimal) (domain.Bill, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return domain.Bill{}, common.ErrEmptyName
	case due.IsZero():
		return domain.Bill{}, common.ErrInvalidDate
	case amount.IsNegative():
		return domain.Bill{}, common.ErrInvalidAmount
	}
	return domain.Bill{
		ID:      uuid.NewString(),
		Name:    name,
		DueDate: due,
		Amount:  amount,
	}, nil
}

// BillView — фильтр списка счетов.
type BillView string

const (
	BillsPending BillView = "pending"
	BillsPaid    BillView = "paid"
	BillsOverdue BillView = "overdue"
)

// FilterBills возвращает счета нужного вида, отсортированные по сроку.
func FilterBills(bills []domain.Bill, view BillView, today time.Time) []domain.Bill {
	var out []domain.Bill
	for _, b := range bills {
		switch view {
		case BillsPaid:
			if !b.Paid {
				continue
			}
		case BillsOverdue:
			if !b.IsOverdue(today) {
				continue
			}
		default:
			if b.Paid {
				continue
			}
		}
		out = append(out, b)
	}
	slices.SortStableFunc(out, func(a, b domain.Bill) int {
		return a.DueDate.Compare(b.DueDate)
	})
	return out
}
