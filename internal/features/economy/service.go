// Package economy — service.go выполняет операции с финансами через контейнер состояния.
// Новые операции идут в начало списка, счета хранятся в порядке добавления.
package economy

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/config"
	"serotonyl.ru/aprohfy-bot/internal/domain"
	"serotonyl.ru/aprohfy-bot/internal/state"
)

// Service управляет финансами.
type Service struct {
	state *state.Container
	cfg   *config.Config
}

// NewService создаёт сервис финансов.
func NewService(st *state.Container, cfg *config.Config) *Service {
	return &Service{state: st, cfg: cfg}
}

// Transactions возвращает операции, новые первыми.
func (s *Service) Transactions() []domain.Transaction {
	return s.state.Snapshot().Transactions
}

// Summary возвращает итоги и расходы по категориям.
func (s *Service) Summary() (Totals, []CategoryTotal) {
	txs := s.state.Snapshot().Transactions
	return ComputeTotals(txs), ExpensesByCategory(txs)
}

// AddTransaction записывает доход или расход.
func (s *Service) AddTransaction(ctx context.Context, in TxInput) (domain.Transaction, []domain.Event, error) {
	var created domain.Transaction
	events, err := s.state.Update(ctx, func(snap *domain.Snapshot, now time.Time) ([]domain.Event, error) {
		tx, err := NewTransaction(in, now)
		if err != nil {
			return nil, err
		}
		snap.Transactions = append([]domain.Transaction{tx}, snap.Transactions...)
		created = tx
		return []domain.Event{domain.Notify("Операция записана",
			common.FormatMoney(tx.Amount, s.cfg.FinanceCurrency))}, nil
	})
	if err != nil {
		return domain.Transaction{}, nil, err
	}

	log.WithFields(log.Fields{
		"type":     created.Type,
		"amount":   created.Amount.String(),
		"category": created.Category,
	}).Info("Операция добавлена")
	return created, events, nil
}

// DeleteTransaction удаляет операцию.
func (s *Service) DeleteTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	var removed domain.Transaction
	_, err := s.state.Update(ctx, func(snap *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
		for i, tx := range snap.Transactions {
			if tx.ID == id {
				removed = tx
				snap.Transactions = append(snap.Transactions[:i:i], snap.Transactions[i+1:]...)
				return nil, nil
			}
		}
		return nil, common.ErrNotFound
	})
	if err != nil {
		return domain.Transaction{}, err
	}
	log.WithField("description", removed.Description).Info("Операция удалена")
	return removed, nil
}

// Bills возвращает счета нужного вида.
func (s *Service) Bills(view BillView) []domain.Bill {
	return FilterBills(s.state.Snapshot().Bills, view, common.StartOfDay(s.state.Now()))
}

// AddBill добавляет счёт к оплате.
func (s *Service) AddBill(ctx context.Context, name string, due time.Time, amount decimal.Decimal) (domain.Bill, []domain.Event, error) {
	var created domain.Bill
	events, err := s.state.Update(ctx, func(snap *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
		b, err := NewBill(name, due, amount)
		if err != nil {
			return nil, err
		}
		snap.Bills = append(snap.Bills, b)
		created = b
		return []domain.Event{domain.Notify("Счёт запланирован",
			fmt.Sprintf("«%s» добавлен к оплате", b.Name))}, nil
	})
	if err != nil {
		return domain.Bill{}, nil, err
	}
	log.WithField("bill", created.Name).Info("Счёт добавлен")
	return created, events, nil
}

// ToggleBill отмечает счёт оплаченным или снимает отметку.
func (s *Service) ToggleBill(ctx context.Context, id string) (domain.Bill, []domain.Event, error) {
	var updated domain.Bill
	events, err := s.state.Update(ctx, func(snap *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
		for i, b := range snap.Bills {
			if b.ID != id {
				continue
			}
			b.Paid = !b.Paid
			snap.Bills[i] = b
			updated = b
			if b.Paid {
				return []domain.Event{domain.Notify("Счёт оплачен",
					fmt.Sprintf("«%s» отмечен как оплаченный", b.Name))}, nil
			}
			return nil, nil
		}
		return nil, common.ErrNotFound
	})
	if err != nil {
		return domain.Bill{}, nil, err
	}
	return updated, events, nil
}

// DeleteBill удаляет счёт.
func (s *Service) DeleteBill(ctx context.Context, id string) (domain.Bill, error) {
	var removed domain.Bill
	_, err := s.state.Update(ctx, func(snap *domain.Snapshot, _ time.Time) ([]domain.Event, error) {
		for i, b := range snap.Bills {
			if b.ID == id {
				removed = b
				snap.Bills = append(snap.Bills[:i:i], snap.Bills[i+1:]...)
				return nil, nil
			}
		}
		return nil, common.ErrNotFound
	})
	if err != nil {
		return domain.Bill{}, err
	}
	log.WithField("bill", removed.Name).Info("Счёт удалён")
	return removed, nil
}

// SendBillReminders напоминает о просроченных счетах и счетах со сроком сегодня.
func (s *Service) SendBillReminders(ctx context.Context, sendFunc func(text string)) error {
	today := common.StartOfDay(s.state.Now())
	sent := 0
	for _, b := range s.Bills(BillsPending) {
		days := common.DaysBetween(today, b.DueDate)
		switch {
		case days < 0:
			sendFunc(fmt.Sprintf("⏰ Счёт «%s» просрочен с %s (%s)",
				b.Name, common.FormatDate(b.DueDate), common.FormatMoney(b.Amount, s.cfg.FinanceCurrency)))
		case days == 0:
			sendFunc(fmt.Sprintf("📅 Сегодня срок оплаты «%s» (%s)",
				b.Name, common.FormatMoney(b.Amount, s.cfg.FinanceCurrency)))
		default:
			continue
		}
		sent++
	}

	log.WithField("sent", sent).Debug("Напоминания о счетах отправлены")
	return nil
}
