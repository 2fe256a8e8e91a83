// Package economy — handlers.go обрабатывает финансовые команды:
// !финансы, !доход, !расход, !операции, !удалитьоперацию,
// !счета, !счет, !оплатить, !удалитьсчет.
package economy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/aprohfy-bot/internal/common"
	"serotonyl.ru/aprohfy-bot/internal/domain"
	"serotonyl.ru/aprohfy-bot/internal/notify"
)

// Префиксы callback-данных подтверждения удаления.
const (
	CallbackDeleteTx   = "tx:del:"
	CallbackDeleteBill = "bill:del:"
)

// Сколько последних операций показывает !операции.
const historyLimit = 10

// Handler обрабатывает финансовые команды.
type Handler struct {
	service *Service
	sender  notify.Sender
}

// NewHandler создаёт обработчик финансов.
func NewHandler(service *Service, sender notify.Sender) *Handler {
	return &Handler{service: service, sender: sender}
}

// HandleSummary показывает баланс и расходы по категориям.
//
// Формат ответа:
//
//	💰 Финансы
//
//	Доходы: 1 000,00 ₽
//	Расходы: 500,00 ₽
//	Баланс: 500,00 ₽
//
//	📊 Расходы по категориям:
//	Еда — 300,00 ₽
//	Дом — 200,00 ₽
func (h *Handler) HandleSummary(ctx context.Context, chatID int64) {
	totals, byCategory := h.service.Summary()
	cur := h.service.cfg.FinanceCurrency

	var sb strings.Builder
	sb.WriteString("💰 Финансы\n\n")
	sb.WriteString(fmt.Sprintf("Доходы: %s\nРасходы: %s\nБаланс: %s\n",
		common.FormatMoney(totals.Income, cur),
		common.FormatMoney(totals.Expense, cur),
		common.FormatMoney(totals.Balance, cur)))

	if len(byCategory) > 0 {
		sb.WriteString("\n📊 Расходы по категориям:\n")
		for _, c := range byCategory {
			sb.WriteString(fmt.Sprintf("%s — %s\n", c.Category, common.FormatMoney(c.Amount, cur)))
		}
	}
	h.sendMessage(ctx, chatID, strings.TrimRight(sb.String(), "\n"))
}

// HandleAddTransaction записывает операцию: !расход 350 Обед #Еда.
func (h *Handler) HandleAddTransaction(ctx context.Context, chatID int64, txType domain.TransactionType, args []string) {
	if len(args) < 2 {
		cmd := "!расход"
		if txType == domain.TxIncome {
			cmd = "!доход"
		}
		h.sendMessage(ctx, chatID, fmt.Sprintf("Использование: %s <сумма> <описание> [#категория]", cmd))
		return
	}

	amount, err := ParseAmount(args[0])
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "tx_create")
		return
	}
	description, category := splitCategory(args[1:])

	tx, events, err := h.service.AddTransaction(ctx, TxInput{
		Description: description,
		Amount:      amount,
		Type:        txType,
		Category:    category,
	})
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "tx_create")
		return
	}

	sign := "−"
	if tx.Type == domain.TxIncome {
		sign = "+"
	}
	text := fmt.Sprintf("%s%s · %s [%s]", sign,
		common.FormatMoney(tx.Amount, h.service.cfg.FinanceCurrency), tx.Description, tx.Category)
	h.reply(ctx, chatID, text, events)
}

// HandleHistory показывает последние операции.
func (h *Handler) HandleHistory(ctx context.Context, chatID int64) {
	txs := h.service.Transactions()
	if len(txs) == 0 {
		h.sendMessage(ctx, chatID, "📋 Операций пока нет")
		return
	}

	shown := txs[:min(historyLimit, len(txs))]
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 Последние операции (%d из %d):\n\n", len(shown), len(txs)))
	for i, tx := range shown {
		sign := "−"
		if tx.Type == domain.TxIncome {
			sign = "+"
		}
		sb.WriteString(fmt.Sprintf("%d. %s | %s%s | %s [%s]\n", i+1,
			common.FormatDate(tx.Date), sign,
			common.FormatMoney(tx.Amount, h.service.cfg.FinanceCurrency),
			tx.Description, tx.Category))
	}
	h.sendMessage(ctx, chatID, strings.TrimRight(sb.String(), "\n"))
}

// HandleDeleteTransaction спрашивает подтверждение: !удалитьоперацию 3.
func (h *Handler) HandleDeleteTransaction(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 {
		h.sendMessage(ctx, chatID, "Использование: !удалитьоперацию <номер из !операции>")
		return
	}
	txs := h.service.Transactions()
	idx, err := common.ParseIndex(args[0], len(txs))
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "tx_delete")
		return
	}
	tx := txs[idx]
	h.confirm(ctx, chatID,
		fmt.Sprintf("🗑 Удалить операцию «%s» на %s?", tx.Description,
			common.FormatMoney(tx.Amount, h.service.cfg.FinanceCurrency)),
		CallbackDeleteTx+tx.ID)
}

// HandleDeleteTransactionConfirmed удаляет операцию после подтверждения.
func (h *Handler) HandleDeleteTransactionConfirmed(ctx context.Context, chatID int64, id string) {
	tx, err := h.service.DeleteTransaction(ctx, id)
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "tx_delete")
		return
	}
	h.sendMessage(ctx, chatID, fmt.Sprintf("🗑 Операция «%s» удалена", tx.Description))
}

// HandleBills показывает счета: !счета [оплаченные|просроченные].
func (h *Handler) HandleBills(ctx context.Context, chatID int64, args []string) {
	view := BillsPending
	title := "🧾 Счета к оплате"
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "оплаченные", "paid":
			view, title = BillsPaid, "🧾 Оплаченные счета"
		case "просроченные", "overdue":
			view, title = BillsOverdue, "🧾 Просроченные счета"
		}
	}

	bills := h.service.Bills(view)
	if len(bills) == 0 {
		h.sendMessage(ctx, chatID, title+": пусто")
		return
	}

	today := common.StartOfDay(h.service.state.Now())
	var sb strings.Builder
	sb.WriteString(title + "\n\n")
	for i, b := range bills {
		mark := "⬜"
		switch {
		case b.Paid:
			mark = "✅"
		case b.IsOverdue(today):
			mark = "⏰"
		}
		sb.WriteString(fmt.Sprintf("%d. %s %s — %s, до %s\n", i+1, mark, b.Name,
			common.FormatMoney(b.Amount, h.service.cfg.FinanceCurrency), common.FormatDate(b.DueDate)))
	}
	h.sendMessage(ctx, chatID, strings.TrimRight(sb.String(), "\n"))
}

// HandleAddBill добавляет счёт: !счет Интернет @25.10.2026 [+700].
func (h *Handler) HandleAddBill(ctx context.Context, chatID int64, args []string) {
	name, due, amount, err := parseBillArgs(args, h.service.state.Now())
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "bill_create")
		return
	}

	bill, events, err := h.service.AddBill(ctx, name, due, amount)
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "bill_create")
		return
	}
	text := fmt.Sprintf("🧾 «%s» — %s, срок %s", bill.Name,
		common.FormatMoney(bill.Amount, h.service.cfg.FinanceCurrency), common.FormatDate(bill.DueDate))
	h.reply(ctx, chatID, text, events)
}

// HandleToggleBill переключает оплату счёта: !оплатить 1 (номер из !счета).
func (h *Handler) HandleToggleBill(ctx context.Context, chatID int64, args []string) {
	bill, ok := h.pickBill(ctx, chatID, args, "Использование: !оплатить <номер из !счета>", "bill_toggle")
	if !ok {
		return
	}
	updated, events, err := h.service.ToggleBill(ctx, bill.ID)
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "bill_toggle")
		return
	}
	text := ""
	if !updated.Paid {
		text = fmt.Sprintf("↩️ Счёт «%s» снова ждёт оплаты", updated.Name)
	}
	h.reply(ctx, chatID, text, events)
}

// HandleDeleteBill спрашивает подтверждение удаления счёта.
func (h *Handler) HandleDeleteBill(ctx context.Context, chatID int64, args []string) {
	bill, ok := h.pickBill(ctx, chatID, args, "Использование: !удалитьсчет <номер из !счета>", "bill_delete")
	if !ok {
		return
	}
	h.confirm(ctx, chatID, fmt.Sprintf("🗑 Удалить счёт «%s»?", bill.Name), CallbackDeleteBill+bill.ID)
}

// HandleDeleteBillConfirmed удаляет счёт после подтверждения.
func (h *Handler) HandleDeleteBillConfirmed(ctx context.Context, chatID int64, id string) {
	bill, err := h.service.DeleteBill(ctx, id)
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, "bill_delete")
		return
	}
	h.sendMessage(ctx, chatID, fmt.Sprintf("🗑 Счёт «%s» удалён", bill.Name))
}

// pickBill находит счёт по номеру в списке неоплаченных.
func (h *Handler) pickBill(ctx context.Context, chatID int64, args []string, usage, action string) (domain.Bill, bool) {
	if len(args) == 0 {
		h.sendMessage(ctx, chatID, usage)
		return domain.Bill{}, false
	}
	bills := h.service.Bills(BillsPending)
	idx, err := common.ParseIndex(args[0], len(bills))
	if err != nil {
		notify.ReplyError(ctx, h.sender, chatID, err, action)
		return domain.Bill{}, false
	}
	return bills[idx], true
}

// parseBillArgs разбирает «Название @дата [+сумма]». Дата обязательна.
func parseBillArgs(args []string, now time.Time) (name string, due time.Time, amount decimal.Decimal, err error) {
	var words []string
	for _, a := range args {
		switch {
		case len(a) > 1 && strings.HasPrefix(a, "+"):
			if amount, err = ParseAmount(a[1:]); err != nil {
				return "", time.Time{}, decimal.Zero, err
			}
		case len(a) > 1 && strings.HasPrefix(a, "@"):
			if due, err = common.ParseDay(a[1:], now); err != nil {
				return "", time.Time{}, decimal.Zero, err
			}
		default:
			words = append(words, a)
		}
	}
	return strings.Join(words, " "), due, amount, nil
}

// splitCategory отделяет категорию вида #Категория от описания.
func splitCategory(args []string) (text, category string) {
	var words []string
	for _, a := range args {
		if strings.HasPrefix(a, "#") && len(a) > 1 {
			category = strings.TrimPrefix(a, "#")
			continue
		}
		words = append(words, a)
	}
	return strings.Join(words, " "), category
}

func (h *Handler) confirm(ctx context.Context, chatID int64, text, data string) {
	err := h.sender.SendWithButtons(ctx, chatID, text, [][]notify.Button{{
		{Text: "Удалить", Data: data},
		{Text: "Отмена", Data: "cancel"},
	}})
	if err != nil {
		log.WithError(err).Error("Ошибка отправки подтверждения")
	}
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string, events []domain.Event) {
	if err := notify.Reply(ctx, h.sender, chatID, text, events); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}

func (h *Handler) sendMessage(ctx context.Context, chatID int64, text string) {
	if err := h.sender.Send(ctx, chatID, text); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
