package alert

import (
	"context"
	"fmt"
	"sort"
	"time"

	"Fluxo/internal/domain/card"
	"Fluxo/internal/domain/transaction"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const DefaultLookaheadDays = 7

type TransactionSource interface {
	ListPendingDueUntil(ctx context.Context, userID ulid.ULID, until time.Time) ([]*transaction.Transaction, error)
	Settle(ctx context.Context, userID, transactionID ulid.ULID) (*transaction.Transaction, error)
}

type InvoiceSource interface {
	ListUnpaidDueUntil(ctx context.Context, userID ulid.ULID, until time.Time) ([]*card.InvoiceSummary, error)
	PayInvoice(ctx context.Context, userID, invoiceID ulid.ULID) (*card.Invoice, error)
}

type Service struct {
	Transactions  TransactionSource
	Invoices      InvoiceSource
	LookaheadDays int
	Now           func() time.Time
}

func NewService(transactions TransactionSource, invoices InvoiceSource, lookaheadDays int) *Service {
	if lookaheadDays < 0 {
		lookaheadDays = DefaultLookaheadDays
	}
	return &Service{
		Transactions:  transactions,
		Invoices:      invoices,
		LookaheadDays: lookaheadDays,
		Now:           time.Now,
	}
}

// UpcomingDueItems lista transacoes pendentes e faturas nao pagas com
// vencimento ate hoje+lookaheadDays, ordenadas pelo vencimento. Itens vencidos
// antes de hoje continuam na lista marcados como Overdue.
func (s *Service) UpcomingDueItems(ctx context.Context, userID ulid.ULID, lookaheadDays int) ([]*DueItem, error) {
	if lookaheadDays < 0 {
		return nil, appErrors.NewValidationError("days", "deve ser maior ou igual a zero")
	}

	// datas de vencimento sao dias de calendario; hoje usa o dia local
	today := pkg.CalendarDay(s.now())
	until := today.AddDate(0, 0, lookaheadDays)

	var (
		txs      []*transaction.Transaction
		invoices []*card.InvoiceSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.Transactions.ListPendingDueUntil(gctx, userID, until)
		return err
	})
	g.Go(func() error {
		var err error
		invoices, err = s.Invoices.ListUnpaidDueUntil(gctx, userID, until)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	items := make([]*DueItem, 0, len(txs)+len(invoices))
	for _, tx := range txs {
		items = append(items, newDueItem(SourceTransaction, tx.Id, tx.Description, tx.Date, today, tx.Value))
	}
	for _, inv := range invoices {
		description := fmt.Sprintf("Fatura %s %s", inv.CardLabel, inv.Invoice.Month)
		items = append(items, newDueItem(SourceInvoice, inv.Invoice.Id, description, inv.Invoice.DueDate, today, inv.Total))
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].DueDate.Equal(items[j].DueDate) {
			return items[i].DueDate.Before(items[j].DueDate)
		}
		return items[i].Description < items[j].Description
	})
	return items, nil
}

// MarkAsPaid quita o item de origem: transacoes viram PAID ou RECEIVED
// conforme o tipo, faturas viram PAID (apenas se fechadas).
func (s *Service) MarkAsPaid(ctx context.Context, userID ulid.ULID, source SourceType, id ulid.ULID) error {
	switch source {
	case SourceTransaction:
		_, err := s.Transactions.Settle(ctx, userID, id)
		return err
	case SourceInvoice:
		_, err := s.Invoices.PayInvoice(ctx, userID, id)
		return err
	}
	return appErrors.NewValidationError("source_type", "origem invalida")
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func newDueItem(source SourceType, id ulid.ULID, description string, due, today time.Time, amount decimal.Decimal) *DueItem {
	due = pkg.CalendarDay(due)
	return &DueItem{
		SourceType:   source,
		SourceId:     id,
		Description:  description,
		DueDate:      due,
		Amount:       amount,
		Overdue:      due.Before(today),
		DaysUntilDue: int(due.Sub(today).Hours() / 24),
	}
}
