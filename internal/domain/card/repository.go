package card

import (
	"context"
	"time"

	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	CreateCard(ctx context.Context, card *Card) error
	UpdateCard(ctx context.Context, card *Card) error
	DeleteCard(ctx context.Context, cardID, userID ulid.ULID) error
	GetCardByID(ctx context.Context, cardID, userID ulid.ULID) (*Card, error)
	ListCards(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*Card, int64, error)
	ListAllCards(ctx context.Context, userID ulid.ULID) ([]*Card, error)

	GetInvoiceByMonth(ctx context.Context, cardID ulid.ULID, month string) (*Invoice, error)
	// CreateInvoiceIfAbsent insere a fatura ignorando conflito em (card_id, month).
	CreateInvoiceIfAbsent(ctx context.Context, invoice *Invoice) (bool, error)
	GetInvoiceByID(ctx context.Context, invoiceID, userID ulid.ULID) (*Invoice, error)
	ListInvoices(ctx context.Context, cardID, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*Invoice, int64, error)
	UpdateInvoiceStatus(ctx context.Context, invoice *Invoice, from InvoiceStatus) (bool, error)
	CountUnpaidInvoices(ctx context.Context, cardID ulid.ULID) (int64, error)
	ListUnpaidDueUntil(ctx context.Context, userID ulid.ULID, until time.Time) ([]*InvoiceSummary, error)

	CreateItem(ctx context.Context, item *InvoiceItem) error
	ListLines(ctx context.Context, invoiceID ulid.ULID) ([]*InvoiceLine, error)
	DeleteItemsByTransaction(ctx context.Context, transactionID ulid.ULID) error
}
