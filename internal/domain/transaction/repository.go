package transaction

import (
	"context"
	"time"

	"Fluxo/internal/domain/category"
	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	Create(ctx context.Context, transaction *Transaction) error
	// CreateIfAbsent insere ignorando conflito na chave (recurring_item_id, recurring_period).
	CreateIfAbsent(ctx context.Context, transaction *Transaction) (bool, error)
	GetByID(ctx context.Context, transactionID, userID ulid.ULID) (*Transaction, error)
	List(ctx context.Context, userID ulid.ULID, filter Filter, pagination *pkg.PaginationParams) ([]*Transaction, int64, error)
	ListPendingDueUntil(ctx context.Context, userID ulid.ULID, until time.Time) ([]*Transaction, error)
	UpdateStatus(ctx context.Context, transactionID, userID ulid.ULID, from, to Status, settledAt *time.Time) (bool, error)
	Delete(ctx context.Context, transactionID, userID ulid.ULID) error
}

// InvoiceLinkRemover remove os vinculos de fatura de uma transacao.
type InvoiceLinkRemover interface {
	DeleteItemsByTransaction(ctx context.Context, transactionID ulid.ULID) error
}

// CategoryChecker valida categorias antes de gravar.
type CategoryChecker interface {
	EnsureUsable(ctx context.Context, userID, categoryID ulid.ULID) (*category.Category, error)
}
