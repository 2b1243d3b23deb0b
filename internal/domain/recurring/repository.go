package recurring

import (
	"context"

	"Fluxo/internal/domain/category"
	"Fluxo/internal/domain/transaction"
	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
)

//go:generate mockgen -source=repository.go -destination=mocks/mock_recurring.go -package=mocks

type Repository interface {
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, itemID, userID ulid.ULID) error
	GetByID(ctx context.Context, itemID, userID ulid.ULID) (*Item, error)
	ListByUser(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*Item, int64, error)
	ListActive(ctx context.Context, userID ulid.ULID) ([]*Item, error)
	ListUsersWithActiveItems(ctx context.Context) ([]ulid.ULID, error)

	HasRun(ctx context.Context, userID ulid.ULID, period string) (bool, error)
	// MarkRun grava o marcador ignorando conflito em (user_id, period).
	MarkRun(ctx context.Context, run *Run) error
}

// TransactionCreator grava as transacoes geradas, ignorando as ja existentes
// para o mesmo item e competencia.
type TransactionCreator interface {
	CreateIfAbsent(ctx context.Context, tx *transaction.Transaction) (bool, error)
}

type CategoryChecker interface {
	EnsureUsable(ctx context.Context, userID, categoryID ulid.ULID) (*category.Category, error)
}
