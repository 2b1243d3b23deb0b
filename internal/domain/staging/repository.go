package staging

import (
	"context"
	"time"

	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	CreateBatch(ctx context.Context, items []*Item) error
	GetByID(ctx context.Context, id, userID ulid.ULID) (*Item, error)
	// GetByIDs devolve apenas as linhas do usuario; ids desconhecidos sao omitidos.
	GetByIDs(ctx context.Context, userID ulid.ULID, ids []ulid.ULID) ([]*Item, error)
	ListByStatus(ctx context.Context, userID ulid.ULID, status Status, pagination *pkg.PaginationParams) ([]*Item, int64, error)
	// MarkApproved so altera linhas PENDING; false quando nada foi alterado.
	MarkApproved(ctx context.Context, userID ulid.ULID, decision Decision, decidedAt time.Time) (bool, error)
	// SetTransaction so grava linhas ainda sem transacao; false quando outra
	// execucao ja vinculou a linha.
	SetTransaction(ctx context.Context, id, transactionID ulid.ULID) (bool, error)
	MarkIgnored(ctx context.Context, userID ulid.ULID, ids []ulid.ULID, decidedAt time.Time) (int64, error)
	ListApprovedWithoutTransaction(ctx context.Context, userID ulid.ULID) ([]*Item, error)
	ListUsersWithOrphans(ctx context.Context) ([]ulid.ULID, error)
}
