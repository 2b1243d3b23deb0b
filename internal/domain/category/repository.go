package category

import (
	"context"

	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	Create(ctx context.Context, category *Category) error
	CreateBatch(ctx context.Context, categories []*Category) error
	Update(ctx context.Context, category *Category) error
	GetByID(ctx context.Context, categoryID, userID ulid.ULID) (*Category, error)
	GetByName(ctx context.Context, name string, userID ulid.ULID) (*Category, error)
	List(ctx context.Context, userID ulid.ULID, onlyActive bool, pagination *pkg.PaginationParams) ([]*Category, int64, error)
}
