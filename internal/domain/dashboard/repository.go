package dashboard

import (
	"context"
	"time"

	"Fluxo/internal/domain/shared"
	"Fluxo/internal/domain/transaction"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// SumQuery soma o valor assinado das transacoes do usuario em [From, To).
type SumQuery struct {
	UserId  ulid.ULID
	From    time.Time
	To      time.Time
	Type    shared.EntryType
	Status  transaction.Status
	Context *shared.Context
}

type Repository interface {
	SumValues(ctx context.Context, q SumQuery) (decimal.Decimal, error)
	GetExpensesByCategory(ctx context.Context, userID ulid.ULID, from, to time.Time, filter *shared.Context) ([]*CategoryExpense, error)
}
