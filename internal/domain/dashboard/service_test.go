package dashboard_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"Fluxo/internal/domain/dashboard"
	"Fluxo/internal/domain/shared"
	"Fluxo/internal/domain/transaction"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	mu      sync.Mutex
	queries []dashboard.SumQuery
	sums    map[string]decimal.Decimal
	err     error
	byCat   []*dashboard.CategoryExpense
}

func (f *fakeRepository) SumValues(ctx context.Context, q dashboard.SumQuery) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.sums[string(q.Type)+"/"+string(q.Status)], nil
}

func (f *fakeRepository) GetExpensesByCategory(ctx context.Context, userID ulid.ULID, from, to time.Time, filter *shared.Context) ([]*dashboard.CategoryExpense, error) {
	return f.byCat, nil
}

func TestGetMonthlyBalance(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{sums: map[string]decimal.Decimal{
		"INCOME/RECEIVED": decimal.NewFromInt(3000),
		"INCOME/PENDING":  decimal.NewFromInt(500),
		"EXPENSE/PENDING": decimal.NewFromInt(-1200),
	}}
	svc := dashboard.NewService(repo)
	svc.Now = func() time.Time { return time.Date(2025, time.March, 18, 10, 0, 0, 0, time.UTC) }

	business := shared.Business
	balance, err := svc.GetMonthlyBalance(context.Background(), dashboard.BalanceQuery{UserId: pkg.NewID(), Context: &business})
	require.NoError(t, err)

	assert.True(t, balance.Received.Equal(decimal.NewFromInt(3000)))
	assert.True(t, balance.ToReceive.Equal(decimal.NewFromInt(500)))
	assert.True(t, balance.ToPay.Equal(decimal.NewFromInt(1200)))
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(1800)))
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), balance.From)
	assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), balance.To)

	require.Len(t, repo.queries, 3)
	for _, q := range repo.queries {
		require.NotNil(t, q.Context)
		assert.Equal(t, shared.Business, *q.Context)
		if q.Type == shared.Expense {
			assert.Equal(t, transaction.StatusPending, q.Status)
		}
	}
}

func TestGetMonthlyBalanceErrors(t *testing.T) {
	t.Parallel()

	svc := dashboard.NewService(&fakeRepository{err: errors.New("db down")})
	_, err := svc.GetMonthlyBalance(context.Background(), dashboard.BalanceQuery{UserId: pkg.NewID()})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrDatabase.Code))

	from := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.GetMonthlyBalance(context.Background(), dashboard.BalanceQuery{UserId: pkg.NewID(), From: from, To: from})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestGetExpensesByCategoryPercentages(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{byCat: []*dashboard.CategoryExpense{
		{CategoryName: "Moradia", Total: decimal.NewFromInt(-750)},
		{CategoryName: "Lazer", Total: decimal.NewFromInt(-250)},
	}}
	svc := dashboard.NewService(repo)

	out, err := svc.GetExpensesByCategory(context.Background(), dashboard.BalanceQuery{UserId: pkg.NewID()})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 75.0, out[0].Percentage)
	assert.True(t, out[1].Total.Equal(decimal.NewFromInt(250)))
}
