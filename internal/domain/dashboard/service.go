package dashboard

import (
	"context"
	"time"

	"Fluxo/internal/domain/shared"
	"Fluxo/internal/domain/transaction"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	Repository Repository
	Now        func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{Repository: repo, Now: time.Now}
}

// BalanceQuery define o periodo [From, To). Datas zeradas usam o mes atual.
type BalanceQuery struct {
	UserId  ulid.ULID
	From    time.Time
	To      time.Time
	Context *shared.Context
}

type MonthlyBalance struct {
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	Received  decimal.Decimal `json:"received"`
	ToReceive decimal.Decimal `json:"toReceive"`
	ToPay     decimal.Decimal `json:"toPay"`
	Balance   decimal.Decimal `json:"balance"`
}

type CategoryExpense struct {
	CategoryId   ulid.ULID       `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Total        decimal.Decimal `json:"total"`
	Percentage   float64         `json:"percentage"`
}

// GetMonthlyBalance devolve recebido, a receber e a pagar do periodo.
// ToPay e a magnitude das saidas pendentes e Balance = Received - ToPay.
func (s *Service) GetMonthlyBalance(ctx context.Context, q BalanceQuery) (*MonthlyBalance, error) {
	from, to, err := s.resolveRange(q.From, q.To)
	if err != nil {
		return nil, err
	}
	if q.Context != nil && !q.Context.IsValid() {
		return nil, appErrors.NewValidationError("context", "contexto invalido")
	}

	base := SumQuery{UserId: q.UserId, From: from, To: to, Context: q.Context}
	received := base
	received.Type, received.Status = shared.Income, transaction.StatusReceived
	toReceive := base
	toReceive.Type, toReceive.Status = shared.Income, transaction.StatusPending
	toPay := base
	toPay.Type, toPay.Status = shared.Expense, transaction.StatusPending

	var sums [3]decimal.Decimal
	g, gctx := errgroup.WithContext(ctx)
	for i, query := range []SumQuery{received, toReceive, toPay} {
		g.Go(func() error {
			total, err := s.Repository.SumValues(gctx, query)
			if err != nil {
				return err
			}
			sums[i] = total
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	result := &MonthlyBalance{
		From:      from,
		To:        to,
		Received:  sums[0],
		ToReceive: sums[1],
		ToPay:     sums[2].Abs(),
	}
	result.Balance = result.Received.Sub(result.ToPay)
	return result, nil
}

// GetExpensesByCategory agrupa as saidas do periodo por categoria.
func (s *Service) GetExpensesByCategory(ctx context.Context, q BalanceQuery) ([]*CategoryExpense, error) {
	from, to, err := s.resolveRange(q.From, q.To)
	if err != nil {
		return nil, err
	}

	expenses, err := s.Repository.GetExpensesByCategory(ctx, q.UserId, from, to, q.Context)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	total := decimal.Zero
	for _, e := range expenses {
		e.Total = e.Total.Abs()
		total = total.Add(e.Total)
	}
	if total.IsPositive() {
		for _, e := range expenses {
			e.Percentage = e.Total.Div(total).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
		}
	}
	return expenses, nil
}

func (s *Service) resolveRange(from, to time.Time) (time.Time, time.Time, error) {
	if from.IsZero() && to.IsZero() {
		now := time.Now()
		if s.Now != nil {
			now = s.Now()
		}
		start, end := pkg.MonthRange(now)
		return start, end, nil
	}
	if from.IsZero() || to.IsZero() {
		return time.Time{}, time.Time{}, appErrors.NewValidationError("period", "informe inicio e fim")
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, appErrors.NewValidationError("to", "data final deve ser posterior a inicial")
	}
	return from, to, nil
}
