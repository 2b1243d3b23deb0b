package card

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Fluxo/internal/domain/shared"
	"Fluxo/internal/domain/transaction"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/logger"
	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

const maxInstallments = 48

type InstallmentPurchaseRequest struct {
	UserId       ulid.ULID
	CardId       ulid.ULID
	Date         time.Time
	Description  string
	Total        decimal.Decimal
	Installments int
	Context      shared.Context
	CategoryId   ulid.ULID
}

type InstallmentPurchase struct {
	Transactions []*transaction.Transaction `json:"transactions"`
	Items        []*InvoiceItem             `json:"items"`
}

// SplitInstallments divide total em n parcelas com duas casas; a diferenca do
// arredondamento fica na primeira parcela.
func SplitInstallments(total decimal.Decimal, n int) []decimal.Decimal {
	if n < 1 {
		return nil
	}
	part := total.Abs().Div(decimal.NewFromInt(int64(n))).Truncate(2)
	if total.IsNegative() {
		part = part.Neg()
	}
	parts := make([]decimal.Decimal, n)
	rest := total
	for i := 1; i < n; i++ {
		parts[i] = part
		rest = rest.Sub(part)
	}
	parts[0] = rest
	return parts
}

// CreateInstallmentPurchase grava uma compra parcelada: uma transacao por
// parcela, cada uma na fatura do seu mes, tudo numa unica transacao de banco.
func (s *Service) CreateInstallmentPurchase(ctx context.Context, req *InstallmentPurchaseRequest) (*InstallmentPurchase, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, appErrors.NewValidationError("description", "é obrigatório")
	}
	if req.Installments < 1 || req.Installments > maxInstallments {
		return nil, appErrors.NewValidationError("installments", fmt.Sprintf("deve estar entre 1 e %d", maxInstallments))
	}
	if !req.Total.IsPositive() {
		return nil, appErrors.NewValidationError("total", "deve ser maior que zero")
	}
	if req.Date.IsZero() {
		return nil, appErrors.NewValidationError("date", "é obrigatório")
	}
	if !req.Context.IsValid() {
		return nil, appErrors.NewValidationError("context", "contexto invalido")
	}

	card, err := s.GetCard(ctx, req.CardId, req.UserId)
	if err != nil {
		return nil, err
	}
	if err := card.CheckContext(req.Context); err != nil {
		return nil, err
	}
	if _, err := s.Categories.EnsureUsable(ctx, req.UserId, req.CategoryId); err != nil {
		return nil, err
	}

	parts := SplitInstallments(req.Total.Neg(), req.Installments)
	result := &InstallmentPurchase{
		Transactions: make([]*transaction.Transaction, 0, len(parts)),
		Items:        make([]*InvoiceItem, 0, len(parts)),
	}

	err = s.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var planID *ulid.ULID
		for i, value := range parts {
			date := installmentDate(req.Date, i)
			tx := &transaction.Transaction{
				UserId:      req.UserId,
				Date:        date,
				Description: fmt.Sprintf("%s (%d/%d)", description, i+1, len(parts)),
				Value:       value,
				Type:        shared.Expense,
				Context:     req.Context,
				CategoryId:  req.CategoryId,
				Status:      transaction.StatusPending,
			}
			if err := s.Transactions.Record(ctx, tx); err != nil {
				return err
			}
			if planID == nil {
				first := tx.Id
				planID = &first
			}

			_, item, err := s.AttachTransaction(ctx, card, tx, Installment{
				Of:     planID,
				Number: i + 1,
				Total:  len(parts),
			})
			if err != nil {
				return err
			}
			result.Transactions = append(result.Transactions, tx)
			result.Items = append(result.Items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("card_id", card.Id.String()).
		Int("installments", len(parts)).
		Str("total", req.Total.String()).
		Msg("Compra parcelada registrada")

	return result, nil
}

// installmentDate mantem o dia da compra nos meses seguintes, limitado ao fim do mes.
func installmentDate(first time.Time, offset int) time.Time {
	month := pkg.AddMonths(first, offset)
	return pkg.DateInMonth(month.Year(), month.Month(), first.Day(), first.Location())
}
