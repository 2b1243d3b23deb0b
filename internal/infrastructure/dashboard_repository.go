package infrastructure

import (
	"context"
	"time"

	"Fluxo/internal/domain/dashboard"
	"Fluxo/internal/domain/shared"
	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardRepository struct {
	DB *gorm.DB
}

var _ dashboard.Repository = (*DashboardRepository)(nil)

func (r *DashboardRepository) SumValues(ctx context.Context, q dashboard.SumQuery) (decimal.Decimal, error) {
	query := dbFrom(ctx, r.DB).Model(&transactionDB{}).
		Where("user_id = ? AND type = ? AND status = ? AND date >= ? AND date < ?",
			q.UserId.String(), string(q.Type), string(q.Status), q.From, q.To)
	if q.Context != nil {
		query = query.Where("context = ?", string(*q.Context))
	}

	var row struct {
		Total decimal.NullDecimal `gorm:"column:total"`
	}
	if err := query.Select("SUM(value) AS total").Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	if !row.Total.Valid {
		return decimal.Zero, nil
	}
	return row.Total.Decimal, nil
}

func (r *DashboardRepository) GetExpensesByCategory(ctx context.Context, userID ulid.ULID, from, to time.Time, filter *shared.Context) ([]*dashboard.CategoryExpense, error) {
	type categoryResult struct {
		CategoryId string          `gorm:"column:category_id"`
		Name       *string         `gorm:"column:name"`
		Amount     decimal.Decimal `gorm:"column:amount"`
	}

	query := dbFrom(ctx, r.DB).Table("transactions t").
		Select("t.category_id, c.name, SUM(t.value) AS amount").
		Joins("LEFT JOIN categories c ON t.category_id = c.id").
		Where("t.user_id = ? AND t.type = ? AND t.date >= ? AND t.date < ?",
			userID.String(), string(shared.Expense), from, to)
	if filter != nil {
		query = query.Where("t.context = ?", string(*filter))
	}

	var results []categoryResult
	if err := query.Group("t.category_id, c.name").
		Order("amount ASC").
		Scan(&results).Error; err != nil {
		return nil, err
	}

	items := make([]*dashboard.CategoryExpense, 0, len(results))
	for _, res := range results {
		categoryID, err := pkg.ParseULID(res.CategoryId)
		if err != nil {
			return nil, err
		}
		name := "Sem categoria"
		if res.Name != nil && *res.Name != "" {
			name = *res.Name
		}
		items = append(items, &dashboard.CategoryExpense{
			CategoryId:   categoryID,
			CategoryName: name,
			Total:        res.Amount,
		})
	}
	return items, nil
}
