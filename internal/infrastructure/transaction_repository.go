package infrastructure

import (
	"context"
	"errors"
	"time"

	"Fluxo/internal/domain/shared"
	"Fluxo/internal/domain/transaction"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository struct {
	DB *gorm.DB
}

var _ transaction.Repository = (*TransactionRepository)(nil)

type transactionDB struct {
	Id              string          `gorm:"type:varchar(26);primaryKey;column:id"`
	UserId          string          `gorm:"type:varchar(26);not null;index:idx_transactions_user_date,priority:1;column:user_id"`
	Date            time.Time       `gorm:"type:date;not null;index:idx_transactions_user_date,priority:2;column:date"`
	Description     string          `gorm:"size:255;not null;column:description"`
	Value           decimal.Decimal `gorm:"type:decimal(15,2);not null;column:value"`
	Type            string          `gorm:"type:varchar(10);not null;column:type"`
	Context         string          `gorm:"type:varchar(10);not null;column:context"`
	CategoryId      string          `gorm:"type:varchar(26);not null;index;column:category_id"`
	Status          string          `gorm:"type:varchar(10);not null;index;column:status"`
	RecurringItemId *string         `gorm:"type:varchar(26);uniqueIndex:idx_transactions_recurring,priority:1;column:recurring_item_id"`
	RecurringPeriod *string         `gorm:"type:varchar(7);uniqueIndex:idx_transactions_recurring,priority:2;column:recurring_period"`
	StagingItemId   *string         `gorm:"type:varchar(26);uniqueIndex;column:staging_item_id"`
	SettledAt       *time.Time      `gorm:"column:settled_at"`
	CreatedAt       time.Time       `gorm:"not null;column:created_at"`
	UpdatedAt       time.Time       `gorm:"not null;column:updated_at"`
}

func (transactionDB) TableName() string {
	return "transactions"
}

func toDomainTransaction(tdb *transactionDB) (*transaction.Transaction, error) {
	id, err := pkg.ParseULID(tdb.Id)
	if err != nil {
		return nil, err
	}
	uid, err := pkg.ParseULID(tdb.UserId)
	if err != nil {
		return nil, err
	}
	cid, err := pkg.ParseULID(tdb.CategoryId)
	if err != nil {
		return nil, err
	}
	recurringID, err := pkg.ParseULIDPtr(tdb.RecurringItemId)
	if err != nil {
		return nil, err
	}
	stagingID, err := pkg.ParseULIDPtr(tdb.StagingItemId)
	if err != nil {
		return nil, err
	}

	return &transaction.Transaction{
		Id:              id,
		UserId:          uid,
		Date:            tdb.Date,
		Description:     tdb.Description,
		Value:           tdb.Value,
		Type:            shared.EntryType(tdb.Type),
		Context:         shared.Context(tdb.Context),
		CategoryId:      cid,
		Status:          transaction.Status(tdb.Status),
		RecurringItemId: recurringID,
		RecurringPeriod: tdb.RecurringPeriod,
		StagingItemId:   stagingID,
		SettledAt:       tdb.SettledAt,
		CreatedAt:       tdb.CreatedAt,
		UpdatedAt:       tdb.UpdatedAt,
	}, nil
}

func toDBTransaction(t *transaction.Transaction) *transactionDB {
	return &transactionDB{
		Id:              t.Id.String(),
		UserId:          t.UserId.String(),
		Date:            t.Date,
		Description:     t.Description,
		Value:           t.Value,
		Type:            string(t.Type),
		Context:         string(t.Context),
		CategoryId:      t.CategoryId.String(),
		Status:          string(t.Status),
		RecurringItemId: pkg.ULIDPtrToString(t.RecurringItemId),
		RecurringPeriod: t.RecurringPeriod,
		StagingItemId:   pkg.ULIDPtrToString(t.StagingItemId),
		SettledAt:       t.SettledAt,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	return dbFrom(ctx, r.DB).Create(toDBTransaction(t)).Error
}

func (r *TransactionRepository) CreateIfAbsent(ctx context.Context, t *transaction.Transaction) (bool, error) {
	result := dbFrom(ctx, r.DB).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(toDBTransaction(t))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, transactionID, userID ulid.ULID) (*transaction.Transaction, error) {
	var tdb transactionDB
	err := dbFrom(ctx, r.DB).
		Where("id = ? AND user_id = ?", transactionID.String(), userID.String()).
		First(&tdb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrTransactionNotFound.WithError(err)
		}
		return nil, err
	}
	return toDomainTransaction(&tdb)
}

func (r *TransactionRepository) List(ctx context.Context, userID ulid.ULID, filter transaction.Filter, pagination *pkg.PaginationParams) ([]*transaction.Transaction, int64, error) {
	query := dbFrom(ctx, r.DB).Model(&transactionDB{}).Where("user_id = ?", userID.String())

	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}
	if filter.CategoryId != nil {
		query = query.Where("category_id = ?", filter.CategoryId.String())
	}
	if filter.Context != nil {
		query = query.Where("context = ?", string(*filter.Context))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.Type != nil {
		query = query.Where("type = ?", string(*filter.Type))
	}

	return pkg.Paginate(query, pagination, "date DESC, id DESC", toDomainTransaction)
}

func (r *TransactionRepository) ListPendingDueUntil(ctx context.Context, userID ulid.ULID, until time.Time) ([]*transaction.Transaction, error) {
	var rows []transactionDB
	err := dbFrom(ctx, r.DB).
		Where("user_id = ? AND status = ? AND date <= ?", userID.String(), string(transaction.StatusPending), until).
		Order("date ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*transaction.Transaction, 0, len(rows))
	for i := range rows {
		tx, err := toDomainTransaction(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// UpdateStatus so altera a linha que ainda esta em from.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, transactionID, userID ulid.ULID, from, to transaction.Status, settledAt *time.Time) (bool, error) {
	result := dbFrom(ctx, r.DB).Model(&transactionDB{}).
		Where("id = ? AND user_id = ? AND status = ?", transactionID.String(), userID.String(), string(from)).
		Updates(map[string]interface{}{
			"status":     string(to),
			"settled_at": settledAt,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *TransactionRepository) Delete(ctx context.Context, transactionID, userID ulid.ULID) error {
	result := dbFrom(ctx, r.DB).
		Where("id = ? AND user_id = ?", transactionID.String(), userID.String()).
		Delete(&transactionDB{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrTransactionNotFound
	}
	return nil
}
