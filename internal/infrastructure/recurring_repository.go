package infrastructure

import (
	"context"
	"errors"
	"time"

	"Fluxo/internal/domain/recurring"
	"Fluxo/internal/domain/shared"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RecurringRepository struct {
	DB *gorm.DB
}

var _ recurring.Repository = (*RecurringRepository)(nil)

type recurringItemDB struct {
	Id          string          `gorm:"type:varchar(26);primaryKey;column:id"`
	UserId      string          `gorm:"type:varchar(26);index;not null;column:user_id"`
	Description string          `gorm:"type:varchar(255);not null;column:description"`
	Type        string          `gorm:"type:varchar(10);not null;column:type"`
	Context     string          `gorm:"type:varchar(10);not null;column:context"`
	CategoryId  string          `gorm:"type:varchar(26);index;not null;column:category_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null;column:amount"`
	DueDay      int             `gorm:"not null;column:due_day"`
	IsActive    bool            `gorm:"not null;default:true;column:is_active"`
	CreatedAt   time.Time       `gorm:"not null;column:created_at"`
	UpdatedAt   time.Time       `gorm:"not null;column:updated_at"`
}

func (recurringItemDB) TableName() string {
	return "fixed_items"
}

type recurringRunDB struct {
	UserId    string    `gorm:"type:varchar(26);primaryKey;column:user_id"`
	Period    string    `gorm:"type:varchar(7);primaryKey;column:period"`
	Created   int       `gorm:"not null;default:0;column:created"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
}

func (recurringRunDB) TableName() string {
	return "recurring_runs"
}

func toDomainRecurring(rdb *recurringItemDB) (*recurring.Item, error) {
	id, err := pkg.ParseULID(rdb.Id)
	if err != nil {
		return nil, err
	}
	userID, err := pkg.ParseULID(rdb.UserId)
	if err != nil {
		return nil, err
	}
	categoryID, err := pkg.ParseULID(rdb.CategoryId)
	if err != nil {
		return nil, err
	}

	return &recurring.Item{
		Id:          id,
		UserId:      userID,
		Description: rdb.Description,
		Type:        shared.EntryType(rdb.Type),
		Context:     shared.Context(rdb.Context),
		CategoryId:  categoryID,
		Amount:      rdb.Amount,
		DueDay:      rdb.DueDay,
		IsActive:    rdb.IsActive,
		CreatedAt:   rdb.CreatedAt,
		UpdatedAt:   rdb.UpdatedAt,
	}, nil
}

func toDBRecurring(item *recurring.Item) *recurringItemDB {
	return &recurringItemDB{
		Id:          item.Id.String(),
		UserId:      item.UserId.String(),
		Description: item.Description,
		Type:        string(item.Type),
		Context:     string(item.Context),
		CategoryId:  item.CategoryId.String(),
		Amount:      item.Amount,
		DueDay:      item.DueDay,
		IsActive:    item.IsActive,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func (r *RecurringRepository) Create(ctx context.Context, item *recurring.Item) error {
	return dbFrom(ctx, r.DB).Create(toDBRecurring(item)).Error
}

func (r *RecurringRepository) Update(ctx context.Context, item *recurring.Item) error {
	rdb := toDBRecurring(item)
	return dbFrom(ctx, r.DB).Model(&recurringItemDB{}).
		Where("id = ? AND user_id = ?", rdb.Id, rdb.UserId).
		Updates(map[string]interface{}{
			"description": rdb.Description,
			"type":        rdb.Type,
			"context":     rdb.Context,
			"category_id": rdb.CategoryId,
			"amount":      rdb.Amount,
			"due_day":     rdb.DueDay,
			"is_active":   rdb.IsActive,
			"updated_at":  rdb.UpdatedAt,
		}).Error
}

func (r *RecurringRepository) Delete(ctx context.Context, itemID, userID ulid.ULID) error {
	return dbFrom(ctx, r.DB).
		Where("id = ? AND user_id = ?", itemID.String(), userID.String()).
		Delete(&recurringItemDB{}).Error
}

func (r *RecurringRepository) GetByID(ctx context.Context, itemID, userID ulid.ULID) (*recurring.Item, error) {
	var rdb recurringItemDB
	err := dbFrom(ctx, r.DB).
		Where("id = ? AND user_id = ?", itemID.String(), userID.String()).
		First(&rdb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrRecurringNotFound.WithError(err)
		}
		return nil, err
	}
	return toDomainRecurring(&rdb)
}

func (r *RecurringRepository) ListByUser(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*recurring.Item, int64, error) {
	query := dbFrom(ctx, r.DB).Model(&recurringItemDB{}).Where("user_id = ?", userID.String())
	return pkg.Paginate(query, pagination, "due_day ASC, description ASC", toDomainRecurring)
}

func (r *RecurringRepository) ListActive(ctx context.Context, userID ulid.ULID) ([]*recurring.Item, error) {
	var rows []recurringItemDB
	err := dbFrom(ctx, r.DB).
		Where("user_id = ? AND is_active = ?", userID.String(), true).
		Order("due_day ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*recurring.Item, 0, len(rows))
	for i := range rows {
		item, err := toDomainRecurring(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *RecurringRepository) ListUsersWithActiveItems(ctx context.Context) ([]ulid.ULID, error) {
	var ids []string
	err := dbFrom(ctx, r.DB).Model(&recurringItemDB{}).
		Where("is_active = ?", true).
		Distinct("user_id").
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return parseIDs(ids)
}

func (r *RecurringRepository) HasRun(ctx context.Context, userID ulid.ULID, period string) (bool, error) {
	var count int64
	err := dbFrom(ctx, r.DB).Model(&recurringRunDB{}).
		Where("user_id = ? AND period = ?", userID.String(), period).
		Count(&count).Error
	return count > 0, err
}

func (r *RecurringRepository) MarkRun(ctx context.Context, run *recurring.Run) error {
	return dbFrom(ctx, r.DB).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&recurringRunDB{
			UserId:    run.UserId.String(),
			Period:    run.Period,
			Created:   run.Created,
			CreatedAt: run.CreatedAt,
		}).Error
}
