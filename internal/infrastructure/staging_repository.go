package infrastructure

import (
	"context"
	"errors"
	"time"

	"Fluxo/internal/domain/shared"
	"Fluxo/internal/domain/staging"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StagingRepository struct {
	DB *gorm.DB
}

var _ staging.Repository = (*StagingRepository)(nil)

type stagingItemDB struct {
	Id                  string          `gorm:"type:varchar(26);primaryKey;column:id"`
	UserId              string          `gorm:"type:varchar(26);not null;index:idx_staging_user_status,priority:1;column:user_id"`
	RawPayload          string          `gorm:"type:text;column:raw_payload"`
	Date                time.Time       `gorm:"type:date;not null;column:date"`
	Description         string          `gorm:"type:varchar(255);not null;column:description"`
	Value               decimal.Decimal `gorm:"type:decimal(15,2);not null;column:value"`
	CardLabel           *string         `gorm:"type:varchar(100);column:card_label"`
	SuggestedContext    *string         `gorm:"type:varchar(10);column:suggested_context"`
	SuggestedCategoryId *string         `gorm:"type:varchar(26);column:suggested_category_id"`
	Status              string          `gorm:"type:varchar(10);not null;default:'PENDING';index:idx_staging_user_status,priority:2;column:status"`
	DecidedContext      *string         `gorm:"type:varchar(10);column:decided_context"`
	DecidedCategoryId   *string         `gorm:"type:varchar(26);column:decided_category_id"`
	TransactionId       *string         `gorm:"type:varchar(26);index;column:transaction_id"`
	DecidedAt           *time.Time      `gorm:"column:decided_at"`
	CreatedAt           time.Time       `gorm:"not null;column:created_at"`
	UpdatedAt           time.Time       `gorm:"not null;column:updated_at"`
}

func (stagingItemDB) TableName() string {
	return "staging_items"
}

func contextPtrToString(c *shared.Context) *string {
	if c == nil {
		return nil
	}
	s := string(*c)
	return &s
}

func stringToContextPtr(s *string) *shared.Context {
	if s == nil || *s == "" {
		return nil
	}
	c := shared.Context(*s)
	return &c
}

func toDomainStagingItem(sdb *stagingItemDB) (*staging.Item, error) {
	id, err := pkg.ParseULID(sdb.Id)
	if err != nil {
		return nil, err
	}
	userID, err := pkg.ParseULID(sdb.UserId)
	if err != nil {
		return nil, err
	}
	suggestedCategory, err := pkg.ParseULIDPtr(sdb.SuggestedCategoryId)
	if err != nil {
		return nil, err
	}
	decidedCategory, err := pkg.ParseULIDPtr(sdb.DecidedCategoryId)
	if err != nil {
		return nil, err
	}
	txID, err := pkg.ParseULIDPtr(sdb.TransactionId)
	if err != nil {
		return nil, err
	}

	return &staging.Item{
		Id:                  id,
		UserId:              userID,
		RawPayload:          sdb.RawPayload,
		Date:                sdb.Date,
		Description:         sdb.Description,
		Value:               sdb.Value,
		CardLabel:           sdb.CardLabel,
		SuggestedContext:    stringToContextPtr(sdb.SuggestedContext),
		SuggestedCategoryId: suggestedCategory,
		Status:              staging.Status(sdb.Status),
		DecidedContext:      stringToContextPtr(sdb.DecidedContext),
		DecidedCategoryId:   decidedCategory,
		TransactionId:       txID,
		DecidedAt:           sdb.DecidedAt,
		CreatedAt:           sdb.CreatedAt,
		UpdatedAt:           sdb.UpdatedAt,
	}, nil
}

func toDBStagingItem(item *staging.Item) *stagingItemDB {
	return &stagingItemDB{
		Id:                  item.Id.String(),
		UserId:              item.UserId.String(),
		RawPayload:          item.RawPayload,
		Date:                item.Date,
		Description:         item.Description,
		Value:               item.Value,
		CardLabel:           item.CardLabel,
		SuggestedContext:    contextPtrToString(item.SuggestedContext),
		SuggestedCategoryId: pkg.ULIDPtrToString(item.SuggestedCategoryId),
		Status:              string(item.Status),
		DecidedContext:      contextPtrToString(item.DecidedContext),
		DecidedCategoryId:   pkg.ULIDPtrToString(item.DecidedCategoryId),
		TransactionId:       pkg.ULIDPtrToString(item.TransactionId),
		DecidedAt:           item.DecidedAt,
		CreatedAt:           item.CreatedAt,
		UpdatedAt:           item.UpdatedAt,
	}
}

func toDomainStagingItems(rows []stagingItemDB) ([]*staging.Item, error) {
	out := make([]*staging.Item, 0, len(rows))
	for i := range rows {
		item, err := toDomainStagingItem(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *StagingRepository) CreateBatch(ctx context.Context, items []*staging.Item) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]*stagingItemDB, 0, len(items))
	for _, item := range items {
		rows = append(rows, toDBStagingItem(item))
	}
	return dbFrom(ctx, r.DB).CreateInBatches(&rows, 200).Error
}

func (r *StagingRepository) GetByID(ctx context.Context, id, userID ulid.ULID) (*staging.Item, error) {
	var sdb stagingItemDB
	err := dbFrom(ctx, r.DB).
		Where("id = ? AND user_id = ?", id.String(), userID.String()).
		First(&sdb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrStagingItemNotFound.WithError(err)
		}
		return nil, err
	}
	return toDomainStagingItem(&sdb)
}

func (r *StagingRepository) GetByIDs(ctx context.Context, userID ulid.ULID, ids []ulid.ULID) ([]*staging.Item, error) {
	if len(ids) == 0 {
		return []*staging.Item{}, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}

	var rows []stagingItemDB
	err := dbFrom(ctx, r.DB).
		Where("user_id = ? AND id IN ?", userID.String(), keys).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainStagingItems(rows)
}

func (r *StagingRepository) ListByStatus(ctx context.Context, userID ulid.ULID, status staging.Status, pagination *pkg.PaginationParams) ([]*staging.Item, int64, error) {
	query := dbFrom(ctx, r.DB).Model(&stagingItemDB{}).
		Where("user_id = ? AND status = ?", userID.String(), string(status))
	return pkg.Paginate(query, pagination, "date DESC, id ASC", toDomainStagingItem)
}

func (r *StagingRepository) MarkApproved(ctx context.Context, userID ulid.ULID, decision staging.Decision, decidedAt time.Time) (bool, error) {
	result := dbFrom(ctx, r.DB).Model(&stagingItemDB{}).
		Where("id = ? AND user_id = ? AND status = ?",
			decision.StagingItemId.String(), userID.String(), string(staging.StatusPending)).
		Updates(map[string]interface{}{
			"status":              string(staging.StatusApproved),
			"decided_context":     string(decision.DecidedContext),
			"decided_category_id": decision.DecidedCategoryId.String(),
			"decided_at":          decidedAt,
			"updated_at":          decidedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *StagingRepository) SetTransaction(ctx context.Context, id, transactionID ulid.ULID) (bool, error) {
	result := dbFrom(ctx, r.DB).Model(&stagingItemDB{}).
		Where("id = ? AND transaction_id IS NULL", id.String()).
		Updates(map[string]interface{}{
			"transaction_id": transactionID.String(),
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *StagingRepository) MarkIgnored(ctx context.Context, userID ulid.ULID, ids []ulid.ULID, decidedAt time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}

	result := dbFrom(ctx, r.DB).Model(&stagingItemDB{}).
		Where("user_id = ? AND status = ? AND id IN ?", userID.String(), string(staging.StatusPending), keys).
		Updates(map[string]interface{}{
			"status":     string(staging.StatusIgnored),
			"decided_at": decidedAt,
			"updated_at": decidedAt,
		})
	return result.RowsAffected, result.Error
}

func (r *StagingRepository) ListApprovedWithoutTransaction(ctx context.Context, userID ulid.ULID) ([]*staging.Item, error) {
	var rows []stagingItemDB
	err := dbFrom(ctx, r.DB).
		Where("user_id = ? AND status = ? AND transaction_id IS NULL", userID.String(), string(staging.StatusApproved)).
		Order("date ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainStagingItems(rows)
}

func (r *StagingRepository) ListUsersWithOrphans(ctx context.Context) ([]ulid.ULID, error) {
	var ids []string
	err := dbFrom(ctx, r.DB).Model(&stagingItemDB{}).
		Where("status = ? AND transaction_id IS NULL", string(staging.StatusApproved)).
		Distinct("user_id").
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return parseIDs(ids)
}
