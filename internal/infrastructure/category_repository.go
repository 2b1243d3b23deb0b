package infrastructure

import (
	"context"
	"errors"
	"strings"
	"time"

	"Fluxo/internal/domain/category"
	"Fluxo/internal/domain/shared"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepository struct {
	DB *gorm.DB
}

var _ category.Repository = (*CategoryRepository)(nil)

type categoryDB struct {
	Id        string    `gorm:"type:varchar(26);primaryKey"`
	UserId    string    `gorm:"type:varchar(26);not null;uniqueIndex:idx_categories_user_name,priority:1"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:idx_categories_user_name,priority:2"`
	Type      string    `gorm:"type:varchar(10);not null"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (categoryDB) TableName() string {
	return "categories"
}

func toDomainCategory(cdb *categoryDB) (*category.Category, error) {
	uid, err := pkg.ParseULID(cdb.UserId)
	if err != nil {
		return nil, err
	}
	id, err := pkg.ParseULID(cdb.Id)
	if err != nil {
		return nil, err
	}
	return &category.Category{
		Id:        id,
		UserId:    uid,
		Name:      cdb.Name,
		Type:      shared.EntryType(cdb.Type),
		IsActive:  cdb.IsActive,
		CreatedAt: cdb.CreatedAt,
		UpdatedAt: cdb.UpdatedAt,
	}, nil
}

func toDBCategory(c *category.Category) *categoryDB {
	return &categoryDB{
		Id:        c.Id.String(),
		UserId:    c.UserId.String(),
		Name:      c.Name,
		Type:      string(c.Type),
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (r *CategoryRepository) Create(ctx context.Context, c *category.Category) error {
	return dbFrom(ctx, r.DB).Create(toDBCategory(c)).Error
}

// CreateBatch ignora categorias ja existentes, o que torna a semeadura repetivel.
func (r *CategoryRepository) CreateBatch(ctx context.Context, categories []*category.Category) error {
	if len(categories) == 0 {
		return nil
	}
	rows := make([]*categoryDB, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, toDBCategory(c))
	}
	return dbFrom(ctx, r.DB).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *CategoryRepository) Update(ctx context.Context, c *category.Category) error {
	cdb := toDBCategory(c)
	return dbFrom(ctx, r.DB).Model(&categoryDB{}).
		Where("id = ? AND user_id = ?", cdb.Id, cdb.UserId).
		Updates(map[string]interface{}{
			"name":       cdb.Name,
			"is_active":  cdb.IsActive,
			"updated_at": cdb.UpdatedAt,
		}).Error
}

func (r *CategoryRepository) GetByID(ctx context.Context, categoryID, userID ulid.ULID) (*category.Category, error) {
	var row categoryDB
	err := dbFrom(ctx, r.DB).
		Where("id = ? AND user_id = ?", categoryID.String(), userID.String()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrCategoryNotFound.WithError(err)
		}
		return nil, err
	}
	return toDomainCategory(&row)
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string, userID ulid.ULID) (*category.Category, error) {
	var row categoryDB
	err := dbFrom(ctx, r.DB).
		Where("user_id = ? AND LOWER(name) = ?", userID.String(), strings.ToLower(strings.TrimSpace(name))).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrCategoryNotFound.WithError(err)
		}
		return nil, err
	}
	return toDomainCategory(&row)
}

func (r *CategoryRepository) List(ctx context.Context, userID ulid.ULID, onlyActive bool, pagination *pkg.PaginationParams) ([]*category.Category, int64, error) {
	query := dbFrom(ctx, r.DB).Model(&categoryDB{}).Where("user_id = ?", userID.String())
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	return pkg.Paginate(query, pagination, "name ASC", toDomainCategory)
}
