package infrastructure

import (
	"context"
	"errors"
	"time"

	"Fluxo/internal/domain/shared"
	"Fluxo/internal/domain/user"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

type userDB struct {
	Id             string    `gorm:"type:varchar(26);primaryKey"`
	Name           string    `gorm:"type:varchar(100);not null"`
	Email          string    `gorm:"type:varchar(100);uniqueIndex:idx_users_email;not null"`
	Password       string    `gorm:"type:varchar(255);not null"`
	DefaultContext string    `gorm:"type:varchar(10);not null;default:'PERSONAL'"`
	CreatedAt      time.Time `gorm:"autoCreateTime;not null"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime;not null"`
}

func (userDB) TableName() string {
	return "users"
}

func toDomainUser(udb *userDB) (*user.User, error) {
	id, err := pkg.ParseULID(udb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}

	return &user.User{
		Id:             id,
		Name:           udb.Name,
		Email:          udb.Email,
		Password:       udb.Password,
		DefaultContext: shared.Context(udb.DefaultContext),
		CreatedAt:      udb.CreatedAt,
		UpdatedAt:      udb.UpdatedAt,
	}, nil
}

func toDBUser(u *user.User) *userDB {
	return &userDB{
		Id:             u.Id.String(),
		Name:           u.Name,
		Email:          u.Email,
		Password:       u.Password,
		DefaultContext: string(u.DefaultContext),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	udb := toDBUser(u)
	if err := dbFrom(ctx, r.DB).Create(udb).Error; err != nil {
		if shared.IsUniqueConstraintError(err) {
			return appErrors.ErrEmailAlreadyExists.WithError(err)
		}
		return appErrors.NewDatabaseError(err)
	}
	u.CreatedAt = udb.CreatedAt
	u.UpdatedAt = udb.UpdatedAt
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	udb := toDBUser(u)
	result := dbFrom(ctx, r.DB).Model(&userDB{}).Where("id = ?", udb.Id).Updates(map[string]interface{}{
		"name":            udb.Name,
		"password":        udb.Password,
		"default_context": udb.DefaultContext,
		"updated_at":      time.Now(),
	})
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*user.User, error) {
	var udb userDB
	if err := dbFrom(ctx, r.DB).Where("id = ?", id.String()).First(&udb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrUserNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainUser(&udb)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var udb userDB
	if err := dbFrom(ctx, r.DB).Where("email = ?", email).First(&udb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrUserNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainUser(&udb)
}

func (r *UserRepository) ListIDs(ctx context.Context) ([]ulid.ULID, error) {
	var ids []string
	if err := dbFrom(ctx, r.DB).Model(&userDB{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return parseIDs(ids)
}

func parseIDs(values []string) ([]ulid.ULID, error) {
	ids, err := pkg.ParseULIDList(values)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return ids, nil
}
