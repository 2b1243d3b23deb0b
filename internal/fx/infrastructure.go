package fx

import (
	"context"

	"Fluxo/config"
	"Fluxo/internal/domain/shared"
	"Fluxo/internal/infrastructure"
	"Fluxo/internal/logger"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

var InfrastructureModule = fx.Module("infrastructure",
	fx.Provide(
		newDatabase,
		newTransactor,
		newUserRepository,
		newCategoryRepository,
		newTransactionRepository,
		newCardRepository,
		newRecurringRepository,
		newStagingRepository,
		newDashboardRepository,
	),
)

func newDatabase(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	db, err := infrastructure.NewDb(cfg)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			logger.Info().Msg("Fechando conexoes com o banco")
			return sqlDB.Close()
		},
	})
	return db, nil
}

func newTransactor(db *gorm.DB) shared.Transactor {
	return infrastructure.NewGormTransactor(db)
}

func newUserRepository(db *gorm.DB) *infrastructure.UserRepository {
	return &infrastructure.UserRepository{DB: db}
}

func newCategoryRepository(db *gorm.DB) *infrastructure.CategoryRepository {
	return &infrastructure.CategoryRepository{DB: db}
}

func newTransactionRepository(db *gorm.DB) *infrastructure.TransactionRepository {
	return &infrastructure.TransactionRepository{DB: db}
}

func newCardRepository(db *gorm.DB) *infrastructure.CardRepository {
	return &infrastructure.CardRepository{DB: db}
}

func newRecurringRepository(db *gorm.DB) *infrastructure.RecurringRepository {
	return &infrastructure.RecurringRepository{DB: db}
}

func newStagingRepository(db *gorm.DB) *infrastructure.StagingRepository {
	return &infrastructure.StagingRepository{DB: db}
}

func newDashboardRepository(db *gorm.DB) *infrastructure.DashboardRepository {
	return &infrastructure.DashboardRepository{DB: db}
}
