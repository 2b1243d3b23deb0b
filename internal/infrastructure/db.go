package infrastructure

import (
	"Fluxo/config"
	"Fluxo/internal/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func NewDb(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{}
	if cfg.IsProduction() {
		gormCfg.Logger = gormLogger.Default.LogMode(gormLogger.Silent)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), gormCfg)
	if err != nil {
		logger.Error().
			Err(err).
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("database", cfg.Database.DBName).
			Msg("Falha ao conectar ao banco de dados")
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error().Err(err).Msg("Falha ao obter instância do banco de dados")
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	logger.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.DBName).
		Msg("Conexão com banco de dados estabelecida com sucesso")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

type migration struct {
	name  string
	model interface{}
}

// Migrate cria ou atualiza as tabelas. Os indices unicos de
// (recurring_item_id, recurring_period), (card_id, month) e (user_id, period)
// sustentam as insercoes idempotentes.
func Migrate(db *gorm.DB) error {
	logger.Info().Msg("Executando migrations...")

	entities := []migration{
		{"User", &userDB{}},
		{"Category", &categoryDB{}},
		{"Transaction", &transactionDB{}},
		{"RecurringItem", &recurringItemDB{}},
		{"RecurringRun", &recurringRunDB{}},
		{"Card", &cardDB{}},
		{"CardInvoice", &invoiceDB{}},
		{"CardInvoiceItem", &invoiceItemDB{}},
		{"StagingItem", &stagingItemDB{}},
	}

	for _, entity := range entities {
		if err := db.AutoMigrate(entity.model); err != nil {
			logger.Error().
				Err(err).
				Str("entity", entity.name).
				Msg("Erro ao migrar entidade")
			return err
		}
	}

	logger.Info().Msg("Migrations executadas com sucesso!")
	return nil
}
