package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Log       LogConfig
	Staging   StagingConfig
	Recurring RecurringConfig
	Alerts    AlertsConfig
	Cache     CacheConfig
}

type AppConfig struct {
	Name        string
	Environment string
}

type ServerConfig struct {
	Port              string
	AllowedOrigins    []string
	RequestsPerMinute int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// StagingConfig controla a aprovacao de itens importados.
type StagingConfig struct {
	ApprovalWorkers int
}

type RecurringConfig struct {
	Workers int
}

type AlertsConfig struct {
	LookaheadDays int
}

type CacheConfig struct {
	CardLabelTTL time.Duration
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Load monta a configuracao a partir das variaveis de ambiente.
// O .env (quando existe) ja foi carregado pelo modulo de config do fx.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "fluxo"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port:              getEnv("SERVER_PORT", "8080"),
			AllowedOrigins:    getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "fluxo"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", ""),
			Issuer:     getEnv("JWT_ISSUER", "fluxo"),
			Expiration: getEnvAsDuration("JWT_EXPIRATION", 24*time.Hour),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvAsBool("LOG_PRETTY", true),
		},
		Staging: StagingConfig{
			ApprovalWorkers: getEnvAsInt("STAGING_APPROVAL_WORKERS", 4),
		},
		Recurring: RecurringConfig{
			Workers: getEnvAsInt("RECURRING_WORKERS", 4),
		},
		Alerts: AlertsConfig{
			LookaheadDays: getEnvAsInt("ALERTS_LOOKAHEAD_DAYS", 7),
		},
		Cache: CacheConfig{
			CardLabelTTL: getEnvAsDuration("CARD_LABEL_CACHE_TTL", 5*time.Minute),
		},
	}

	cfg.Database.DSN = getEnv("DATABASE_URL", fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	))

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET e obrigatorio em producao")
		}
		c.JWT.Secret = "dev-secret-change-me"
	}
	if c.Staging.ApprovalWorkers < 1 {
		c.Staging.ApprovalWorkers = 1
	}
	if c.Recurring.Workers < 1 {
		c.Recurring.Workers = 1
	}
	if c.Alerts.LookaheadDays < 0 {
		return fmt.Errorf("ALERTS_LOOKAHEAD_DAYS nao pode ser negativo")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
