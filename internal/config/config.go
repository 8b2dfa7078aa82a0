package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Storage   StorageConfig
	Economics EconomicsConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	LogLevel       string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type CacheConfig struct {
	Enabled              bool
	RedisURL             string
	RedisHost            string
	RedisPort            string
	RedisPassword        string
	RedisDB              int
	StatisticsTTLSeconds int
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// EconomicsConfig holds the overridable business rules.
type EconomicsConfig struct {
	LegacyTaxRate       float64
	TaxRate             float64
	TaxRateSince        time.Time
	SalaryBaseRate      float64
	SalaryTierRate      float64
	SalaryTierThreshold int
	SalaryTierSince     time.Time
	ExemptOrganization  string
	AdjustmentPromoter  string
	LiveSince           time.Time
}

var (
	once     sync.Once
	instance *Config
	loadErr  error
)

// Load reads the configuration from the environment (and .env) once.
func Load() (*Config, error) {
	once.Do(func() {
		_ = godotenv.Load()

		v := viper.New()
		v.AutomaticEnv()
		instance, loadErr = FromViper(v)
	})

	return instance, loadErr
}

// FromViper builds a Config from v after applying defaults.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	econ, err := economicsFromViper(v)
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			LogLevel:       v.GetString("LOG_LEVEL"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: parseList(v.GetString("SERVER_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Cache: CacheConfig{
			Enabled:              v.GetBool("CACHE_ENABLED"),
			RedisURL:             v.GetString("REDIS_URL"),
			RedisHost:            v.GetString("REDIS_HOST"),
			RedisPort:            v.GetString("REDIS_PORT"),
			RedisPassword:        v.GetString("REDIS_PASSWORD"),
			RedisDB:              v.GetInt("REDIS_DB"),
			StatisticsTTLSeconds: v.GetInt("CACHE_STATISTICS_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			Region:    v.GetString("STORAGE_REGION"),
			UseSSL:    v.GetBool("STORAGE_USE_SSL"),
		},
		Economics: econ,
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "shiftops")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_STATISTICS_TTL_SECONDS", 60)
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_USE_SSL", true)
	v.SetDefault("ECON_TAX_RATE_LEGACY", 0.06)
	v.SetDefault("ECON_TAX_RATE", 0.07)
	v.SetDefault("ECON_TAX_RATE_SINCE", "2025-01-01")
	v.SetDefault("ECON_SALARY_BASE_RATE", 200)
	v.SetDefault("ECON_SALARY_TIER_RATE", 300)
	v.SetDefault("ECON_SALARY_TIER_THRESHOLD", 10)
	v.SetDefault("ECON_SALARY_TIER_SINCE", "2025-04-01")
	v.SetDefault("ECON_EXEMPT_ORGANIZATION", "Офис КМС")
	v.SetDefault("ECON_ADJUSTMENT_PROMOTER", "Корректировка")
	v.SetDefault("ECON_LIVE_SINCE", "2024-01-01")
}

func economicsFromViper(v *viper.Viper) (EconomicsConfig, error) {
	cfg := EconomicsConfig{
		LegacyTaxRate:       v.GetFloat64("ECON_TAX_RATE_LEGACY"),
		TaxRate:             v.GetFloat64("ECON_TAX_RATE"),
		SalaryBaseRate:      v.GetFloat64("ECON_SALARY_BASE_RATE"),
		SalaryTierRate:      v.GetFloat64("ECON_SALARY_TIER_RATE"),
		SalaryTierThreshold: v.GetInt("ECON_SALARY_TIER_THRESHOLD"),
		ExemptOrganization:  strings.TrimSpace(v.GetString("ECON_EXEMPT_ORGANIZATION")),
		AdjustmentPromoter:  strings.TrimSpace(v.GetString("ECON_ADJUSTMENT_PROMOTER")),
	}

	dates := []struct {
		key  string
		dest *time.Time
	}{
		{"ECON_TAX_RATE_SINCE", &cfg.TaxRateSince},
		{"ECON_SALARY_TIER_SINCE", &cfg.SalaryTierSince},
		{"ECON_LIVE_SINCE", &cfg.LiveSince},
	}
	for _, d := range dates {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(v.GetString(d.key)))
		if err != nil {
			return EconomicsConfig{}, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dest = parsed
	}

	return cfg, nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
