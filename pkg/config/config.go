package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Shop      ShopConfig
	Analytics AnalyticsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ShopConfig captures store-wide business hours used by the attendance grid.
// A close time of "00:00" means end of the service day, not midnight at open.
type ShopConfig struct {
	OpenTime  string
	CloseTime string
}

// AnalyticsConfig governs cache behaviour and the retention-risk thresholds.
// Threshold values default to the legacy console's cutoffs.
type AnalyticsConfig struct {
	CacheEnabled     bool
	CacheTTL         time.Duration
	DefaultTarget    float64
	WorkingRateFloor float64
	EarningsFloor    float64
	EarningsDrop     float64
	AbsenceRateFloor float64
	AbsenceRunDays   int
	CancelRateFloor  float64
	StaleDays        int
	LowBookingPerDay int
	LowBookingRun    int
	DiaryMultiplier  int
	ConcernKeywords  []string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Shop = ShopConfig{
		OpenTime:  v.GetString("SHOP_OPEN_TIME"),
		CloseTime: v.GetString("SHOP_CLOSE_TIME"),
	}

	cfg.Analytics = AnalyticsConfig{
		CacheEnabled:     v.GetBool("ANALYTICS_CACHE_ENABLED"),
		CacheTTL:         parseDuration(v.GetString("ANALYTICS_CACHE_TTL"), 10*time.Minute),
		DefaultTarget:    v.GetFloat64("ANALYTICS_DEFAULT_TARGET"),
		WorkingRateFloor: v.GetFloat64("RISK_WORKING_RATE_FLOOR"),
		EarningsFloor:    v.GetFloat64("RISK_EARNINGS_FLOOR"),
		EarningsDrop:     v.GetFloat64("RISK_EARNINGS_DROP"),
		AbsenceRateFloor: v.GetFloat64("RISK_ABSENCE_RATE_FLOOR"),
		AbsenceRunDays:   v.GetInt("RISK_ABSENCE_RUN_DAYS"),
		CancelRateFloor:  v.GetFloat64("RISK_CANCEL_RATE_FLOOR"),
		StaleDays:        v.GetInt("RISK_STALE_DAYS"),
		LowBookingPerDay: v.GetInt("RISK_LOW_BOOKING_PER_DAY"),
		LowBookingRun:    v.GetInt("RISK_LOW_BOOKING_RUN"),
		DiaryMultiplier:  v.GetInt("RISK_DIARY_MULTIPLIER"),
		ConcernKeywords:  splitAndTrim(v.GetString("RISK_CONCERN_KEYWORDS")),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "cast_console")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "cast-console-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SHOP_OPEN_TIME", "10:00")
	v.SetDefault("SHOP_CLOSE_TIME", "00:00")

	v.SetDefault("ANALYTICS_CACHE_ENABLED", true)
	v.SetDefault("ANALYTICS_CACHE_TTL", "10m")
	v.SetDefault("ANALYTICS_DEFAULT_TARGET", 300000)
	v.SetDefault("RISK_WORKING_RATE_FLOOR", 30)
	v.SetDefault("RISK_EARNINGS_FLOOR", 0.5)
	v.SetDefault("RISK_EARNINGS_DROP", -0.4)
	v.SetDefault("RISK_ABSENCE_RATE_FLOOR", 0.3)
	v.SetDefault("RISK_ABSENCE_RUN_DAYS", 3)
	v.SetDefault("RISK_CANCEL_RATE_FLOOR", 0.3)
	v.SetDefault("RISK_STALE_DAYS", 14)
	v.SetDefault("RISK_LOW_BOOKING_PER_DAY", 2)
	v.SetDefault("RISK_LOW_BOOKING_RUN", 3)
	v.SetDefault("RISK_DIARY_MULTIPLIER", 2)
	v.SetDefault("RISK_CONCERN_KEYWORDS", "やめたい,やる気,退店,続けられない,疲れた,辞め,やめよう,退店検討")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
