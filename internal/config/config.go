package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	JWT      JWTConfig
	NSQ      NSQConfig
	Gateway  GatewayConfig
	Pricing  PricingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the connection string for database/sql.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// JWTConfig holds token verification configuration.
type JWTConfig struct {
	Secret string
}

// NSQConfig holds NSQ producer and consumer configuration.
type NSQConfig struct {
	NSQDAddress    string
	LookupdAddress string
	Channel        string
}

// GatewayConfig holds payment gateway configuration.
type GatewayConfig struct {
	BaseURL     string
	StoreID     string
	StorePass   string
	SuccessURL  string
	FailURL     string
	CancelURL   string
	Sandbox     bool
	HTTPTimeout time.Duration
}

// PricingConfig holds the peak-hour windows used by surge pricing.
type PricingConfig struct {
	MorningPeakStart int
	MorningPeakEnd   int
	EveningPeakStart int
	EveningPeakEnd   int
}

// Load reads configuration from environment variables, falling back to the
// defaults below. Keys use dots in code and underscores in the environment
// (server.port -> SERVER_PORT).
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "ridebook")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("new_relic.app_name", "ridebook")
	v.SetDefault("new_relic.license_key", "")
	v.SetDefault("new_relic.enabled", false)

	v.SetDefault("jwt.secret", "")

	v.SetDefault("nsq.nsqd_address", "localhost:4150")
	v.SetDefault("nsq.lookupd_address", "localhost:4161")
	v.SetDefault("nsq.channel", "ridebook")

	v.SetDefault("gateway.base_url", "https://sandbox.sslcommerz.com")
	v.SetDefault("gateway.store_id", "")
	v.SetDefault("gateway.store_pass", "")
	v.SetDefault("gateway.success_url", "http://localhost:8080/api/v1/payments/success")
	v.SetDefault("gateway.fail_url", "http://localhost:8080/api/v1/payments/fail")
	v.SetDefault("gateway.cancel_url", "http://localhost:8080/api/v1/payments/cancel")
	v.SetDefault("gateway.sandbox", true)
	v.SetDefault("gateway.http_timeout", 30*time.Second)

	v.SetDefault("pricing.morning_peak_start", 7)
	v.SetDefault("pricing.morning_peak_end", 10)
	v.SetDefault("pricing.evening_peak_start", 17)
	v.SetDefault("pricing.evening_peak_end", 21)

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetString("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
			SSLMode:  v.GetString("db.sslmode"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		NewRelic: NewRelicConfig{
			AppName:    v.GetString("new_relic.app_name"),
			LicenseKey: v.GetString("new_relic.license_key"),
			Enabled:    v.GetBool("new_relic.enabled"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
		},
		NSQ: NSQConfig{
			NSQDAddress:    v.GetString("nsq.nsqd_address"),
			LookupdAddress: v.GetString("nsq.lookupd_address"),
			Channel:        v.GetString("nsq.channel"),
		},
		Gateway: GatewayConfig{
			BaseURL:     v.GetString("gateway.base_url"),
			StoreID:     v.GetString("gateway.store_id"),
			StorePass:   v.GetString("gateway.store_pass"),
			SuccessURL:  v.GetString("gateway.success_url"),
			FailURL:     v.GetString("gateway.fail_url"),
			CancelURL:   v.GetString("gateway.cancel_url"),
			Sandbox:     v.GetBool("gateway.sandbox"),
			HTTPTimeout: v.GetDuration("gateway.http_timeout"),
		},
		Pricing: PricingConfig{
			MorningPeakStart: v.GetInt("pricing.morning_peak_start"),
			MorningPeakEnd:   v.GetInt("pricing.morning_peak_end"),
			EveningPeakStart: v.GetInt("pricing.evening_peak_start"),
			EveningPeakEnd:   v.GetInt("pricing.evening_peak_end"),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required (set JWT_SECRET)")
	}

	return cfg, nil
}
