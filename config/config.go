package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	HTTP     HTTPConfig
	Storage  StorageConfig
	DB       DBConfig
	Telegram TelegramConfig
	RabbitMQ RabbitMQConfig
	Pricing  PricingConfig
	Checkout CheckoutConfig
	Log      LogConfig
}

type HTTPConfig struct {
	Addr            string
	SessionTTL      time.Duration
	ShutdownTimeout time.Duration
}

type StorageConfig struct {
	Driver      string // "memory" or "postgres"
	SeedMenu    bool
	AutoMigrate bool
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
}

func (c DBConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode, c.MaxConns,
	)
}

type TelegramConfig struct {
	Token       string
	AdminChatID int64 // chat that receives order cards
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type PricingConfig struct {
	TaxRate     decimal.Decimal
	DeliveryFee decimal.Decimal
}

type CheckoutConfig struct {
	ProcessingDelay time.Duration
	DeliveryETA     time.Duration
	LinePolicy      string // "merge" or "append"
}

type LogConfig struct {
	Level       string
	Development bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []string
	fail := func(key string, err error) {
		errs = append(errs, fmt.Sprintf("%s: %v", key, err))
	}

	port, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		fail("DB_PORT", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	if err != nil {
		fail("DB_MAX_CONNS", err)
	}
	adminChatID := int64(0)
	if v := getEnv("TELEGRAM_ADMIN_CHAT_ID", ""); v != "" {
		if adminChatID, err = strconv.ParseInt(v, 10, 64); err != nil {
			fail("TELEGRAM_ADMIN_CHAT_ID", err)
		}
	}
	taxRate, err := decimal.NewFromString(getEnv("TAX_RATE", "0.18"))
	if err != nil {
		fail("TAX_RATE", err)
	}
	deliveryFee, err := decimal.NewFromString(getEnv("DELIVERY_FEE", "40"))
	if err != nil {
		fail("DELIVERY_FEE", err)
	}

	cfg := &Config{
		HTTP: HTTPConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			SessionTTL:      getDuration("SESSION_TTL", "24h", fail),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", "10s", fail),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(getEnv("STORAGE", "memory")),
			SeedMenu:    getBool("SEED_MENU", true),
			AutoMigrate: getBool("AUTO_MIGRATE", false),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "pizza"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(maxConns),
		},
		Telegram: TelegramConfig{
			Token:       getEnv("TELEGRAM_TOKEN", ""),
			AdminChatID: adminChatID,
		},
		RabbitMQ: RabbitMQConfig{
			URL:      getEnv("RABBITMQ_URL", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "orders_topic"),
		},
		Pricing: PricingConfig{
			TaxRate:     taxRate,
			DeliveryFee: deliveryFee,
		},
		Checkout: CheckoutConfig{
			ProcessingDelay: getDuration("CHECKOUT_PROCESSING_DELAY", "2s", fail),
			DeliveryETA:     getDuration("CHECKOUT_ETA", "35m", fail),
			LinePolicy:      strings.ToLower(getEnv("CART_LINE_POLICY", "merge")),
		},
		Log: LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getBool("LOG_DEVELOPMENT", false),
		},
	}

	switch cfg.Storage.Driver {
	case "memory", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("STORAGE: unknown driver %q", cfg.Storage.Driver))
	}
	switch cfg.Checkout.LinePolicy {
	case "merge", "append":
	default:
		errs = append(errs, fmt.Sprintf("CART_LINE_POLICY: unknown policy %q", cfg.Checkout.LinePolicy))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
}

func getDuration(key, def string, fail func(string, error)) time.Duration {
	d, err := time.ParseDuration(getEnv(key, def))
	if err != nil {
		fail(key, err)
	}
	return d
}
