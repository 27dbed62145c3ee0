// Package config предоставляет структуры и функции для загрузки конфигурации.
//
// Конфигурация читается один раз при старте: YAML-файл из CONFIG_PATH
// (необязательный), поверх него переменные окружения. Файл .env, если он есть,
// подгружается в окружение до чтения. После загрузки Config не изменяется
// и передаётся компонентам по указателю.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env             string `yaml:"env" env:"ENV" env-default:"local"`
	DatabaseURL     string `yaml:"database_url" env:"DATABASE_URL" env-required:"true"`
	MigrationsPath  string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	HTTPServer      `yaml:"http_server"`
	Stripe          `yaml:"stripe"`
	JWTToken        `yaml:"jwttoken"`
	RedisConnection `yaml:"redis_connection"`
	RabbitMQ        `yaml:"rabbitmq"`
	RateLimit       `yaml:"rate_limit"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// Stripe настройки платёжного провайдера.
type Stripe struct {
	StripeSecretKey     string `yaml:"secret_key" env:"STRIPE_SECRET_KEY" env-required:"true"`
	StripeWebhookSecret string `yaml:"webhook_secret" env:"STRIPE_WEBHOOK_SECRET" env-required:"true"`
	StripePriceID       string `yaml:"price_id" env:"STRIPE_PRICE_ID"`
	// Domain — адрес фронтенда для success/cancel URL страницы оплаты.
	Domain string `yaml:"domain" env:"DOMAIN" env-default:"http://localhost:8501"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"24h"`
}

// RedisConnection настройки журнала обработанных событий в redis.
// Пустой адрес отключает журнал.
type RedisConnection struct {
	RedisAddress     string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	RedisPassword    string        `yaml:"password" env:"REDIS_PASSWORD"`
	RedisUser        string        `yaml:"user" env:"REDIS_USER"`
	RedisDB          int           `yaml:"db" env:"REDIS_DB"`
	RedisMaxRetries  int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES" env-default:"3"`
	RedisDialTimeout time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	RedisTimeout     time.Duration `yaml:"timeoutredis" env:"REDIS_TIMEOUT" env-default:"2s"`
	EventTTL         time.Duration `yaml:"event_ttl" env:"REDIS_EVENT_TTL" env-default:"72h"`
}

// RabbitMQ настройки публикации уведомлений об активации.
// Пустой URL отключает уведомления.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env:"RABBITMQ_MAX_RETRIES" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env:"RABBITMQ_RETRY_DELAY" env-default:"2s"`
}

// RateLimit ограничение частоты для открытых эндпоинтов аутентификации.
type RateLimit struct {
	RateLimitRPS   float64 `yaml:"rps" env:"RATE_LIMIT_RPS" env-default:"5"`
	RateLimitBurst int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"10"`
}

// MustLoad загружает конфиг и завершает процесс при ошибке.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load загружает конфиг из .env, CONFIG_PATH и переменных окружения.
func Load() (*Config, error) {
	const op = "config.Load"

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: load .env: %w", op, err)
	}

	var cfg Config
	configPath := os.Getenv("CONFIG_PATH")
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("%s: file %s: %w", op, configPath, err)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.JWTSecretKey == "" {
		// без отдельного ключа токены подписываются секретом webhook'а
		cfg.JWTSecretKey = cfg.StripeWebhookSecret
	}
	return &cfg, nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"DatabaseURL: %s\n"+
			"MigrationsPath: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Stripe:\n"+
			"  SecretKey: %s\n"+
			"  WebhookSecret: %s\n"+
			"  PriceID: %s\n"+
			"  Domain: %s\n"+
			"Redis:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"  EventTTL: %s\n"+
			"RabbitMQ:\n"+
			"  URL: %s\n"+
			"JWTToken:\n"+
			"  JWTSecretKey: %s\n"+
			"  TokenTTL: %s\n",
		c.Env,
		redact(c.DatabaseURL),
		c.MigrationsPath,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		redact(c.StripeSecretKey),
		redact(c.StripeWebhookSecret),
		c.StripePriceID,
		c.Domain,
		c.RedisAddress,
		c.RedisDB,
		c.EventTTL,
		redact(c.RabbitMQURL),
		redact(c.JWTSecretKey),
		c.TokenTTL,
	)
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}
