package config

import (
	"log"
	"os"

	"safecircle/pkg/cache"
	"safecircle/pkg/logger"
	"safecircle/pkg/util"
)

// Config is the full runtime configuration, loaded from the environment.
type Config struct {
	Addr     string `env:"ADDR"`
	Mode     string `env:"MODE"`
	DBDriver string `env:"DB_DRIVER"`
	DSN      string `env:"DSN"`

	// QueueDSN is the on-device durable queue database. It is deliberately
	// separate from the main DSN so the queue survives independently of the
	// remote-facing store.
	QueueDSN string `env:"QUEUE_DSN"`

	Log   logger.LogConfig
	Cache cache.Config

	// MoneyUnify mobile-money provider.
	MoneyUnifyAuthID  string `env:"MONEYUNIFY_AUTH_ID"`
	MoneyUnifyBaseURL string `env:"MONEYUNIFY_BASE_URL"`

	// Card processor for the premium confirmation flow.
	CardGatewayBaseURL string `env:"CARD_GATEWAY_BASE_URL"`
	CardGatewayAPIKey  string `env:"CARD_GATEWAY_API_KEY"`

	// SOS behaviour.
	SOSLocationTimeout int64 `env:"SOS_LOCATION_TIMEOUT_SECONDS"`
	SOSRetryInterval   int64 `env:"SOS_RETRY_INTERVAL_SECONDS"`

	// SMS fan-out to circle members.
	SMSGatewayBaseURL string `env:"SMS_GATEWAY_BASE_URL"`
	SMSGatewayAPIKey  string `env:"SMS_GATEWAY_API_KEY"`
	SMSSignName       string `env:"SMS_SIGN_NAME"`
	SMSTemplateCode   string `env:"SMS_TEMPLATE_CODE"`

	// WebhookSecret enables HMAC verification of incoming webhooks when set.
	WebhookSecret string `env:"WEBHOOK_SECRET"`

	MetricsPrefix string `env:"METRICS_PREFIX"`
	RateLimit     string `env:"RATE_LIMIT"`
}

var GlobalConfig *Config

// Load reads .env files and populates GlobalConfig.
func Load() error {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if err := util.LoadEnv(env); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	GlobalConfig = &Config{
		Addr:     util.GetEnvDefault("ADDR", ":8080"),
		Mode:     util.GetEnv("MODE"),
		DBDriver: util.GetEnv("DB_DRIVER"),
		DSN:      util.GetEnv("DSN"),
		QueueDSN: util.GetEnvDefault("QUEUE_DSN", "sos_queue.db"),
		Log: logger.LogConfig{
			Level:      util.GetEnv("LOG_LEVEL"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnv("LOG_MAX_SIZE")),
			MaxAge:     int(util.GetIntEnv("LOG_MAX_AGE")),
			MaxBackups: int(util.GetIntEnv("LOG_MAX_BACKUPS")),
		},
		Cache: cache.Config{
			Type: util.GetEnvDefault("CACHE_TYPE", "local"),
			Redis: cache.RedisConfig{
				Addr:     util.GetEnvDefault("REDIS_ADDR", "localhost:6379"),
				Password: util.GetEnv("REDIS_PASSWORD"),
				DB:       int(util.GetIntEnv("REDIS_DB")),
				PoolSize: int(util.GetIntEnv("REDIS_POOL_SIZE")),
			},
			Local: cache.LocalConfig{
				MaxSize: int(util.GetIntEnv("LOCAL_CACHE_MAX_SIZE")),
			},
		},
		MoneyUnifyAuthID:    util.GetEnv("MONEYUNIFY_AUTH_ID"),
		MoneyUnifyBaseURL:   util.GetEnvDefault("MONEYUNIFY_BASE_URL", "https://api.moneyunify.one"),
		CardGatewayBaseURL:  util.GetEnv("CARD_GATEWAY_BASE_URL"),
		CardGatewayAPIKey:   util.GetEnv("CARD_GATEWAY_API_KEY"),
		SOSLocationTimeout:  util.GetIntEnv("SOS_LOCATION_TIMEOUT_SECONDS"),
		SOSRetryInterval:    util.GetIntEnv("SOS_RETRY_INTERVAL_SECONDS"),
		SMSGatewayBaseURL:   util.GetEnv("SMS_GATEWAY_BASE_URL"),
		SMSGatewayAPIKey:    util.GetEnv("SMS_GATEWAY_API_KEY"),
		SMSSignName:         util.GetEnv("SMS_SIGN_NAME"),
		SMSTemplateCode:     util.GetEnv("SMS_TEMPLATE_CODE"),
		WebhookSecret:       util.GetEnv("WEBHOOK_SECRET"),
		MetricsPrefix:       util.GetEnvDefault("METRICS_PREFIX", "/metrics"),
		RateLimit:           util.GetEnvDefault("RATE_LIMIT", "100-M"),
	}
	return nil
}
