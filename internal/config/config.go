package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN           string `env:"DATABASE_DSN,required=true"`
	RedisURL              string `env:"REDIS_URL,required=true"`
	RabbitMQURL           string `env:"RABBITMQ_URL"`
	TwilioAPIURL          string `env:"TWILIO_API_URL"`
	CallbackScheme        string `env:"CALLBACK_SCHEME,default=https"`
	CallbackHost          string `env:"CALLBACK_HOST,required=true"`
	CallbackPort          int    `env:"CALLBACK_PORT,default=443"`
	APIPort               int    `env:"API_PORT,default=8080"`
	LogLevel              string `env:"LOG_LEVEL,default=info"`
	TenantRateLimitPerSec int    `env:"TENANT_RATE_LIMIT_PER_SEC,default=50"`
	DispatchQueueDepth    int    `env:"DISPATCH_QUEUE_DEPTH,default=256"`
	BootstrapDelaySeconds int    `env:"BOOTSTRAP_DELAY_SECONDS,default=60"`
	BootstrapPageSize     int    `env:"BOOTSTRAP_PAGE_SIZE,default=200"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// CallbackBaseURL is the externally reachable root providers post status
// reports back to.
func (c *Config) CallbackBaseURL() string {
	return fmt.Sprintf("%s://%s:%d", c.CallbackScheme, c.CallbackHost, c.CallbackPort)
}
