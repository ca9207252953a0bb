package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"

	"github.com/remindbot/remind-server-go/internal/conversation"
	"github.com/remindbot/remind-server-go/internal/timeparse"
)

type Config struct {
	Port                    int           `env:"PORT" envDefault:"8080"`
	DatabaseURL             string        `env:"DATABASE_URL,required"`
	RedisURL                string        `env:"REDIS_URL,required"`
	LineChannelSecret       string        `env:"LINE_CHANNEL_SECRET"`
	LineChannelAccessToken  string        `env:"LINE_CHANNEL_ACCESS_TOKEN,required"`
	LineAPIBaseURL          string        `env:"LINE_API_BASE_URL" envDefault:"https://api.line.me/v2/bot"`
	LineHTTPTimeout         time.Duration `env:"LINE_HTTP_TIMEOUT" envDefault:"10s"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	LocalUTCOffsetHours     int           `env:"LOCAL_UTC_OFFSET_HOURS" envDefault:"9"`
	DeliveryIntervalSeconds int           `env:"DELIVERY_INTERVAL_SECONDS" envDefault:"60"`
	DeliveryConcurrency     int           `env:"DELIVERY_CONCURRENCY" envDefault:"8"`
	EventDedupTTLSeconds    int           `env:"EVENT_DEDUP_TTL_SECONDS" envDefault:"600"`
	UserRateLimitPerMinute  int           `env:"USER_RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	StartKeywords           []string      `env:"START_KEYWORDS" envDefault:"リマインド" envSeparator:","`
	ListKeywords            []string      `env:"LIST_KEYWORDS" envDefault:"一覧,リスト" envSeparator:","`
	CancelKeywords          []string      `env:"CANCEL_KEYWORDS" envDefault:"キャンセル,やめる" envSeparator:","`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) DeliveryInterval() time.Duration {
	return time.Duration(c.DeliveryIntervalSeconds) * time.Second
}

func (c *Config) EventDedupTTL() time.Duration {
	return time.Duration(c.EventDedupTTLSeconds) * time.Second
}

// Location is the fixed civil-time zone used to read and display wall-clock times.
func (c *Config) Location() *time.Location {
	return timeparse.FixedZone(c.LocalUTCOffsetHours)
}

func (c *Config) Keywords() conversation.Keywords {
	return conversation.Keywords{
		Start:  trimAll(c.StartKeywords),
		List:   trimAll(c.ListKeywords),
		Cancel: trimAll(c.CancelKeywords),
	}
}

func (c *Config) Validate(isProduction bool) error {
	if c.LocalUTCOffsetHours < -12 || c.LocalUTCOffsetHours > 14 {
		return fmt.Errorf("LOCAL_UTC_OFFSET_HOURS must be between -12 and 14, got %d", c.LocalUTCOffsetHours)
	}
	if c.DeliveryIntervalSeconds <= 0 {
		return fmt.Errorf("DELIVERY_INTERVAL_SECONDS must be positive")
	}
	if c.UserRateLimitPerMinute < 0 {
		return fmt.Errorf("USER_RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if c.DeliveryConcurrency <= 0 {
		return fmt.Errorf("DELIVERY_CONCURRENCY must be positive")
	}
	if err := c.Keywords().Validate(); err != nil {
		return fmt.Errorf("invalid keywords: %w", err)
	}

	if isProduction {
		if c.LineChannelSecret == "" {
			return fmt.Errorf("LINE_CHANNEL_SECRET is required in production")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
