package config

import (
    "time"

    "github.com/caarlos0/env/v11"
    "github.com/google/logger"
)

// RateLimitConfig configures the token bucket placed in front of the public
// claim endpoint.
type RateLimitConfig struct {
    Enabled        bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
    Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"10"`
    RefillTokens   int           `env:"RATE_LIMIT_REFILL_TOKENS" envDefault:"1"`
    RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"6s"`
    TTL            time.Duration `env:"RATE_LIMIT_TTL" envDefault:"10m"`
    KeyStrategy    string        `env:"RATE_LIMIT_KEY_STRATEGY" envDefault:"ip_route"`
    Prefix         string        `env:"RATE_LIMIT_PREFIX" envDefault:"rl"`
    Debug          bool          `env:"RATE_LIMIT_DEBUG" envDefault:"false"`
    Burst          int           `env:"RATE_LIMIT_BURST" envDefault:"-1"`
    RefillEvery    time.Duration `env:"RATE_LIMIT_REFILL_EVERY" envDefault:"0s"`
}

// LoadRateLimitConfig reads the limiter settings.  A parse error keeps the
// limiter on with the documented defaults (10 claims, one more every 6s).
func LoadRateLimitConfig() RateLimitConfig {
    cfg, err := env.ParseAs[RateLimitConfig]()
    if err != nil {
        logger.Warningf("ratelimit: bad config: %v; using defaults", err)
        cfg = RateLimitConfig{
            Enabled:        true,
            Capacity:       10,
            RefillTokens:   1,
            RefillInterval: 6 * time.Second,
            TTL:            10 * time.Minute,
            KeyStrategy:    "ip_route",
            Prefix:         "rl",
        }
    }
    return cfg.normalize()
}

// normalize applies the RATE_LIMIT_BURST / RATE_LIMIT_REFILL_EVERY
// shorthands and clamps the rest into a usable bucket.  The bucket key
// outlives at least five refills.
func (c RateLimitConfig) normalize() RateLimitConfig {
    if c.Burst > 0 {
        c.Capacity = c.Burst
    }
    if c.RefillEvery > 0 {
        c.RefillTokens, c.RefillInterval = 1, c.RefillEvery
    }
    c.Capacity = max(c.Capacity, 1)
    c.RefillTokens = max(c.RefillTokens, 1)
    if c.RefillInterval <= 0 {
        c.RefillInterval = time.Second
    }
    c.TTL = max(c.TTL, 5*c.RefillInterval)
    if c.Prefix == "" {
        c.Prefix = "rl"
    }
    return c
}
