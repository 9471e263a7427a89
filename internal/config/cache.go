package config

import (
    "strings"
    "time"

    "github.com/caarlos0/env/v11"
    "github.com/google/logger"
)

// CacheConfig drives the Redis response cache on the public read
// endpoints.  Every successful write drops the whole cache, so TTL only
// bounds how long an entry lives when nothing changes.
type CacheConfig struct {
    Enabled      bool          `env:"CACHE_ENABLED" envDefault:"true"`
    MethodList   string        `env:"CACHE_METHODS" envDefault:"GET"`
    Methods      map[string]bool // derived from MethodList
    TTL          time.Duration `env:"CACHE_TTL" envDefault:"30s"`
    KeyStrategy  string        `env:"CACHE_KEY_STRATEGY" envDefault:"route_query"`
    Prefix       string        `env:"CACHE_PREFIX" envDefault:"cache"`
    MaxBodyBytes int           `env:"CACHE_MAX_BODY_BYTES" envDefault:"1048576"`
}

// LoadCacheConfig reads the cache settings.  A parse error disables the
// cache rather than stopping the server.
func LoadCacheConfig() CacheConfig {
    cfg, err := env.ParseAs[CacheConfig]()
    if err != nil {
        logger.Warningf("cache: bad config: %v; caching disabled", err)
        return CacheConfig{Enabled: false}
    }
    cfg.Methods = parseMethods(cfg.MethodList)
    if len(cfg.Methods) == 0 {
        cfg.Enabled = false
    }
    if cfg.TTL <= 0 {
        cfg.TTL = 30 * time.Second
    }
    if strings.TrimSpace(cfg.Prefix) == "" {
        cfg.Prefix = "cache"
    }
    return cfg
}

// parseMethods keeps only safe methods; a cached POST would swallow writes.
func parseMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        switch p = strings.ToUpper(strings.TrimSpace(p)); p {
        case "GET", "HEAD":
            m[p] = true
        case "":
        default:
            logger.Warningf("cache: ignoring unsafe method %q in CACHE_METHODS", p)
        }
    }
    return m
}
