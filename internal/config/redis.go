package config

import (
    "context"
    "crypto/tls"
    "time"

    "github.com/caarlos0/env/v11"
    "github.com/google/logger"
    "github.com/redis/go-redis/v9"
)

// RedisConfig lists the connection settings.  REDIS_HOST + REDIS_PORT take
// precedence over REDIS_ADDR when both are set.
type RedisConfig struct {
    Host     string `env:"REDIS_HOST"`
    Port     string `env:"REDIS_PORT"`
    Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
    Password string `env:"REDIS_PASSWORD"`
    DB       int    `env:"REDIS_DB" envDefault:"0"`
    TLS      bool   `env:"REDIS_TLS" envDefault:"false"`
}

// Address resolves the host:port to dial.
func (rc RedisConfig) Address() string {
    if rc.Host != "" && rc.Port != "" {
        return rc.Host + ":" + rc.Port
    }
    if rc.Addr == "" {
        return "localhost:6379"
    }
    return rc.Addr
}

// NewRedisClient dials the Redis server behind the response cache and the
// claim rate limiter.  It returns nil when the server cannot be reached;
// callers then run with both disabled.
func NewRedisClient() *redis.Client {
    rc, err := env.ParseAs[RedisConfig]()
    if err != nil {
        logger.Warningf("redis: bad config: %v; caching and rate limiting disabled", err)
        return nil
    }
    opts := &redis.Options{
        Addr:         rc.Address(),
        Password:     rc.Password,
        DB:           rc.DB,
        DialTimeout:  2 * time.Second,
        ReadTimeout:  time.Second,
        WriteTimeout: time.Second,
    }
    if rc.TLS {
        opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    client := redis.NewClient(opts)
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        logger.Warningf("redis: ping %s failed: %v; caching and rate limiting disabled", rc.Address(), err)
        _ = client.Close()
        return nil
    }
    return client
}
