package config

import (
    "strings"
    "testing"
    "time"
)

func setBaseEnv(t *testing.T) {
    t.Helper()
    t.Setenv("APP_ENV", "test")
    t.Setenv("APP_PORT", "8080")
    t.Setenv("JWT_SECRET", "secret")
}

func TestParseDefaults(t *testing.T) {
    setBaseEnv(t)
    cfg, err := Parse()
    if err != nil {
        t.Fatalf("Parse: %v", err)
    }
    if cfg.DBDriver != "mysql" || cfg.StatsAvailableScope != StatsScopeAll {
        t.Errorf("unexpected defaults %+v", cfg)
    }
    if cfg.AdminUsername != "admin" || cfg.SeedSheetName != "Semana 1" || cfg.ClaimsRequireActiveSheet {
        t.Errorf("unexpected seed defaults %+v", cfg)
    }
}

func TestParseNormalizesAndValidates(t *testing.T) {
    setBaseEnv(t)
    t.Setenv("DB_DRIVER", " SQLite ")
    t.Setenv("STATS_AVAILABLE_SCOPE", "ACTIVE")
    cfg, err := Parse()
    if err != nil {
        t.Fatalf("Parse: %v", err)
    }
    if cfg.DBDriver != "sqlite" || cfg.StatsAvailableScope != StatsScopeActive {
        t.Errorf("not normalized: %q %q", cfg.DBDriver, cfg.StatsAvailableScope)
    }

    tests := []struct {
        key, value, want string
    }{
        {"DB_DRIVER", "postgres", "DB_DRIVER"},
        {"STATS_AVAILABLE_SCOPE", "some", "STATS_AVAILABLE_SCOPE"},
        {"ACCESS_TOKEN_TTL_MIN", "0", "ACCESS_TOKEN_TTL_MIN"},
        {"REFRESH_TOKEN_TTL_DAYS", "-1", "REFRESH_TOKEN_TTL_DAYS"},
    }
    for _, tt := range tests {
        t.Run(tt.key, func(t *testing.T) {
            setBaseEnv(t)
            t.Setenv(tt.key, tt.value)
            _, err := Parse()
            if err == nil || !strings.Contains(err.Error(), tt.want) {
                t.Errorf("Parse with %s=%s: %v", tt.key, tt.value, err)
            }
        })
    }
}

func TestParseRequiresSecret(t *testing.T) {
    t.Setenv("APP_ENV", "test")
    t.Setenv("APP_PORT", "8080")
    t.Setenv("JWT_SECRET", "")
    if _, err := Parse(); err == nil {
        t.Error("expected error without JWT_SECRET")
    }
}

func TestRateLimitNormalize(t *testing.T) {
    got := RateLimitConfig{Capacity: 0, Burst: 5, RefillEvery: 2 * time.Second, TTL: time.Second}.normalize()
    if got.Capacity != 5 || got.RefillTokens != 1 || got.RefillInterval != 2*time.Second {
        t.Errorf("normalize = %+v", got)
    }
    if got.TTL != 10*time.Second {
        t.Errorf("TTL = %s, want at least five refill intervals", got.TTL)
    }
}

func TestLoadCacheConfigMethods(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head")
    cfg := LoadCacheConfig()
    if !cfg.Methods["GET"] || !cfg.Methods["HEAD"] || cfg.Methods["POST"] {
        t.Errorf("Methods = %v", cfg.Methods)
    }
}

func TestEventsAndReminderConfig(t *testing.T) {
    t.Setenv("EVENTS_BACKEND", "kafka")
    t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
    ev, err := LoadEventsConfig()
    if err != nil {
        t.Fatalf("LoadEventsConfig: %v", err)
    }
    if ev.Backend != EventsKafka || len(ev.KafkaBrokers) != 2 {
        t.Errorf("events = %+v", ev)
    }

    t.Setenv("REMINDER_WEEKDAY", "Saturday")
    rem, err := LoadReminderConfig()
    if err != nil {
        t.Fatalf("LoadReminderConfig: %v", err)
    }
    if rem.Weekday != time.Saturday || rem.Hour != 22 || rem.Timezone != "Europe/Lisbon" {
        t.Errorf("reminder = %+v", rem)
    }
    if parseWeekday("nonsense") != time.Friday {
        t.Error("unknown weekday should fall back to Friday")
    }
}

func TestRedisAddress(t *testing.T) {
    if got := (RedisConfig{Host: "cache", Port: "6380", Addr: "localhost:6379"}).Address(); got != "cache:6380" {
        t.Errorf("Address = %q", got)
    }
    if got := (RedisConfig{Addr: "localhost:6379"}).Address(); got != "localhost:6379" {
        t.Errorf("Address = %q", got)
    }
}

func TestParseMethodsDropsUnsafe(t *testing.T) {
    m := parseMethods("GET,post, ,delete")
    if len(m) != 1 || !m["GET"] {
        t.Errorf("parseMethods = %v", m)
    }
}
