package config // package config loads application configuration from environment variables

import (
    "fmt"
    "strings"

    "github.com/caarlos0/env/v11" // struct-tag based env parsing
    "github.com/google/logger"
    "github.com/joho/godotenv" // optional .env file for local runs
)

// Stats scopes for the "numbers available" figure.
const (
    StatsScopeAll    = "all"
    StatsScopeActive = "active"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable named in its tag.  Required variables have no
// default; everything else falls back to a value suitable for local runs.
type Config struct {
    Env  string `env:"APP_ENV,required"`  // application environment (dev/test/prod)
    Port string `env:"APP_PORT,required"` // HTTP port to listen on

    DBDriver string `env:"DB_DRIVER" envDefault:"mysql"` // mysql | sqlite
    DBUser   string `env:"DB_USER" envDefault:"root"`
    DBPass   string `env:"DB_PASS"` // empty allowed
    DBHost   string `env:"DB_HOST" envDefault:"localhost"`
    DBPort   string `env:"DB_PORT" envDefault:"3306"`
    DBName   string `env:"DB_NAME" envDefault:"festa_do_viso"`
    DBPath   string `env:"DB_PATH" envDefault:"data/festa.db"` // sqlite file

    JWTSecret      string `env:"JWT_SECRET,required,notEmpty"`
    AccessTTLMin   int    `env:"ACCESS_TOKEN_TTL_MIN" envDefault:"15"`
    RefreshTTLDays int    `env:"REFRESH_TOKEN_TTL_DAYS" envDefault:"7"`
    BcryptCost     int    `env:"BCRYPT_COST" envDefault:"10"`

    // Seed values applied on an empty database.
    AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
    AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin123"`
    SeedSheetName string `env:"SEED_SHEET_NAME" envDefault:"Semana 1"`

    // Raffle policy.
    ClaimsRequireActiveSheet bool   `env:"CLAIMS_REQUIRE_ACTIVE_SHEET" envDefault:"false"`
    StatsAvailableScope      string `env:"STATS_AVAILABLE_SCOPE" envDefault:"all"`
}

// Parse reads a .env file if one exists and then builds a Config from the
// process environment.
func Parse() (Config, error) {
    _ = godotenv.Load() // a missing .env is fine
    cfg, err := env.ParseAs[Config]()
    if err != nil {
        return Config{}, err
    }
    if err := cfg.validate(); err != nil {
        return Config{}, err
    }
    return cfg, nil
}

// Load is Parse for process startup: any configuration error is fatal.
func Load() Config {
    cfg, err := Parse()
    if err != nil {
        logger.Fatalf("config: %v", err)
    }
    return cfg
}

func (c *Config) validate() error {
    c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
    switch c.DBDriver {
    case "mysql", "sqlite":
    default:
        return fmt.Errorf("invalid DB_DRIVER %q (want mysql or sqlite)", c.DBDriver)
    }
    c.StatsAvailableScope = strings.ToLower(strings.TrimSpace(c.StatsAvailableScope))
    switch c.StatsAvailableScope {
    case StatsScopeAll, StatsScopeActive:
    default:
        return fmt.Errorf("invalid STATS_AVAILABLE_SCOPE %q (want all or active)", c.StatsAvailableScope)
    }
    if c.AccessTTLMin < 1 {
        return fmt.Errorf("ACCESS_TOKEN_TTL_MIN must be positive")
    }
    if c.RefreshTTLDays < 1 {
        return fmt.Errorf("REFRESH_TOKEN_TTL_DAYS must be positive")
    }
    return nil
}
