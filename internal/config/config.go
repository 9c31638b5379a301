package config

import (
	"fmt"     // Error wrapping
	"strings" // DSN assembly
	"time"    // Durations

	"github.com/caarlos0/env/v11" // Typed environment parsing
	"github.com/joho/godotenv"    // For loading .env files
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the application configuration
type Config struct {
	AppPort         string        `env:"APP_PORT" envDefault:"8080"`                              // Application port
	DB              DBConfig      `envPrefix:"DB_"`                                               // Database settings
	Redis           RedisConfig   `envPrefix:"REDIS_"`                                            // Redis settings
	JWTSecret       string        `env:"JWT_SECRET,required,notEmpty"`                            // JWT secret key
	JWTTTL          time.Duration `env:"JWT_TTL" envDefault:"24h"`                                // Token lifetime
	CacheTTL        time.Duration `env:"CACHE_TTL" envDefault:"60s"`                              // Balance and history cache lifetime
	IsProd          bool          `env:"IS_PROD" envDefault:"false"`                              // Is production environment
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`                             // Logrus level name
	DefaultCurrency string        `env:"DEFAULT_CURRENCY" envDefault:"USD"`                       // Currency for new wallets
	RetryDelay      time.Duration `env:"RETRY_DELAY" envDefault:"50ms"`                           // Pause before retrying a conflicted unit
	TrustedProxies  []string      `env:"TRUSTED_PROXIES" envDefault:"127.0.0.1" envSeparator:","` // Gin trusted proxies
}

// DBConfig holds the database connection settings
type DBConfig struct {
	Driver   string `env:"DRIVER" envDefault:"mysql"`   // mysql, postgres or sqlite
	User     string `env:"USER"`                        // Database user
	Password string `env:"PASSWORD"`                    // Database password
	Host     string `env:"HOST" envDefault:"localhost"` // Database host
	Port     string `env:"PORT"`                        // Database port, driver default when empty
	Name     string `env:"NAME"`                        // Database name
	Path     string `env:"PATH" envDefault:"wallet.db"` // SQLite file or file: URI
	Log      bool   `env:"LOG" envDefault:"false"`      // Verbose GORM logging
}

// RedisConfig holds the Redis client settings
type RedisConfig struct {
	Addr string `env:"ADDR" envDefault:"localhost:6379"` // Redis server address
	Pass string `env:"PASS"`                             // Redis password
	DB   int    `env:"DB" envDefault:"0"`                // Redis database number
}

// LoadConfig loads configuration from a .env file (if present) and the environment
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects settings the server cannot start with
func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if len(c.DefaultCurrency) != 3 {
		return fmt.Errorf("DEFAULT_CURRENCY must be a 3-letter code, got %q", c.DefaultCurrency)
	}
	c.DefaultCurrency = strings.ToUpper(c.DefaultCurrency)
	return nil
}

// MySQLDSN builds the Data Source Name for MySQL
func (c DBConfig) MySQLDSN() string {
	port := c.Port
	if port == "" {
		port = "3306"
	}
	return c.User + ":" + c.Password + "@tcp(" + c.Host + ":" + port + ")/" + c.Name + "?parseTime=true&loc=UTC"
}

// PostgresDSN builds the keyword/value DSN for PostgreSQL
func (c DBConfig) PostgresDSN() string {
	port := c.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		c.Host, port, c.User, c.Password, c.Name)
}

// SQLiteDSN returns Path with foreign keys and a busy timeout enabled
func (c DBConfig) SQLiteDSN() string {
	sep := "?"
	if strings.Contains(c.Path, "?") {
		sep = "&"
	}
	return c.Path + sep + "_foreign_keys=on&_busy_timeout=5000"
}
