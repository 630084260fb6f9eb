package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timeouts, business defaults), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	CORS      CORSConfig
	Log       LogConfig
	JWT       JWTConfig
	Ticketing TicketingConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

// TicketingConfig carries the business defaults of the issuance and
// cancellation flows. CancellationFeeRate is the fraction of the gross price
// withheld on cancellation. DefaultValidityWindow applies only when an event
// has no end time of its own.
type TicketingConfig struct {
	CancellationFeeRate    float64       `envconfig:"TICKET_CANCELLATION_FEE_RATE" default:"0.10"`
	DefaultValidityWindow  time.Duration `envconfig:"TICKET_DEFAULT_VALIDITY_WINDOW" default:"720h"`
	CredentialInsertRetry  int           `envconfig:"TICKET_CREDENTIAL_INSERT_RETRY" default:"3"`
	IdempotencyKeyLifetime time.Duration `envconfig:"TICKET_IDEMPOTENCY_KEY_LIFETIME" default:"24h"`
	WalletPassBaseURL      string        `envconfig:"TICKET_WALLET_PASS_BASE_URL" default:"https://passes.tickethub.local"`
	NotifierPollInterval   time.Duration `envconfig:"TICKET_NOTIFIER_POLL_INTERVAL" default:"5s"`
	NotifierBatchSize      int           `envconfig:"TICKET_NOTIFIER_BATCH_SIZE" default:"50"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		Ticketing: TicketingConfig{
			CancellationFeeRate:    0.10,
			DefaultValidityWindow:  720 * time.Hour,
			CredentialInsertRetry:  3,
			IdempotencyKeyLifetime: 24 * time.Hour,
			WalletPassBaseURL:      "https://passes.tickethub.local",
		},
	}
}
