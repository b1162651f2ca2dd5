package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Database *dbConfig
	Service  *svcConfig
	Outbox   *outboxConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"booking"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address         string `envconfig:"FCFS_BOOKING_ADDRESS" default:":8080"`
	MetricsAddress  string `envconfig:"FCFS_BOOKING_METRICS_ADDRESS" default:":8081"`
	BaseUrl         string `envconfig:"FCFS_BOOKING_BASE_URL" default:"http://localhost:8080"`
	LogLevel        string `envconfig:"FCFS_BOOKING_LOG_LEVEL" default:"info"`
	MigrationFolder string `envconfig:"FCFS_BOOKING_MIGRATIONS_FOLDER" default:""`
	Auth            Auth
}

type Auth struct {
	AuthenticationType string `envconfig:"FCFS_BOOKING_AUTH" default:"local"`
	LocalSigningKey    string `envconfig:"FCFS_BOOKING_JWT_SECRET" default:""`
}

type outboxConfig struct {
	TargetURL     string        `envconfig:"FCFS_BOOKING_OUTBOX_TARGET_URL" default:"http://localhost:9090/webhooks/booking"`
	Target        string        `envconfig:"FCFS_BOOKING_OUTBOX_TARGET" default:"dandori"`
	SigningSecret string        `envconfig:"FCFS_BOOKING_OUTBOX_SECRET" default:""`
	BatchSize     int           `envconfig:"FCFS_BOOKING_OUTBOX_BATCH_SIZE" default:"20"`
	PollInterval  time.Duration `envconfig:"FCFS_BOOKING_OUTBOX_POLL_INTERVAL" default:"5s"`
	MaxRetries    int           `envconfig:"FCFS_BOOKING_OUTBOX_MAX_RETRIES" default:"5"`
	HTTPTimeout   time.Duration `envconfig:"FCFS_BOOKING_OUTBOX_HTTP_TIMEOUT" default:"15s"`
	Embedded      bool          `envconfig:"FCFS_BOOKING_OUTBOX_EMBEDDED" default:"true"`
}

func New() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewDefault returns a config with an in-memory sqlite database, the none
// authenticator and the outbox batch, poll, retry and timeout defaults. The
// addresses, the outbox target URL and the secrets are left empty and the
// embedded dispatcher is off. Used by the test suites.
func NewDefault() *Config {
	return &Config{
		Database: &dbConfig{Type: "sqlite", Name: ":memory:"},
		Service:  &svcConfig{LogLevel: "info", Auth: Auth{AuthenticationType: "none"}},
		Outbox: &outboxConfig{
			Target:       "dandori",
			BatchSize:    20,
			PollInterval: 5 * time.Second,
			MaxRetries:   5,
			HTTPTimeout:  15 * time.Second,
		},
	}
}
