package config

import (
	"time"

	"github.com/creasty/defaults"
)

type Server struct {
	HTTPPort        int           `default:"8000"`
	ServerMode      string        `default:"dev"`
	StaticsFolder   string        `default:""`
	TLSCertFile     string        `default:""`
	TLSKeyFile      string        `default:""`
	ShutdownTimeout time.Duration `default:"10s"`
}

type Database struct {
	// Driver is duckdb or postgres.
	Driver string `default:"duckdb"`
	DSN    string `default:"bc20.duckdb"`
}

type Authentication struct {
	Enabled       bool   `default:"true"`
	PublicKeyFile string `default:""`
}

type Search struct {
	NumWorkers    int  `default:"3"`
	ExportLimit   int  `default:"10000"`
	StrictFilters bool `default:"false"`
}

type Logging struct {
	Level  string `default:"info"`
	Format string `default:"console"`
}

type Configuration struct {
	Server   Server
	Database Database
	Auth     Authentication
	Search   Search
	Logging  Logging
}

type ConfigurationOption func(*Configuration)

func WithServer(s Server) ConfigurationOption {
	return func(c *Configuration) {
		c.Server = s
	}
}

func WithDatabase(d Database) ConfigurationOption {
	return func(c *Configuration) {
		c.Database = d
	}
}

func WithAuth(a Authentication) ConfigurationOption {
	return func(c *Configuration) {
		c.Auth = a
	}
}

func WithSearch(s Search) ConfigurationOption {
	return func(c *Configuration) {
		c.Search = s
	}
}

// NewConfigurationWithOptionsAndDefaults applies the struct defaults, then opts.
func NewConfigurationWithOptionsAndDefaults(opts ...ConfigurationOption) *Configuration {
	c := &Configuration{}
	defaults.MustSet(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}
