package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/notewire/notewire/logger"
)

// ServerConfig configures the daemon's HTTP surface.
type ServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port" validate:"min=0,max=65535"`
	// H2C enables cleartext HTTP/2.
	H2C bool `yaml:"h2c" mapstructure:"h2c"`
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StoreConfig configures settings and cache persistence.
type StoreConfig struct {
	// Path is the sqlite database file. Empty selects in-memory stores.
	Path string `yaml:"path" mapstructure:"path"`
}

// ObservabilityConfig configures OTLP export.
type ObservabilityConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
}

// Config is the root daemon configuration.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging       logger.Config       `yaml:"logging" mapstructure:"logging"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Store         StoreConfig         `yaml:"store" mapstructure:"store"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Settings      Settings            `yaml:"settings" mapstructure:"settings"`
}

// ApplyDefaults applies default values to the whole tree.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "notewired"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8791
	}
	c.Logging.ApplyDefaults()
	c.Settings.ApplyDefaults()
}

var validate = validator.New()

// Validate checks the configuration tree. Struct tags cover field-level
// rules; logging has its own enum checks.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return nil
}

// Load reads configuration for the daemon: config.yml plus .env plus
// environment variables, then defaults and validation.
func Load(opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadInto("notewired", &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
