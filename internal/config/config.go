package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

const (
	MinDepth = 1
	MaxDepth = 6
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Engine      EngineConfig      `mapstructure:"engine"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Development DevelopmentConfig `mapstructure:"development"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type EngineConfig struct {
	Depth    int    `mapstructure:"depth"`
	AIColor  string `mapstructure:"ai_color"`
	Parallel bool   `mapstructure:"parallel"`
	Workers  int    `mapstructure:"workers"` // 0 means one per CPU
}

type AuthConfig struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type DevelopmentConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith reads configuration through v, so tests can point it at their own
// files and environment.
func LoadWith(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Enable environment variables
	v.SetEnvPrefix("CHESSAI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, defaults and environment still apply
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("engine.depth", 3)
	v.SetDefault("engine.ai_color", "black")
	v.SetDefault("engine.parallel", false)
	v.SetDefault("engine.workers", 0)
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("development.debug", false)
	v.SetDefault("development.log_level", "info")
}

// DevSecret signs player tokens in debug mode when auth.secret is unset.
const DevSecret = "chessai-dev-secret"

// SigningSecret returns the secret player tokens are signed with. Without
// auth.secret only debug mode gets one.
func (c *Config) SigningSecret() (string, error) {
	switch {
	case c.Auth.Secret != "":
		return c.Auth.Secret, nil
	case c.Development.Debug:
		return DevSecret, nil
	default:
		return "", errors.New("auth.secret must be set (see generate-secret)")
	}
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Engine: EngineConfig{
			Depth:   3,
			AIColor: "black",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Development: DevelopmentConfig{
			LogLevel: "info",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Engine.Depth < MinDepth || c.Engine.Depth > MaxDepth {
		result = multierror.Append(result, fmt.Errorf("engine.depth %d not in [%d, %d]", c.Engine.Depth, MinDepth, MaxDepth))
	}
	switch strings.ToLower(c.Engine.AIColor) {
	case "white", "black":
	default:
		result = multierror.Append(result, fmt.Errorf("engine.ai_color %q must be white or black", c.Engine.AIColor))
	}
	if c.Engine.Workers < 0 {
		result = multierror.Append(result, fmt.Errorf("engine.workers %d must not be negative", c.Engine.Workers))
	}
	if c.Auth.Secret == DevSecret && !c.Development.Debug {
		result = multierror.Append(result, fmt.Errorf("auth.secret is the development secret but development.debug is off"))
	}
	if c.Auth.TokenTTL <= 0 {
		result = multierror.Append(result, fmt.Errorf("auth.token_ttl must be positive"))
	}

	return result.ErrorOrNil()
}
