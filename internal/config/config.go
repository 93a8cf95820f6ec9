package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StrategyLocal  = "local"
	StrategyRemote = "remote"
)

// Config represents the application configuration
type Config struct {
	Strategy string       `yaml:"strategy"`
	Remote   RemoteConfig `yaml:"remote"`
	Local    LocalConfig  `yaml:"local"`
	Watch    WatchConfig  `yaml:"watch"`
	Server   ServerConfig `yaml:"server"`
	Log      LogConfig    `yaml:"log"`
}

type RemoteConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	Background string        `yaml:"background"`
	Foreground string        `yaml:"foreground"`
}

type LocalConfig struct {
	Background  string `yaml:"background"`
	Foreground  string `yaml:"foreground"`
	FontPath    string `yaml:"font_path"`
	FontDivisor int    `yaml:"font_divisor"`
	MinFontSize int    `yaml:"min_font_size"`
	JPEGQuality int    `yaml:"jpeg_quality"`
}

type WatchConfig struct {
	Workers int           `yaml:"workers"`
	Settle  time.Duration `yaml:"settle"`
}

type ServerConfig struct {
	Port         int `yaml:"port"`
	MaxDimension int `yaml:"max_dimension"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Strategy: StrategyLocal,
		Remote: RemoteConfig{
			BaseURL:    "https://dummyimage.com",
			Timeout:    3 * time.Second,
			Background: "eeeeee",
			Foreground: "000000",
		},
		Local: LocalConfig{
			Background:  "eeeeee",
			Foreground:  "000000",
			FontDivisor: 10,
			MinFontSize: 1,
			JPEGQuality: 75,
		},
		Watch: WatchConfig{
			Workers: runtime.NumCPU(),
			Settle:  250 * time.Millisecond,
		},
		Server: ServerConfig{
			Port:         8080,
			MaxDimension: 4000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// FAKEIMG_* environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from a .env file. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to check if %s exists: %w", path, err)
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("could not load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("FAKEIMG_STRATEGY"); v != "" {
		c.Strategy = v
	}
	if v := os.Getenv("FAKEIMG_REMOTE_URL"); v != "" {
		c.Remote.BaseURL = v
	}
	if v := os.Getenv("FAKEIMG_REMOTE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FAKEIMG_REMOTE_TIMEOUT: %w", err)
		}
		c.Remote.Timeout = d
	}
	if v := os.Getenv("FAKEIMG_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FAKEIMG_WORKERS: %w", err)
		}
		c.Watch.Workers = n
	}
	if v := os.Getenv("FAKEIMG_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FAKEIMG_PORT: %w", err)
		}
		c.Server.Port = n
	}
	if v := os.Getenv("FAKEIMG_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks that every field holds a usable value
func (c *Config) Validate() error {
	switch c.Strategy {
	case StrategyLocal, StrategyRemote:
	default:
		return fmt.Errorf("strategy must be %q or %q, got %q", StrategyLocal, StrategyRemote, c.Strategy)
	}
	if c.Strategy == StrategyRemote && c.Remote.BaseURL == "" {
		return fmt.Errorf("remote.base_url is required")
	}
	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("remote.timeout must be positive")
	}
	if c.Local.FontDivisor <= 0 {
		return fmt.Errorf("local.font_divisor must be positive")
	}
	if c.Local.MinFontSize <= 0 {
		return fmt.Errorf("local.min_font_size must be positive")
	}
	if c.Local.JPEGQuality < 1 || c.Local.JPEGQuality > 100 {
		return fmt.Errorf("local.jpeg_quality must be within 1..100")
	}
	if c.Watch.Workers <= 0 {
		return fmt.Errorf("watch.workers must be positive")
	}
	if c.Server.MaxDimension <= 0 {
		return fmt.Errorf("server.max_dimension must be positive")
	}
	return nil
}
