package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	WriterNative   = "native"
	WriterExifTool = "exiftool"
)

type Config struct {
	MatchWindow  int    `mapstructure:"match_window"` // minutes
	Writer       string `mapstructure:"writer"`
	TempSuffix   string `mapstructure:"temp_suffix"`
	LogFile      string `mapstructure:"log_file"`
	Manifest     string `mapstructure:"manifest"`
	ExifToolPath string `mapstructure:"exiftool_path"`
}

// Window returns the matching window as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.MatchWindow) * time.Minute
}

func (c *Config) Validate() error {
	if c.MatchWindow < 0 {
		return fmt.Errorf("match_window must not be negative, got %d", c.MatchWindow)
	}
	switch c.Writer {
	case WriterNative, WriterExifTool:
	default:
		return fmt.Errorf("unknown writer %q (want %s or %s)", c.Writer, WriterNative, WriterExifTool)
	}
	if c.TempSuffix == "" {
		return errors.New("temp_suffix must not be empty")
	}
	return nil
}

// LoadConfig reads geotagger.toml from the given directories, or from the
// user config dir when none are given. A missing file is fine; defaults and
// GEOTAGGER_* environment variables still apply.
func LoadConfig(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to find user config dir: %w", err)
		}
		paths = []string{filepath.Join(configDir, "geotagger")}
	}

	v := viper.New()
	v.SetConfigName("geotagger")
	v.SetConfigType("toml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("GEOTAGGER")
	v.AutomaticEnv()

	// Set defaults:
	v.SetDefault("match_window", int(DefaultMatchWindow/time.Minute))
	v.SetDefault("writer", WriterNative)
	v.SetDefault("temp_suffix", DefaultTempSuffix)
	v.SetDefault("log_file", "")
	v.SetDefault("manifest", "")
	v.SetDefault("exiftool_path", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
