package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "IMGCOMPRESS"

type Config struct {
	App AppConfig
	Log LogConfig
}

type AppConfig struct {
	InputDir  string `validate:"required"`
	OutputDir string `validate:"required"`
	// Quality is handed to the encoder untouched; the encoder decides
	// what out-of-range values mean.
	Quality  int
	Lossless bool
	Watch    bool
}

type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=console json"`
}

// Load builds the configuration from, in increasing priority: defaults,
// an optional YAML file (--config), IMGCOMPRESS_* environment variables
// and command-line flags.
func Load(args []string) (*Config, error) {
	v := viper.New()

	fs := pflag.NewFlagSet("imgcompress", pflag.ContinueOnError)
	fs.String("input", "input_images", "directory to read images from")
	fs.String("output", "compressed_images", "directory to write WebP files to")
	fs.Int("quality", 80, "WebP quality, passed to the encoder as is")
	fs.Bool("lossless", false, "encode lossless WebP")
	fs.Bool("watch", false, "keep watching the input directory after the first pass")
	fs.String("config", "", "optional YAML config file")
	fs.String("log-level", "warn", "debug, info, warn or error")
	fs.String("log-format", "console", "console or json")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// GetInt would turn a non-numeric env or file value into 0.
	quality, err := cast.ToIntE(v.Get("quality"))
	if err != nil {
		return nil, fmt.Errorf("invalid quality: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			InputDir:  v.GetString("input"),
			OutputDir: v.GetString("output"),
			Quality:   quality,
			Lossless:  v.GetBool("lossless"),
			Watch:     v.GetBool("watch"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log-level")),
			Format: strings.ToLower(v.GetString("log-format")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
