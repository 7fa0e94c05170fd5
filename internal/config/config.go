package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/spektr-org/spektrchart/engine"
)

// Config holds all configuration for spektrchart
type Config struct {
	Log    LogConfig
	Engine EngineConfig
	Server ServerConfig
	Theme  ThemeConfig
}

type LogConfig struct {
	Level  string
	Format string // "json" or "console"
}

type EngineConfig struct {
	SampleThreshold int    // Row count above which rows are sampled
	CacheSize       int    // Memoized configurations kept by the server pipeline
	Seed            uint64 // 0 = random sampling
	SeedKey         string // Stable identifier hashed into a seed; wins over Seed
}

type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    int
	WriteTimeout   int
	MaxPayloadSize int64 // Maximum request body in bytes
}

// ThemeConfig overrides the label styling used by option builders. Unset
// fields keep the fallback theme's values.
type ThemeConfig struct {
	LabelBackground string
	LabelBorder     string
	LabelText       string
	AxisText        string
	GridColor       string
	FontSize        int
	Palette         []string
}

// Load reads configuration from defaults, an optional TOML file and
// SPEKTRCHART_* environment variables. An empty path searches the usual
// locations; a missing file there is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.SetEnvPrefix("SPEKTRCHART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("spektrchart")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/spektrchart/")
		v.AddConfigPath("$HOME/.spektrchart/")

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
			// Config file not found is OK, use defaults
		}
	}

	maxPayloadSize, err := ParseSize(v.GetString("server.max_payload_size"))
	if err != nil {
		return nil, fmt.Errorf("invalid server.max_payload_size: %w", err)
	}

	cfg := &Config{
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Engine: EngineConfig{
			SampleThreshold: v.GetInt("engine.sample_threshold"),
			CacheSize:       v.GetInt("engine.cache_size"),
			Seed:            v.GetUint64("engine.seed"),
			SeedKey:         v.GetString("engine.seed_key"),
		},
		Server: ServerConfig{
			Host:           v.GetString("server.host"),
			Port:           v.GetInt("server.port"),
			ReadTimeout:    v.GetInt("server.read_timeout"),
			WriteTimeout:   v.GetInt("server.write_timeout"),
			MaxPayloadSize: maxPayloadSize,
		},
		Theme: ThemeConfig{
			LabelBackground: v.GetString("theme.label_background"),
			LabelBorder:     v.GetString("theme.label_border"),
			LabelText:       v.GetString("theme.label_text"),
			AxisText:        v.GetString("theme.axis_text"),
			GridColor:       v.GetString("theme.grid_color"),
			FontSize:        v.GetInt("theme.font_size"),
			Palette:         v.GetStringSlice("theme.palette"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("engine.sample_threshold", engine.DefaultSampleThreshold)
	v.SetDefault("engine.cache_size", engine.DefaultCacheSize)
	v.SetDefault("engine.seed", 0)
	v.SetDefault("engine.seed_key", "")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.max_payload_size", "10MB")

	// Theme keys are registered so environment overrides resolve
	v.SetDefault("theme.label_background", "")
	v.SetDefault("theme.label_border", "")
	v.SetDefault("theme.label_text", "")
	v.SetDefault("theme.axis_text", "")
	v.SetDefault("theme.grid_color", "")
	v.SetDefault("theme.font_size", 0)
	v.SetDefault("theme.palette", []string{})
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Engine.SampleThreshold < 0 {
		return fmt.Errorf("engine.sample_threshold must be >= 0, got %d", c.Engine.SampleThreshold)
	}
	if c.Engine.CacheSize < 0 {
		return fmt.Errorf("engine.cache_size must be >= 0, got %d", c.Engine.CacheSize)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Theme.FontSize < 0 {
		return fmt.Errorf("theme.font_size must be >= 0, got %d", c.Theme.FontSize)
	}
	return nil
}

// IsSet reports whether any theme field was configured.
func (t ThemeConfig) IsSet() bool {
	return t.LabelBackground != "" || t.LabelBorder != "" || t.LabelText != "" ||
		t.AxisText != "" || t.GridColor != "" || t.FontSize != 0 || len(t.Palette) > 0
}

// EngineOptions translates the configuration into engine options.
func (c *Config) EngineOptions() []engine.Option {
	opts := []engine.Option{
		engine.WithSampleThreshold(c.Engine.SampleThreshold),
		engine.WithCacheSize(c.Engine.CacheSize),
	}
	if c.Engine.SeedKey != "" {
		opts = append(opts, engine.WithSeedKey(c.Engine.SeedKey))
	} else if c.Engine.Seed != 0 {
		opts = append(opts, engine.WithSeed(c.Engine.Seed))
	}
	if c.Theme.IsSet() {
		opts = append(opts, engine.WithTheme(engine.Theme{
			LabelBackground: c.Theme.LabelBackground,
			LabelBorder:     c.Theme.LabelBorder,
			LabelText:       c.Theme.LabelText,
			AxisText:        c.Theme.AxisText,
			GridColor:       c.Theme.GridColor,
			FontSize:        c.Theme.FontSize,
			Palette:         c.Theme.Palette,
		}))
	}
	return opts
}

// ParseSize parses a human-readable size string (e.g., "1GB", "500MB", "100KB") to bytes.
// Supports: B, KB, MB, GB (case-insensitive).
func ParseSize(sizeStr string) (int64, error) {
	sizeStr = strings.TrimSpace(strings.ToUpper(sizeStr))
	if sizeStr == "" {
		return 0, fmt.Errorf("empty size string")
	}

	type unitInfo struct {
		suffix     string
		multiplier int64
	}
	units := []unitInfo{
		{"GB", 1024 * 1024 * 1024},
		{"MB", 1024 * 1024},
		{"KB", 1024},
		{"B", 1},
	}

	// Longer suffixes first so "MB" is not read as "B"
	for _, unit := range units {
		if strings.HasSuffix(sizeStr, unit.suffix) {
			numStr := strings.TrimSpace(strings.TrimSuffix(sizeStr, unit.suffix))

			var num float64
			var trailing string
			n, _ := fmt.Sscanf(numStr, "%f%s", &num, &trailing)
			if n == 0 {
				return 0, fmt.Errorf("invalid size number: %s", numStr)
			}
			if trailing != "" {
				return 0, fmt.Errorf("invalid size format: %s (use e.g., '16MB', '512KB')", sizeStr)
			}
			if num < 0 {
				return 0, fmt.Errorf("size cannot be negative: %s", sizeStr)
			}
			return int64(num * float64(unit.multiplier)), nil
		}
	}

	// Plain number of bytes
	var num int64
	var trailing string
	n, _ := fmt.Sscanf(sizeStr, "%d%s", &num, &trailing)
	if n == 0 || trailing != "" {
		return 0, fmt.Errorf("invalid size format: %s (use e.g., '16MB', '512KB')", sizeStr)
	}
	if num < 0 {
		return 0, fmt.Errorf("size cannot be negative: %s", sizeStr)
	}
	return num, nil
}
