package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rewired-gh/broadway/internal/chart"
)

// DefaultDatasetURL is the published attendance dataset.
const DefaultDatasetURL = "https://raw.githubusercontent.com/AylmerGit/Broadway/refs/heads/main/scripts/d3data.json"

// Config represents the complete application configuration
type Config struct {
	Dataset DatasetConfig `mapstructure:"dataset"`
	Server  ServerConfig  `mapstructure:"server"`
	Chart   ChartConfig   `mapstructure:"chart"`
	Page    PageConfig    `mapstructure:"page"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// DatasetConfig holds the dataset source configuration
type DatasetConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr              string        `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// ChartConfig holds chart geometry and presentation
type ChartConfig struct {
	Width           float64       `mapstructure:"width"`
	Height          float64       `mapstructure:"height"`
	MarginTop       float64       `mapstructure:"margin_top"`
	MarginRight     float64       `mapstructure:"margin_right"`
	MarginBottom    float64       `mapstructure:"margin_bottom"`
	MarginLeft      float64       `mapstructure:"margin_left"`
	Padding         float64       `mapstructure:"padding"`
	YTicks          int           `mapstructure:"y_ticks"`
	Transition      time.Duration `mapstructure:"transition"`
	AttendanceColor string        `mapstructure:"attendance_color"`
	RemainingColor  string        `mapstructure:"remaining_color"`
	Title           string        `mapstructure:"title"`
	XLabel          string        `mapstructure:"x_label"`
	YLabel          string        `mapstructure:"y_label"`
	ZeroCapacity    string        `mapstructure:"zero_capacity"`
}

// PageConfig holds the text around the chart
type PageConfig struct {
	Title      string   `mapstructure:"title"`
	Paragraphs []string `mapstructure:"paragraphs"`
}

// MetricsConfig holds Prometheus exposition configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
// A missing file is tolerated when allowMissing is set; defaults and
// environment variables then provide every value.
func Load(path string, allowMissing bool) (*Config, error) {
	v := viper.New()

	// Pick up a .env next to the config file, then one in the working directory
	loadDotEnv(filepath.Join(filepath.Dir(path), ".env"))
	loadDotEnv(".env")

	// Set config file
	v.SetConfigFile(path)

	// Set defaults
	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("BROADWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if !allowMissing || !isNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	// Existing environment variables win over .env entries
	_ = godotenv.Load(path)
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	layout := chart.DefaultLayout()

	// Dataset defaults
	v.SetDefault("dataset.url", DefaultDatasetURL)
	v.SetDefault("dataset.timeout", "30s")

	// Server defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_header_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Chart defaults
	v.SetDefault("chart.width", layout.Width)
	v.SetDefault("chart.height", layout.Height)
	v.SetDefault("chart.margin_top", layout.Margin.Top)
	v.SetDefault("chart.margin_right", layout.Margin.Right)
	v.SetDefault("chart.margin_bottom", layout.Margin.Bottom)
	v.SetDefault("chart.margin_left", layout.Margin.Left)
	v.SetDefault("chart.padding", layout.Padding)
	v.SetDefault("chart.y_ticks", layout.YTicks)
	v.SetDefault("chart.transition", layout.Transition.String())
	v.SetDefault("chart.attendance_color", layout.AttendanceColor)
	v.SetDefault("chart.remaining_color", layout.RemainingColor)
	v.SetDefault("chart.title", layout.Title)
	v.SetDefault("chart.x_label", layout.XLabel)
	v.SetDefault("chart.y_label", layout.YLabel)
	v.SetDefault("chart.zero_capacity", string(layout.ZeroCapacity))

	// Page defaults
	v.SetDefault("page.title", "Broadway Theatre Attendance")
	v.SetDefault("page.paragraphs", []string{})

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Dataset config
	if c.Dataset.URL == "" {
		return fmt.Errorf("dataset.url is required")
	}
	if lower := strings.ToLower(c.Dataset.URL); strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		if _, err := url.ParseRequestURI(c.Dataset.URL); err != nil {
			return fmt.Errorf("dataset.url is not a valid URL: %w", err)
		}
	}
	if c.Dataset.Timeout < 1*time.Second {
		return fmt.Errorf("dataset.timeout must be at least 1 second")
	}

	// Validate Server config
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		return fmt.Errorf("server.read_header_timeout must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}

	// Validate Chart config
	if err := c.Layout().Validate(); err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	if _, err := chart.ParseColor(c.Chart.AttendanceColor); err != nil {
		return fmt.Errorf("chart.attendance_color: %w", err)
	}
	if _, err := chart.ParseColor(c.Chart.RemainingColor); err != nil {
		return fmt.Errorf("chart.remaining_color: %w", err)
	}

	// Validate Metrics config
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// Layout returns the chart layout described by the chart section
func (c *Config) Layout() chart.Layout {
	return chart.Layout{
		Width:  c.Chart.Width,
		Height: c.Chart.Height,
		Margin: chart.Margin{
			Top:    c.Chart.MarginTop,
			Right:  c.Chart.MarginRight,
			Bottom: c.Chart.MarginBottom,
			Left:   c.Chart.MarginLeft,
		},
		Padding:         c.Chart.Padding,
		YTicks:          c.Chart.YTicks,
		Transition:      c.Chart.Transition,
		AttendanceColor: c.Chart.AttendanceColor,
		RemainingColor:  c.Chart.RemainingColor,
		Title:           c.Chart.Title,
		XLabel:          c.Chart.XLabel,
		YLabel:          c.Chart.YLabel,
		ZeroCapacity:    chart.ZeroCapacityPolicy(c.Chart.ZeroCapacity),
	}
}

// GetDatasetConfig returns the Dataset configuration
func (c *Config) GetDatasetConfig() DatasetConfig {
	return c.Dataset
}

// GetServerConfig returns the Server configuration
func (c *Config) GetServerConfig() ServerConfig {
	return c.Server
}

// GetLoggingConfig returns the Logging configuration
func (c *Config) GetLoggingConfig() LoggingConfig {
	return c.Logging
}
