package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Upload     UploadConfig
	Export     ExportConfig
	Classifier ClassifierConfig
	Analysis   AnalysisConfig
	Connector  ConnectorConfig
	Render     RenderConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// UploadConfig holds dataset upload limits
type UploadConfig struct {
	MaxFileSize int64
	MaxRows     int
}

// ExportConfig holds report export settings
type ExportConfig struct {
	Directory string
}

// ClassifierConfig holds column type inference settings
type ClassifierConfig struct {
	CategoricalRatio       float64
	CategoricalMaxDistinct int
}

// AnalysisConfig holds statistical analysis settings
type AnalysisConfig struct {
	TopKPairs          int
	ValueCountsTopN    int
	OutlierReportLimit int
	ZScoreThreshold    float64
	IQRMultiplier      float64
}

// ConnectorConfig holds external database query settings
type ConnectorConfig struct {
	MaxRows int
}

// RenderConfig holds PDF rendering settings
type RenderConfig struct {
	Enabled   bool
	RemoteURL string
	NoSandbox bool
	Timeout   time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with DATALENS_ prefix (e.g., DATALENS_APP_PORT)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("DATALENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Upload: UploadConfig{
			MaxFileSize: v.GetInt64("upload.max_file_size"),
			MaxRows:     v.GetInt("upload.max_rows"),
		},
		Export: ExportConfig{
			Directory: v.GetString("export.directory"),
		},
		Classifier: ClassifierConfig{
			CategoricalRatio:       v.GetFloat64("classifier.categorical_ratio"),
			CategoricalMaxDistinct: v.GetInt("classifier.categorical_max_distinct"),
		},
		Analysis: AnalysisConfig{
			TopKPairs:          v.GetInt("analysis.top_k_pairs"),
			ValueCountsTopN:    v.GetInt("analysis.value_counts_top_n"),
			OutlierReportLimit: v.GetInt("analysis.outlier_report_limit"),
			ZScoreThreshold:    v.GetFloat64("analysis.zscore_threshold"),
			IQRMultiplier:      v.GetFloat64("analysis.iqr_multiplier"),
		},
		Connector: ConnectorConfig{
			MaxRows: v.GetInt("connector.max_rows"),
		},
		Render: RenderConfig{
			Enabled:   v.GetBool("render.enabled"),
			RemoteURL: v.GetString("render.remote_url"),
			NoSandbox: v.GetBool("render.no_sandbox"),
			Timeout:   v.GetDuration("render.timeout"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "datalens-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 64 << 20 // 64MB, uploads included
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Upload.MaxFileSize == 0 {
		cfg.Upload.MaxFileSize = 50 << 20 // 50MB
	}
	if cfg.Export.Directory == "" {
		cfg.Export.Directory = "./reports"
	}
	if cfg.Classifier.CategoricalRatio == 0 {
		cfg.Classifier.CategoricalRatio = 0.5
	}
	if cfg.Classifier.CategoricalMaxDistinct == 0 {
		cfg.Classifier.CategoricalMaxDistinct = 50
	}
	if cfg.Analysis.TopKPairs == 0 {
		cfg.Analysis.TopKPairs = 10
	}
	if cfg.Analysis.ValueCountsTopN == 0 {
		cfg.Analysis.ValueCountsTopN = 20
	}
	if cfg.Analysis.OutlierReportLimit == 0 {
		cfg.Analysis.OutlierReportLimit = 100
	}
	if cfg.Analysis.ZScoreThreshold == 0 {
		cfg.Analysis.ZScoreThreshold = 3.0
	}
	if cfg.Analysis.IQRMultiplier == 0 {
		cfg.Analysis.IQRMultiplier = 1.5
	}
	if cfg.Connector.MaxRows == 0 {
		cfg.Connector.MaxRows = 10000
	}
	if cfg.Render.Timeout == 0 {
		cfg.Render.Timeout = 30 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Classifier.CategoricalRatio <= 0 || c.Classifier.CategoricalRatio > 1 {
		return fmt.Errorf("classifier.categorical_ratio must be in (0, 1], got %f", c.Classifier.CategoricalRatio)
	}
	if c.Analysis.ZScoreThreshold <= 0 {
		return fmt.Errorf("analysis.zscore_threshold must be positive")
	}
	if c.Analysis.IQRMultiplier <= 0 {
		return fmt.Errorf("analysis.iqr_multiplier must be positive")
	}
	if c.Upload.MaxFileSize > c.HTTP.MaxBodySize {
		return fmt.Errorf("upload.max_file_size (%d) cannot exceed http.max_body_size (%d)",
			c.Upload.MaxFileSize, c.HTTP.MaxBodySize)
	}

	if c.App.Env == "production" {
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}
