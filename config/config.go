package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the service reads from the environment.
type Config struct {
	Port           int    `mapstructure:"PORT"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DataDir        string `mapstructure:"DATA_DIR"`
	TeamName       string `mapstructure:"TEAM_NAME"`
	TeamPassword   string `mapstructure:"TEAM_PASSWORD"`
	ServiceToken   string `mapstructure:"SERVICE_TOKEN"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	RedisURL     string        `mapstructure:"REDIS_URL"`
	DraftIdleTTL time.Duration `mapstructure:"DRAFT_IDLE_TTL"`

	LayoutsSource         string        `mapstructure:"LAYOUTS_SOURCE"`
	LayoutRefreshInterval time.Duration `mapstructure:"LAYOUT_REFRESH_INTERVAL"`

	CloudflareAccountID string `mapstructure:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID       string `mapstructure:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret   string `mapstructure:"R2_ACCESS_KEY_SECRET"`
	R2BucketName        string `mapstructure:"R2_BUCKET_NAME"`
	CDNBaseURL          string `mapstructure:"CDN_BASE_URL"`
	R2LayoutsPrefix     string `mapstructure:"R2_LAYOUTS_PREFIX"`

	OptimizerURL     string        `mapstructure:"OPTIMIZER_URL"`
	OptimizerToken   string        `mapstructure:"OPTIMIZER_TOKEN"`
	OptimizerTimeout time.Duration `mapstructure:"OPTIMIZER_TIMEOUT"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogFile  string `mapstructure:"LOG_FILE"`
}

const (
	LayoutsFromDir = "dir"
	LayoutsFromR2  = "r2"
)

var defaults = map[string]any{
	"PORT":                    5200,
	"DATABASE_URL":            "",
	"DATA_DIR":                "data",
	"TEAM_NAME":               "team",
	"TEAM_PASSWORD":           "",
	"SERVICE_TOKEN":           "",
	"ALLOWED_ORIGINS":         "http://localhost:3000",
	"REDIS_URL":               "",
	"DRAFT_IDLE_TTL":          "2h",
	"LAYOUTS_SOURCE":          LayoutsFromDir,
	"LAYOUT_REFRESH_INTERVAL": "5m",
	"CLOUDFLARE_ACCOUNT_ID":   "",
	"R2_ACCESS_KEY_ID":        "",
	"R2_ACCESS_KEY_SECRET":    "",
	"R2_BUCKET_NAME":          "",
	"CDN_BASE_URL":            "",
	"R2_LAYOUTS_PREFIX":       "layouts/",
	"OPTIMIZER_URL":           "",
	"OPTIMIZER_TOKEN":         "",
	"OPTIMIZER_TIMEOUT":       "30s",
	"LOG_LEVEL":               "info",
	"LOG_FILE":                "",
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(viper.New())
}

// FromViper binds defaults and environment variables on v and decodes them.
func FromViper(v *viper.Viper) (*Config, error) {
	for k, d := range defaults {
		v.SetDefault(k, d)
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	c.LayoutsSource = strings.ToLower(strings.TrimSpace(c.LayoutsSource))
	switch c.LayoutsSource {
	case LayoutsFromDir:
	case LayoutsFromR2:
		if c.R2BucketName == "" || c.CloudflareAccountID == "" {
			return fmt.Errorf("LAYOUTS_SOURCE=r2 needs R2_BUCKET_NAME and CLOUDFLARE_ACCOUNT_ID")
		}
	default:
		return fmt.Errorf("LAYOUTS_SOURCE must be %q or %q, got %q", LayoutsFromDir, LayoutsFromR2, c.LayoutsSource)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.DraftIdleTTL <= 0 {
		return fmt.Errorf("DRAFT_IDLE_TTL must be positive")
	}
	if c.LayoutRefreshInterval <= 0 {
		return fmt.Errorf("LAYOUT_REFRESH_INTERVAL must be positive")
	}
	return nil
}

// Origins splits ALLOWED_ORIGINS into trimmed entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// SQLitePath is the database file used when DATABASE_URL is empty.
func (c *Config) SQLitePath() string {
	return strings.TrimRight(c.DataDir, "/") + "/pairings.db"
}
