package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/fx"
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type DBConfig struct {
	// DSN is optional. When empty the service runs with in-memory stores only.
	DSN string `mapstructure:"dsn"`
}

type LLMConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type OCRConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type PaymentConfig struct {
	APIKey      string `mapstructure:"api_key"`
	ProductID   string `mapstructure:"product_id"`
	PriceID     string `mapstructure:"price_id"`
	Environment string `mapstructure:"environment"` // production or sandbox
	FrontendURL string `mapstructure:"frontend_url"`
	// PassPriceUSD is the fixed price of the 30-day access pass.
	PassPriceUSD float64 `mapstructure:"pass_price_usd"`
}

// APIBaseURL resolves the provider API host for the configured environment.
func (p PaymentConfig) APIBaseURL() (string, error) {
	switch p.Environment {
	case "production":
		return "https://api.paddle.com", nil
	case "sandbox":
		return "https://sandbox-api.paddle.com", nil
	default:
		return "", fmt.Errorf("unknown payment environment: %s", p.Environment)
	}
}

// IsConfigured reports whether checkout creation can work at all.
func (p PaymentConfig) IsConfigured() bool {
	return p.APIKey != "" && p.ProductID != "" && p.PriceID != ""
}

type AccessConfig struct {
	// PassDays is the access window granted per successful payment.
	PassDays int `mapstructure:"pass_days"`
	// LeaseQuota is the number of full analyses consumable within one pass.
	LeaseQuota int `mapstructure:"lease_quota"`
	// BypassUserIDs always have full access without a record or quota consumption.
	BypassUserIDs []string `mapstructure:"bypass_user_ids"`
	// BypassPrefix marks synthetic test identities, e.g. "test_".
	BypassPrefix string `mapstructure:"bypass_prefix"`
}

type RateLimitConfig struct {
	UserLimit   int `mapstructure:"user_limit"`
	IPLimit     int `mapstructure:"ip_limit"`
	WindowHours int `mapstructure:"window_hours"`
}

func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowHours) * time.Hour
}

type UploadConfig struct {
	Dir           string `mapstructure:"dir"`
	MaxFileSizeMB int    `mapstructure:"max_file_size_mb"`
	MaxPages      int    `mapstructure:"max_pages"`
}

func (u UploadConfig) MaxFileSizeBytes() int64 {
	return int64(u.MaxFileSizeMB) * 1024 * 1024
}

type StoreConfig struct {
	// MaxAnalyses bounds the in-memory analysis store; oldest entries are
	// evicted past the bound. 0 = unlimited.
	MaxAnalyses int `mapstructure:"max_analyses"`
}

type Env string

const (
	EnvDev  Env = "dev"
	EnvProd Env = "prod"
)

type Config struct {
	Env         Env             `mapstructure:"env"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DBConfig        `mapstructure:"database"`
	LLM         LLMConfig       `mapstructure:"llm"`
	OCR         OCRConfig       `mapstructure:"ocr"`
	Payment     PaymentConfig   `mapstructure:"payment"`
	Access      AccessConfig    `mapstructure:"access"`
	RateLimit   RateLimitConfig `mapstructure:"ratelimit"`
	Upload      UploadConfig    `mapstructure:"upload"`
	Store       StoreConfig     `mapstructure:"store"`
	MetricsAddr string          `mapstructure:"metrics_addr"`
}

// IsBypassUser reports whether the id is on the access allowlist. The mechanism
// is a narrow enumerated list plus one fixed prefix, never a wildcard.
func (c *Config) IsBypassUser(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range c.Access.BypassUserIDs {
		if id == userID {
			return true
		}
	}
	return c.Access.BypassPrefix != "" && strings.HasPrefix(userID, c.Access.BypassPrefix)
}

func New() (*Config, error) {
	v := viper.New()
	// Allow overriding config file via env:
	// - APP_CONFIG_FILE: absolute or relative file path (e.g., /etc/app/prod.yaml)
	// - APP_CONFIG_NAME: config base name without extension (default: "config")
	if file := os.Getenv("APP_CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
	} else {
		cfgName := os.Getenv("APP_CONFIG_NAME")
		if cfgName == "" {
			cfgName = "config"
		}
		v.SetConfigName(cfgName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("env", "dev")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("database.dsn", "")
	v.SetDefault("llm.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("llm.model", "deepseek-chat")
	v.SetDefault("llm.timeout_seconds", 60)
	v.SetDefault("ocr.timeout_seconds", 60)
	v.SetDefault("payment.environment", "production")
	v.SetDefault("payment.frontend_url", "https://qiyoga.xyz")
	v.SetDefault("payment.pass_price_usd", 9.90)
	v.SetDefault("access.pass_days", 30)
	v.SetDefault("access.lease_quota", 5)
	v.SetDefault("access.bypass_prefix", "test_")
	v.SetDefault("ratelimit.user_limit", 3)
	v.SetDefault("ratelimit.ip_limit", 20)
	v.SetDefault("ratelimit.window_hours", 24)
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_file_size_mb", 15)
	v.SetDefault("upload.max_pages", 40)
	v.SetDefault("store.max_analyses", 200)
	v.SetDefault("metrics_addr", "")

	if err := v.ReadInConfig(); err != nil {
		_ = err
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &c, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
