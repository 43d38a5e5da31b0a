// internal/common/config/loader.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultBaseURL is used when neither config files nor API_BASE_URL name a backend.
const DefaultBaseURL = "http://localhost:5000"

// Load reads configs/config.yaml (plus config.<APP_ENVIRONMENT>.yaml) and
// environment overrides such as API_BASE_URL.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	registerDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// registerDefaults gives every key a default so AutomaticEnv can see it during Unmarshal.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "bluemedix-workflow")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", 30000)
	v.SetDefault("api.admin_email", "admin@bluemedix.com")
	v.SetDefault("api.admin_password", "admin123")

	sc := DefaultScenario()
	v.SetDefault("scenario.franchise_first", sc.FranchiseFirst)
	v.SetDefault("scenario.skip_negative_checks", sc.SkipNegativeChecks)
	v.SetDefault("scenario.product_price", sc.ProductPrice)
	v.SetDefault("scenario.product_discount", sc.ProductDiscount)
	v.SetDefault("scenario.order_subtotal", sc.OrderSubtotal)
	v.SetDefault("scenario.order_delivery_charge", sc.OrderDeliveryCharge)
	v.SetDefault("scenario.initial_stock", sc.InitialStock)

	v.SetDefault("report.path", "test-results.json")
	v.SetDefault("report.metrics_textfile", "")

	v.SetDefault("sinks.redis.enabled", false)
	v.SetDefault("sinks.redis.address", "localhost:6379")
	v.SetDefault("sinks.redis.password", "")
	v.SetDefault("sinks.redis.db", 0)
	v.SetDefault("sinks.redis.key", "bluemedix:workflow:reports")
	v.SetDefault("sinks.redis.keep", 50)

	v.SetDefault("sinks.postgres.enabled", false)
	v.SetDefault("sinks.postgres.host", "localhost")
	v.SetDefault("sinks.postgres.port", 5432)
	v.SetDefault("sinks.postgres.database", "bluemedix")
	v.SetDefault("sinks.postgres.user", "")
	v.SetDefault("sinks.postgres.password", "")
	v.SetDefault("sinks.postgres.max_connections", 5)
	v.SetDefault("sinks.postgres.max_idle", 2)
	v.SetDefault("sinks.postgres.sslmode", "disable")

	v.SetDefault("sinks.elasticsearch.enabled", false)
	v.SetDefault("sinks.elasticsearch.addresses", []string{"http://localhost:9200"})
	v.SetDefault("sinks.elasticsearch.username", "")
	v.SetDefault("sinks.elasticsearch.password", "")
	v.SetDefault("sinks.elasticsearch.index", "bluemedix-workflow-runs")

	v.SetDefault("sinks.mongo.enabled", false)
	v.SetDefault("sinks.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("sinks.mongo.database", "bluemedix")
	v.SetDefault("sinks.mongo.collection", "workflow_runs")

	v.SetDefault("notifications.aws.region", "us-east-1")
	v.SetDefault("notifications.sns.enabled", false)
	v.SetDefault("notifications.sns.topic_arn", "")
	v.SetDefault("notifications.ses.enabled", false)
	v.SetDefault("notifications.ses.from_email", "")
	v.SetDefault("notifications.ses.to", []string{})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stdout")
}

// Direct override from conventional variable names if config values are still empty
func overrideEmptyConfig(cfg *Config) {
	if val := os.Getenv("ADMIN_EMAIL"); val != "" && os.Getenv("API_ADMIN_EMAIL") == "" {
		cfg.API.AdminEmail = val
	}
	if val := os.Getenv("ADMIN_PASSWORD"); val != "" && os.Getenv("API_ADMIN_PASSWORD") == "" {
		cfg.API.AdminPassword = val
	}

	if cfg.Sinks.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Sinks.Postgres.User = val
		}
	}
	if cfg.Sinks.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Sinks.Postgres.Password = val
		}
	}

	if val := os.Getenv("REDIS_ADDR"); val != "" && os.Getenv("SINKS_REDIS_ADDRESS") == "" {
		cfg.Sinks.Redis.Address = val
	}
	if val := os.Getenv("MONGODB_URI"); val != "" && os.Getenv("SINKS_MONGO_URI") == "" {
		cfg.Sinks.Mongo.URI = val
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https, got %q", cfg.API.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url must include a host")
	}
	if cfg.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if cfg.API.AdminEmail == "" {
		return fmt.Errorf("api.admin_email is required")
	}
	if cfg.API.AdminPassword == "" {
		return fmt.Errorf("api.admin_password is required")
	}

	if cfg.Report.Path == "" {
		return fmt.Errorf("report.path is required")
	}

	if cfg.Sinks.Redis.Enabled && cfg.Sinks.Redis.Address == "" {
		return fmt.Errorf("sinks.redis.address is required when the redis sink is enabled")
	}
	if cfg.Sinks.Postgres.Enabled {
		if cfg.Sinks.Postgres.Host == "" {
			return fmt.Errorf("sinks.postgres.host is required")
		}
		if cfg.Sinks.Postgres.Database == "" {
			return fmt.Errorf("sinks.postgres.database is required")
		}
		if cfg.Sinks.Postgres.User == "" {
			return fmt.Errorf("sinks.postgres.user is required")
		}
	}
	if cfg.Sinks.Elasticsearch.Enabled && len(cfg.Sinks.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("sinks.elasticsearch.addresses is required when the elasticsearch sink is enabled")
	}
	if cfg.Sinks.Mongo.Enabled && cfg.Sinks.Mongo.URI == "" {
		return fmt.Errorf("sinks.mongo.uri is required when the mongo sink is enabled")
	}

	if cfg.Notifications.SNS.Enabled && cfg.Notifications.SNS.TopicARN == "" {
		return fmt.Errorf("notifications.sns.topic_arn is required")
	}
	if cfg.Notifications.SES.Enabled {
		if cfg.Notifications.SES.FromEmail == "" {
			return fmt.Errorf("notifications.ses.from_email is required")
		}
		if len(cfg.Notifications.SES.To) == 0 {
			return fmt.Errorf("notifications.ses.to needs at least one recipient")
		}
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
