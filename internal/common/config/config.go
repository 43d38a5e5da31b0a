// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	API           APIConfig          `mapstructure:"api"`
	Scenario      ScenarioConfig     `mapstructure:"scenario"`
	Report        ReportConfig       `mapstructure:"report"`
	Sinks         SinksConfig        `mapstructure:"sinks"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// APIConfig points the runner at the backend under exercise.
type APIConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	Timeout       int    `mapstructure:"timeout"` // milliseconds
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

// ScenarioConfig tunes the order-lifecycle workflow.
type ScenarioConfig struct {
	FranchiseFirst      bool    `mapstructure:"franchise_first"`
	SkipNegativeChecks  bool    `mapstructure:"skip_negative_checks"`
	ProductPrice        float64 `mapstructure:"product_price"`
	ProductDiscount     float64 `mapstructure:"product_discount"`
	OrderSubtotal       float64 `mapstructure:"order_subtotal"`
	OrderDeliveryCharge float64 `mapstructure:"order_delivery_charge"`
	InitialStock        int     `mapstructure:"initial_stock"`
}

// DefaultScenario is the workflow tuning used when config files leave it out.
// Zero is a valid amount, so callers building a ScenarioConfig by hand start here.
func DefaultScenario() ScenarioConfig {
	return ScenarioConfig{
		ProductPrice:        99.99,
		ProductDiscount:     10,
		OrderSubtotal:       89.99,
		OrderDeliveryCharge: 10,
		InitialStock:        100,
	}
}

// ReportConfig controls where the structured run report lands.
type ReportConfig struct {
	Path            string `mapstructure:"path"`
	MetricsTextfile string `mapstructure:"metrics_textfile"`
}

// --- Report Sinks ---
type SinksConfig struct {
	Redis         RedisConfig         `mapstructure:"redis"`
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Mongo         MongoConfig         `mapstructure:"mongo"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
	Keep     int    `mapstructure:"keep"`
}

type PostgresConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type MongoConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// NotificationConfig holds settings for failed-run notifications.
type NotificationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	SES struct {
		Enabled   bool     `mapstructure:"enabled"`
		FromEmail string   `mapstructure:"from_email"`
		To        []string `mapstructure:"to"`
	} `mapstructure:"ses"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
