package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration. It is constructed once at
// process start and passed to constructors; nothing reads the environment
// after Load returns.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Printer  PrinterConfig  `mapstructure:"printer"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Receipt  ReceiptConfig  `mapstructure:"receipt"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// PrinterConfig describes the thermal printer and receipt rendering.
type PrinterConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"` // raw ESC/POS listener, usually 9100
	ConnTimeout  time.Duration `mapstructure:"conn_timeout"`
	SettleDelay  time.Duration `mapstructure:"settle_delay"`
	Width        int           `mapstructure:"width"`          // characters per line
	QRMode       string        `mapstructure:"qr_mode"`        // native, raster
	QRModuleSize int           `mapstructure:"qr_module_size"` // native module size 3..8
	QRImageURL   string        `mapstructure:"qr_image_url"`   // raster fetch endpoint
}

// Addr returns the printer address string.
func (p PrinterConfig) Addr() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// QueueConfig covers the print-queue poll contract and the dispatcher loop.
type QueueConfig struct {
	APIKey       string        `mapstructure:"api_key"` // shared static key for the poll contract
	APIBaseURL   string        `mapstructure:"api_base_url"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchLimit   int           `mapstructure:"batch_limit"`
	HealthPort   int           `mapstructure:"health_port"` // dispatcher health listener
}

// ReceiptConfig shapes receipt content and the public receipt URL.
type ReceiptConfig struct {
	PublicBaseURL string        `mapstructure:"public_base_url"`
	BrandName     string        `mapstructure:"brand_name"`
	Tagline       []string      `mapstructure:"tagline"`
	ScanDebounce  time.Duration `mapstructure:"scan_debounce"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: TNE_.
// Nested keys use underscore: TNE_DATABASE_HOST, TNE_PRINTER_HOST, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "tapneat")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("printer.host", "192.168.0.105")
	v.SetDefault("printer.port", 9100)
	v.SetDefault("printer.conn_timeout", "5s")
	v.SetDefault("printer.settle_delay", "200ms")
	v.SetDefault("printer.width", 32)
	v.SetDefault("printer.qr_mode", "native")
	v.SetDefault("printer.qr_module_size", 4)
	v.SetDefault("printer.qr_image_url", "https://api.qrserver.com/v1/create-qr-code/")
	v.SetDefault("queue.api_key", "")
	v.SetDefault("queue.api_base_url", "http://localhost:8080")
	v.SetDefault("queue.poll_interval", "2s")
	v.SetDefault("queue.batch_limit", 10)
	v.SetDefault("queue.health_port", 8081)
	v.SetDefault("receipt.public_base_url", "http://localhost:8080")
	v.SetDefault("receipt.brand_name", "CATALYST")
	v.SetDefault("receipt.tagline", []string{"PARTNERING FOR", "SUSTAINABILITY"})
	v.SetDefault("receipt.scan_debounce", "3s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: TNE_PRINTER_HOST -> printer.host
	v.SetEnvPrefix("TNE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
