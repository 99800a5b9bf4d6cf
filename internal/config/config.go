package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	API      APIConfig
	Gateway  GatewayConfig
	ERP      ERPConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

type DatabaseConfig struct {
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

type APIConfig struct {
	Key string
}

// GatewayConfig holds environment-level defaults for the hosted payment
// gateway. Values stored in the store_setting table take precedence; these
// are the fallbacks when a key is unset there.
type GatewayConfig struct {
	Enabled         bool
	BaseURL         string
	Transport       string // "json", "soap" or "auto"
	Secret          string
	RedirectURL     string
	NotifyURL       string
	MaxInstallments int
	VATExempt       bool
	Discount        float64
	ForceTest       bool
	MinTimeout      time.Duration
	MaxTimeout      time.Duration
	AllowedIPs      string // comma-separated CIDRs for the notify endpoint; empty disables the check
}

type ERPConfig struct {
	BaseURL  string
	Username string
	Password string
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("GATEWAY_ENABLED", false)
	viper.SetDefault("GATEWAY_TRANSPORT", "auto")
	viper.SetDefault("GATEWAY_MIN_TIMEOUT", "10s")
	viper.SetDefault("GATEWAY_MAX_TIMEOUT", "20s")

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Database: DatabaseConfig{
			Host:    viper.GetString("DB_HOST"),
			Port:    viper.GetString("DB_PORT"),
			Name:    viper.GetString("DB_NAME"),
			User:    viper.GetString("DB_USER"),
			Pass:    viper.GetString("DB_PASS"),
			Charset: viper.GetString("DB_CHARSET"),
		},
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
		API: APIConfig{
			Key: viper.GetString("API_KEY"),
		},
		Gateway: GatewayConfig{
			Enabled:         viper.GetBool("GATEWAY_ENABLED"),
			BaseURL:         viper.GetString("GATEWAY_BASE_URL"),
			Transport:       viper.GetString("GATEWAY_TRANSPORT"),
			Secret:          viper.GetString("GATEWAY_SECRET"),
			RedirectURL:     viper.GetString("GATEWAY_REDIRECT_URL"),
			NotifyURL:       viper.GetString("GATEWAY_NOTIFY_URL"),
			MaxInstallments: viper.GetInt("GATEWAY_MAX_INSTALLMENTS"),
			VATExempt:       viper.GetBool("GATEWAY_VAT_EXEMPT"),
			Discount:        viper.GetFloat64("GATEWAY_DISCOUNT"),
			ForceTest:       viper.GetBool("GATEWAY_FORCE_TEST"),
			MinTimeout:      parseDuration(viper.GetString("GATEWAY_MIN_TIMEOUT"), 10*time.Second),
			MaxTimeout:      parseDuration(viper.GetString("GATEWAY_MAX_TIMEOUT"), 20*time.Second),
			AllowedIPs:      viper.GetString("GATEWAY_ALLOWED_IPS"),
		},
		ERP: ERPConfig{
			BaseURL:  viper.GetString("ERP_BASE_URL"),
			Username: viper.GetString("ERP_USERNAME"),
			Password: viper.GetString("ERP_PASSWORD"),
		},
	}

	if cfg.Database.Name == "" {
		log.Println("WARNING: DB_NAME is not set")
	}
	if cfg.API.Key == "" {
		log.Println("WARNING: API_KEY is not set, admin API is unprotected")
	}

	return cfg, nil
}

// LoadDatabaseOnly reads just the database section, for the --bootstrap-db flag.
func LoadDatabaseOnly() (*DatabaseConfig, error) {
	_ = godotenv.Load()
	viper.AutomaticEnv()
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	return &DatabaseConfig{
		Host:    viper.GetString("DB_HOST"),
		Port:    viper.GetString("DB_PORT"),
		Name:    viper.GetString("DB_NAME"),
		User:    viper.GetString("DB_USER"),
		Pass:    viper.GetString("DB_PASS"),
		Charset: viper.GetString("DB_CHARSET"),
	}, nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}
