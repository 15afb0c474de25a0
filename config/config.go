package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	AllowedOrigins    string `mapstructure:"ALLOWED_ORIGINS"`
	TrustedProxies    string `mapstructure:"TRUSTED_PROXIES"`

	// Redis configuration.
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	RedisContextDB    int    `mapstructure:"REDIS_CONTEXT_DB"`
	RedisQueueDB      int    `mapstructure:"REDIS_QUEUE_DB"`
	ChatContextTTLMin int    `mapstructure:"CHAT_CONTEXT_TTL_MIN"`

	// Staff notification channels.
	SMTPHost                string `mapstructure:"SMTP_HOST"`
	SMTPPort                int    `mapstructure:"SMTP_PORT"`
	SMTPUsername            string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword            string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom                string `mapstructure:"SMTP_FROM"`
	SMSGatewayURL           string `mapstructure:"SMS_GATEWAY_URL"`
	SMSAPIKey               string `mapstructure:"SMS_API_KEY"`
	SMSFrom                 string `mapstructure:"SMS_FROM"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Notification retry policy.
	NotifyBaseDelayMs   int     `mapstructure:"NOTIFY_BASE_DELAY_MS"`
	NotifyMultiplier    float64 `mapstructure:"NOTIFY_MULTIPLIER"`
	NotifyMaxDelayMs    int     `mapstructure:"NOTIFY_MAX_DELAY_MS"`
	NotifyJitterPercent float64 `mapstructure:"NOTIFY_JITTER_PERCENT"`
	NotifyMaxRetries    int     `mapstructure:"NOTIFY_MAX_RETRIES"`
	NotifyAsync         bool    `mapstructure:"NOTIFY_ASYNC"`
}

var AppConfig Config

func LoadConfig() {
	// A local .env is optional; real deployments use the environment.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 120)
	viper.SetDefault("ALLOWED_ORIGINS", "*")
	viper.SetDefault("TRUSTED_PROXIES", "")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "quickbook")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CONTEXT_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("CHAT_CONTEXT_TTL_MIN", 30)
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USERNAME", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("SMTP_FROM", "")
	viper.SetDefault("SMS_GATEWAY_URL", "")
	viper.SetDefault("SMS_API_KEY", "")
	viper.SetDefault("SMS_FROM", "")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	viper.SetDefault("NOTIFY_BASE_DELAY_MS", 1000)
	viper.SetDefault("NOTIFY_MULTIPLIER", 2.0)
	viper.SetDefault("NOTIFY_MAX_DELAY_MS", 30000)
	viper.SetDefault("NOTIFY_JITTER_PERCENT", 20.0)
	viper.SetDefault("NOTIFY_MAX_RETRIES", 3)
	viper.SetDefault("NOTIFY_ASYNC", true)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// TrustedProxyList splits TRUSTED_PROXIES into its entries.
func TrustedProxyList() []string {
	var out []string
	for _, p := range strings.Split(AppConfig.TrustedProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
