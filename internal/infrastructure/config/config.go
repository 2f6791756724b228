package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type KafkaConfig struct {
	Brokers       []string
	ConsumerGroup string
	EventsTopic   string
	PaymentsTopic string
	IntakeTopic   string
}

// PolicyConfig carries the operational knobs of the decision core: the
// auto-approval safe zone and the valuation batch shape.
type PolicyConfig struct {
	AutoApproveMinScore  int
	AutoApproveMaxAmount string
	DefaultCurrency      string
	ValuationInterval    time.Duration
	ValuationWorkers     int
}

type Config struct {
	HTTPPort    int
	DB          DatabaseConfig
	Kafka       KafkaConfig
	Policy      PolicyConfig
	ServiceName string
	LogLevel    string
}

func (c Config) Validate() error {
	if c.DB.Password == "" {
		return fmt.Errorf("DB_PASSWORD environment variable is required")
	}
	if c.Policy.AutoApproveMinScore < 300 || c.Policy.AutoApproveMinScore > 900 {
		return fmt.Errorf("AUTO_APPROVE_MIN_SCORE must be within the score range [300,900]")
	}
	if c.Policy.ValuationWorkers < 1 {
		return fmt.Errorf("VALUATION_WORKERS must be at least 1")
	}
	return nil
}

// Load reads configuration from the environment. A .env file, when present,
// seeds variables that are not already set.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		HTTPPort: getEnvInt("HTTP_PORT", 8087),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "lending"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "lending_core"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Kafka: KafkaConfig{
			Brokers:       []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "lending-core"),
			EventsTopic:   getEnv("KAFKA_EVENTS_TOPIC", "lending-events"),
			PaymentsTopic: getEnv("KAFKA_PAYMENTS_TOPIC", "payments-events"),
			IntakeTopic:   getEnv("KAFKA_INTAKE_TOPIC", "loan-applications"),
		},
		Policy: PolicyConfig{
			AutoApproveMinScore:  getEnvInt("AUTO_APPROVE_MIN_SCORE", 700),
			AutoApproveMaxAmount: getEnv("AUTO_APPROVE_MAX_AMOUNT", "50000"),
			DefaultCurrency:      getEnv("DEFAULT_CURRENCY", "INR"),
			ValuationInterval:    time.Duration(getEnvInt("VALUATION_INTERVAL_SEC", 86400)) * time.Second,
			ValuationWorkers:     getEnvInt("VALUATION_WORKERS", 8),
		},
		ServiceName: "lending-core",
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
