package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database    DatabaseConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	HTTP        HTTPConfig
	Ingestion   IngestionConfig
	Aggregation AggregationConfig
	LLM         LLMConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers           []string
	TopicObservations string
	NumPartitions     int
	ConsumerGroup     string
}

type HTTPConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type IngestionConfig struct {
	ERDDAPBase   string
	Lookback     time.Duration
	SyncInterval time.Duration
	RetryDelay   time.Duration
}

type AggregationConfig struct {
	DailyTime string
}

// LLMConfig configures the optional NL translation backend. An empty APIKey
// disables the LLM path; the rule-based extractor is always the default.
type LLMConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

func (l LLMConfig) Enabled() bool {
	return l.APIKey != ""
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "floatchat_user"),
			Password: getEnv("DB_PASSWORD", "floatchat_pass"),
			DBName:   getEnv("DB_NAME", "floatchat_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:           strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			TopicObservations: getEnv("KAFKA_TOPIC_OBSERVATIONS", "argo.observations.raw"),
			NumPartitions:     getEnvAsInt("KAFKA_NUM_PARTITIONS", 10),
			ConsumerGroup:     getEnv("KAFKA_CONSUMER_GROUP", "dbwriter-group"),
		},
		HTTP: HTTPConfig{
			Port:         getEnvAsInt("HTTP_PORT", 8080),
			ReadTimeout:  getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		},
		Ingestion: IngestionConfig{
			ERDDAPBase:   getEnv("ERDDAP_BASE_URL", "https://erddap.ifremer.fr/erddap/tabledap/ArgoFloats.csv"),
			Lookback:     getEnvAsDuration("INGESTION_LOOKBACK", 30*24*time.Hour),
			SyncInterval: getEnvAsDuration("INGESTION_SYNC_INTERVAL", time.Hour),
			RetryDelay:   getEnvAsDuration("INGESTION_RETRY_DELAY", 5*time.Minute),
		},
		Aggregation: AggregationConfig{
			DailyTime: getEnv("AGGREGATION_DAILY_TIME", "00:15"),
		},
		LLM: LLMConfig{
			Provider: getEnv("LLM_PROVIDER", "openai"),
			APIKey:   getEnv("LLM_API_KEY", ""),
			Model:    getEnv("LLM_MODEL", ""),
			BaseURL:  getEnv("LLM_BASE_URL", ""),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
