package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string
	DatabaseSSLMode  string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string

	AWSRegion             string
	AWSEndpoint           string
	AWSAccessKeyID        string
	AWSSecretAccessKey    string
	SQSTriggerQueueURL    string
	SQSTriggerQueueARN    string
	SchedulerRoleARN      string
	SchedulerGroupName    string
	SchedulerPrewarmAhead time.Duration

	KafkaURL           string
	KafkaDeliveryTopic string

	ServerHost     string
	ServerPort     string
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	CORSMaxAge     int

	DefaultTimezone string
	ScanInterval    time.Duration
	DispatchTimeout time.Duration
	SendPacingDelay time.Duration
}

// LoadEnv loads environment variables from .env files
func LoadEnv() {
	// Try to find the .env file from the current working directory
	// and from the directory where the binary is located
	envPaths := []string{
		".env",    // Current directory
		"../.env", // One level up
		filepath.Join(os.Getenv("HOME"), "projects/daylog/ms-reminders/.env"), // Specific project path
	}

	for _, path := range envPaths {
		err := godotenv.Load(path)
		if err == nil {
			log.Printf("Loaded environment variables from %s", path)
			return
		}
	}

	log.Println("No .env file found, using environment variables")
}

func Load() Config {
	// Load environment variables from .env file first
	LoadEnv()

	log.Println("Loading configuration from environment variables")
	return Config{
		DatabaseHost:     getEnv("DB_HOST", "localhost"),
		DatabasePort:     getEnv("DB_PORT", "5432"),
		DatabaseUser:     getEnv("DB_USER", "daylog"),
		DatabasePassword: getEnv("DB_PASSWORD", ""),
		DatabaseName:     getEnv("DB_NAME", "daylog"),
		DatabaseSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", "reminders@daylog.app"),
		FromName:     getEnv("FROM_NAME", "Daylog Reminders"),

		AWSRegion:             getEnv("AWS_REGION", "ap-south-1"),
		AWSEndpoint:           getEnv("AWS_LOCAL_ENDPOINT_URL", ""),
		AWSAccessKeyID:        getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
		SQSTriggerQueueURL:    getEnv("AWS_SQS_REMINDER_TRIGGER_URL", ""),
		SQSTriggerQueueARN:    getEnv("AWS_SQS_REMINDER_TRIGGER_QUEUE_ARN", ""),
		SchedulerRoleARN:      getEnv("AWS_SCHEDULER_ROLE_ARN", ""),
		SchedulerGroupName:    getEnv("AWS_SCHEDULER_GROUP_NAME", "default"),
		SchedulerPrewarmAhead: getDurationEnv("SCHEDULER_PREWARM_AHEAD", 24*time.Hour),

		KafkaURL:           getEnv("KAFKA_URL", ""),
		KafkaDeliveryTopic: getEnv("KAFKA_DELIVERY_TOPIC", "daylog.reminders.deliveries"),

		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:     getEnv("SERVER_PORT", "8085"),
		AllowedOrigins: splitEnv("CORS_ALLOWED_ORIGINS", "*"),
		AllowedMethods: splitEnv("CORS_ALLOWED_METHODS", "GET,POST,DELETE,OPTIONS"),
		AllowedHeaders: splitEnv("CORS_ALLOWED_HEADERS", "Authorization,Content-Type"),
		CORSMaxAge:     3600,

		DefaultTimezone: getEnv("DEFAULT_TIMEZONE", "Asia/Colombo"),
		ScanInterval:    getDurationEnv("SCAN_INTERVAL", time.Minute),
		DispatchTimeout: getDurationEnv("DISPATCH_TIMEOUT", 15*time.Second),
		SendPacingDelay: getDurationEnv("SEND_PACING_DELAY", 200*time.Millisecond),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		log.Printf("Loaded env var %s: %s", key, value)
		return value
	}
	log.Printf("Env var %s not set, using fallback: %s", key, fallback)
	return fallback
}

func splitEnv(key, fallback string) []string {
	value := getEnv(key, fallback)
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		log.Printf("Env var %s not set, using fallback: %s", key, fallback)
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		log.Printf("Loaded env var %s: %s", key, d)
		return d
	}
	// Bare numbers are treated as seconds.
	if secs, err := strconv.Atoi(value); err == nil {
		d := time.Duration(secs) * time.Second
		log.Printf("Loaded env var %s: %s", key, d)
		return d
	}
	log.Printf("Env var %s has invalid duration %q, using fallback: %s", key, value, fallback)
	return fallback
}
