// Package config reads service configuration from the environment, with a
// .env file honored in development.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv pulls a .env file into the environment when present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	return strings.Split(getEnv(key, defaultValue), ",")
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("invalid integer for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

type CartService struct {
	HTTPPort        string
	MongoURI        string
	MongoDatabase   string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    []string
	OrderTopic      string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func LoadCartService() *CartService {
	return &CartService{
		HTTPPort:        getEnv("CART_SERVICE_PORT", "8081"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DB_NAME", "cartdb"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    getEnvList("KAFKA_BROKERS", "localhost:9092"),
		OrderTopic:      getEnv("ORDER_EVENTS_TOPIC", "order-events"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

type OrdersService struct {
	HTTPPort         string
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	MigrationsDir    string
	KafkaBrokers     []string
	OrderTopic       string
	RequestTimeout   time.Duration
	ShutdownTimeout  time.Duration
}

func LoadOrdersService() *OrdersService {
	return &OrdersService{
		HTTPPort:         getEnv("ORDERS_SERVICE_PORT", "8082"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getEnv("POSTGRES_DB", "ordersdb"),
		MigrationsDir:    getEnv("MIGRATIONS_DIR", "migrations/orders"),
		KafkaBrokers:     getEnvList("KAFKA_BROKERS", "localhost:9092"),
		OrderTopic:       getEnv("ORDER_EVENTS_TOPIC", "order-events"),
		RequestTimeout:   30 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

type PaymentService struct {
	HTTPPort        string
	MongoURI        string
	MongoDatabase   string
	OrderServiceURL string
	NotifyTimeout   time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func LoadPaymentService() *PaymentService {
	return &PaymentService{
		HTTPPort:        getEnv("PAYMENT_SERVICE_PORT", "8083"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DB_NAME", "paymentdb"),
		OrderServiceURL: getEnv("ORDER_SERVICE_URL", "http://localhost:8082"),
		NotifyTimeout:   5 * time.Second,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}
