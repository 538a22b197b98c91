package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	PORT       string
	DB_URL     string
	JWT_SECRET string

	BACKEND_API_URL string
	APP_URL         string
	CORS_ORIGIN     string

	PAYMENT_PROVIDER string // "paypal" | "stripe"

	PAYPAL_CLIENT_ID     string
	PAYPAL_CLIENT_SECRET string
	PAYPAL_MODE          string // "sandbox" | "live"

	STRIPE_SECRET_KEY string
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")

	BACKEND_API_URL = mustEnv("BACKEND_API_URL")
	APP_URL = getEnv("APP_URL", "http://localhost:5173")
	CORS_ORIGIN = getEnv("CORS_ORIGIN", "http://localhost:5173")

	PAYMENT_PROVIDER = getEnv("PAYMENT_PROVIDER", "paypal")

	switch PAYMENT_PROVIDER {
	case "paypal":
		PAYPAL_CLIENT_ID = mustEnv("PAYPAL_CLIENT_ID")
		PAYPAL_CLIENT_SECRET = mustEnv("PAYPAL_CLIENT_SECRET")
		PAYPAL_MODE = getEnv("PAYPAL_MODE", "sandbox")
	case "stripe":
		STRIPE_SECRET_KEY = mustEnv("STRIPE_SECRET_KEY")
	default:
		log.Fatalf("Unknown PAYMENT_PROVIDER: %s", PAYMENT_PROVIDER)
	}
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
