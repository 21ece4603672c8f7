package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	Port       string
	Env        string

	RazorpayKey    string
	RazorpaySecret string
	Currency       string

	OrderGraceWindow time.Duration
	SweepInterval    time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// A missing .env file is fine in deployed environments; variables may
	// come from the process environment directly.
	_ = godotenv.Load()

	config := &Config{
		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         os.Getenv("DB_PORT"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         os.Getenv("DB_NAME"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		Port:           os.Getenv("PORT"),
		Env:            os.Getenv("ENV"),
		RazorpayKey:    os.Getenv("RAZORPAY_KEY"),
		RazorpaySecret: os.Getenv("RAZORPAY_SECRET"),
		Currency:       os.Getenv("CURRENCY"),
	}

	if config.RazorpayKey == "" || config.RazorpaySecret == "" {
		return nil, fmt.Errorf("RAZORPAY_KEY and RAZORPAY_SECRET must be set")
	}
	if config.Currency == "" {
		config.Currency = "INR"
	}
	if config.Port == "" {
		config.Port = "8080"
	}

	config.OrderGraceWindow = minutesFromEnv("ORDER_GRACE_MINUTES", 30)
	config.SweepInterval = minutesFromEnv("SWEEP_INTERVAL_MINUTES", 5)

	return config, nil
}

func minutesFromEnv(key string, fallback int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Minute
		}
	}
	return time.Duration(fallback) * time.Minute
}
