package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Payment  PaymentConfig
	Esewa    EsewaConfig
	Khalti   KhaltiConfig
	SMS      SMSConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr string
	DB   int
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type PaymentConfig struct {
	// TransactionTTL bounds how long an initiated payment stays claimable.
	TransactionTTL time.Duration
	GatewayTimeout time.Duration
}

// EsewaConfig holds the merchant credentials and endpoints for the eSewa
// form-redirect flow. Defaults are the UAT sandbox; override for production.
type EsewaConfig struct {
	MerchantCode string
	ServiceURL   string
	VerifyURL    string
	SuccessURL   string
	FailureURL   string
}

// KhaltiConfig holds the secret key and endpoints for the Khalti ePayment API.
type KhaltiConfig struct {
	SecretKey   string
	InitiateURL string
	VerifyURL   string
	ReturnURL   string
	WebsiteURL  string
}

// SMSConfig for Sparrow SMS (Nepal). Empty token disables SMS dispatch.
type SMSConfig struct {
	Token  string
	From   string
	APIURL string
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         env("PORT", "8080"),
			Env:          env("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             env("DATABASE_DSN", "sewago:sewago@tcp(localhost:3306)/sewago?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		Redis: RedisConfig{
			Addr: env("REDIS_ADDR", "localhost:6379"),
			DB:   envInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			AccessSecret:  env("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: env("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "sewago",
		},
		Payment: PaymentConfig{
			TransactionTTL: 30 * time.Minute,
			GatewayTimeout: 30 * time.Second,
		},
		Esewa: EsewaConfig{
			MerchantCode: env("ESEWA_MERCHANT_CODE", "EPAYTEST"),
			ServiceURL:   env("ESEWA_SERVICE_URL", "https://uat.esewa.com.np/epay/main"),
			VerifyURL:    env("ESEWA_VERIFY_URL", "https://uat.esewa.com.np/epay/transrec"),
			SuccessURL:   env("PAYMENT_SUCCESS_URL", "http://localhost:3000/payment/success"),
			FailureURL:   env("PAYMENT_FAILURE_URL", "http://localhost:3000/payment/failure"),
		},
		Khalti: KhaltiConfig{
			SecretKey:   env("KHALTI_SECRET_KEY", "test_secret_key_f59e8b7d18b4499ca40f68195a846e9b"),
			InitiateURL: env("KHALTI_INITIATE_URL", "https://khalti.com/api/v2/epayment/initiate/"),
			VerifyURL:   env("KHALTI_VERIFY_URL", "https://khalti.com/api/v2/payment/verify/"),
			ReturnURL:   env("PAYMENT_SUCCESS_URL", "http://localhost:3000/payment/success"),
			WebsiteURL:  env("WEBSITE_URL", "http://localhost:3000"),
		},
		SMS: SMSConfig{
			Token:  env("SPARROW_SMS_TOKEN", ""),
			From:   env("SMS_FROM", "SewaGo"),
			APIURL: env("SPARROW_SMS_URL", "https://api.sparrowsms.com/v2/sms/"),
		},
	}
}
