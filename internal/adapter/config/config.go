package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	App      *App
	HTTP     *HTTP
	Database *Database
	Bakong   *Bakong
	Merchant *Merchant
	Payment  *Payment
}

const AppModeProduction = "PROD"
const AppModeDevelop = "DEV"

type App struct {
	LogLevel string `env:"LOG_LEVEL"`
	Mode     string
}

type HTTP struct {
	HostString string `env:"RUN_ADDRESS"`
	AdminToken string `env:"ADMIN_TOKEN"`
}

type Database struct {
	DSN string `env:"DATABASE_URI"`
}

type Bakong struct {
	HostString string        `env:"BAKONG_API_ADDRESS"`
	Token      string        `env:"BAKONG_API_TOKEN"`
	Timeout    time.Duration `env:"BAKONG_TIMEOUT" envDefault:"10s"`
}

type Merchant struct {
	AccountID    string `env:"MERCHANT_ACCOUNT"`
	ProviderID   string `env:"MERCHANT_PROVIDER" envDefault:"khqr@bakong"`
	Name         string `env:"MERCHANT_NAME"`
	City         string `env:"MERCHANT_CITY" envDefault:"Phnom Penh"`
	CategoryCode string `env:"MERCHANT_CATEGORY" envDefault:"5999"`
	CountryCode  string `env:"MERCHANT_COUNTRY" envDefault:"KH"`
	StoreLabel   string `env:"MERCHANT_STORE_LABEL"`
	Phone        string `env:"MERCHANT_PHONE"`
}

type Payment struct {
	ExpiryWindow time.Duration `env:"PAYMENT_EXPIRY" envDefault:"10m"`
	PollInterval time.Duration `env:"PAYMENT_POLL_INTERVAL" envDefault:"15s"`
	Workers      int           `env:"PAYMENT_WORKERS" envDefault:"5"`
	// Display-only USD to KHR rate; the encoder never converts currencies.
	USDKHRRate string `env:"KHQR_USD_KHR_RATE" envDefault:"4100"`
}

func NewConfig() (*Config, error) {
	// Local development drops overrides in a .env file.
	_ = godotenv.Load()

	var db Database
	var httpConf HTTP
	var bakong Bakong
	var merchant Merchant
	var payment Payment
	var app App

	flag.StringVar(&db.DSN, "d", "", "Database string")
	flag.StringVar(&httpConf.HostString, "a", `localhost:8080`, "HTTP server endpoint")
	flag.StringVar(&bakong.HostString, "r", "", "Bakong verification API address")
	flag.StringVar(&app.LogLevel, "l", `error`, "Log level")
	flag.StringVar(&app.Mode, "m", `DEV`, "PROD / DEV")
	flag.Parse()

	err := env.Parse(&db)
	if err != nil {
		return nil, fmt.Errorf("error parsing env database config: %w", err)
	}
	err = env.Parse(&httpConf)
	if err != nil {
		return nil, fmt.Errorf("error parsing http config: %w", err)
	}
	err = env.Parse(&app)
	if err != nil {
		return nil, fmt.Errorf("error parsing app config: %w", err)
	}
	err = env.Parse(&bakong)
	if err != nil {
		return nil, fmt.Errorf("error parsing bakong config: %w", err)
	}
	err = env.Parse(&merchant)
	if err != nil {
		return nil, fmt.Errorf("error parsing merchant config: %w", err)
	}
	err = env.Parse(&payment)
	if err != nil {
		return nil, fmt.Errorf("error parsing payment config: %w", err)
	}

	config := Config{
		App:      &app,
		HTTP:     &httpConf,
		Database: &db,
		Bakong:   &bakong,
		Merchant: &merchant,
		Payment:  &payment,
	}

	return &config, nil
}
