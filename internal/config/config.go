package config

import "fmt"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	LedgerPath  string `env:"LEDGER_PATH" envDefault:"club-ledger.db"`

	Store   Store   `envPrefix:"STORE_"`
	Gateway Gateway `envPrefix:"GATEWAY_"`
	Auth    Auth    `envPrefix:"AUTH_"`
	SMTP    SMTP    `envPrefix:"SMTP_"`
}

// Store points at the hosted document store holding all content and
// transactional records.
type Store struct {
	ProjectID  string `env:"PROJECT_ID"`
	Dataset    string `env:"DATASET" envDefault:"production"`
	Token      string `env:"TOKEN"`
	APIVersion string `env:"API_VERSION" envDefault:"v2021-10-21"`
	// BaseURL overrides the derived project URL; used in tests.
	BaseURL string `env:"BASE_URL"`
}

type Gateway struct {
	BaseAPIURL    string `env:"BASE_API_URL" envDefault:"https://api.payline.example.com"`
	SecretKey     string `env:"SECRET_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

type Auth struct {
	AdminEmail        string `env:"ADMIN_EMAIL"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
	JWTSecret         string `env:"JWT_SECRET"`
	JWTExpiryHours    int    `env:"JWT_EXPIRY_HOURS" envDefault:"24"`
}

type SMTP struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

// Validate reports the first missing required setting. Store identifiers,
// gateway secrets and the JWT secret have no sane defaults; starting
// without them is a configuration error, not a degraded mode.
func (c *Config) Validate() error {
	switch {
	case c.Store.ProjectID == "" && c.Store.BaseURL == "":
		return fmt.Errorf("STORE_PROJECT_ID is required")
	case c.Store.Dataset == "":
		return fmt.Errorf("STORE_DATASET is required")
	case c.Store.Token == "":
		return fmt.Errorf("STORE_TOKEN is required")
	case c.Gateway.SecretKey == "":
		return fmt.Errorf("GATEWAY_SECRET_KEY is required")
	case c.Gateway.WebhookSecret == "":
		return fmt.Errorf("GATEWAY_WEBHOOK_SECRET is required")
	case c.Auth.JWTSecret == "":
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	return nil
}
