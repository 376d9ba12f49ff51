package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"pharmacy"`
	Env         string `envconfig:"APP_ENV" default:"dev"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	BodyLimit       string        `envconfig:"HTTP_BODY_LIMIT" default:"8M"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	RateLimit       float64       `envconfig:"RATE_LIMIT" default:"20"`
	RateBurst       int           `envconfig:"RATE_BURST" default:"40"`
	AuthRateLimit   float64       `envconfig:"AUTH_RATE_LIMIT" default:"1"`
	AuthRateBurst   int           `envconfig:"AUTH_RATE_BURST" default:"5"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	JWTSecret     string        `envconfig:"JWT_SECRET"`
	RefreshSecret string        `envconfig:"JWT_REFRESH_SECRET"`
	AccessTTL     time.Duration `envconfig:"JWT_ACCESS_TTL" default:"15m"`
	RefreshTTL    time.Duration `envconfig:"JWT_REFRESH_TTL" default:"168h"`
	CookieSecure  bool          `envconfig:"COOKIE_SECURE" default:"false"`

	OTPTTL           time.Duration `envconfig:"OTP_TTL" default:"10m"`
	OTPMaxAttempts   int           `envconfig:"OTP_MAX_ATTEMPTS" default:"5"`
	OTPCooldown      time.Duration `envconfig:"OTP_RESEND_COOLDOWN" default:"60s"`
	OTPSweepInterval time.Duration `envconfig:"OTP_SWEEP_INTERVAL" default:"1m"`

	ShippingFee           int64 `envconfig:"SHIPPING_FEE" default:"4900"`
	FreeShippingThreshold int64 `envconfig:"FREE_SHIPPING_THRESHOLD" default:"49900"`
	UploadMaxBytes        int64 `envconfig:"UPLOAD_MAX_BYTES" default:"5242880"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaGroupID string   `envconfig:"KAFKA_GROUP_ID" default:"pharmacy-notifier"`

	ESURL      string `envconfig:"ES_URL"`
	ESUser     string `envconfig:"ES_USER"`
	ESPassword string `envconfig:"ES_PASSWORD"`
	ESIndex    string `envconfig:"ES_INDEX" default:"products"`

	CloudinaryURL    string `envconfig:"CLOUDINARY_URL"`
	CloudinaryFolder string `envconfig:"CLOUDINARY_FOLDER" default:"pharmacy"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser     string `envconfig:"SMTP_USER"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	MailFrom     string `envconfig:"MAIL_FROM" default:"no-reply@pharmacy.local"`

	TwilioAccountSID string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioFrom       string `envconfig:"TWILIO_FROM"`

	OTELEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads an optional .env file and then the process environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Printf("notice: %s not loaded: %v, using process environment", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.RefreshSecret == "" {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET is required"))
	}
	if c.JWTSecret != "" && c.JWTSecret == c.RefreshSecret {
		errs = append(errs, errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= c.AccessTTL {
		errs = append(errs, errors.New("JWT_REFRESH_TTL must be longer than JWT_ACCESS_TTL"))
	}
	if c.OTPMaxAttempts < 1 {
		errs = append(errs, errors.New("OTP_MAX_ATTEMPTS must be positive"))
	}
	if c.ShippingFee < 0 || c.FreeShippingThreshold < 0 {
		errs = append(errs, errors.New("shipping amounts must not be negative"))
	}
	if c.IsProduction() && !c.CookieSecure {
		errs = append(errs, errors.New("COOKIE_SECURE must be enabled in production"))
	}
	if err := validLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Config) ValidateNotifier() error {
	if len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	return validLogLevel(c.LogLevel)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}

func validLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", level)
}
