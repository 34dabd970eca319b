package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/yungbote/marmora-backend/internal/platform/logger"
)

type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"marmora-backend"`
	Version     string `env:"APP_VERSION" envDefault:"dev"`
	Addr        string `env:"HTTP_ADDR" envDefault:":8080"`
	// SiteURL is the public storefront origin used for canonical and sitemap URLs.
	SiteURL     string   `env:"SITE_URL" envDefault:"http://localhost:3000"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
	SecureCookies bool   `env:"SECURE_COOKIES" envDefault:"false"`
	// TrustedProxies are the load balancers allowed to set X-Forwarded-For.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	DBDriver       string `env:"DB_DRIVER" envDefault:"postgres"`
	DatabaseURL    string `env:"DATABASE_URL"`
	PostgresHost   string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort   string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser   string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPass   string `env:"POSTGRES_PASSWORD"`
	PostgresName   string `env:"POSTGRES_NAME" envDefault:"marmora"`
	PostgresSSL    string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"marmora.db"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"20"`
	DBMaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"marmora"`

	JWTSecretKey    string        `env:"JWT_SECRET_KEY" envDefault:"defaultsecret"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"720h"`

	FormRateLimit   int           `env:"FORM_RATE_LIMIT" envDefault:"5"`
	FormRateWindow  time.Duration `env:"FORM_RATE_WINDOW" envDefault:"10m"`
	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"15m"`
	RecaptchaURL    string        `env:"RECAPTCHA_VERIFY_URL"`
	RecaptchaScore  float64       `env:"RECAPTCHA_MIN_SCORE" envDefault:"0.5"`

	ObjectStorageMode   string `env:"OBJECT_STORAGE_MODE" envDefault:"local"`
	StorageBucket       string `env:"GCS_BUCKET"`
	StorageCDNDomain    string `env:"GCS_CDN_DOMAIN"`
	StorageEmulatorHost string `env:"STORAGE_EMULATOR_HOST"`
	StoragePublicBase   string `env:"OBJECT_STORAGE_PUBLIC_BASE_URL"`
	StorageCredentials  string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	LocalMediaDir       string `env:"LOCAL_MEDIA_DIR" envDefault:"./media"`
	LocalMediaPrefix    string `env:"LOCAL_MEDIA_PREFIX" envDefault:"/media"`
	MaxUploadBytes      int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	OGFontPath string `env:"OG_FONT_PATH"`
	SeedFile   string `env:"SEED_FILE"`

	MailQueueSize int `env:"MAIL_QUEUE_SIZE" envDefault:"100"`
	MailWorkers   int `env:"MAIL_WORKERS" envDefault:"2"`

	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"false"`
	MetricsAddr    string `env:"METRICS_ADDR"`

	OtelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OtelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     string  `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	OtelSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// LoadConfig reads an optional .env file, then the process environment.
func LoadConfig(log *logger.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("Could not read .env", "error", err)
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	if cfg.JWTSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY is not set; using the development default")
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.IsProduction() && c.JWTSecretKey == "defaultsecret" {
		return fmt.Errorf("config: JWT_SECRET_KEY is required in production")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("config: token TTLs must be positive")
	}
	if strings.TrimSpace(c.SiteURL) == "" {
		return fmt.Errorf("config: SITE_URL is required")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}
