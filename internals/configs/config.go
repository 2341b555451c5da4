package configs

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

// Config is read from the environment once at startup.
type Config struct {
	Port        string `envconfig:"PORT" default:"3000"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Environment string `envconfig:"RAILWAY_ENVIRONMENT"`

	// upstream certificate API
	CertAPIBaseURL string        `envconfig:"CERT_API_BASE_URL"`
	CertVerifyPath string        `envconfig:"CERT_VERIFY_PATH" default:"/api/certificates/verify"`
	CertAPITimeout time.Duration `envconfig:"CERT_API_TIMEOUT" default:"15s"`
	PublicOrigin   string        `envconfig:"PUBLIC_ORIGIN"`

	CORSAllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`

	ImageProxyAllowedHosts []string      `envconfig:"IMAGE_PROXY_ALLOWED_HOSTS"`
	ImageProxyMaxBytes     int64         `envconfig:"IMAGE_PROXY_MAX_BYTES" default:"10485760"`
	ImageProxyTimeout      time.Duration `envconfig:"IMAGE_PROXY_TIMEOUT" default:"15s"`

	// local development only; lets the relay reach loopback and private hosts
	ImageProxyAllowPrivate bool `envconfig:"IMAGE_PROXY_ALLOW_PRIVATE" default:"false"`

	CertRenderer      string        `envconfig:"CERT_RENDERER" default:"raster"`
	ChromeBin         string        `envconfig:"CHROME_BIN"`
	ExportSettleDelay time.Duration `envconfig:"EXPORT_SETTLE_DELAY" default:"300ms"`
	ExportQREnabled   bool          `envconfig:"EXPORT_QR_ENABLED" default:"false"`
	ExportTimeout     time.Duration `envconfig:"EXPORT_TIMEOUT" default:"60s"`

	JWTSecret string `envconfig:"JWT_SECRET"`

	DBHost     string `envconfig:"DB_HOST"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"require"`

	// DBAutoMigrate creates/updates the verification log table at boot
	DBAutoMigrate bool `envconfig:"DB_AUTO_MIGRATE" default:"false"`

	VerificationLogRetentionDays int    `envconfig:"VERIFICATION_LOG_RETENTION_DAYS" default:"90"`
	VerificationLogPurgeCron     string `envconfig:"VERIFICATION_LOG_PURGE_CRON" default:"15 2 * * *"`

	OSSEndpoint      string        `envconfig:"ALI_OSS_ENDPOINT"`
	OSSAccessKey     string        `envconfig:"ALI_OSS_ACCESS_KEY"`
	OSSSecretKey     string        `envconfig:"ALI_OSS_SECRET_KEY"`
	OSSSecurityToken string        `envconfig:"ALI_OSS_SECURITY_TOKEN"`
	OSSBucket        string        `envconfig:"ALI_OSS_BUCKET"`
	ArchivePrefix    string        `envconfig:"EXPORT_ARCHIVE_PREFIX" default:"certificates"`
	ArchiveURLTTL    time.Duration `envconfig:"EXPORT_ARCHIVE_URL_TTL" default:"15m"`
}

// =======================
// ENV LOADER
// =======================

// LoadEnv reads .env outside Railway, then fills Config from the process environment.
func LoadEnv(log *zap.Logger) (*Config, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Info("⚠️ no .env file, using system environment")
		} else {
			log.Info("✅ .env file loaded")
		}
	} else {
		log.Info("🚀 running in Railway, using system environment")
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	cfg.PublicOrigin = strings.TrimRight(strings.TrimSpace(cfg.PublicOrigin), "/")

	if cfg.CertAPIBaseURL == "" {
		log.Warn("❌ CERT_API_BASE_URL is not set, verification will fail")
	}
	if cfg.JWTSecret == "" {
		log.Warn("❌ JWT_SECRET is not set, admin routes are disabled")
	}
	return cfg, nil
}

func (c *Config) DatabaseEnabled() bool { return strings.TrimSpace(c.DBHost) != "" }

func (c *Config) ArchiveEnabled() bool {
	return c.OSSEndpoint != "" && c.OSSAccessKey != "" && c.OSSSecretKey != "" && c.OSSBucket != ""
}

func (c *Config) BrowserRenderer() bool {
	return strings.EqualFold(strings.TrimSpace(c.CertRenderer), "browser")
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=sifs_backend&options=-c statement_timeout=3000",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}
