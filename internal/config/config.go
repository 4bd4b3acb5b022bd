package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"watermark-generator/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/wb-go/wbf/retry"
)

type Config struct {
	Layout   LayoutConfig
	Assets   AssetsConfig
	Defaults DefaultsConfig
	Server   ServerConfig
	Kafka    KafkaConfig
	Minio    MinioConfig
	DB       DBConfig
	Worker   WorkerConfig
	Retry    RetryConfig
}

// LayoutConfig holds the watermark geometry. Offsets may be negative.
type LayoutConfig struct {
	CanvasWidth                  int    `env:"CANVAS_WIDTH" env-default:"4000" validate:"gt=0"`
	CanvasHeight                 int    `env:"CANVAS_HEIGHT" env-default:"764" validate:"gt=0"`
	Padding                      int    `env:"PADDING" env-default:"20" validate:"gte=0"`
	DefaultFontSize              int    `env:"DEFAULT_FONT_SIZE" env-default:"40" validate:"gt=0"`
	DefaultSignatureLogoWidth    int    `env:"DEFAULT_SIGNATURE_LOGO_WIDTH" env-default:"300" validate:"gt=0"`
	LocationLogoTextSpacing      int    `env:"LOCATION_LOGO_TEXT_SPACING" env-default:"10"`
	TextColorR                   int    `env:"TEXT_COLOR_R" env-default:"255" validate:"gte=0,lte=255"`
	TextColorG                   int    `env:"TEXT_COLOR_G" env-default:"255" validate:"gte=0,lte=255"`
	TextColorB                   int    `env:"TEXT_COLOR_B" env-default:"255" validate:"gte=0,lte=255"`
	TextColorA                   int    `env:"TEXT_COLOR_A" env-default:"255" validate:"gte=0,lte=255"`
	LocationSeparator            string `env:"LOCATION_SEPARATOR" env-default:" · "`
	InfoSeparator                string `env:"INFO_SEPARATOR" env-default:" & "`
	CameraLensSeparator          string `env:"CAMERA_LENS_SEPARATOR" env-default:" & "`
	LocationVerticalOffset       int    `env:"LOCATION_VERTICAL_OFFSET" env-default:"0"`
	LocationTextHorizontalOffset int    `env:"LOCATION_TEXT_HORIZONTAL_OFFSET" env-default:"0"`
}

// AssetsConfig holds the font and logo paths. Relative paths are resolved by
// base name against the directory of the loaded config file.
type AssetsConfig struct {
	FontPath          string `env:"FONT_PATH"`
	LocationLogoPath  string `env:"LOCATION_LOGO_PATH"`
	SignatureLogoPath string `env:"SIGNATURE_LOGO_PATH"`
}

type DefaultsConfig struct {
	City     string `env:"DEFAULT_CITY" env-default:"GUANGZHOU"`
	Location string `env:"DEFAULT_LOCATION" env-default:"HUANGPU"`
	Camera   string `env:"DEFAULT_CAMERA" env-default:"LICE-7c"`
	Lens     string `env:"DEFAULT_LENS" env-default:"SIGMA 24-70mm F2.8 DG DN II Art"`
}

type ServerConfig struct {
	Addr            string        `env:"SERVER_ADDR" env-default:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type KafkaConfig struct {
	Brokers   []string `env:"KAFKA_BROKERS" env-separator:"," env-default:"localhost:9092"`
	JobsTopic string   `env:"KAFKA_JOBS_TOPIC" env-default:"watermark-jobs"`
	GroupID   string   `env:"KAFKA_GROUP_ID" env-default:"watermark-worker-group"`
}

type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string `env:"MINIO_ACCESS_KEY" env-default:"minioadmin"`
	SecretKey string `env:"MINIO_SECRET_KEY" env-default:"minioadmin"`
	Bucket    string `env:"MINIO_BUCKET" env-default:"watermarks"`
	UseSSL    bool   `env:"MINIO_USE_SSL" env-default:"false"`
}

type DBConfig struct {
	Host            string        `env:"DB_HOST" env-default:"localhost"`
	Port            int           `env:"DB_PORT" env-default:"5432"`
	User            string        `env:"DB_USER" env-default:"postgres"`
	Password        string        `env:"DB_PASSWORD" env-default:"postgres"`
	Name            string        `env:"DB_NAME" env-default:"watermarks"`
	SSLMode         string        `env:"DB_SSLMODE" env-default:"disable"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"5m"`
}

type WorkerConfig struct {
	Concurrency int `env:"WORKER_CONCURRENCY" env-default:"4" validate:"gt=0"`
}

type RetryConfig struct {
	Attempts int           `env:"RETRY_ATTEMPTS" env-default:"3" validate:"gt=0"`
	Delay    time.Duration `env:"RETRY_DELAY" env-default:"500ms"`
	Backoff  float64       `env:"RETRY_BACKOFF" env-default:"2"`
}

// MustLoad reads the file named by CONFIG_PATH (config/.env by default) when
// it exists and the process environment otherwise.
func MustLoad() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = domain.DefaultConfigPath
	}
	return Load(path)
}

func Load(path string) (*Config, error) {
	var cfg Config
	baseDir := ""

	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("%w: failed to read config %s: %w", domain.ErrConfiguration, path, err)
		}
		baseDir = filepath.Dir(path)
	case errors.Is(err, fs.ErrNotExist):
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%w: failed to read environment: %w", domain.ErrConfiguration, err)
		}
	default:
		return nil, fmt.Errorf("%w: failed to stat config %s: %w", domain.ErrConfiguration, path, err)
	}

	cfg.Assets.resolve(baseDir)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: invalid config: %w", domain.ErrConfiguration, err)
	}

	return &cfg, nil
}

func (a *AssetsConfig) resolve(baseDir string) {
	a.FontPath = resolveAsset(baseDir, a.FontPath)
	a.LocationLogoPath = resolveAsset(baseDir, a.LocationLogoPath)
	a.SignatureLogoPath = resolveAsset(baseDir, a.SignatureLogoPath)
}

func resolveAsset(baseDir, path string) string {
	if path == "" || baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, filepath.Base(path))
}

func (c *Config) DBDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name, c.DB.SSLMode)
}

func (c *Config) DefaultRetryStrategy() retry.Strategy {
	return retry.Strategy{
		Attempts: c.Retry.Attempts,
		Delay:    c.Retry.Delay,
		Backoff:  c.Retry.Backoff,
	}
}
