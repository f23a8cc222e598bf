package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "PHOTOAPP"

// MaxPageSize is the most objects one bucket listing call may return.
const MaxPageSize = 12

// Config holds everything the server needs. It is built once by Load and
// passed down to the components; nothing below main reads the environment.
type Config struct {
	BindAddress string   `mapstructure:"bind_address"`
	TLSDomains  []string `mapstructure:"-"` // e.g. "example.com,example2.com"
	DebugMode   bool     `mapstructure:"debug_mode"`
	LogLevel    string   `mapstructure:"log_level"`
	Environment string   `mapstructure:"environment"`
	SentryDSN   string   `mapstructure:"sentry_dsn"`

	MySQLDSN    string `mapstructure:"mysql_dsn"`    // MySQL will be used if this is set
	PostgresDSN string `mapstructure:"postgres_dsn"` // Postgres is used if MySQL is not configured
	SQLiteFile  string `mapstructure:"sqlite_file"`  // SQLite is the last resort

	S3Bucket   string `mapstructure:"s3_bucket"`
	S3Region   string `mapstructure:"s3_region"`
	S3Endpoint string `mapstructure:"s3_endpoint"` // S3 compatible stores, e.g. MinIO
	S3Key      string `mapstructure:"s3_key"`
	S3Secret   string `mapstructure:"s3_secret"`
	DiskPath   string `mapstructure:"disk_path"` // Used only when S3Bucket is empty

	VisionRegion        string  `mapstructure:"vision_region"`
	VisionMaxLabels     int64   `mapstructure:"vision_max_labels"`
	VisionMinConfidence float64 `mapstructure:"vision_min_confidence"`

	StoreTimeout  time.Duration `mapstructure:"store_timeout"`
	VisionTimeout time.Duration `mapstructure:"vision_timeout"`
	PageSize      int64         `mapstructure:"page_size"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bind_address", "0.0.0.0:8080")
	v.SetDefault("tls_domains", "")
	v.SetDefault("debug_mode", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("environment", "development")
	v.SetDefault("sentry_dsn", "")
	v.SetDefault("mysql_dsn", "")
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("sqlite_file", "")
	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_region", "us-east-2")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_key", "")
	v.SetDefault("s3_secret", "")
	v.SetDefault("disk_path", "")
	v.SetDefault("vision_region", "")
	v.SetDefault("vision_max_labels", 100)
	v.SetDefault("vision_min_confidence", 80.0)
	v.SetDefault("store_timeout", 30*time.Second)
	v.SetDefault("vision_timeout", 30*time.Second)
	v.SetDefault("page_size", MaxPageSize)
}

// Load reads the configuration from defaults, an optional file and
// PHOTOAPP_* environment variables, in increasing order of priority.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.TLSDomains = splitList(v.GetString("tls_domains"))
	if cfg.VisionRegion == "" {
		cfg.VisionRegion = cfg.S3Region
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.MySQLDSN == "" && c.PostgresDSN == "" && c.SQLiteFile == "" {
		return errors.New("config: one of MYSQL_DSN, POSTGRES_DSN or SQLITE_FILE must be set")
	}
	if c.S3Bucket == "" && c.DiskPath == "" {
		return errors.New("config: one of S3_BUCKET or DISK_PATH must be set")
	}
	if c.PageSize <= 0 || c.PageSize > MaxPageSize {
		return fmt.Errorf("config: PAGE_SIZE must be within [1, %d]", MaxPageSize)
	}
	if c.VisionMinConfidence < 0 || c.VisionMinConfidence > 100 {
		return errors.New("config: VISION_MIN_CONFIDENCE must be within [0, 100]")
	}
	return nil
}

func splitList(s string) []string {
	var result []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
