package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Geocoder  GeocoderConfig  `mapstructure:"geocoder"`
	Store     StoreConfig     `mapstructure:"store"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Search    SearchConfig    `mapstructure:"search"`
	Itinerary ItineraryConfig `mapstructure:"itinerary"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ServerConfig for the local view-model API
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port" validate:"required|min:1|max:65535"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout" validate:"required|min:1"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout" validate:"required|min:1"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BackendConfig for the application REST backend
type BackendConfig struct {
	BaseURL string        `mapstructure:"baseURL" validate:"required|fullUrl"`
	Timeout time.Duration `mapstructure:"timeout" validate:"required|min:1"`
}

// GeocoderConfig for Nominatim
type GeocoderConfig struct {
	BaseURL     string        `mapstructure:"baseURL" validate:"required|fullUrl"`
	UserAgent   string        `mapstructure:"userAgent" validate:"required"`
	MinInterval time.Duration `mapstructure:"minInterval"`
}

// StoreConfig selects the local key-value persistence
type StoreConfig struct {
	Driver        string `mapstructure:"driver" validate:"required|in:sqlite,memory,redis"`
	Path          string `mapstructure:"path"`
	MemorySizeMB  int    `mapstructure:"memorySizeMB"`
	RedisAddr     string `mapstructure:"redisAddr"`
	RedisPassword string `mapstructure:"redisPassword"`
	RedisDB       int    `mapstructure:"redisDB"`
}

type CacheConfig struct {
	Compress bool `mapstructure:"compress"`
}

type SearchConfig struct {
	PageSize         int     `mapstructure:"pageSize" validate:"required|min:1"`
	DefaultLatitude  float64 `mapstructure:"defaultLatitude"`
	DefaultLongitude float64 `mapstructure:"defaultLongitude"`
}

type ItineraryConfig struct {
	NotificationTTL time.Duration `mapstructure:"notificationTTL" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Env   string `mapstructure:"env" validate:"required|in:development,production,test"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var envBindings = map[string]string{
	"server.host":               "LOCALGEO_SERVER_HOST",
	"server.port":               "LOCALGEO_SERVER_PORT",
	"backend.baseURL":           "LOCALGEO_BACKEND_URL",
	"backend.timeout":           "LOCALGEO_BACKEND_TIMEOUT",
	"geocoder.baseURL":          "LOCALGEO_GEOCODER_URL",
	"geocoder.userAgent":        "LOCALGEO_GEOCODER_USER_AGENT",
	"store.driver":              "LOCALGEO_STORE_DRIVER",
	"store.path":                "LOCALGEO_STORE_PATH",
	"store.redisAddr":           "LOCALGEO_REDIS_ADDR",
	"store.redisPassword":       "LOCALGEO_REDIS_PASSWORD",
	"store.redisDB":             "LOCALGEO_REDIS_DB",
	"cache.compress":            "LOCALGEO_CACHE_COMPRESS",
	"logger.level":              "LOCALGEO_LOG_LEVEL",
	"logger.env":                "LOCALGEO_ENV",
	"metrics.enabled":           "LOCALGEO_METRICS_ENABLED",
	"itinerary.notificationTTL": "LOCALGEO_NOTIFICATION_TTL",
}

// LoadEnv reads the first .env file found; a missing file is not an error.
func LoadEnv(paths ...string) string {
	if len(paths) == 0 {
		paths = []string{".env", "../.env", "../../.env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	return ""
}

// Load reads configuration from file and environment variables.
// A missing file is fine; defaults and LOCALGEO_* variables still apply.
func Load(configPath string) (*Config, error) {
	LoadEnv()

	v := viper.New()
	applyDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("backend.baseURL", "http://localhost:8081/api")
	v.SetDefault("backend.timeout", 15*time.Second)
	v.SetDefault("geocoder.baseURL", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoder.userAgent", "LocalGeo/1.0")
	v.SetDefault("geocoder.minInterval", time.Second)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "localgeo.db")
	v.SetDefault("store.memorySizeMB", 32)
	v.SetDefault("store.redisAddr", "localhost:6379")
	v.SetDefault("store.redisDB", 0)
	v.SetDefault("cache.compress", false)
	v.SetDefault("search.pageSize", 15)
	v.SetDefault("search.defaultLatitude", 40.74)
	v.SetDefault("search.defaultLongitude", -73.98)
	v.SetDefault("itinerary.notificationTTL", 3*time.Second)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")
	v.SetDefault("metrics.enabled", false)
}

// Validate checks struct rules, then the driver-specific settings
func (c *Config) Validate() error {
	vd := validate.Struct(c)
	if !vd.Validate() {
		return fmt.Errorf("invalid configuration: %w", vd.Errors)
	}

	var missing []string
	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			missing = append(missing, "store.path")
		}
	case "redis":
		if c.Store.RedisAddr == "" {
			missing = append(missing, "store.redisAddr")
		}
	case "memory":
		if c.Store.MemorySizeMB <= 0 {
			missing = append(missing, "store.memorySizeMB")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}
