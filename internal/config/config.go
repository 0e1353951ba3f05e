package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"commute-route-service/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	AppEnv     string           `mapstructure:"app_env"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Directions DirectionsConfig `mapstructure:"directions"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Survey     SurveyConfig     `mapstructure:"survey"`
	Plot       PlotConfig       `mapstructure:"plot"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Tables     LookupTables     `mapstructure:"lookup"`

	// Lookup is built from Tables, or DefaultLookup when none are configured.
	Lookup Lookup `mapstructure:"-"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	// Driver selects the directions and geocode cache store: "sqlite"
	// (the SqlitePath file) or "pgx" (Postgres at URL). Survey answers and
	// routes always live in SqlitePath.
	Driver     string `mapstructure:"driver"`
	SqlitePath string `mapstructure:"sqlite_path"`
	URL        string `mapstructure:"url"`
}

type DirectionsConfig struct {
	// Provider is "google" or "ors".
	Provider          string        `mapstructure:"provider"`
	GoogleAPIKey      string        `mapstructure:"google_api_key"`
	GoogleBaseURL     string        `mapstructure:"google_base_url"`
	ORSAPIKey         string        `mapstructure:"ors_api_key"`
	ORSBaseURL        string        `mapstructure:"ors_base_url"`
	ORSCountry        string        `mapstructure:"ors_country"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

type CacheConfig struct {
	MemorySize int           `mapstructure:"memory_size"`
	MemoryTTL  time.Duration `mapstructure:"memory_ttl"`
	RedisAddr  string        `mapstructure:"redis_addr"`
	RedisTTL   time.Duration `mapstructure:"redis_ttl"`
}

type SurveyConfig struct {
	Path           string `mapstructure:"path"`
	Encoding       string `mapstructure:"encoding"`
	BuildingColumn string `mapstructure:"building_column"`
	AddressColumn  string `mapstructure:"address_column"`
	CityColumn     string `mapstructure:"city_column"`
	ModeColumn     string `mapstructure:"mode_column"`
}

type PlotConfig struct {
	Workers      int    `mapstructure:"workers"`
	StrictDecode bool   `mapstructure:"strict_decode"`
	FailFast     bool   `mapstructure:"fail_fast"`
	LayerName    string `mapstructure:"layer_name"`
	OutputPath   string `mapstructure:"output_path"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

// Load reads .env (if present), an optional config.yaml and COMMUTE_*
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	// COMMUTE_DIRECTIONS_PROVIDER -> directions.provider
	v.SetEnvPrefix("COMMUTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Lookup = cfg.Tables.Lookup(DefaultLookup())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.sqlite_path", "data/app.db")
	v.SetDefault("database.url", "")
	v.SetDefault("directions.provider", "google")
	v.SetDefault("directions.google_api_key", "")
	v.SetDefault("directions.google_base_url", "https://maps.googleapis.com")
	v.SetDefault("directions.ors_api_key", "")
	v.SetDefault("directions.ors_base_url", "https://api.openrouteservice.org")
	v.SetDefault("directions.ors_country", "ES")
	v.SetDefault("directions.timeout", 10*time.Second)
	v.SetDefault("directions.requests_per_second", 10.0)
	v.SetDefault("cache.memory_size", 1024)
	v.SetDefault("cache.memory_ttl", 24*time.Hour)
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_ttl", 7*24*time.Hour)
	v.SetDefault("survey.path", "data/survey.csv")
	v.SetDefault("survey.encoding", "latin1")
	v.SetDefault("survey.building_column", "Building")
	v.SetDefault("survey.address_column", "Address")
	v.SetDefault("survey.city_column", "City")
	v.SetDefault("survey.mode_column", "Way in")
	v.SetDefault("plot.workers", 4)
	v.SetDefault("plot.strict_decode", false)
	v.SetDefault("plot.fail_fast", false)
	v.SetDefault("plot.layer_name", domain.DefaultLayerName)
	v.SetDefault("plot.output_path", "routes.geojson")
	v.SetDefault("nats.url", "")
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.SqlitePath == "" {
		errs = append(errs, "database.sqlite_path is required")
	}
	switch c.Database.Driver {
	case "sqlite":
	case "pgx":
		if c.Database.URL == "" {
			errs = append(errs, "database.url is required for pgx")
		}
	default:
		errs = append(errs, fmt.Sprintf("database.driver must be sqlite or pgx, got %q", c.Database.Driver))
	}

	switch c.Directions.Provider {
	case "google":
		if strings.TrimSpace(c.Directions.GoogleAPIKey) == "" {
			errs = append(errs, "directions.google_api_key is required for the google provider")
		}
	case "ors":
		if strings.TrimSpace(c.Directions.ORSAPIKey) == "" {
			errs = append(errs, "directions.ors_api_key is required for the ors provider")
		}
	default:
		errs = append(errs, fmt.Sprintf("directions.provider must be google or ors, got %q", c.Directions.Provider))
	}

	if c.Directions.Timeout <= 0 {
		errs = append(errs, "directions.timeout must be positive")
	}
	if c.Directions.RequestsPerSecond <= 0 {
		errs = append(errs, "directions.requests_per_second must be positive")
	}
	if c.Plot.Workers < 1 || c.Plot.Workers > 64 {
		errs = append(errs, fmt.Sprintf("plot.workers must be 1-64, got %d", c.Plot.Workers))
	}
	if c.Cache.MemorySize < 0 {
		errs = append(errs, "cache.memory_size must not be negative")
	}
	if c.Survey.Encoding != "latin1" && c.Survey.Encoding != "utf8" {
		errs = append(errs, fmt.Sprintf("survey.encoding must be latin1 or utf8, got %q", c.Survey.Encoding))
	}
	errs = append(errs, c.Lookup.problems()...)

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Get returns the environment variable key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
