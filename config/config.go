package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read into the configuration.
// Nested keys are separated by a double underscore: FOODGRAM_DATABASE__HOST.
const EnvPrefix = "FOODGRAM_"

// ConfigPathEnvVar overrides the location of the YAML config file.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths lists the config files searched when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/foodgram/config.yaml",
}

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "foodgram-dev-secret"

// Config holds all configuration for the application
type Config struct {
	Env Environment `koanf:"-"`

	Server       ServerConfig       `koanf:"server"`
	Database     DatabaseConfig     `koanf:"database"`
	Redis        RedisConfig        `koanf:"redis"`
	Auth         AuthConfig         `koanf:"auth"`
	Storage      StorageConfig      `koanf:"storage"`
	Pagination   PaginationConfig   `koanf:"pagination"`
	ShoppingList ShoppingListConfig `koanf:"shopping_list"`
	RateLimit    RateLimitConfig    `koanf:"rate_limit"`
	Logging      LoggingConfig      `koanf:"logging"`
	Cache        CacheConfig        `koanf:"cache"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            string        `koanf:"port"`
	BaseURL         string        `koanf:"base_url"`
	AllowedOrigins  []string      `koanf:"allowed_origins"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver          string        `koanf:"driver"`
	Host            string        `koanf:"host"`
	Port            string        `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name"`
	SSLMode         string        `koanf:"ssl_mode"`
	Path            string        `koanf:"path"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	MigrationsDir   string        `koanf:"migrations_dir"`
	LogQueries      bool          `koanf:"log_queries"`
}

// DSN builds the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	URL      string `koanf:"url"`
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
	Issuer    string        `koanf:"issuer"`
}

type StorageConfig struct {
	// Backend is "local" or "s3".
	Backend       string `koanf:"backend"`
	LocalDir      string `koanf:"local_dir"`
	MediaURL      string `koanf:"media_url"`
	Bucket        string `koanf:"bucket"`
	Region        string `koanf:"region"`
	PublicBaseURL string `koanf:"public_base_url"`
	MaxImageBytes int64  `koanf:"max_image_bytes"`
}

type PaginationConfig struct {
	PageSize             int `koanf:"page_size"`
	MaxPageSize          int `koanf:"max_page_size"`
	SubscriptionPageSize int `koanf:"subscription_page_size"`
	RecipesLimit         int `koanf:"recipes_limit"`
}

type ShoppingListConfig struct {
	Filename  string `koanf:"filename"`
	Signature string `koanf:"signature"`
}

type RateLimitConfig struct {
	Enabled        bool          `koanf:"enabled"`
	RecipeCreation int           `koanf:"recipe_creation"`
	Window         time.Duration `koanf:"window"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type CacheConfig struct {
	TagsTTL time.Duration `koanf:"tags_ttl"`
}

// Default returns the configuration used before any file, env var or secret is applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			BaseURL:         "http://localhost:8080",
			AllowedOrigins:  []string{"http://localhost:3000"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            "5432",
			User:            "foodgram",
			Name:            "foodgram",
			SSLMode:         "disable",
			Path:            "foodgram.db",
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxLifetime: 5 * time.Minute,
			MigrationsDir:   "migrations",
		},
		Redis: RedisConfig{
			Enabled: true,
			Host:    "localhost",
			Port:    "6379",
		},
		Auth: AuthConfig{
			JWTSecret: DefaultJWTSecret,
			TokenTTL:  7 * 24 * time.Hour,
			Issuer:    "foodgram",
		},
		Storage: StorageConfig{
			Backend:       "local",
			LocalDir:      "media",
			MediaURL:      "/media/",
			MaxImageBytes: 5 << 20,
		},
		Pagination: PaginationConfig{
			PageSize:             6,
			MaxPageSize:          100,
			SubscriptionPageSize: 10,
			RecipesLimit:         3,
		},
		ShoppingList: ShoppingListConfig{
			Filename:  "wishlist.txt",
			Signature: "FoodGram, 2021",
		},
		RateLimit: RateLimitConfig{
			Enabled:        true,
			RecipeCreation: 30,
			Window:         time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Cache: CacheConfig{
			TagsTTL: 10 * time.Minute,
		},
	}
}

// LoadConfig creates a new Config instance from defaults, an optional YAML file,
// environment variables and docker secrets, in that order of precedence.
func LoadConfig() (*Config, error) {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	environment := GetEnvironment()
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := loadSecrets(k); err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Env = environment

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// sliceKeys are config keys given as comma-separated lists in the environment.
var sliceKeys = map[string]bool{
	"server.allowed_origins": true,
}

// envTransformFunc maps FOODGRAM_DATABASE__HOST to database.host.
func envTransformFunc(key, value string) (string, interface{}) {
	key = strings.TrimPrefix(key, EnvPrefix)
	key = strings.ReplaceAll(strings.ToLower(key), "__", ".")
	if sliceKeys[key] {
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return key, items
	}
	return key, value
}

// secretKeys maps docker secret file names to config keys
var secretKeys = map[string]string{
	"db_password":           "database.password",
	"jwt_secret":            "auth.jwt_secret",
	"redis_password":        "redis.password",
	"aws_secret_access_key": "",
}

// loadSecrets overlays docker secrets on top of the other layers
func loadSecrets(k *koanf.Koanf) error {
	for name, key := range secretKeys {
		value := readSecret(name)
		if value == "" {
			continue
		}
		if key == "" {
			// The AWS SDK reads credentials from the environment.
			if os.Getenv("AWS_SECRET_ACCESS_KEY") == "" {
				if err := os.Setenv("AWS_SECRET_ACCESS_KEY", value); err != nil {
					return err
				}
			}
			continue
		}
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("secret %s: %w", name, err)
		}
	}
	return nil
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
