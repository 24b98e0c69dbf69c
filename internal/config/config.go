package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultDotEnvPath = ".env"

type Config struct {
	Env      string         `yaml:"env"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Matching MatchingConfig `yaml:"matching"`
	Rate     RateConfig     `yaml:"rate"`
	Notify   NotifyConfig   `yaml:"notify"`
}

type HTTPConfig struct {
	Addr           string        `yaml:"addr"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// PostgresConfig with an empty DSN selects the in-memory store.
type PostgresConfig struct {
	DSN            string        `yaml:"dsn"`
	MaxConns       int           `yaml:"max_conns"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	AutoMigrate    bool          `yaml:"auto_migrate"`
}

// RedisConfig with an empty Addr disables rate limiting and notifications.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MatchingConfig struct {
	MinMutualInteractions int `yaml:"min_mutual_interactions"`
	CandidateLimit        int `yaml:"candidate_limit"`
	ConflictRetries       int `yaml:"conflict_retries"`
}

// RateConfig holds separate per-user budgets for likes and passes.
type RateConfig struct {
	Like RateBudget `yaml:"like"`
	Pass RateBudget `yaml:"pass"`
}

// RateBudget with a zero limit disables that window.
type RateBudget struct {
	PerMinute int `yaml:"per_minute"`
	Per10Sec  int `yaml:"per_10sec"`
}

type NotifyConfig struct {
	Channel   string        `yaml:"channel"`
	InboxSize int           `yaml:"inbox_size"`
	InboxTTL  time.Duration `yaml:"inbox_ttl"`
}

func Default() Config {
	return Config{
		Env: "dev",
		HTTP: HTTPConfig{
			Addr:           ":8080",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    30 * time.Second,
			RequestTimeout: 15 * time.Second,
		},
		Log: LogConfig{Level: "debug"},
		Postgres: PostgresConfig{
			MaxConns:       10,
			ConnectTimeout: 5 * time.Second,
			AutoMigrate:    true,
		},
		Matching: MatchingConfig{
			MinMutualInteractions: 2,
			CandidateLimit:        10,
			ConflictRetries:       1,
		},
		Rate: RateConfig{
			Like: RateBudget{PerMinute: 30, Per10Sec: 10},
			Pass: RateBudget{PerMinute: 60, Per10Sec: 15},
		},
		Notify: NotifyConfig{
			Channel:   "matches:mutual",
			InboxSize: 50,
			InboxTTL:  30 * 24 * time.Hour,
		},
	}
}

// Load builds the config from defaults, then the YAML file at path, then the
// environment. A .env file (APP_DOTENV, default ./.env) is read into the
// environment first without replacing variables that are already set.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := loadDotEnv(dotEnvPath()); err != nil {
		return Config{}, err
	}

	if path != "" {
		if err := loadFromYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Env == "prod" && c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required in production")
	}
	if c.Matching.MinMutualInteractions < 1 {
		return fmt.Errorf("matching.min_mutual_interactions must be at least 1")
	}
	if c.Matching.CandidateLimit < 1 {
		return fmt.Errorf("matching.candidate_limit must be at least 1")
	}
	if c.Matching.ConflictRetries < 0 {
		return fmt.Errorf("matching.conflict_retries must not be negative")
	}
	if c.Rate.Like.PerMinute < 0 || c.Rate.Like.Per10Sec < 0 || c.Rate.Pass.PerMinute < 0 || c.Rate.Pass.Per10Sec < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}
	return nil
}

func dotEnvPath() string {
	if v := os.Getenv("APP_DOTENV"); v != "" {
		return v
	}
	return defaultDotEnvPath
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat dotenv file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load dotenv file: %w", err)
	}
	return nil
}

func loadFromYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("unmarshal config yaml: %w", err)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}

	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if err := overrideDuration("HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return err
	}
	if err := overrideDuration("HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return err
	}
	if err := overrideDuration("HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return err
	}
	if err := overrideDuration("HTTP_REQUEST_TIMEOUT", &cfg.HTTP.RequestTimeout); err != nil {
		return err
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if err := overrideInt("POSTGRES_MAX_CONNS", &cfg.Postgres.MaxConns); err != nil {
		return err
	}
	if err := overrideBool("POSTGRES_AUTO_MIGRATE", &cfg.Postgres.AutoMigrate); err != nil {
		return err
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if err := overrideInt("REDIS_DB", &cfg.Redis.DB); err != nil {
		return err
	}

	if err := overrideInt("MATCHING_MIN_MUTUAL", &cfg.Matching.MinMutualInteractions); err != nil {
		return err
	}
	if err := overrideInt("MATCHING_CANDIDATE_LIMIT", &cfg.Matching.CandidateLimit); err != nil {
		return err
	}
	if err := overrideInt("MATCHING_CONFLICT_RETRIES", &cfg.Matching.ConflictRetries); err != nil {
		return err
	}

	if err := overrideInt("RATE_LIKES_PER_MINUTE", &cfg.Rate.Like.PerMinute); err != nil {
		return err
	}
	if err := overrideInt("RATE_LIKES_PER_10SEC", &cfg.Rate.Like.Per10Sec); err != nil {
		return err
	}
	if err := overrideInt("RATE_PASSES_PER_MINUTE", &cfg.Rate.Pass.PerMinute); err != nil {
		return err
	}
	if err := overrideInt("RATE_PASSES_PER_10SEC", &cfg.Rate.Pass.Per10Sec); err != nil {
		return err
	}

	if err := overrideInt("NOTIFY_INBOX_SIZE", &cfg.Notify.InboxSize); err != nil {
		return err
	}
	if err := overrideDuration("NOTIFY_INBOX_TTL", &cfg.Notify.InboxTTL); err != nil {
		return err
	}

	return nil
}

func overrideDuration(key string, target *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s duration: %w", key, err)
	}
	*target = d
	return nil
}

func overrideInt(key string, target *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s int: %w", key, err)
	}
	*target = n
	return nil
}

func overrideBool(key string, target *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("parse %s bool: %w", key, err)
	}
	*target = b
	return nil
}
