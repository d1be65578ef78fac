package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	Log           LogConfig
	Training      TrainingConfig
	CourierScorer CourierScorerConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// TrainingConfig holds model training settings
type TrainingConfig struct {
	ModelName       string
	HiddenLayers    []int
	Activation      string
	LearningRate    float64
	Epochs          int
	ValidationSplit float64
	MinSamples      int
	KeepModels      int
	Seed            int64 // 0 seeds from the clock
}

// CourierScorerConfig holds the optional external courier scorer
// delegate settings; an empty endpoint means local-only scoring
type CourierScorerConfig struct {
	Endpoint       string
	TimeoutSeconds int
	Blend          float64
}

// Load reads configuration from config.toml and environment variables.
// Environment variables use the MLT_ prefix with underscores, e.g.
// MLT_DATABASE_HOST overrides database.host.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("MLT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Training: TrainingConfig{
			ModelName:       v.GetString("training.model_name"),
			HiddenLayers:    v.GetIntSlice("training.hidden_layers"),
			Activation:      v.GetString("training.activation"),
			LearningRate:    v.GetFloat64("training.learning_rate"),
			Epochs:          v.GetInt("training.epochs"),
			ValidationSplit: v.GetFloat64("training.validation_split"),
			MinSamples:      v.GetInt("training.min_samples"),
			KeepModels:      v.GetInt("training.keep_models"),
			Seed:            v.GetInt64("training.seed"),
		},
		CourierScorer: CourierScorerConfig{
			Endpoint:       v.GetString("courier_scorer.endpoint"),
			TimeoutSeconds: v.GetInt("courier_scorer.timeout_seconds"),
			Blend:          v.GetFloat64("courier_scorer.blend"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers sane defaults for every key
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "mylittlethingz-scoring")
	v.SetDefault("app.env", "development")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "mylittlethingz")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30)
	v.SetDefault("database.conn_max_idle_time", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("training.model_name", "gift-preference")
	v.SetDefault("training.hidden_layers", []int{10, 6})
	v.SetDefault("training.activation", "sigmoid")
	v.SetDefault("training.learning_rate", 0.1)
	v.SetDefault("training.epochs", 300)
	v.SetDefault("training.validation_split", 0.2)
	v.SetDefault("training.min_samples", 100)
	v.SetDefault("training.keep_models", 5)
	v.SetDefault("training.seed", 0)

	v.SetDefault("courier_scorer.endpoint", "")
	v.SetDefault("courier_scorer.timeout_seconds", 3)
	v.SetDefault("courier_scorer.blend", 1.0)
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	if c.Training.ModelName == "" {
		return fmt.Errorf("training.model_name is required")
	}
	if c.Training.LearningRate <= 0 {
		return fmt.Errorf("training.learning_rate must be positive")
	}
	if c.Training.Epochs < 1 {
		return fmt.Errorf("training.epochs must be positive")
	}
	if c.Training.ValidationSplit < 0 || c.Training.ValidationSplit >= 1 {
		return fmt.Errorf("training.validation_split must be in [0, 1)")
	}
	if c.Training.MinSamples < 1 {
		return fmt.Errorf("training.min_samples must be positive")
	}
	if c.CourierScorer.Endpoint != "" && c.CourierScorer.TimeoutSeconds < 1 {
		return fmt.Errorf("courier_scorer.timeout_seconds must be positive when an endpoint is set")
	}
	return nil
}

// DSN builds the postgres connection string
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// IsProduction returns true in the production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
