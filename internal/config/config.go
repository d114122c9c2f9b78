package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Bot      BotConfig      `mapstructure:"bot"`
	Import   ImportConfig   `mapstructure:"import"`
	Exam     ExamConfig     `mapstructure:"exam"`
	Practice PracticeConfig `mapstructure:"practice"`
	Session  SessionConfig  `mapstructure:"session"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite3 or postgres
	DSN    string `mapstructure:"dsn"`
}

type BotConfig struct {
	Token string `mapstructure:"token"`
	Debug bool   `mapstructure:"debug"`
}

type ImportConfig struct {
	Path  string `mapstructure:"path"`
	Sheet string `mapstructure:"sheet"`
}

// TypeRule is the quota and point value of one question type in the exam
type TypeRule struct {
	Count  int `mapstructure:"count"`
	Points int `mapstructure:"points"`
}

type ExamConfig struct {
	Duration     time.Duration `mapstructure:"duration"`
	SingleChoice TypeRule      `mapstructure:"single_choice"`
	MultiChoice  TypeRule      `mapstructure:"multi_choice"`
	TrueFalse    TypeRule      `mapstructure:"true_false"`
	FillBlank    TypeRule      `mapstructure:"fill_blank"`
}

type PracticeConfig struct {
	AllowRepeats bool   `mapstructure:"allow_repeats"`
	DefaultUser  string `mapstructure:"default_user"`
}

type SessionConfig struct {
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "data/quiz.db")
	v.SetDefault("import.path", "questions.csv")
	v.SetDefault("exam.duration", "60m")
	v.SetDefault("exam.single_choice.count", 30)
	v.SetDefault("exam.single_choice.points", 1)
	v.SetDefault("exam.multi_choice.count", 20)
	v.SetDefault("exam.multi_choice.points", 2)
	v.SetDefault("exam.true_false.count", 20)
	v.SetDefault("exam.true_false.points", 1)
	v.SetDefault("exam.fill_blank.count", 10)
	v.SetDefault("exam.fill_blank.points", 2)
	v.SetDefault("practice.allow_repeats", false)
	v.SetDefault("practice.default_user", "student01")
	v.SetDefault("session.idle_ttl", "2h")
	v.SetDefault("session.sweep_interval", "5m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "logs/drillbot.log")
	v.SetDefault("metrics.addr", "")
}

// LoadConfig reads .env, then config.yaml from path (optional), then QUIZ_* env overrides
func LoadConfig(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("QUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("bot.token", "QUIZ_BOT_TOKEN", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("database.driver", "QUIZ_DATABASE_DRIVER", "DB_TYPE")
	v.BindEnv("database.dsn", "QUIZ_DATABASE_DSN", "DATABASE_DSN")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot type-check
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Exam.Duration <= 0 {
		return fmt.Errorf("exam duration must be positive, got %s", c.Exam.Duration)
	}
	rules := map[string]TypeRule{
		"single_choice": c.Exam.SingleChoice,
		"multi_choice":  c.Exam.MultiChoice,
		"true_false":    c.Exam.TrueFalse,
		"fill_blank":    c.Exam.FillBlank,
	}
	for name, r := range rules {
		if r.Count < 0 || r.Points < 0 {
			return fmt.Errorf("exam.%s: count and points must not be negative", name)
		}
	}
	if c.Practice.DefaultUser == "" {
		return fmt.Errorf("practice.default_user must not be empty")
	}
	return nil
}
