/*
Package config loads application configuration from the environment.

PURPOSE:
  One struct for everything tunable at startup. Values come from process
  environment variables (a local .env file is honored in development);
  port and database path can additionally be overridden by flags in main.

VARIABLES:
  SMARTMONEY_PORT         HTTP port (default 8080)
  SMARTMONEY_DB           SQLite path (default smartmoney.db)
  SMARTMONEY_CRON         Reconcile schedule (default "5 0 * * *")
  GEMINI_API_KEY          Generative Language API key ("" disables AI)
  GEMINI_MODEL            Model name (default gemini-3-flash-preview)
  LOG_LEVEL               trace|debug|info|warn|error (default info)
  ENVIRONMENT             "production" switches logs to JSON
*/
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
)

// Config holds the application configuration.
type Config struct {
	Port        int    `koanf:"SMARTMONEY_PORT"`
	DBPath      string `koanf:"SMARTMONEY_DB"`
	CronSpec    string `koanf:"SMARTMONEY_CRON"`
	GeminiKey   string `koanf:"GEMINI_API_KEY"`
	GeminiModel string `koanf:"GEMINI_MODEL"`
	LogLevel    string `koanf:"LOG_LEVEL"`
	Environment string `koanf:"ENVIRONMENT"`
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables win over it.
func Load() (*Config, error) {
	_ = godotenv.Load() // missing .env is fine

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{
		Port:        8080,
		DBPath:      "smartmoney.db",
		CronSpec:    "5 0 * * *",
		GeminiModel: "",
		LogLevel:    "info",
		Environment: "development",
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// NewLogger builds the application logger from the configuration.
func NewLogger(cfg *Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		log.Warnf("invalid log level %q, defaulting to info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(cfg.Environment, "production") || strings.EqualFold(cfg.Environment, "staging") {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return log
}
