package config

import (
	"log"
	"time"

	"github.com/opsconsole/ledgersync/internal/db"
	"github.com/opsconsole/ledgersync/internal/spreadsheet"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// UploadConfig tunes the reconciliation pipeline.
type UploadConfig struct {
	BatchSize       int
	BatchDelay      time.Duration
	NumericFallback decimal.Decimal
	DefaultCurrency string
}

// Config is the full service configuration.
type Config struct {
	DB     db.Config
	Server ServerConfig
	Upload UploadConfig
}

// NormalizerOptions converts the upload section into normalizer options.
func (c Config) NormalizerOptions() spreadsheet.Options {
	return spreadsheet.Options{
		NumericFallback: c.Upload.NumericFallback,
		DefaultCurrency: c.Upload.DefaultCurrency,
	}
}

// Load reads config.yaml from configPath, with env overrides (DB_HOST,
// DB_PORT, ...). Missing file is fine; defaults apply.
func Load(configPath string) (Config, error) {
	cfg := Config{
		DB: db.DefaultConfig(),
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Upload: UploadConfig{
			BatchSize:       100,
			BatchDelay:      50 * time.Millisecond,
			NumericFallback: decimal.RequireFromString("0.01"),
			DefaultCurrency: "USD",
		},
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()     // allow environment overrides
	v.SetEnvPrefix("DB") // map env vars like DB_HOST, DB_PORT

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config.yaml found, using defaults and env vars")
	} else {
		log.Println("Loaded config.yaml")
	}

	if v.IsSet("database.host") {
		cfg.DB.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.DB.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.DB.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.DB.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.DB.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.DB.SSLMode = v.GetString("database.sslmode")
	}

	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}

	if v.IsSet("upload.batch_size") {
		cfg.Upload.BatchSize = v.GetInt("upload.batch_size")
	}
	if v.IsSet("upload.batch_delay_ms") {
		cfg.Upload.BatchDelay = time.Duration(v.GetInt("upload.batch_delay_ms")) * time.Millisecond
	}
	if v.IsSet("upload.numeric_fallback") {
		fallback, err := decimal.NewFromString(v.GetString("upload.numeric_fallback"))
		if err != nil {
			log.Printf("Invalid upload.numeric_fallback %q, keeping default", v.GetString("upload.numeric_fallback"))
		} else {
			cfg.Upload.NumericFallback = fallback
		}
	}
	if v.IsSet("upload.default_currency") {
		cfg.Upload.DefaultCurrency = v.GetString("upload.default_currency")
	}

	return cfg, nil
}
