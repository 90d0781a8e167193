package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var defineFlagsOnce sync.Once

// Load loads configuration from multiple sources with the following precedence:
// 1. Command line flags
// 2. Environment variables
// 3. Config file
// 4. Default values
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	defineFlags()
	if !pflag.Parsed() {
		pflag.Parse()
	}

	cfgPath, _ := pflag.CommandLine.GetString("config")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.SetConfigName("sqlgateway")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/sqlgateway/")
		v.AddConfigPath("$HOME/.sqlgateway")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgPath != "" {
			return nil, fmt.Errorf("failed to read config file %q: %w", cfgPath, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Env vars: SQLGW_DATABASE_DSN, SQLGW_LOGGING_LEVEL, ...
	v.SetEnvPrefix("SQLGW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	bindChangedFlagsToViper(v)

	if v.GetString("database.dsn") == "" && v.GetString("database.dsn_file") != "" {
		dsn, err := readSecretFile(v.GetString("database.dsn_file"))
		if err != nil {
			return nil, fmt.Errorf("failed to read database DSN file: %w", err)
		}
		v.Set("database.dsn", dsn)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.engine", "mysql")
	v.SetDefault("database.pool.max_open", 10)
	v.SetDefault("database.pool.max_idle", 5)
	v.SetDefault("database.pool.max_lifetime", "30m")
	v.SetDefault("database.connection_timeout", "30s")
	v.SetDefault("runtime.graphql_enabled", true)
	v.SetDefault("runtime.rest_enabled", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

func defineFlags() {
	defineFlagsOnce.Do(func() {
		pflag.String("config", "", "path to config file")
		pflag.String("database-engine", "", "database engine kind (mysql, postgresql, sqlite)")
		pflag.String("database-dsn", "", "database connection string")
		pflag.String("database-dsn-file", "", "path to a file containing the database connection string")
		pflag.String("log-level", "", "log level (debug, info, warn, error)")
		pflag.String("log-format", "", "log format (json, text)")
	})
}

// bindChangedFlagsToViper copies explicitly set flags into viper so they win
// over env vars and config file values.
func bindChangedFlagsToViper(v *viper.Viper) {
	flagToKey := map[string]string{
		"database-engine":   "database.engine",
		"database-dsn":      "database.dsn",
		"database-dsn-file": "database.dsn_file",
		"log-level":         "logging.level",
		"log-format":        "logging.format",
	}
	pflag.CommandLine.Visit(func(f *pflag.Flag) {
		if key, ok := flagToKey[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})
}

func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
