package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

type Config struct {
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseFilePath          string        `koanf:"database_file_path"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries"`
	Hostname                  string        `koanf:"-"`
	JWTSecret                 string        `koanf:"jwt_secret"`
	ServerHost                string        `koanf:"server_host"`
	ServerPort                int           `koanf:"server_port"`
}

// New loads config with the following precedence: defaults, then the YAML
// file pointed to by CONFIG_FILE (if it exists), then environment variables.
func New() (*Config, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")

	defaults := map[string]interface{}{
		"database_busy_timeout":        "5s",
		"database_connect_retry_count": 5,
		"database_connect_retry_delay": "2s",
		"database_debug":               false,
		"database_max_retries":         3,
		"server_host":                  "0.0.0.0",
		"server_port":                  8290,
	}
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	configFilePath := os.Getenv("CONFIG_FILE")
	if configFilePath == "" {
		configFilePath = "./config.yaml"
	}
	if _, err := os.Stat(configFilePath); err == nil {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", configFilePath)
		}
	}

	// Environment variables override file values: SERVER_PORT -> server_port.
	err = k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}
	cfg.Hostname = hostname

	required := []struct {
		envName  string
		fileName string
		value    string
	}{
		{"DATABASE_FILE_PATH", "database_file_path", cfg.DatabaseFilePath},
		{"JWT_SECRET", "jwt_secret", cfg.JWTSecret},
	}
	for _, req := range required {
		if req.value == "" {
			return nil, errors.Errorf("missing required config: set %s or %s in the config file", req.envName, req.fileName)
		}
	}

	return cfg, nil
}
