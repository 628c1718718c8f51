package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the file-backed service configuration. Environment variables
// override file values, so container deployments need no config file at all.
type Config struct {
	Service struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Version     string `yaml:"version"`
	} `yaml:"service"`

	Server struct {
		Port        string `yaml:"port"`
		MetricsAddr string `yaml:"metrics_addr"`
	} `yaml:"server"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
}

// Load reads the YAML file named by CONFIG_FILE (default config.yaml when it
// exists), then applies environment overrides.
func Load() (Config, error) {
	var cfg Config
	cfg.Service.Name = "podcastai"
	cfg.Service.Environment = "development"
	cfg.Server.Port = "8080"

	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	optional := false
	if path == "" {
		path = "config.yaml"
		optional = true
	}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err) && optional:
		// env-only configuration
	default:
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	applyEnv(&cfg)
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "defaultsecret"
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setIfEnv(&cfg.Service.Name, "SERVICE_NAME")
	setIfEnv(&cfg.Service.Environment, "SERVICE_ENVIRONMENT")
	setIfEnv(&cfg.Service.Version, "SERVICE_VERSION")
	setIfEnv(&cfg.Server.Port, "PORT")
	setIfEnv(&cfg.Server.MetricsAddr, "METRICS_ADDR")
	setIfEnv(&cfg.Auth.JWTSecret, "JWT_SECRET_KEY")
}

func setIfEnv(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
