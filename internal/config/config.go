package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DevSecret is the signing secret used when nothing else is configured.
// It is rejected in production.
const DevSecret = "dev-secret-key-change"

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Server struct {
		Host        string `json:"host"`
		Port        int    `json:"port"`
		Env         string `json:"env"`
		JWTSecret   string `json:"jwtSecret"`
		FrontendURL string `json:"frontendUrl"`
	} `json:"server"`
	Database struct {
		Driver  string `json:"driver"`
		DataDir string `json:"dataDir"`
		// DSNTemplate is used with the postgres driver; "%s" is replaced by the store name.
		DSNTemplate string `json:"dsnTemplate"`
	} `json:"database"`
	Redis struct {
		Addr     string `json:"addr"`
		Password string `json:"password"`
		DB       int    `json:"db"`
	} `json:"redis"`
	Admin struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"admin"`
	Log struct {
		Level string `json:"level"`
	} `json:"log"`
}

// Default returns the development configuration.
func Default() *Config {
	c := &Config{}
	c.Server.Port = 3000
	c.Server.Env = EnvDevelopment
	c.Server.JWTSecret = DevSecret
	c.Server.FrontendURL = "http://localhost:3000"
	c.Database.Driver = DriverSQLite
	c.Database.DataDir = "data"
	c.Admin.Username = "Voltage"
	c.Admin.Email = "admin@localhost"
	c.Admin.Password = "admin123"
	c.Log.Level = "info"
	return c
}

// LoadConfig builds the configuration once at startup: defaults, then the JSON
// file at path (skipped when path is empty), then .env, then the environment.
// The result is meant to be treated as read-only and passed by pointer.
func LoadConfig(path string) (*Config, error) {
	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := json.Unmarshal(raw, c); err != nil {
			return nil, fmt.Errorf("invalid config format: %w", err)
		}
	}
	// .env is optional
	_ = godotenv.Load()
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnv("HOST", c.Server.Host)
	c.Server.Port = getEnvAsInt("PORT", c.Server.Port)
	c.Server.Env = getEnv("NODE_ENV", getEnv("APP_ENV", c.Server.Env))
	c.Server.JWTSecret = getEnv("JWT_SECRET", c.Server.JWTSecret)
	c.Server.FrontendURL = getEnv("FRONTEND_URL", c.Server.FrontendURL)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.DataDir = getEnv("DATA_DIR", c.Database.DataDir)
	c.Database.DSNTemplate = getEnv("POSTGRES_DSN_TEMPLATE", c.Database.DSNTemplate)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvAsInt("REDIS_DB", c.Redis.DB)

	c.Admin.Username = getEnv("ADMIN_USERNAME", c.Admin.Username)
	c.Admin.Email = getEnv("ADMIN_EMAIL", c.Admin.Email)
	c.Admin.Password = getEnv("ADMIN_PASSWORD", c.Admin.Password)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Server.JWTSecret == "" {
		return errors.New("jwtSecret must be set in config")
	}
	if c.IsProduction() && c.Server.JWTSecret == DevSecret {
		return errors.New("JWT_SECRET must be changed in production")
	}
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.DataDir == "" {
			return errors.New("database dataDir must be set for sqlite")
		}
	case DriverPostgres:
		if !strings.Contains(c.Database.DSNTemplate, "%s") {
			return errors.New("database dsnTemplate must contain %s for postgres")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == EnvProduction
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
