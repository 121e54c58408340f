package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Display   DisplayConfig   `yaml:"display"`
	Admin     AdminConfig     `yaml:"admin"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	LDAP      LDAPConfig      `yaml:"ldap"`
}

type ServerConfig struct {
	Host                   string   `yaml:"host"`
	Port                   string   `yaml:"port"`
	Mode                   string   `yaml:"mode"` // debug, release, test
	ShutdownTimeoutSeconds int      `yaml:"shutdown_timeout_seconds"`
	CORSOrigins            []string `yaml:"cors_origins"` // empty allows any origin
}

type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // sqlite, mysql, postgres
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"` // silent, error, warn, info
}

type JWTConfig struct {
	Secret            string `yaml:"secret"`
	ExpireHour        int    `yaml:"expire_hour"`
	RefreshExpireHour int    `yaml:"refresh_expire_hour"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DisplayConfig controls how timestamps are rendered in API views.
// Storage is always UTC.
type DisplayConfig struct {
	Timezone string `yaml:"timezone"`
}

// AdminConfig is the account created on first start when no admin exists.
type AdminConfig struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// LDAPConfig enables directory sign-in for reviewers. UserFilter receives the
// escaped login email.
type LDAPConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	BaseDN       string `yaml:"base_dn"`
	BindDN       string `yaml:"bind_dn"`
	BindPassword string `yaml:"bind_password"`
	UserFilter   string `yaml:"user_filter"`
	UseSSL       bool   `yaml:"use_ssl"`
}

type RateLimitConfig struct {
	LoginRPS   float64 `yaml:"login_rps"`
	LoginBurst int     `yaml:"login_burst"`
}

var GlobalConfig *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.overrideFromEnv()
	GlobalConfig = cfg
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                   "0.0.0.0",
			Port:                   "8080",
			Mode:                   "debug",
			ShutdownTimeoutSeconds: 10,
		},
		Database: DatabaseConfig{
			Driver:                 "sqlite",
			DSN:                    "surveydesk.db",
			MaxOpenConns:           10,
			MaxIdleConns:           5,
			ConnMaxLifetimeMinutes: 60,
			LogLevel:               "warn",
		},
		JWT: JWTConfig{
			Secret:            "surveydesk-secret-key-change-in-production",
			ExpireHour:        24,
			RefreshExpireHour: 720,
		},
		Log: LogConfig{
			Level: "info",
		},
		Display: DisplayConfig{
			Timezone: "Asia/Shanghai",
		},
		Admin: AdminConfig{
			Name:     "Administrator",
			Email:    "admin@example.com",
			Password: "admin",
		},
		RateLimit: RateLimitConfig{
			LoginRPS:   1,
			LoginBurst: 5,
		},
		LDAP: LDAPConfig{
			Enabled:    false,
			Port:       389,
			UserFilter: "(mail=%s)",
		},
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if n, err := strconv.Atoi(os.Getenv("DB_MAX_OPEN_CONNS")); err == nil && n > 0 {
		c.Database.MaxOpenConns = n
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if tz := os.Getenv("DISPLAY_TIMEZONE"); tz != "" {
		c.Display.Timezone = tz
	}
	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		c.Admin.Email = email
	}
	if password := os.Getenv("ADMIN_PASSWORD"); password != "" {
		c.Admin.Password = password
	}
	if enabled, err := strconv.ParseBool(os.Getenv("LDAP_ENABLED")); err == nil {
		c.LDAP.Enabled = enabled
	}
	if host := os.Getenv("LDAP_HOST"); host != "" {
		c.LDAP.Host = host
	}
	if bindPassword := os.Getenv("LDAP_BIND_PASSWORD"); bindPassword != "" {
		c.LDAP.BindPassword = bindPassword
	}
}

// Location resolves the display timezone. Hosts without tzdata fall back to a
// fixed UTC+8 zone when the default Asia/Shanghai is configured.
func (d DisplayConfig) Location() *time.Location {
	if d.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err == nil {
		return loc
	}
	if d.Timezone == "Asia/Shanghai" {
		return time.FixedZone("CST", 8*60*60)
	}
	return time.UTC
}

// ShutdownTimeout returns the graceful shutdown budget for the HTTP server.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	if s.ShutdownTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
