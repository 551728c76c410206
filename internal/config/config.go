// Package config carga la configuración YAML del servicio con defaults sanos
// y overrides por variables de entorno.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Name string `yaml:"name"`
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr            string `yaml:"addr"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns        int    `yaml:"max_conns"`
			MinConns        int    `yaml:"min_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		// Secret admite override por GATEHOUSE_JWT_SECRET; nunca lo
		// comiteamos en el YAML de prod.
		Secret     string `yaml:"secret"`
		AccessTTL  string `yaml:"access_ttl"`
		RefreshTTL string `yaml:"refresh_ttl"`
	} `yaml:"jwt"`

	Auth struct {
		Cookie struct {
			Name   string `yaml:"name"`
			Domain string `yaml:"domain"`
		} `yaml:"cookie"`
		LoginAlerts bool `yaml:"login_alerts"`
	} `yaml:"auth"`

	Denylist struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"denylist"`

	Rate struct {
		Enabled     bool   `yaml:"enabled"`
		Window      string `yaml:"window"`
		MaxRequests int    `yaml:"max_requests"`

		Login struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
		Register struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"register"`
	} `yaml:"rate"`

	Flags struct {
		Migrate bool `yaml:"migrate"`
	} `yaml:"flags"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // sólo dev
	} `yaml:"smtp"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// sane defaults
	if c.App.Name == "" {
		c.App.Name = "gatehouse"
	}
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "1h"
	}
	if c.JWT.RefreshTTL == "" {
		c.JWT.RefreshTTL = "168h" // 7d
	}
	if c.Auth.Cookie.Name == "" {
		c.Auth.Cookie.Name = "refresh_token"
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 60
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if c.Rate.Register.Limit == 0 {
		c.Rate.Register.Limit = 5
	}
	if c.Rate.Register.Window == "" {
		c.Rate.Register.Window = "10m"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	// validate string durations
	for _, d := range []string{
		c.Server.ShutdownTimeout,
		c.Cache.Memory.DefaultTTL,
		c.JWT.AccessTTL,
		c.JWT.RefreshTTL,
		c.Rate.Window,
		c.Rate.Login.Window,
		c.Rate.Register.Window,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return nil, err
		}
	}
	if d := c.Storage.Postgres.ConnMaxLifetime; d != "" {
		if _, err := time.ParseDuration(d); err != nil {
			return nil, err
		}
	}

	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// applyEnvOverrides pisa los valores sensibles u operativos con env vars,
// para que el YAML pueda ir al repo sin secretos.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("GATEHOUSE_JWT_SECRET"); ok {
		c.JWT.Secret = v
	}
	if v, ok := getEnvStr("DATABASE_URL"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("GATEHOUSE_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("GATEHOUSE_ENV"); ok {
		c.App.Env = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvBool("GATEHOUSE_MIGRATE"); ok {
		c.Flags.Migrate = v
	}
}

// Validate corta el arranque ante configuración inutilizable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("config: jwt.secret es obligatorio (o GATEHOUSE_JWT_SECRET)")
	}
	if c.IsProd() && len(c.JWT.Secret) < 32 {
		return errors.New("config: jwt.secret demasiado corto para prod (mínimo 32 bytes)")
	}
	if strings.TrimSpace(c.Storage.DSN) == "" {
		return errors.New("config: storage.dsn es obligatorio (o DATABASE_URL)")
	}
	if c.Cache.Kind == "redis" && strings.TrimSpace(c.Cache.Redis.Addr) == "" {
		return errors.New("config: cache.redis.addr es obligatorio con kind=redis")
	}
	return nil
}

// IsProd agrupa los ambientes "production-like": controlan cookie Secure y
// SameSite (§ transporte) y apagan conveniencias de dev.
func (c *Config) IsProd() bool {
	switch strings.ToLower(strings.TrimSpace(c.App.Env)) {
	case "prod", "production", "staging":
		return true
	}
	return false
}

// Duration parsea una duración ya validada en Load. Ante un valor vacío o
// corrupto (config construida a mano en tests) devuelve def.
func Duration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvBool(key string) (bool, bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b, true
		}
	}
	return false, false
}
