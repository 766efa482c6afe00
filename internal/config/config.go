package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	CacheMemory    = "memory"
	CacheRedis     = "redis"

	ReusePolicyNone    = "none"
	ReusePolicyCascade = "cascade"
)

type Config struct {
	App struct {
		// development | test | production
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr        string   `yaml:"addr"`
		CORSOrigins []string `yaml:"cors_origins"`
		// IPs o CIDRs cuyos X-Forwarded-For se aceptan; vacío usa solo RemoteAddr
		TrustedProxies []string `yaml:"trusted_proxies"`
		// Timeouts del http.Server
		ReadTimeout     string `yaml:"read_timeout"`
		WriteTimeout    string `yaml:"write_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		// memory | postgres
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns        int    `yaml:"max_conns"`
			MinConns        int    `yaml:"min_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
		// Aplicar migraciones embebidas al arrancar
		AutoMigrate bool `yaml:"auto_migrate"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		Redis struct {
			URL      string `yaml:"url"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	JWT struct {
		Issuer         string `yaml:"issuer"`
		Audience       string `yaml:"audience"`
		PrivateKey     string `yaml:"private_key"`
		PrivateKeyFile string `yaml:"private_key_file"`
		PublicKey      string `yaml:"public_key"`
		PublicKeyFile  string `yaml:"public_key_file"`
	} `yaml:"jwt"`

	// Lifetimes en segundos
	Tokens struct {
		AccessSeconds   int `yaml:"access_seconds"`
		RefreshSeconds  int `yaml:"refresh_seconds"`
		AuthCodeSeconds int `yaml:"auth_code_seconds"`
	} `yaml:"tokens"`

	Auth struct {
		// none | cascade
		ReusePolicy string `yaml:"reuse_policy"`
	} `yaml:"auth"`

	Clients struct {
		File     string `yaml:"file"`
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"clients"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Login   struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
	} `yaml:"rate"`

	Password struct {
		MinLength     int    `yaml:"min_length"`
		BlacklistPath string `yaml:"blacklist_path"`
	} `yaml:"password"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default devuelve la config base, antes de YAML y env.
func Default() *Config {
	var c Config
	c.Rate.Enabled = true
	c.applyDefaults()
	return &c
}

// Load lee el YAML (si path != ""), aplica defaults y pisa con env.
// No valida: el caller decide cuándo llamar Validate.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	c.applyEnvOverrides()
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "development"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "15s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverMemory
	}
	if c.Storage.Postgres.MaxConns == 0 {
		c.Storage.Postgres.MaxConns = 10
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = CacheMemory
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "authcore"
	}
	if c.Tokens.AccessSeconds == 0 {
		c.Tokens.AccessSeconds = 600 // 10m
	}
	if c.Tokens.RefreshSeconds == 0 {
		c.Tokens.RefreshSeconds = 2592000 // 30d
	}
	if c.Tokens.AuthCodeSeconds == 0 {
		c.Tokens.AuthCodeSeconds = 300 // 5m
	}
	if c.Auth.ReusePolicy == "" {
		c.Auth.ReusePolicy = ReusePolicyNone
	}
	if c.Clients.CacheTTL == "" {
		c.Clients.CacheTTL = "30s"
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 5
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if c.Password.MinLength == 0 {
		c.Password.MinLength = 8
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		return splitCSV(s), true
	}
	return nil, false
}

// getEnvPEM acepta PEMs en una sola línea con "\n" escapados.
func getEnvPEM(key string) (string, bool) {
	if s, ok := getEnvStr(key); ok {
		return strings.ReplaceAll(s, `\n`, "\n"), true
	}
	return "", false
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("PORT"); ok {
		c.Server.Addr = ":" + strings.TrimPrefix(strings.TrimSpace(v), ":")
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("CORS_ORIGIN"); ok {
		c.Server.CORSOrigins = v
	}
	if v, ok := getEnvCSV("TRUSTED_PROXIES"); ok {
		c.Server.TrustedProxies = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("DATABASE_URL"); ok {
		c.Storage.DSN = v
		// DATABASE_URL sola implica postgres salvo driver explícito
		if _, explicit := getEnvStr("STORAGE_DRIVER"); !explicit {
			c.Storage.Driver = DriverPostgres
		}
	}
	if v, ok := getEnvInt("POSTGRES_MAX_CONNS"); ok {
		c.Storage.Postgres.MaxConns = v
	}
	if v, ok := getEnvBool("STORAGE_AUTO_MIGRATE"); ok {
		c.Storage.AutoMigrate = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvStr("REDIS_URL"); ok {
		c.Cache.Redis.URL = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	// JWT
	if v, ok := getEnvStr("ISSUER_URL"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvStr("AUDIENCE"); ok {
		c.JWT.Audience = v
	}
	if v, ok := getEnvPEM("JWT_PRIVATE_KEY"); ok {
		c.JWT.PrivateKey = v
	}
	if v, ok := getEnvStr("JWT_PRIVATE_KEY_FILE"); ok {
		c.JWT.PrivateKeyFile = v
	}
	if v, ok := getEnvPEM("JWT_PUBLIC_KEY"); ok {
		c.JWT.PublicKey = v
	}
	if v, ok := getEnvStr("JWT_PUBLIC_KEY_FILE"); ok {
		c.JWT.PublicKeyFile = v
	}

	// TOKENS
	if v, ok := getEnvInt("ACCESS_TOKEN_EXPIRES_IN"); ok {
		c.Tokens.AccessSeconds = v
	}
	if v, ok := getEnvInt("REFRESH_TOKEN_EXPIRES_IN"); ok {
		c.Tokens.RefreshSeconds = v
	}
	if v, ok := getEnvInt("AUTH_CODE_EXPIRES_IN"); ok {
		c.Tokens.AuthCodeSeconds = v
	}

	// AUTH
	if v, ok := getEnvStr("AUTH_REUSE_POLICY"); ok {
		c.Auth.ReusePolicy = strings.ToLower(v)
	}

	// CLIENTS
	if v, ok := getEnvStr("CLIENTS_FILE"); ok {
		c.Clients.File = v
	}
	if v, ok := getEnvStr("CLIENTS_CACHE_TTL"); ok {
		c.Clients.CacheTTL = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_LOGIN_LIMIT"); ok {
		c.Rate.Login.Limit = v
	}
	if v, ok := getEnvStr("RATE_LOGIN_WINDOW"); ok {
		c.Rate.Login.Window = v
	}

	// PASSWORD
	if v, ok := getEnvInt("PASSWORD_MIN_LENGTH"); ok {
		c.Password.MinLength = v
	}
	if v, ok := getEnvStr("PASSWORD_BLACKLIST_PATH"); ok {
		c.Password.BlacklistPath = v
	}

	// LOG
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
}

// IsProduction indica APP_ENV=production (o prod).
func (c *Config) IsProduction() bool {
	return c.App.Env == "production" || c.App.Env == "prod"
}

// PrivateKeyPEM devuelve la clave privada inline o leída de archivo.
func (c *Config) PrivateKeyPEM() ([]byte, error) {
	return readPEM("private key", c.JWT.PrivateKey, c.JWT.PrivateKeyFile)
}

// PublicKeyPEM es opcional: nil si no hay clave pública configurada.
func (c *Config) PublicKeyPEM() ([]byte, error) {
	if c.JWT.PublicKey == "" && c.JWT.PublicKeyFile == "" {
		return nil, nil
	}
	return readPEM("public key", c.JWT.PublicKey, c.JWT.PublicKeyFile)
}

func readPEM(what, inline, file string) ([]byte, error) {
	if strings.TrimSpace(inline) != "" {
		return []byte(inline), nil
	}
	if file == "" {
		return nil, fmt.Errorf("config: %s not configured", what)
	}
	b, err := os.ReadFile(filepath.Clean(file))
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", what, err)
	}
	return b, nil
}

func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.Tokens.AccessSeconds) * time.Second
}
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.Tokens.RefreshSeconds) * time.Second
}
func (c *Config) AuthCodeTTL() time.Duration {
	return time.Duration(c.Tokens.AuthCodeSeconds) * time.Second
}

// LoginWindow ya validada; 1m si no parsea.
func (c *Config) LoginWindow() time.Duration {
	return durOr(c.Rate.Login.Window, time.Minute)
}
func (c *Config) ClientCacheTTL() time.Duration {
	return durOr(c.Clients.CacheTTL, 30*time.Second)
}
func (c *Config) ReadTimeout() time.Duration {
	return durOr(c.Server.ReadTimeout, 10*time.Second)
}
func (c *Config) WriteTimeout() time.Duration {
	return durOr(c.Server.WriteTimeout, 15*time.Second)
}
func (c *Config) ShutdownTimeout() time.Duration {
	return durOr(c.Server.ShutdownTimeout, 10*time.Second)
}
func (c *Config) ConnMaxLifetime() time.Duration {
	return durOr(c.Storage.Postgres.ConnMaxLifetime, 0)
}

func durOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return d
}

// Validate chequea los valores críticos. Devuelve todos los problemas juntos.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWT.Issuer) == "" {
		errs = append(errs, errors.New("jwt.issuer (ISSUER_URL) is required"))
	}
	if strings.TrimSpace(c.JWT.Audience) == "" {
		errs = append(errs, errors.New("jwt.audience (AUDIENCE) is required"))
	}
	if strings.TrimSpace(c.JWT.PrivateKey) == "" && c.JWT.PrivateKeyFile == "" {
		errs = append(errs, errors.New("jwt private key (JWT_PRIVATE_KEY or JWT_PRIVATE_KEY_FILE) is required"))
	}
	if c.Tokens.AccessSeconds <= 0 || c.Tokens.RefreshSeconds <= 0 || c.Tokens.AuthCodeSeconds <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn (DATABASE_URL) is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}
	switch c.Cache.Kind {
	case CacheMemory:
	case CacheRedis:
		if c.Cache.Redis.URL == "" && c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("cache.redis url or addr is required for redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache.kind %q", c.Cache.Kind))
	}
	switch c.Auth.ReusePolicy {
	case ReusePolicyNone, ReusePolicyCascade:
	default:
		errs = append(errs, fmt.Errorf("unknown auth.reuse_policy %q", c.Auth.ReusePolicy))
	}
	if c.Rate.Login.Limit <= 0 {
		errs = append(errs, errors.New("rate.login.limit must be positive"))
	}
	for name, v := range map[string]string{
		"rate.login.window":       c.Rate.Login.Window,
		"clients.cache_ttl":       c.Clients.CacheTTL,
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
	} {
		if d, err := time.ParseDuration(v); err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%s: invalid duration %q", name, v))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
