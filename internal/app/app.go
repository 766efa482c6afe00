// Package app construye el grafo de dependencias del servicio a partir de la
// config: stores, cache, limiter, claves, motor de tokens y router HTTP.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dropDatabas3/authcore/internal/auth"
	"github.com/dropDatabas3/authcore/internal/cache"
	"github.com/dropDatabas3/authcore/internal/client"
	"github.com/dropDatabas3/authcore/internal/config"
	"github.com/dropDatabas3/authcore/internal/domain/repository"
	authctrl "github.com/dropDatabas3/authcore/internal/http/controllers/auth"
	"github.com/dropDatabas3/authcore/internal/http/controllers/health"
	"github.com/dropDatabas3/authcore/internal/http/controllers/oidc"
	mw "github.com/dropDatabas3/authcore/internal/http/middlewares"
	"github.com/dropDatabas3/authcore/internal/http/router"
	jwtx "github.com/dropDatabas3/authcore/internal/jwt"
	"github.com/dropDatabas3/authcore/internal/metrics"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/rate"
	"github.com/dropDatabas3/authcore/internal/security/password"
	"github.com/dropDatabas3/authcore/internal/store/authcode"
	"github.com/dropDatabas3/authcore/internal/store/memory"
	"github.com/dropDatabas3/authcore/internal/store/pg"
	migrations "github.com/dropDatabas3/authcore/migrations/postgres"
)

// Version se fija en build con -ldflags "-X .../internal/app.Version=...".
var Version = "dev"

// Stores son los repositorios que usa el motor.
type Stores struct {
	Users   repository.UserRepository
	Clients repository.ClientRepository
	Refresh repository.RefreshTokenRepository

	// Upsert de clients (file sync, CLI); nil si el backend no lo soporta
	ClientWriter repository.ClientWriter

	// PG es nil con driver memory
	PG *pg.Store
}

// App es el servicio armado. Close libera conexiones en orden inverso.
type App struct {
	Config   *config.Config
	Handler  http.Handler
	Service  *auth.Service
	Codec    *jwtx.Codec
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	Stores   Stores
	Cache    cache.Client

	closers []func()
}

// New valida la config y construye el App. Si algo falla, cierra lo que ya
// se había abierto.
func New(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.L().With(logger.Component("app"))

	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	codec, err := NewCodec(cfg)
	if err != nil {
		return nil, err
	}
	a.Codec = codec
	log.Info("signing key loaded", logger.KeyID(codec.KeyID()))

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if a.Metrics, err = metrics.New(a.Registry); err != nil {
		return nil, err
	}

	if a.Stores, err = a.openStores(ctx, cfg); err != nil {
		return nil, err
	}
	if err := a.syncClientsFile(ctx, cfg); err != nil {
		return nil, err
	}

	rdb, err := a.openRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		a.Cache = cache.NewRedisWithClient(rdb, cfg.Cache.Redis.Prefix)
	} else {
		a.Cache = cache.NewMemory(cfg.Cache.Redis.Prefix)
	}
	a.closers = append(a.closers, func() { _ = a.Cache.Close() })

	policy, err := passwordPolicy(cfg)
	if err != nil {
		return nil, err
	}

	a.Service, err = auth.NewService(auth.Deps{
		Users:          a.Stores.Users,
		Clients:        a.Stores.Clients,
		Codes:          authcode.New(a.Cache, cfg.AuthCodeTTL()),
		Refresh:        a.Stores.Refresh,
		Codec:          codec,
		Metrics:        a.Metrics,
		CodeTTL:        cfg.AuthCodeTTL(),
		AccessTTL:      cfg.AccessTTL(),
		RefreshTTL:     cfg.RefreshTTL(),
		ReusePolicy:    cfg.Auth.ReusePolicy,
		PasswordPolicy: policy,
	})
	if err != nil {
		return nil, err
	}

	proxies, err := mw.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	a.Handler = router.New(router.Deps{
		Auth:           authctrl.NewControllers(a.Service),
		Health:         health.NewHealthController(Version, a.checks()),
		JWKS:           oidc.NewJWKSController(codec),
		Codec:          codec,
		Metrics:        a.Metrics,
		LoginLimiter:   loginLimiter(cfg, rdb),
		CORSOrigins:    cfg.Server.CORSOrigins,
		TrustedProxies: proxies,
	})

	log.Info("app ready",
		logger.String("storage", cfg.Storage.Driver),
		logger.String("cache", cfg.Cache.Kind),
		logger.String("reuse_policy", cfg.Auth.ReusePolicy),
		logger.Int("cors_origins", len(cfg.Server.CORSOrigins)),
		logger.Int("trusted_proxies", len(cfg.Server.TrustedProxies)),
	)
	return a, nil
}

// Close es idempotente.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// NewCodec carga el par de claves de la config y arma el codec.
func NewCodec(cfg *config.Config) (*jwtx.Codec, error) {
	priv, err := cfg.PrivateKeyPEM()
	if err != nil {
		return nil, err
	}
	pub, err := cfg.PublicKeyPEM()
	if err != nil {
		return nil, err
	}
	km, err := jwtx.LoadKeyMaterial(priv, pub)
	if err != nil {
		return nil, fmt.Errorf("app: load signing key: %w", err)
	}
	return jwtx.NewCodec(jwtx.CodecConfig{
		Keys:      km,
		Issuer:    cfg.JWT.Issuer,
		Audience:  cfg.JWT.Audience,
		AccessTTL: cfg.AccessTTL(),
	})
}

// OpenPostgres conecta y, si AutoMigrate, aplica las migraciones embebidas.
func OpenPostgres(ctx context.Context, cfg *config.Config, migrate bool) (*pg.Store, error) {
	s, err := pg.Connect(ctx, pg.Config{
		DSN:             cfg.Storage.DSN,
		MaxConns:        cfg.Storage.Postgres.MaxConns,
		MinConns:        cfg.Storage.Postgres.MinConns,
		MaxConnLifetime: cfg.ConnMaxLifetime(),
	})
	if err != nil {
		return nil, err
	}
	if migrate {
		res, err := pg.NewMigrator(migrations.FS, migrations.Dir).Run(ctx, s.Pool())
		if err != nil {
			s.Close()
			return nil, err
		}
		logger.L().Info("migrations applied",
			logger.Component("app"),
			zap.Ints("applied", res.Applied),
			zap.Ints("skipped", res.Skipped),
		)
	}
	return s, nil
}

func (a *App) openStores(ctx context.Context, cfg *config.Config) (Stores, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		s, err := OpenPostgres(ctx, cfg, cfg.Storage.AutoMigrate)
		if err != nil {
			return Stores{}, err
		}
		a.closers = append(a.closers, s.Close)
		if err := metrics.RegisterPool(a.Registry, s.Pool); err != nil {
			return Stores{}, err
		}
		clients := client.NewCached(s.Clients(), cfg.ClientCacheTTL())
		return Stores{
			Users:        s.Users(),
			Clients:      clients,
			Refresh:      s.RefreshTokens(),
			ClientWriter: clients,
			PG:           s,
		}, nil
	default:
		clients := memory.NewClients()
		return Stores{
			Users:        memory.NewUsers(),
			Clients:      clients,
			Refresh:      memory.NewRefreshTokens(),
			ClientWriter: clients,
		}, nil
	}
}

// syncClientsFile carga el YAML de clients (si hay) en el store.
func (a *App) syncClientsFile(ctx context.Context, cfg *config.Config) error {
	if cfg.Clients.File == "" {
		return nil
	}
	list, err := client.LoadFile(cfg.Clients.File, ClientDefaults(cfg))
	if err != nil {
		return err
	}
	for _, c := range list {
		if err := a.Stores.ClientWriter.Upsert(ctx, c); err != nil {
			return fmt.Errorf("app: upsert client %s: %w", c.ID, err)
		}
	}
	logger.L().Info("clients loaded", logger.Component("app"), logger.Count(len(list)))
	return nil
}

// ClientDefaults son los TTLs globales para clients que no fijan los suyos.
func ClientDefaults(cfg *config.Config) client.Defaults {
	return client.Defaults{
		AccessTokenTTLSeconds:  cfg.Tokens.AccessSeconds,
		RefreshTokenTTLSeconds: cfg.Tokens.RefreshSeconds,
	}
}

func (a *App) openRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.Cache.Kind != config.CacheRedis {
		return nil, nil
	}
	rdb, err := cache.NewRedisClient(ctx, cache.Config{
		Driver:   config.CacheRedis,
		URL:      cfg.Cache.Redis.URL,
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	return rdb, nil
}

func (a *App) checks() map[string]health.Check {
	checks := map[string]health.Check{"cache": a.Cache.Ping}
	if a.Stores.PG != nil {
		checks["postgres"] = a.Stores.PG.Ping
	}
	return checks
}

// loginLimiter devuelve nil si el rate limit está deshabilitado. Con Redis el
// contador es compartido entre instancias.
func loginLimiter(cfg *config.Config, rdb *redis.Client) rate.Limiter {
	if !cfg.Rate.Enabled || cfg.Rate.Login.Limit <= 0 {
		return nil
	}
	if rdb != nil {
		return rate.NewRedisLimiter(rdb, cfg.Cache.Redis.Prefix+":rl:login:", cfg.Rate.Login.Limit, cfg.LoginWindow())
	}
	return rate.NewMemoryLimiter(cfg.Rate.Login.Limit, cfg.LoginWindow())
}

func passwordPolicy(cfg *config.Config) (password.Policy, error) {
	bl, err := password.LoadBlacklist(cfg.Password.BlacklistPath)
	if err != nil {
		return password.Policy{}, fmt.Errorf("app: load password blacklist: %w", err)
	}
	p := password.DefaultPolicy
	if cfg.Password.MinLength > 0 {
		p.MinLength = cfg.Password.MinLength
	}
	p.Blacklist = bl
	return p, nil
}
