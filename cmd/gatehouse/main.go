// gatehouse: servicio de autenticación y autorización.
package main

import (
	"context"
	"errors"
	"flag"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/gatehouse/internal/app"
	"github.com/dropDatabas3/gatehouse/internal/auth"
	"github.com/dropDatabas3/gatehouse/internal/cache"
	"github.com/dropDatabas3/gatehouse/internal/config"
	"github.com/dropDatabas3/gatehouse/internal/email"
	api "github.com/dropDatabas3/gatehouse/internal/http"
	"github.com/dropDatabas3/gatehouse/internal/jwt"
	"github.com/dropDatabas3/gatehouse/internal/observability/logger"
	"github.com/dropDatabas3/gatehouse/internal/rate"
	"github.com/dropDatabas3/gatehouse/internal/security/password"
	"github.com/dropDatabas3/gatehouse/internal/session"
	"github.com/dropDatabas3/gatehouse/internal/store/pg"
	rdb "github.com/redis/go-redis/v9"
)

var version = "dev"

func main() {
	cfgPath := flag.String("config", "config.yaml", "ruta al YAML de configuración")
	migrate := flag.Bool("migrate", false, "aplicar migraciones pendientes y seguir")
	flag.Parse()

	// .env es opcional: conveniencia de dev, en prod todo viene del ambiente
	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		// logger todavía no inicializado
		panic("config: " + err.Error())
	}

	logEnv := "dev"
	if cfg.IsProd() {
		logEnv = "prod"
	}
	logger.Init(logger.Config{
		Env:         logEnv,
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Version:     version,
	})
	defer logger.Sync()
	log := logger.Named("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Storage ──
	store, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{
		MaxConns:        int32(cfg.Storage.Postgres.MaxConns),
		MinConns:        int32(cfg.Storage.Postgres.MinConns),
		ConnMaxLifetime: config.Duration(cfg.Storage.Postgres.ConnMaxLifetime, 0),
	})
	if err != nil {
		log.Fatal("postgres no disponible", logger.Err(err))
	}
	defer store.Close()

	if *migrate || cfg.Flags.Migrate {
		if err := store.Migrate(ctx); err != nil {
			log.Fatal("migraciones fallaron", logger.Err(err))
		}
		log.Info("migraciones aplicadas")
	}

	// ── Cache ──
	cacheClient, err := cache.New(cache.Config{
		Kind:       cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: config.Duration(cfg.Cache.Memory.DefaultTTL, 2*time.Minute),
	})
	if err != nil {
		log.Fatal("cache no disponible", logger.Err(err))
	}
	defer cacheClient.Close()

	// ── Core ──
	hasher := password.New(password.Default)
	issuer := jwt.NewIssuer(
		[]byte(cfg.JWT.Secret),
		config.Duration(cfg.JWT.AccessTTL, time.Hour),
		config.Duration(cfg.JWT.RefreshTTL, 7*24*time.Hour),
	)

	var denylist *jwt.Denylist
	if cfg.Denylist.Enabled {
		denylist = jwt.NewDenylist(cacheClient)
	}

	users := pg.NewUserRepo(store)
	sessions := session.NewStore(pg.NewSessionRepo(store), hasher)

	var alerts email.AlertSender
	if cfg.Auth.LoginAlerts && cfg.SMTP.Host != "" {
		s := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
		s.InsecureSkipVerify = cfg.SMTP.InsecureSkipVerify
		alerts = s
	}

	authService := auth.NewService(users, sessions, issuer, hasher, alerts)

	container := &app.Container{
		Cfg:      cfg,
		Cookie:   app.CookieParamsFor(cfg),
		Auth:     authService,
		Users:    users,
		Sessions: sessions,
		Issuer:   issuer,
		Denylist: denylist,
		Cache:    cacheClient,
		Store:    store,
	}

	// ── Rate limiting ──
	var limiters api.Limiters
	if cfg.Rate.Enabled {
		limiters = buildLimiters(cfg)
	}

	// ── HTTP ──
	metricsHandler, err := api.RegisterMetrics(api.MetricsConfig{Pool: store.Pool})
	if err != nil {
		log.Fatal("métricas", logger.Err(err))
	}

	handler := api.NewHandler(container, limiters, metricsHandler)
	srv := api.NewServer(cfg.Server.Addr, handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe()
	})
	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), config.Duration(cfg.Server.ShutdownTimeout, 10*time.Second))
		defer cancel()
		return srv.Shutdown(shCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Error("server terminó con error", logger.Err(err))
		os.Exit(1)
	}
	log.Info("apagado limpio")
}

// buildLimiters arma los limiters por endpoint según el backend de cache.
// Con kind=redis los límites son compartidos entre réplicas; con memory son
// por proceso.
func buildLimiters(cfg *config.Config) api.Limiters {
	newLimiter := func(max int, window time.Duration) rate.Limiter {
		if cfg.Cache.Kind == "redis" {
			client := rdb.NewClient(&rdb.Options{
				Addr: cfg.Cache.Redis.Addr,
				DB:   cfg.Cache.Redis.DB,
			})
			return rate.NewRedisLimiter(client, cfg.Cache.Redis.Prefix+"rl:", max, window)
		}
		return rate.NewMemoryLimiter(max, window)
	}

	return api.Limiters{
		Login:    newLimiter(cfg.Rate.Login.Limit, config.Duration(cfg.Rate.Login.Window, time.Minute)),
		Register: newLimiter(cfg.Rate.Register.Limit, config.Duration(cfg.Rate.Register.Window, 10*time.Minute)),
		Refresh:  newLimiter(cfg.Rate.MaxRequests, config.Duration(cfg.Rate.Window, time.Minute)),
	}
}
