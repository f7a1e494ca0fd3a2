// Command twofa serves the second-factor login API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/twofa/modules/twofactor"
	"github.com/dmitrymomot/twofa/pkg/clientip"
	"github.com/dmitrymomot/twofa/pkg/config"
	"github.com/dmitrymomot/twofa/pkg/email"
	"github.com/dmitrymomot/twofa/pkg/httpserver"
	"github.com/dmitrymomot/twofa/pkg/logger"
	"github.com/dmitrymomot/twofa/pkg/mongo"
	"github.com/dmitrymomot/twofa/pkg/pg"
	"github.com/dmitrymomot/twofa/pkg/ratelimiter"
	"github.com/dmitrymomot/twofa/pkg/redis"
	"github.com/dmitrymomot/twofa/pkg/secondfactor"
	"github.com/dmitrymomot/twofa/pkg/totp"
)

var errUnknownBackend = errors.New("unknown backend")

type redisConn struct {
	client *goredis.Client
	prefix string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		stop()
		slog.Error("twofa stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		app      appConfig
		flowCfg  secondfactor.Config
		totpCfg  totp.Config
		httpCfg  httpserver.Config
		emailCfg email.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&app) },
		func() error { return config.Load(&flowCfg) },
		func() error { return config.Load(&totpCfg) },
		func() error { return config.Load(&httpCfg) },
		func() error { return config.Load(&emailCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	opts := []logger.Option{
		logger.WithEnvironment(app.Env, app.Service),
		logger.WithContextValue("request_id", middleware.RequestIDKey),
		logger.WithContextExtractors(clientip.LogExtractor),
	}
	if app.LogLevel != "" {
		opts = append(opts, logger.WithLevelName(app.LogLevel))
	}
	log := logger.New(opts...)
	logger.SetAsDefault(log)

	b, err := openBackends(ctx, app, flowCfg, log)
	if err != nil {
		return err
	}
	defer b.close()

	store := b.options
	if totpCfg.EncryptionKey != "" {
		key, err := totp.GetEncryptionKey(totpCfg)
		if err != nil {
			return err
		}
		if store, err = secondfactor.NewEncryptedStore(store, key); err != nil {
			return err
		}
		log.InfoContext(ctx, "secret encryption enabled")
	}

	sender, err := newSender(emailCfg, log)
	if err != nil {
		return err
	}
	notifier := email.NewRecoveryNotifier(sender, email.NewMapDirectory(app.RecoveryAddresses),
		email.WithSiteName(flowCfg.SiteName),
		email.WithSubject(app.RecoverySubject),
	)

	accountLimiter, err := ratelimiter.NewBucket(b.limits, ratelimiter.Config{
		Capacity: app.AccountBurst, RefillRate: 1, RefillInterval: app.AccountRefill,
	})
	if err != nil {
		return err
	}
	ipLimiter, err := ratelimiter.NewBucket(b.limits, ratelimiter.Config{
		Capacity: app.IPBurst, RefillRate: 1, RefillInterval: app.IPRefill,
	})
	if err != nil {
		return err
	}

	providerOpts := append(flowCfg.Options(), secondfactor.WithLogger(log))
	svc := twofactor.NewService(
		secondfactor.NewProvider(store, providerOpts...),
		b.attempts,
		twofactor.WithRecovery(secondfactor.NewRecovery(store, notifier, secondfactor.WithRecoveryLogger(log))),
		twofactor.WithQRSize(flowCfg.QRSize),
		twofactor.WithThrottle(accountLimiter),
		twofactor.WithLogger(log),
	)

	ips := clientip.New(app.TrustedIPHeaders...)
	r := chi.NewRouter()
	r.Use(middleware.RequestID, ips.Middleware, middleware.Recoverer)
	r.Mount("/health", httpserver.HealthRoutes(log, httpCfg.CheckTimeout, b.checks...))
	r.Route(app.MountPath, func(r chi.Router) {
		r.Use(ratelimiter.Middleware(ipLimiter, ips.KeyFunc()))
		r.Mount("/", svc.Handle())
	})

	if sweep := b.sweep; sweep != nil {
		go sweepAttempts(ctx, log, sweep, app.SweepInterval)
	}

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

type backends struct {
	options  secondfactor.OptionStore
	attempts secondfactor.AttemptStore
	limits   ratelimiter.Store
	checks   []httpserver.Check
	sweep    func() int
	closers  []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackends connects the option store selected by TWOFA_STORE and the
// attempt store selected by TWOFA_ATTEMPT_STORE. Redis is dialed once even
// when it serves both.
func openBackends(ctx context.Context, app appConfig, flowCfg secondfactor.Config, log *slog.Logger) (*backends, error) {
	b := &backends{}
	var redisClient *redisConn

	dialRedis := func() (*redisConn, error) {
		if redisClient != nil {
			return redisClient, nil
		}
		var cfg redis.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		client, err := redis.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = client.Close() })
		b.checks = append(b.checks, httpserver.Check{Name: "redis", Ping: redis.Healthcheck(client)})
		redisClient = &redisConn{client: client, prefix: cfg.KeyPrefix}
		return redisClient, nil
	}

	switch app.Store {
	case storeMemory:
		log.WarnContext(ctx, "using in-memory option store, secrets are lost on restart")
		b.options = secondfactor.NewMemoryStore()

	case storeRedis:
		conn, err := dialRedis()
		if err != nil {
			b.close()
			return nil, err
		}
		b.options = secondfactor.NewStagedStore(redis.NewOptionBackend(conn.client, conn.prefix))

	case storePostgres:
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
			b.close()
			return nil, err
		}
		b.checks = append(b.checks, httpserver.Check{Name: "postgres", Ping: pg.Healthcheck(pool)})
		b.options = secondfactor.NewStagedStore(pg.NewOptionBackend(pool))

	case storeMongo:
		var cfg mongo.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		db, err := mongo.NewWithDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = db.Client().Disconnect(context.Background()) })
		b.checks = append(b.checks, httpserver.Check{Name: "mongo", Ping: mongo.Healthcheck(db.Client())})
		b.options = secondfactor.NewStagedStore(mongo.NewOptionBackend(db, cfg.Collection))

	default:
		return nil, fmt.Errorf("%w: TWOFA_STORE=%q", errUnknownBackend, app.Store)
	}

	switch app.AttemptStore {
	case storeMemory:
		mem := secondfactor.NewMemoryAttemptStore(app.AttemptCapacity, flowCfg.AttemptTTL)
		b.attempts, b.sweep = mem, mem.Sweep
	case storeRedis:
		conn, err := dialRedis()
		if err != nil {
			b.close()
			return nil, err
		}
		b.attempts = redis.NewAttemptStore(conn.client, conn.prefix, flowCfg.AttemptTTL)
	default:
		b.close()
		return nil, fmt.Errorf("%w: TWOFA_ATTEMPT_STORE=%q", errUnknownBackend, app.AttemptStore)
	}

	switch app.RateLimitStore {
	case storeMemory:
		b.limits = ratelimiter.NewMemoryStore(app.AttemptCapacity, time.Hour)
	case storeRedis:
		conn, err := dialRedis()
		if err != nil {
			b.close()
			return nil, err
		}
		b.limits = redis.NewRateLimitStore(conn.client, conn.prefix)
	default:
		b.close()
		return nil, fmt.Errorf("%w: TWOFA_RATELIMIT_STORE=%q", errUnknownBackend, app.RateLimitStore)
	}

	log.InfoContext(ctx, "backends ready",
		slog.String("store", app.Store),
		slog.String("attempt_store", app.AttemptStore),
		slog.String("ratelimit_store", app.RateLimitStore),
	)
	return b, nil
}

func newSender(cfg email.Config, log *slog.Logger) (email.EmailSender, error) {
	if cfg.UsePostmark() {
		return email.NewPostmarkClient(cfg)
	}
	log.Warn("postmark not configured, recovery mail is written to disk", slog.String("dir", cfg.DevDir))
	return email.NewDevSender(cfg.DevDir), nil
}

func sweepAttempts(ctx context.Context, log *slog.Logger, sweep func() int, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			if !errors.Is(ctx.Err(), context.Canceled) {
				log.WarnContext(ctx, "attempt sweeper stopped", logger.Error(ctx.Err()))
			}
			return
		case <-t.C:
			if n := sweep(); n > 0 {
				log.DebugContext(ctx, "expired login attempts dropped", slog.Int("count", n))
			}
		}
	}
}
