package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jay3332/Turbine/config"
	"github.com/jay3332/Turbine/metrics"
	"github.com/jay3332/Turbine/middleware/identity"
	"github.com/jay3332/Turbine/middleware/logging"
	"github.com/jay3332/Turbine/middleware/ratelimit"
	"github.com/jay3332/Turbine/middleware/ratelimit/domain"
	"github.com/jay3332/Turbine/middleware/ratelimit/infra"
	"github.com/jay3332/Turbine/oauth"
	"github.com/jay3332/Turbine/routes"
	"github.com/jay3332/Turbine/storage"
)

func main() {
	configPath := getenvDefault("CONFIG_PATH", "config.yaml")

	cfg, err := config.Load(configPath)
	if err != nil {
		panic(err)
	}

	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		level.SetLevel(zapcore.InfoLevel)
	}
	logger := newLogger(level)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = rdb.Close() }()

	pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
	_, err = rdb.Ping(pingCtx).Result()
	pingCancel()
	if err != nil {
		logger.Fatal("redis ping failed", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}

	store := storage.NewStore(rdb)
	collector := metrics.NewCollector()
	cache := identity.NewCache(store, identity.WithOnResult(collector.RecordIdentity))

	limits := newRouteStores(cfg.Limits)
	for _, s := range limits.all() {
		s.StartJanitor(ctx)
	}

	var statsStore domain.StatsStore
	if cfg.Stats.Enabled {
		statsStore = infra.NewRedisStatsStore(rdb,
			infra.WithStatsPrefix(cfg.Stats.Prefix),
			infra.WithStatsTTL(cfg.Stats.TTL.Std()),
			infra.WithStatsTrackKeys(cfg.Stats.TrackKeys),
		)
	}

	var github *oauth.Client
	if cfg.Github.ClientID != "" && cfg.Github.ClientSecret != "" {
		github = oauth.NewClient(cfg.Github.ClientID, cfg.Github.ClientSecret)
	}

	api := routes.New(routes.Config{
		Store:            store,
		Identity:         cache,
		Github:           github,
		Logger:           logger,
		Limits:           limits.routeLimits(),
		Stats:            statsStore,
		OnDecision:       collector.RecordAdmission,
		RateLimitHeaders: true,
	})

	root := http.NewServeMux()
	root.Handle("/api", api)
	root.Handle("/api/", api)
	root.Handle("/metrics", promhttp.Handler())

	h := http.Handler(root)
	h = ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
		Max:            cfg.Concurrency.Max,
		AcquireTimeout: cfg.Concurrency.AcquireTimeout.Std(),
	})(h)
	h = logging.Access(logger)(h)
	h = logging.RequestID()(h)

	// reload a quente: cotas novas valem para os próximos requests, cooldowns
	// já armados continuam correndo
	watcher := config.NewWatcher(configPath, logger, func(next config.Config) {
		limits.apply(next.Limits)
		if err := level.UnmarshalText([]byte(next.Logging.Level)); err != nil {
			logger.Warn("invalid log level in reloaded config", zap.String("level", next.Logging.Level))
		}
	})
	go func() {
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("config watcher stopped", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server listening",
		zap.String("addr", cfg.Server.ListenAddr),
		zap.String("redis", cfg.Redis.Addr),
		zap.Bool("stats", cfg.Stats.Enabled),
		zap.Bool("github_login", github != nil),
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

// routeStores agrupa os bucket stores por rota para o reload de cotas.
type routeStores struct {
	createUser  *infra.Store
	login       *infra.Store
	getUser     *infra.Store
	getPaste    *infra.Store
	createPaste *infra.Store
	starPaste   *infra.Store
}

func newRouteStores(l config.LimitsConfig) *routeStores {
	mk := func(q config.Quota) *infra.Store {
		return infra.NewStore(q.Rate, q.Per.Std())
	}
	return &routeStores{
		createUser:  mk(l.CreateUser),
		login:       mk(l.Login),
		getUser:     mk(l.GetUser),
		getPaste:    mk(l.GetPaste),
		createPaste: mk(l.CreatePaste),
		starPaste:   mk(l.StarPaste),
	}
}

func (s *routeStores) all() []*infra.Store {
	return []*infra.Store{s.createUser, s.login, s.getUser, s.getPaste, s.createPaste, s.starPaste}
}

func (s *routeStores) routeLimits() routes.Limits {
	return routes.Limits{
		CreateUser:  s.createUser,
		Login:       s.login,
		GetUser:     s.getUser,
		GetPaste:    s.getPaste,
		CreatePaste: s.createPaste,
		StarPaste:   s.starPaste,
	}
}

func (s *routeStores) apply(l config.LimitsConfig) {
	s.createUser.SetLimit(l.CreateUser.Rate, l.CreateUser.Per.Std())
	s.login.SetLimit(l.Login.Rate, l.Login.Per.Std())
	s.getUser.SetLimit(l.GetUser.Rate, l.GetUser.Per.Std())
	s.getPaste.SetLimit(l.GetPaste.Rate, l.GetPaste.Per.Std())
	s.createPaste.SetLimit(l.CreatePaste.Rate, l.CreatePaste.Per.Std())
	s.starPaste.SetLimit(l.StarPaste.Rate, l.StarPaste.Per.Std())
}

func newLogger(level zap.AtomicLevel) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.Lock(os.Stdout), level)
	return zap.New(core)
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
