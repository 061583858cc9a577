package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cogitia/cogitia/automod"
	"github.com/cogitia/cogitia/automod/auditlog"
	"github.com/cogitia/cogitia/automod/cachestore"
	"github.com/cogitia/cogitia/automod/classifier"
	"github.com/cogitia/cogitia/automod/countstore"
	"github.com/cogitia/cogitia/automod/dbstore"
	"github.com/cogitia/cogitia/automod/policy"
	"github.com/cogitia/cogitia/automod/policystore"
	"github.com/cogitia/cogitia/automod/ratelimit"
	"github.com/cogitia/cogitia/automod/textproc"
	"github.com/cogitia/cogitia/automod/toxicity"
	"github.com/cogitia/cogitia/util/cliutil"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"
	"gorm.io/plugin/opentelemetry/tracing"
)

// registered once per process; request metrics are shared by every router instance
var echoMetrics = echoprometheus.NewMiddleware("cogitia")

type Server struct {
	Engine     *automod.Engine
	adminToken string
	echo       *echo.Echo
	httpd      *http.Server
	logger     *slog.Logger
}

type Config struct {
	Logger           *slog.Logger
	Bind             string
	DatabaseURL      string
	MaxDBConnections int
	EnableDBTracing  bool
	RedisURL         string
	PolicyFileJSON   string
	Classifier       string
	ModelURL         string
	ModelToken       string
	OpenAIKey        string
	OpenAIBaseURL    string
	OpenAIModel      string
	OpenAIRateLimit  float64
	RateLimit        int
	Escalation       automod.EscalationTable
	AdminToken       string
	SlackWebhookURL  string
}

func NewServer(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	cls, err := configClassifier(config)
	if err != nil {
		return nil, err
	}

	var policies policystore.PolicyStore
	var infractions countstore.InfractionStore
	var audit auditlog.AuditLog
	var limiter ratelimit.Limiter

	seed := policystore.NewMemPolicyStore()
	if config.PolicyFileJSON != "" {
		if err := seed.LoadFromFileJSON(config.PolicyFileJSON); err != nil {
			return nil, fmt.Errorf("loading policy file: %w", err)
		}
		logger.Info("loaded guild policies from file", "path", config.PolicyFileJSON, "count", len(seed.Policies))
	}

	if config.DatabaseURL != "" {
		db, err := cliutil.SetupDatabase(config.DatabaseURL, config.MaxDBConnections, logger)
		if err != nil {
			return nil, err
		}
		if config.EnableDBTracing {
			if err := db.Use(tracing.NewPlugin()); err != nil {
				return nil, err
			}
		}
		store, err := dbstore.NewDBStore(db)
		if err != nil {
			return nil, fmt.Errorf("initializing database: %w", err)
		}
		for _, p := range seed.Policies {
			if err := store.PutPolicy(context.Background(), p); err != nil {
				return nil, fmt.Errorf("seeding guild policy %s: %w", p.GuildID, err)
			}
		}
		policies = store
		infractions = store
		audit = store
	} else {
		logger.Warn("no database configured; policies, infractions and audit log are in-memory only")
		policies = seed
		infractions = countstore.NewMemInfractionStore()
		audit = auditlog.NewMemAuditLog()
	}

	if config.RedisURL != "" {
		// TODO: make the policy cache TTL a flag
		cache, err := cachestore.NewRedisCacheStore[policy.GuildPolicy](config.RedisURL, "cogitia/policy/", 5*time.Minute)
		if err != nil {
			return nil, fmt.Errorf("initializing policy cache: %w", err)
		}
		policies = policystore.NewCachedPolicyStore(policies, cache, logger)

		rdsInfractions, err := countstore.NewRedisInfractionStore(config.RedisURL, 0)
		if err != nil {
			return nil, fmt.Errorf("initializing infraction counts: %w", err)
		}
		infractions = rdsInfractions

		limiter, err = ratelimit.NewRedisLimiter(config.RedisURL, config.RateLimit, ratelimit.DefaultWindow, logger)
		if err != nil {
			return nil, fmt.Errorf("initializing rate limiter: %w", err)
		}
	} else {
		if config.DatabaseURL != "" {
			policies = policystore.NewCachedPolicyStore(policies, cachestore.NewMemCacheStore[policy.GuildPolicy](10_000, time.Minute), logger)
		}
		limiter = ratelimit.NewMemLimiter(config.RateLimit, ratelimit.DefaultWindow)
	}

	cfg := automod.DefaultEngineConfig()
	if len(config.Escalation.Rows) > 0 {
		cfg.Escalation = config.Escalation
	}

	var notifier automod.Notifier
	if config.SlackWebhookURL != "" {
		notifier = automod.NewSlackNotifier(config.SlackWebhookURL)
	}

	eng := automod.Engine{
		Logger:      logger,
		Limiter:     limiter,
		Normalizer:  textproc.NewNormalizer(),
		Classifier:  cls,
		Policies:    policies,
		Infractions: infractions,
		Audit:       audit,
		Notifier:    notifier,
		Config:      cfg,
	}

	srv := &Server{
		Engine:     &eng,
		adminToken: config.AdminToken,
		logger:     logger,
	}
	srv.echo = srv.routes()

	// httpd
	var (
		httpTimeout        = 1 * time.Minute
		httpMaxHeaderBytes = 1 * (1024 * 1024)
	)
	srv.httpd = &http.Server{
		Handler:        srv,
		Addr:           config.Bind,
		WriteTimeout:   httpTimeout,
		ReadTimeout:    httpTimeout,
		MaxHeaderBytes: httpMaxHeaderBytes,
	}
	return srv, nil
}

func configClassifier(config Config) (automod.Classifier, error) {
	switch config.Classifier {
	case "", "http":
		if config.ModelURL == "" {
			return nil, fmt.Errorf("http classifier requires a model URL")
		}
		return classifier.NewHTTPClassifier(config.ModelURL, config.ModelToken), nil
	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("openai classifier requires an API key")
		}
		return classifier.NewOpenAIClassifier(config.OpenAIKey, config.OpenAIBaseURL, config.OpenAIModel, config.OpenAIRateLimit), nil
	case "static":
		return classifier.NewStaticClassifier(toxicity.Scores{}), nil
	default:
		return nil, fmt.Errorf("unknown classifier backend: %s", config.Classifier)
	}
}

func (srv *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(srv.logger))
	e.Use(echoMetrics)
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64K"))
	e.HTTPErrorHandler = srv.errorHandler
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		HSTSMaxAge:         31536000, // 365 days
	}))

	e.GET("/_health", srv.HandleHealthCheck)

	api := e.Group("/api/v1")
	api.POST("/analyze", srv.HandleAnalyze)
	api.POST("/moderator/validate", srv.HandleValidate)
	api.GET("/config/guild/:guild", srv.HandleGetGuildConfig)
	api.PUT("/config/guild/:guild", srv.HandleUpdateGuildConfig, srv.adminAuth())
	api.GET("/stats/guild/:guild", srv.HandleGuildStats)
	api.GET("/user/:user/history/:guild", srv.HandleUserHistory)
	return e
}

func (srv *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	srv.echo.ServeHTTP(rw, req)
}

func (srv *Server) RunAPI() error {
	slog.Info("starting server", "bind", srv.httpd.Addr)
	go func() {
		if err := srv.httpd.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				slog.Error("HTTP server shutting down unexpectedly", "err", err)
			}
		}
	}()

	// Wait for a signal to exit.
	slog.Info("registering OS exit signal handler")
	quit := make(chan struct{})
	exitSignals := make(chan os.Signal, 1)
	signal.Notify(exitSignals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-exitSignals
		slog.Info("received OS exit signal", "signal", sig)

		// in-flight decisions finish (and are recorded) before Shutdown returns
		if err := srv.Shutdown(); err != nil {
			slog.Error("HTTP server shutdown error", "err", err)
		}

		close(quit)
	}()
	<-quit
	slog.Info("graceful shutdown complete")
	return nil
}

func (srv *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}

func (srv *Server) Shutdown() error {
	slog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return srv.httpd.Shutdown(ctx)
}
