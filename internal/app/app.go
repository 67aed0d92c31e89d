package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dlawede/fantasy-roster/external/auditqueue"
	"github.com/dlawede/fantasy-roster/external/statsfeed"
	"github.com/dlawede/fantasy-roster/internal/config"
	"github.com/dlawede/fantasy-roster/internal/domain/player"
	"github.com/dlawede/fantasy-roster/internal/domain/roster"
	"github.com/dlawede/fantasy-roster/internal/infrastructure/auth"
	"github.com/dlawede/fantasy-roster/internal/infrastructure/repository/memory"
	"github.com/dlawede/fantasy-roster/internal/infrastructure/repository/postgres"
	"github.com/dlawede/fantasy-roster/internal/interfaces/httpapi"
	"github.com/dlawede/fantasy-roster/internal/platform/cache"
	"github.com/dlawede/fantasy-roster/internal/platform/logging"
	"github.com/dlawede/fantasy-roster/internal/platform/resilience"
	"github.com/dlawede/fantasy-roster/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	verifier, err := auth.NewStaticVerifier(cfg.AuthTokens)
	if err != nil {
		return nil, fmt.Errorf("build token verifier: %w", err)
	}

	var (
		userRepo roster.Repository
		source   player.Source
	)
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := connectDB(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		userRepo = postgres.NewUserRepository(db)
		source = postgres.NewPlayerSource(db)
	default:
		userRepo = memory.NewUserRepository()
		source = memory.NewPlayerSource(memory.SeedPlayers())
	}

	if cfg.StatsFeedEnabled {
		source = statsfeed.NewClient(statsfeed.ClientConfig{
			BaseURL:    cfg.StatsFeedBaseURL,
			Token:      cfg.StatsFeedToken,
			Season:     cfg.StatsFeedSeason,
			Timeout:    cfg.StatsFeedTimeout,
			MaxRetries: cfg.StatsFeedMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.StatsFeedCircuitEnabled,
				FailureThreshold: cfg.StatsFeedCircuitFailureCount,
				OpenTimeout:      cfg.StatsFeedCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.StatsFeedCircuitHalfOpenMaxReq,
			},
		})
	}

	var audit roster.AuditSink
	if cfg.AuditQueueEnabled {
		audit = auditqueue.NewPublisher(auditqueue.PublisherConfig{
			BaseURL: cfg.AuditQueueBaseURL,
			Token:   cfg.AuditQueueToken,
			Topic:   cfg.AuditQueueTopic,
			Timeout: cfg.AuditQueueTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.AuditQueueCircuitEnabled,
				FailureThreshold: cfg.AuditQueueCircuitFailureCount,
				OpenTimeout:      cfg.AuditQueueCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.AuditQueueCircuitHalfOpenMaxReq,
			},
		}, logger)
	} else {
		audit = memory.NewAuditRecorder()
	}

	cacheTTL := cfg.CacheTTL
	if !cfg.CacheEnabled {
		// A nanosecond TTL forces a reload on every read.
		cacheTTL = time.Nanosecond
	}
	store := cache.NewStore(cacheTTL)

	catalogSvc := usecase.NewCatalogService(source, store, logger)
	rosterSvc := usecase.NewRosterService(userRepo, catalogSvc, roster.DefaultRules(), audit, logger)
	gameweekSvc := usecase.NewGameweekService(userRepo, logger)

	handler := httpapi.NewHandler(rosterSvc, catalogSvc, gameweekSvc, cfg.RolloverMaxWorkers, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

func connectDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
