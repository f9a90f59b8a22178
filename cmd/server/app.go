package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/kgo"

	consentHandler "naijacare/internal/consent/handler"
	consentService "naijacare/internal/consent/service"
	consentStore "naijacare/internal/consent/store"
	"naijacare/internal/platform/config"
	"naijacare/internal/platform/metrics"
	"naijacare/internal/platform/middleware"
	"naijacare/internal/platform/redis"
	"naijacare/internal/routing"
	"naijacare/internal/routing/adapters"
	routingHandler "naijacare/internal/routing/handler"
	routingMetrics "naijacare/internal/routing/metrics"
	routingService "naijacare/internal/routing/service"
	audit "naijacare/pkg/platform/audit"
	kafkasink "naijacare/pkg/platform/audit/sink/kafka"
	auditmemory "naijacare/pkg/platform/audit/store/memory"
	auditpostgres "naijacare/pkg/platform/audit/store/postgres"
	"naijacare/pkg/platform/middleware/requesttime"
	"naijacare/pkg/platform/privacy"
)

// app owns every long-lived dependency of the server process.
type app struct {
	log     *slog.Logger
	metrics *metrics.Metrics
	consent *consentHandler.Handler
	routing *routingHandler.Handler
	health  []func(context.Context) error
	closers []io.Closer
}

func buildApp(ctx context.Context, cfg config.Server, log *slog.Logger) (*app, error) {
	a := &app{log: log, metrics: metrics.New()}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	var db *sql.DB
	if cfg.UsesPostgres() {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, db)
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		a.health = append(a.health, db.PingContext)
	}

	hasher := privacy.NewHasher(cfg.HashSalt)

	auditStore, err := a.buildAuditStore(ctx, cfg, db)
	if err != nil {
		return nil, err
	}
	auditOpts := []audit.Option{audit.WithHasher(hasher), audit.WithLogger(log)}
	if cfg.Kafka.Enabled() {
		client, err := kafkasink.NewClient(cfg.Kafka.Brokers)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, kafkaCloser{client})
		auditOpts = append(auditOpts, audit.WithSink(kafkasink.New(client, cfg.Kafka.AuditTopic,
			kafkasink.WithPublishTimeout(cfg.Kafka.PublishTimeout),
		)))
	}
	auditLog := audit.NewLog(auditStore, auditOpts...)

	consentOpts := []consentService.Option{
		consentService.WithLogger(log),
		consentService.WithAudit(auditLog),
		consentService.WithHasher(hasher),
	}
	store, err := a.buildConsentStore(ctx, cfg, db, &consentOpts)
	if err != nil {
		return nil, err
	}
	consent := consentService.New(store, consentOpts...)

	router := routingService.New(
		adapters.NewConsentAdapter(consent),
		auditLog,
		routingService.WithLogger(log),
		routingService.WithMetrics(routingMetrics.New()),
	)

	a.consent = consentHandler.New(consent, log, routing.RoutingScopes)
	a.routing = routingHandler.New(router, log)
	ok = true
	return a, nil
}

func (a *app) buildAuditStore(ctx context.Context, cfg config.Server, db *sql.DB) (audit.Store, error) {
	if cfg.AuditBackend != config.BackendPostgres {
		return auditmemory.NewInMemoryStore(), nil
	}
	store := auditpostgres.New(db)
	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (a *app) buildConsentStore(ctx context.Context, cfg config.Server, db *sql.DB, opts *[]consentService.Option) (consentService.Store, error) {
	switch cfg.ConsentBackend {
	case config.BackendRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client)
		a.health = append(a.health, client.Health)
		return consentStore.NewRedis(client.Client), nil
	case config.BackendPostgres:
		store := consentStore.NewPostgres(db)
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		*opts = append(*opts, consentService.WithTx(consentStore.NewPostgresTx(db)))
		return store, nil
	default:
		return consentStore.NewInMemory(), nil
	}
}

// Router builds the HTTP surface. Middleware order: request id first so the
// recovery and request logs carry it.
func (a *app) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(a.log))
	r.Use(middleware.Logger(a.log))
	r.Use(middleware.Latency(a.metrics))
	r.Use(requesttime.Middleware)

	a.routing.Register(r)
	a.consent.Register(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", a.handleHealth)
	return r
}

func (a *app) handleHealth(w http.ResponseWriter, r *http.Request) {
	for _, check := range a.health {
		if err := check(r.Context()); err != nil {
			a.log.WarnContext(r.Context(), "health check failed", "error", err)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Close releases resources in reverse acquisition order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}

type kafkaCloser struct {
	client *kgo.Client
}

func (k kafkaCloser) Close() error {
	k.client.Close()
	return nil
}
