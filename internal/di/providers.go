package di

import (
	"context"
	"fmt"
	"time"

	"StockCast/internal/domain/errs"
	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
	dservice "StockCast/internal/domain/service"
	"StockCast/internal/handler/api"
	internalrepo "StockCast/internal/repository"
	"StockCast/internal/scheduler"
	"StockCast/internal/service/alphavantage"
	"StockCast/internal/service/ratelimit"
	"StockCast/internal/services/classifier"
	"StockCast/internal/usecase"
	pkgcache "StockCast/pkg/cache"
	pkgch "StockCast/pkg/clickhouse"
	"StockCast/pkg/config"
	"StockCast/pkg/database"
	xhttp "StockCast/pkg/http"
	pkgkafka "StockCast/pkg/kafka"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/metrics"
	"StockCast/pkg/server"

	"github.com/labstack/echo/v4"
)

// Input width each service kind's model must accept.
var modelFeatures = map[string]int{
	config.KindStock:   len(models.FeatureNames),
	config.KindIris:    4,
	config.KindTitanic: 8,
}

// StoreBackend is the configured bar store plus the pool behind it.
type StoreBackend struct {
	Store repository.BarStore
	Close func() error
}

// PredictMiddleware wraps the prediction routes.
type PredictMiddleware []echo.MiddlewareFunc

// ETLRun bundles the one-shot ETL job with its logger.
type ETLRun struct {
	Job    *usecase.ETLJob
	Logger *applogger.Logger
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
// The cleanup closes it after everything built on top of it.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchTimeout(cfg.Kafka.BatchTimeout),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideLogger builds the process logger. Error logs are aggregated to
// Kafka when a collector topic is configured and Kafka is enabled. The
// cleanup flushes the collector before the producer closes.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, func(), error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
		File:   cfg.Logging.File,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Logging.CollectorTopic != "" && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logging.CollectorInterval,
			CountThreshold: cfg.Logging.CollectorMax,
			Topic:          cfg.Logging.CollectorTopic,
			Publisher:      producer,
		})
	}
	return l, l.RemoveCollector, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.New()
}

// ProvideCache returns Redis when enabled and an in-process cache otherwise.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (pkgcache.Service, func(), error) {
	if !cfg.Redis.Enabled {
		mc := pkgcache.NewMemoryCache()
		return mc, closeFunc(l, "cache", mc.Close), nil
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisAddr(cfg.Redis.Addr),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, closeFunc(l, "cache", rc.Close), nil
}

// ProvideLocker returns the Redis run lock, or nil when Redis is disabled:
// an in-process lock would not exclude other hosts.
func ProvideLocker(cfg *config.Config, c pkgcache.Service) repository.Locker {
	if !cfg.Redis.Enabled {
		return nil
	}
	return c
}

// ProvideStoreBackend opens the configured database and prepares its schema.
// Connectivity is checked within the configured timeout.
func ProvideStoreBackend(cfg *config.Config, l *applogger.Logger) (*StoreBackend, func(), error) {
	if err := cfg.ValidateStore(); err != nil {
		return nil, nil, err
	}

	var b StoreBackend
	switch cfg.Backend.Type {
	case config.BackendClickHouse:
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithMaxConnections(5, 2),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		)
		if err != nil {
			return nil, nil, errs.Wrap(errs.ErrPersistence, fmt.Errorf("clickhouse client: %w", err))
		}
		b = StoreBackend{Store: internalrepo.NewCHBarStore(client, l), Close: client.Close}
	default:
		opt := database.WithPostgres(cfg.Database.PostgresDSN())
		if cfg.Backend.Type == config.BackendSQLite {
			opt = database.WithSQLite(cfg.Database.Path)
		}
		client, err := database.NewClient(opt,
			database.WithMaxConnections(cfg.Database.MaxOpenConns, cfg.Database.MaxOpenConns),
			database.WithPingTimeout(cfg.Database.ConnectTimeout),
		)
		if err != nil {
			return nil, nil, errs.Wrap(errs.ErrPersistence, fmt.Errorf("database client: %w", err))
		}
		b = StoreBackend{Store: internalrepo.NewSQLBarStore(client, l), Close: client.Close}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := b.Store.Init(ctx); err != nil {
		_ = b.Close()
		return nil, nil, fmt.Errorf("store schema: %w", err)
	}
	l.Info("bar store ready", applogger.String("backend", cfg.Backend.Type))
	return &b, closeFunc(l, "store", b.Close), nil
}

// closeFunc adapts a Close method to a wire cleanup that logs its failure.
func closeFunc(l *applogger.Logger, name string, fn func() error) func() {
	return func() {
		if err := fn(); err != nil {
			l.Warn("close error", applogger.String("resource", name), applogger.Error(err))
		}
	}
}

func ProvideBarStore(b *StoreBackend) repository.BarStore {
	return b.Store
}

// ProvideBarPublisher announces ingested bars on Kafka, or returns nil.
func ProvideBarPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.BarPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideBarSource creates the Alpha Vantage client.
func ProvideBarSource(cfg *config.Config, l *applogger.Logger) repository.BarSource {
	av := cfg.AlphaVantage
	return alphavantage.New(av.APIKey,
		alphavantage.WithBaseURL(av.BaseURL),
		alphavantage.WithRetry(av.RetryAttempts, av.RetryBackoff),
		alphavantage.WithHTTPClient(xhttp.NewClient(xhttp.WithTimeout(av.Timeout))),
		alphavantage.WithLogger(l),
	)
}

// ProvideETLJob creates the ETL use case.
func ProvideETLJob(
	cfg *config.Config,
	source repository.BarSource,
	store repository.BarStore,
	pub repository.BarPublisher,
	locker repository.Locker,
	m repository.Metrics,
	l *applogger.Logger,
) (*usecase.ETLJob, error) {
	if err := cfg.ValidateETL(); err != nil {
		return nil, err
	}
	opts := []usecase.ETLOption{
		usecase.WithMetrics(m),
		usecase.WithRunTimeout(cfg.ETL.Timeout),
	}
	if pub != nil {
		opts = append(opts, usecase.WithPublisher(pub))
	}
	if locker != nil {
		opts = append(opts, usecase.WithLocker(locker, cfg.ETL.LockTTL))
	}
	return usecase.NewETLJob(source, store, cfg.AlphaVantage.Symbol, l, opts...), nil
}

// ProvideScheduler registers the ETL job on the daily trigger.
func ProvideScheduler(cfg *config.Config, job *usecase.ETLJob, l *applogger.Logger) (*scheduler.Scheduler, error) {
	return scheduler.New(cfg.Schedule.Time, job, l,
		scheduler.WithRunOnStart(cfg.Schedule.RunOnStart),
	)
}

// ProvideModel loads the model artifact and checks it fits the service kind.
func ProvideModel(cfg *config.Config) (dservice.Classifier, error) {
	if cfg.Model.Path == "" {
		return nil, errs.Wrapf(errs.ErrModelLoad, "model.path is required")
	}
	m, err := classifier.Load(cfg.Model.Path)
	if err != nil {
		return nil, err
	}
	if want := modelFeatures[cfg.Service.Kind]; m.NumFeatures() != want {
		return nil, errs.Wrapf(errs.ErrModelLoad, "%s model expects %d features, %s service sends %d",
			cfg.Model.Path, m.NumFeatures(), cfg.Service.Kind, want)
	}
	return m, nil
}

func ProvideStockPredictor(
	cfg *config.Config,
	store repository.BarStore,
	model dservice.Classifier,
	c pkgcache.Service,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.StockPredictor {
	return usecase.NewStockPredictor(store, model, l,
		usecase.WithPredictorMetrics(m),
		usecase.WithResponseCache(c, cfg.AlphaVantage.Symbol, cfg.Stock.CacheTTL),
	)
}

func ProvideTabularPredictor(cfg *config.Config, model dservice.Classifier, m repository.Metrics) (*usecase.TabularPredictor, error) {
	switch cfg.Service.Kind {
	case config.KindIris:
		return usecase.NewIrisPredictor(model, m), nil
	case config.KindTitanic:
		return usecase.NewTitanicPredictor(model, m), nil
	}
	return nil, fmt.Errorf("service kind %q has no tabular predictor", cfg.Service.Kind)
}

// ProvidePredictMiddleware builds the per-client limiter for prediction routes.
func ProvidePredictMiddleware(cfg *config.Config, l *applogger.Logger) PredictMiddleware {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	lim := ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	return PredictMiddleware{xhttp.RateLimit(lim, l)}
}

func ProvideStockHandler(l *applogger.Logger, p *usecase.StockPredictor, mw PredictMiddleware) xhttp.Handler {
	return api.NewStockHandler(l, p, mw...)
}

func ProvideTabularHandler(cfg *config.Config, l *applogger.Logger, p *usecase.TabularPredictor, mw PredictMiddleware) xhttp.Handler {
	if cfg.Service.Kind == config.KindTitanic {
		return api.NewTitanicHandler(l, p, mw...)
	}
	return api.NewIrisHandler(l, p, mw...)
}

// ProvideHTTPServer creates the echo server for the selected handler.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h xhttp.Handler) (*xhttp.Server, error) {
	tpl, err := api.NewTemplates()
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	return xhttp.NewServer(h,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithMetrics(cfg.Metrics.Enabled, cfg.Metrics.Path, cfg.Metrics.SlowThreshold),
		xhttp.WithRenderer(tpl),
		xhttp.WithLogger(l),
	), nil
}

// ProvideStockApp assembles the stock prediction API. Wire cleanups own the
// store, cache and producer.
func ProvideStockApp(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server) *server.App {
	return server.New(cfg, l, server.WithHTTPServer(srv))
}

// ProvideTabularApp assembles the iris or titanic API.
func ProvideTabularApp(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server) *server.App {
	return server.New(cfg, l, server.WithHTTPServer(srv))
}

// ProvideSchedulerApp assembles the long-lived daily ETL trigger.
func ProvideSchedulerApp(cfg *config.Config, l *applogger.Logger, s *scheduler.Scheduler) *server.App {
	return server.New(cfg, l, server.WithScheduler(s))
}

// ProvideETLRun assembles a single ETL execution.
func ProvideETLRun(l *applogger.Logger, job *usecase.ETLJob) *ETLRun {
	return &ETLRun{Job: job, Logger: l}
}
