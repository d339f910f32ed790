package di

import (
	"fmt"

	"ZScout/internal/domain/repository"
	"ZScout/internal/handler/api"
	internalrepo "ZScout/internal/repository"
	"ZScout/internal/service/ratelimit"
	"ZScout/internal/service/yahoo"
	"ZScout/internal/services/analytics"
	"ZScout/internal/usecase"
	pkgcache "ZScout/pkg/cache"
	"ZScout/pkg/config"
	xhttp "ZScout/pkg/http"
	pkgkafka "ZScout/pkg/kafka"
	applogger "ZScout/pkg/logger"
	"ZScout/pkg/metrics"
	"ZScout/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Enabled:     cfg.LoggingEnabled(),
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		InfoOutput:  cfg.Logging.InfoOutput,
		ErrorOutput: cfg.Logging.ErrorOutput,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder, or a no-op recorder
// when the metrics endpoint is disabled.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.MetricsEnabled() {
		return metrics.Nop{}
	}
	return metrics.New()
}

// ProvideStore opens the SQLite result store and runs migrations.
func ProvideStore(cfg *config.Config) (repository.ResultStore, error) {
	store, err := internalrepo.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("result store: %w", err)
	}
	return store, nil
}

// ProvideCache creates the price-series cache: Redis when configured,
// otherwise in-process memory. Returns nil when caching is disabled.
func ProvideCache(cfg *config.Config, l *applogger.Logger) pkgcache.Service {
	if !cfg.CacheEnabled() {
		return nil
	}

	if cfg.Cache.Redis.Enabled {
		c, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
			pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
			pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
			pkgcache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			l.Warn("redis unavailable, using memory cache", applogger.Error(err))
		} else {
			return c
		}
	}

	return pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(cfg.Cache.MaxSize))
}

// ProvideLimiter creates the shared token-bucket limiter.
func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideYahooClient creates the Yahoo Finance client.
func ProvideYahooClient(cfg *config.Config, limiter *ratelimit.Limiter, cache pkgcache.Service) *yahoo.Client {
	opts := []yahoo.Option{
		yahoo.WithRate(cfg.Yahoo.RateCapacity, cfg.Yahoo.RateRefillPerSec),
		yahoo.WithTimeout(cfg.Yahoo.Timeout),
	}
	if cache != nil {
		opts = append(opts, yahoo.WithCache(cache, cfg.Cache.TTL))
	}
	return yahoo.New(limiter, opts...)
}

// ProvidePriceSource exposes the Yahoo client as the price source.
func ProvidePriceSource(c *yahoo.Client) repository.PriceSource { return c }

// ProvideQuoteSource exposes the Yahoo client as the quote source.
func ProvideQuoteSource(c *yahoo.Client) repository.QuoteSource { return c }

// ProvideClassifier creates the normality classifier.
func ProvideClassifier(cfg *config.Config) *analytics.Classifier {
	return analytics.NewClassifier(cfg.Analysis.MinObservations, cfg.Analysis.SignificanceLevel)
}

// ProvidePublisher creates the Kafka outcome publisher when events are
// enabled, a no-op publisher otherwise.
func ProvidePublisher(cfg *config.Config) (repository.EventPublisher, error) {
	if !cfg.Events.Enabled {
		return internalrepo.NopPublisher{}, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Events.Brokers),
		pkgkafka.WithCompression(cfg.Events.Compression),
		pkgkafka.WithRequiredAcks(cfg.Events.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Events.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Events.WriteTimeout, cfg.Events.ReadTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Events.Topic), nil
}

// ProvideAnalyzer creates the batch analysis use case.
func ProvideAnalyzer(
	store repository.ResultStore,
	source repository.PriceSource,
	classifier *analytics.Classifier,
	publisher repository.EventPublisher,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.Analyzer {
	return usecase.NewAnalyzer(store, source, classifier, publisher, m, l, usecase.AnalyzerConfig{
		BatchSize:        cfg.Analysis.BatchSize,
		LookbackDays:     cfg.Yahoo.LookbackDays,
		BatchPause:       cfg.Analysis.BatchPause,
		ExcludedSymbols:  cfg.ExcludedSet(),
		ExcludedSuffixes: cfg.Analysis.ExcludedSuffixes,
		PublishEvents:    cfg.Events.Enabled,
	})
}

// ProvideSeeder creates the registry seeder.
func ProvideSeeder(store repository.ResultStore, quotes repository.QuoteSource, l *applogger.Logger) *usecase.Seeder {
	return usecase.NewSeeder(store, quotes, l)
}

// ProvideScreener creates the candidate screener.
func ProvideScreener(store repository.ResultStore, cfg *config.Config) *usecase.Screener {
	return usecase.NewScreener(store, cfg.Screen.ZThreshold)
}

// ProvideResultReader creates the API read side.
func ProvideResultReader(store repository.ResultStore) *usecase.ResultReader {
	return usecase.NewResultReader(store)
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(l *applogger.Logger, screener *usecase.Screener, results *usecase.ResultReader) xhttp.Handler {
	return api.NewResultsEchoHandler(l, screener, results)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	store repository.ResultStore,
	analyzer *usecase.Analyzer,
	seeder *usecase.Seeder,
	screener *usecase.Screener,
	publisher repository.EventPublisher,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, l, store, analyzer, seeder, screener, publisher, handler)
}
