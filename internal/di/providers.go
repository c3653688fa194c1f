package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"OscLens/internal/domain/repository"
	domsvc "OscLens/internal/domain/service"
	"OscLens/internal/handler/api"
	mid "OscLens/internal/middleware"
	internalrepo "OscLens/internal/repository"
	"OscLens/internal/service/binance"
	"OscLens/internal/services/compute"
	"OscLens/internal/services/provider"
	"OscLens/internal/services/regime"
	"OscLens/internal/services/volatility"
	"OscLens/internal/usecase"
	pkgcache "OscLens/pkg/cache"
	pkgch "OscLens/pkg/clickhouse"
	"OscLens/pkg/config"
	xhttp "OscLens/pkg/http"
	pkgkafka "OscLens/pkg/kafka"
	applogger "OscLens/pkg/logger"
	"OscLens/pkg/metrics"
	"OscLens/pkg/queue"
	"OscLens/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger from the environment.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{Level: "info", Format: "json", Output: "stdout"}
	if cfg.Environment == "development" {
		lc.Level = "debug"
		lc.Format = "console"
	}
	return applogger.New(lc)
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS osclens",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSeriesStore creates the daily-series storage and ensures its tables.
func ProvideSeriesStore(chClient *pkgch.Client, l *applogger.Logger) (repository.SeriesStore, error) {
	store := internalrepo.NewCHSeriesStore(chClient)
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("series store init: %w", err)
	}
	return store, nil
}

// ProvideCandleStore creates the OHLCV storage and ensures its tables.
func ProvideCandleStore(chClient *pkgch.Client, l *applogger.Logger) (repository.CandleStore, error) {
	store := internalrepo.NewCHCandleStore(chClient)
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("candle store init: %w", err)
	}
	return store, nil
}

// ProvideCacheService selects the cache backend. Redis gets a memory layer
// in front; without Redis everything is in-process.
func ProvideCacheService(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Analytics.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}

	host, portStr, err := net.SplitHostPort(cfg.Analytics.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}

	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Analytics.Redis.Password),
		pkgcache.WithRedisDB(cfg.Analytics.Redis.DB),
		pkgcache.WithRedisPrefix("osclens"),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(rc), nil
}

// ProvideComputeCache wraps the cache backend with request coalescing.
func ProvideComputeCache(store pkgcache.Service, m repository.Metrics) *compute.Cache {
	return compute.New(store, m)
}

// ProvideSeriesProvider creates the registry-backed dataset reader.
func ProvideSeriesProvider(
	series repository.SeriesStore,
	candles repository.CandleStore,
	m repository.Metrics,
	l *applogger.Logger,
) domsvc.SeriesProvider {
	return provider.New(series, candles, m, l)
}

// ProvideVolatilityEstimator creates the Garman-Klass estimator.
func ProvideVolatilityEstimator(cfg *config.Config) domsvc.VolatilityEstimator {
	return volatility.New(cfg.Analytics.AnnualizationFactor)
}

// ProvideRegimeClassifier creates the 2-state volatility classifier.
func ProvideRegimeClassifier(cfg *config.Config) domsvc.RegimeClassifier {
	return regime.New(cfg.Analytics.Regime.MinObservations)
}

// ProvideBinanceStream creates the Binance kline WebSocket stream.
func ProvideBinanceStream(cfg *config.Config) repository.MarketStream {
	return binance.New(
		cfg.Binance.WebSocketURL,
		cfg.Binance.Symbols,
		cfg.Binance.Interval,
		cfg.Binance.ReconnectDelay,
		cfg.Binance.PingInterval,
	)
}

// ProvideBinanceRest creates the kline REST backfill client.
func ProvideBinanceRest(cfg *config.Config) *binance.RestClient {
	return binance.NewRest(cfg.Binance.RestURL, xhttp.NewClient(
		xhttp.WithTimeout(15*time.Second),
	))
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideCandlePublisher creates the Kafka publisher repository.
func ProvideCandlePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaCandlesHandler registers the handler for the candles topic.
func ProvideKafkaCandlesHandler(store repository.CandleStore, m repository.Metrics, cfg *config.Config) *usecase.KafkaCandlesHandler {
	return usecase.NewKafkaCandlesHandler(cfg.Kafka.Topic, store, m)
}

// ProvideCandleProcessor creates the candle processor use case.
func ProvideCandleProcessor(
	pub repository.Publisher,
	store repository.CandleStore,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.CandleProcessor {
	return usecase.NewCandleProcessor(pub, store, m, cfg.Ingest.BatchSize, cfg.Ingest.BatchTimeout)
}

// ProvideCandleCollector creates the candle collector use case.
func ProvideCandleCollector(
	stream repository.MarketStream,
	processor *usecase.CandleProcessor,
	m repository.Metrics,
) *usecase.CandleCollector {
	// Dedup and buffering between WebSocket and Kafka
	pipe := mid.NewIngestPipeline(processor, m,
		mid.WithBufferSize(2000),
	)
	return usecase.NewCandleCollector(stream, processor, m, pipe)
}

// ProvideOscillatorUsecase creates the normalization use case.
func ProvideOscillatorUsecase(
	sp domsvc.SeriesProvider,
	candles repository.CandleStore,
	vol domsvc.VolatilityEstimator,
	classifier domsvc.RegimeClassifier,
	cache *compute.Cache,
	cfg *config.Config,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.OscillatorUsecase {
	return usecase.NewOscillatorUsecase(sp, candles, vol, classifier, cache, cfg, m, l)
}

// ProvideRegimeUsecase creates the standalone regime use case.
func ProvideRegimeUsecase(
	candles repository.CandleStore,
	vol domsvc.VolatilityEstimator,
	classifier domsvc.RegimeClassifier,
	cache *compute.Cache,
	cfg *config.Config,
) *usecase.RegimeUsecase {
	return usecase.NewRegimeUsecase(candles, vol, classifier, cache, cfg)
}

// ProvideTensionUsecase creates the divergence use case.
func ProvideTensionUsecase(sp domsvc.SeriesProvider, cache *compute.Cache, cfg *config.Config) *usecase.TensionUsecase {
	return usecase.NewTensionUsecase(sp, cache, cfg)
}

// ProvideDatasetUsecase creates the dataset metadata/data use case.
func ProvideDatasetUsecase(sp domsvc.SeriesProvider, cache *compute.Cache, cfg *config.Config) *usecase.DatasetUsecase {
	return usecase.NewDatasetUsecase(sp, cache, cfg)
}

// ProvideStatusUsecase creates the health/status use case.
func ProvideStatusUsecase(series repository.SeriesStore) *usecase.StatusUsecase {
	return usecase.NewStatusUsecase(series)
}

// ProvideCandlesUsecase creates the raw candle read use case.
func ProvideCandlesUsecase(store repository.CandleStore) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(store)
}

// ProvideAPIHandler creates the Echo API handler.
func ProvideAPIHandler(
	l *applogger.Logger,
	m repository.Metrics,
	datasets *usecase.DatasetUsecase,
	oscillator *usecase.OscillatorUsecase,
	regimeUC *usecase.RegimeUsecase,
	tension *usecase.TensionUsecase,
	candles *usecase.CandlesUseCase,
	status *usecase.StatusUsecase,
) *api.OscillatorEchoHandler {
	return api.NewOscillatorEchoHandler(l, m, datasets, oscillator, regimeUC, tension, candles, status)
}

// ProvideApp assembles the application server. Ingest and refresh pieces
// are only built when their config sections enable them, so an API-only
// deployment needs neither Kafka nor Redis.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	chClient *pkgch.Client,
	candleStore repository.CandleStore,
	m repository.Metrics,
	computeCache *compute.Cache,
	rest *binance.RestClient,
	handler *api.OscillatorEchoHandler,
) (*server.App, error) {
	var (
		collector *usecase.CandleCollector
		consumer  *pkgkafka.Consumer
		kh        pkgkafka.MessageHandler
		proc      *usecase.CandleProcessor
	)

	if cfg.Ingest.Enabled {
		producer, err := ProvideKafkaProducer(cfg)
		if err != nil {
			return nil, err
		}
		pub := ProvideCandlePublisher(producer, cfg)
		proc = ProvideCandleProcessor(pub, candleStore, m, cfg)
		collector = ProvideCandleCollector(ProvideBinanceStream(cfg), proc, m)

		consumer, err = ProvideKafkaConsumer(cfg)
		if err != nil {
			return nil, err
		}
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
		kh = ProvideKafkaCandlesHandler(candleStore, m, cfg)
	}

	app := server.New(cfg, l, collector, consumer, kh, chClient)
	app.SetHTTPHandler(handler)
	app.CandleProc = proc

	if cfg.Analytics.Refresh.Enabled {
		if !cfg.Analytics.Redis.Enabled {
			l.Warn("refresh enabled without redis, scheduler disabled")
			return app, nil
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Analytics.Redis.Addr,
			Password: cfg.Analytics.Redis.Password,
			DB:       cfg.Analytics.Redis.DB,
		})
		job := usecase.NewRefreshJob(rest, candleStore, computeCache, cfg, l)
		q := queue.NewRedisQueue(l, &queue.QueueConfig{
			Workers:    1,
			QueueSize:  16,
			RetryLimit: 3,
			RetryDelay: time.Minute,
		}, client, queue.ModeProducerConsumer)
		q.RegisterJob(job)
		sched := usecase.NewRefreshScheduler(q, cfg.Analytics.Refresh.Interval, l)
		app.SetRefresh(q, sched)
	}

	return app, nil
}
