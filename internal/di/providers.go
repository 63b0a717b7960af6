package di

import (
	"context"
	"fmt"

	"ModelVault/internal/backend"
	"ModelVault/internal/costwatch"
	"ModelVault/internal/domain/repository"
	"ModelVault/internal/handler/api"
	"ModelVault/internal/loader"
	"ModelVault/internal/registry"
	repoimpl "ModelVault/internal/repository"
	"ModelVault/pkg/cache"
	"ModelVault/pkg/clickhouse"
	"ModelVault/pkg/config"
	xhttp "ModelVault/pkg/http"
	"ModelVault/pkg/kafka"
	applogger "ModelVault/pkg/logger"
	"ModelVault/pkg/metrics"
	"ModelVault/pkg/server"
)

// ProvideLogger builds the process logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics builds the Prometheus recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideBackend selects the artifact backend from config.
func ProvideBackend(ctx context.Context, cfg *config.Config) (repository.Backend, error) {
	switch cfg.Storage.Source {
	case "local":
		return backend.NewLocal(cfg.Storage.LocalPath), nil
	case "s3":
		return backend.NewS3(ctx,
			backend.WithBucket(cfg.Storage.S3.Bucket),
			backend.WithRegion(cfg.Storage.S3.Region),
			backend.WithPrefix(cfg.Storage.S3.Prefix),
			backend.WithFetchTimeout(cfg.Storage.S3.FetchTimeout),
			backend.WithMaxRetries(cfg.Storage.S3.MaxRetries),
		)
	default:
		return nil, fmt.Errorf("unknown storage source %q", cfg.Storage.Source)
	}
}

// ProvideResolver loads the asset registry through the backend.
func ProvideResolver(ctx context.Context, b repository.Backend) (*registry.Resolver, error) {
	return registry.Load(ctx, b)
}

// ProvideBytesCache builds the optional raw-bytes cache. Returns a nil
// service when caching is set to none.
func ProvideBytesCache(cfg *config.Config) (cache.Service, func(), error) {
	bc := cfg.Loader.BytesCache
	redisOpts := []cache.RedisOption{
		cache.WithRedisHost(bc.Redis.Host),
		cache.WithRedisPort(bc.Redis.Port),
		cache.WithRedisPassword(bc.Redis.Password),
		cache.WithRedisDB(bc.Redis.DB),
		cache.WithRedisPrefix(bc.Redis.Prefix),
	}

	switch bc.Type {
	case "", "none":
		return nil, func() {}, nil
	case "memory":
		mem := cache.NewMemory(cache.WithMaxEntries(bc.MaxEntries))
		return mem, func() { _ = mem.Close() }, nil
	case "redis":
		rds, err := cache.NewRedis(redisOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("bytes cache: %w", err)
		}
		return rds, func() { _ = rds.Close() }, nil
	case "layered":
		rds, err := cache.NewRedis(redisOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("bytes cache: %w", err)
		}
		layered := cache.NewLayered(rds, cache.WithMaxEntries(bc.MaxEntries))
		return layered, func() { _ = layered.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown bytes cache type %q", bc.Type)
	}
}

// ProvideLoader assembles the bundle loader.
func ProvideLoader(
	b repository.Backend,
	resolver *registry.Resolver,
	bytes cache.Service,
	cfg *config.Config,
	log *applogger.Logger,
	rec *metrics.Recorder,
) *loader.Loader {
	opts := []loader.Option{
		loader.WithAllowInactive(cfg.Loader.AllowInactive),
		loader.WithLogger(log),
		loader.WithMetrics(rec),
	}
	if bytes != nil {
		opts = append(opts, loader.WithBytesCache(bytes, cfg.Loader.BytesCache.TTL))
	}
	return loader.New(b, resolver, opts...)
}

// ProvideCostService builds the cost watch service with its store and alert
// publisher. Returns nil when cost monitoring is disabled; ClickHouse and
// Kafka are each optional and skipped when unconfigured.
func ProvideCostService(
	ctx context.Context,
	cfg *config.Config,
	log *applogger.Logger,
	rec *metrics.Recorder,
) (*costwatch.Service, func(), error) {
	if !cfg.Costs.Enabled {
		return nil, func() {}, nil
	}

	source, err := costwatch.NewExplorerSource(ctx, cfg.Costs.Region, cfg.Costs.ProjectTag)
	if err != nil {
		return nil, nil, fmt.Errorf("cost source: %w", err)
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	opts := []costwatch.ServiceOption{
		costwatch.WithMetrics(rec),
		costwatch.WithServiceLogger(log),
	}

	if cfg.ClickHouse.Host != "" {
		chClient, err := clickhouse.NewClient(
			clickhouse.WithHost(cfg.ClickHouse.Host),
			clickhouse.WithPort(cfg.ClickHouse.Port),
			clickhouse.WithDatabase(cfg.ClickHouse.Database),
			clickhouse.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			clickhouse.WithHTTP(cfg.ClickHouse.UseHTTP),
			clickhouse.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("clickhouse: %w", err)
		}
		if err := chClient.InitSchema(ctx, repoimpl.CostSchema); err != nil {
			_ = chClient.Close()
			cleanup()
			return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		store := repoimpl.NewClickHouseCostStore(chClient)
		closers = append(closers, func() { _ = store.Close() })
		opts = append(opts, costwatch.WithStore(store))
	}

	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.AlertTopic != "" {
		producer, err := kafka.NewProducer(
			kafka.WithBrokers(cfg.Kafka.Brokers),
			kafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			kafka.WithCompression(cfg.Kafka.Compression),
			kafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
			kafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
		)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("kafka producer: %w", err)
		}
		publisher := repoimpl.NewKafkaAlertPublisher(producer, cfg.Kafka.AlertTopic)
		closers = append(closers, func() { _ = publisher.Close() })
		opts = append(opts, costwatch.WithPublisher(publisher))
	}

	limits := costwatch.Thresholds{
		Warning:  cfg.Costs.WarningUSD,
		Critical: cfg.Costs.CriticalUSD,
	}
	return costwatch.NewService(source, limits, opts...), cleanup, nil
}

// ProvideRouter assembles the API route aggregate.
func ProvideRouter(
	ldr *loader.Loader,
	costs *costwatch.Service,
	cfg *config.Config,
	log *applogger.Logger,
) *api.Router {
	modelsH := api.NewModelsEchoHandler(ldr, log)
	var costsH *api.CostsEchoHandler
	if costs != nil {
		costsH = api.NewCostsEchoHandler(costs, cfg.Costs.StreamInterval, log)
	}
	return api.NewRouter(modelsH, costsH)
}

// ProvideServer builds the HTTP server around the router.
func ProvideServer(router *api.Router, cfg *config.Config, log *applogger.Logger) *xhttp.Server {
	return xhttp.NewServer(router,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithRequestLogger(log),
	)
}

// ProvideApp assembles the application.
func ProvideApp(
	srv *xhttp.Server,
	costs *costwatch.Service,
	cfg *config.Config,
	log *applogger.Logger,
) *server.App {
	return server.New(srv, costs, cfg, log)
}
