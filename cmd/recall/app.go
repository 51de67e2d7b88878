package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recall/internal/config"
	dbQdrant "github.com/kailas-cloud/recall/internal/db/qdrant"
	dbRedis "github.com/kailas-cloud/recall/internal/db/redis"
	"github.com/kailas-cloud/recall/internal/domain"
	logpkg "github.com/kailas-cloud/recall/internal/logger"
	"github.com/kailas-cloud/recall/internal/metrics"
	collectionrepo "github.com/kailas-cloud/recall/internal/repository/collection"
	"github.com/kailas-cloud/recall/internal/repository/embcache"
	jobrepo "github.com/kailas-cloud/recall/internal/repository/job"
	"github.com/kailas-cloud/recall/internal/transport/content"
	openaiEmb "github.com/kailas-cloud/recall/internal/transport/openai"
	"github.com/kailas-cloud/recall/internal/transport/rabbitmq"
	embeddinguc "github.com/kailas-cloud/recall/internal/usecase/embedding"
	"github.com/kailas-cloud/recall/internal/version"
)

// app holds the dependencies shared by serve and worker.
type app struct {
	env     string
	cfg     config.Config
	logger  *zap.Logger
	redis   *dbRedis.Store
	vectors *dbQdrant.Store
	colls   *collectionrepo.Repo
	jobs    *jobrepo.Repo
	models  *embeddinguc.Factory
	closers []func() error
}

// newApp loads config, connects Redis and Qdrant, and builds the shared repositories.
func newApp(ctx context.Context, component string) (*app, error) {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	logger = logger.With(zap.String("component", component))

	logger.Info("Starting recall",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Strings("redis_addrs", cfg.Redis.Addrs),
		zap.String("qdrant_host", cfg.Qdrant.Host),
		zap.String("queue_driver", cfg.Queue.Driver),
	)

	a := &app{env: env, cfg: cfg, logger: logger}

	a.redis, err = dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Redis.Addrs,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create redis store: %w", err)
	}
	a.closers = append(a.closers, func() error { a.redis.Close(); return nil })

	if err := a.redis.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
		a.Close()
		return nil, fmt.Errorf("redis not ready: %w", err)
	}

	a.vectors, err = dbQdrant.NewStore(dbQdrant.Config{
		Host:   cfg.Qdrant.Host,
		Port:   cfg.Qdrant.Port,
		APIKey: cfg.Qdrant.APIKey,
		UseTLS: cfg.Qdrant.UseTLS,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create qdrant store: %w", err)
	}
	a.closers = append(a.closers, a.vectors.Close)

	if err := a.vectors.WaitForReady(ctx, time.Duration(cfg.Qdrant.ReadinessTimeout)*time.Second); err != nil {
		a.Close()
		return nil, fmt.Errorf("qdrant not ready: %w", err)
	}
	logger.Info("Connected to Redis and Qdrant")

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterJobMetrics()

	a.colls = collectionrepo.New(a.redis, a.vectors).WithKeyPrefix(cfg.Storage.KeyPrefix)

	dispatcher, err := a.newDispatcher()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.jobs = jobrepo.New(a.redis, dispatcher).
		WithKeyPrefix(cfg.Storage.KeyPrefix).
		WithKeepResult(cfg.Queue.KeepResult())

	a.models, err = a.newFactory()
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// newDispatcher selects the job id transport.
func (a *app) newDispatcher() (jobrepo.Dispatcher, error) {
	if a.cfg.Queue.Driver != config.QueueDriverRabbitMQ {
		return jobrepo.NewListQueue(a.redis, a.cfg.Storage.KeyPrefix).
			WithLease(2 * a.cfg.Queue.JobTimeout()), nil
	}

	d, err := rabbitmq.Dial(rabbitmq.Config{
		URL:      a.cfg.RabbitMQ.URL,
		Queue:    a.cfg.RabbitMQ.Queue,
		Prefetch: a.cfg.RabbitMQ.Prefetch,
	})
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	a.closers = append(a.closers, d.Close)
	a.logger.Info("Connected to RabbitMQ", zap.String("queue", a.cfg.RabbitMQ.Queue))
	return d, nil
}

// newFactory builds the embedder factory. Each model gets the chain
// OpenAI-compatible client -> Redis cache -> instrumentation.
func (a *app) newFactory() (*embeddinguc.Factory, error) {
	embCfg := a.cfg.Embedding
	build := func(m embeddinguc.Model) domain.Embedder {
		var emb domain.Embedder = a.baseEmbedder(m)
		if embCfg.CacheTTLSec > 0 {
			emb = embcache.New(emb, a.redis, metrics.EmbeddingCacheTotal, a.logger).
				WithKeyPrefix(a.cfg.Storage.KeyPrefix).
				WithTTL(time.Duration(embCfg.CacheTTLSec) * time.Second)
		}
		return embeddinguc.NewInstrumentedEmbedder(emb, "openai", a.logger)
	}

	f, err := embeddinguc.NewFactory(build).WithDefault(domain.ModalityText, embCfg.DefaultTextModel)
	if err != nil {
		return nil, fmt.Errorf("default text model: %w", err)
	}
	f, err = f.WithDefault(domain.ModalityImage, embCfg.DefaultImageModel)
	if err != nil {
		return nil, fmt.Errorf("default image model: %w", err)
	}
	return f, nil
}

func (a *app) baseEmbedder(m embeddinguc.Model) *openaiEmb.Embedder {
	return openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     a.cfg.Embedding.APIKey,
		BaseURL:    a.cfg.Embedding.BaseURL,
		Model:      m.Name,
		Dimensions: m.Dimensions,
		Modality:   m.Modality,
		Provider:   "openai",
		Logger:     a.logger,
	})
}

// newResolver builds the content resolver for http(s):// and s3:// URIs.
func (a *app) newResolver() (*content.Resolver, error) {
	c := a.cfg.Content
	r, err := content.NewResolver(content.Config{
		Timeout:  time.Duration(c.TimeoutSec) * time.Second,
		MaxBytes: c.MaxBytes,
		S3: content.S3Config{
			Endpoint:  c.S3.Endpoint,
			AccessKey: c.S3.AccessKey,
			SecretKey: c.S3.SecretKey,
			Region:    c.S3.Region,
			UseSSL:    c.S3.UseSSL,
		},
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("create content resolver: %w", err)
	}
	return r, nil
}

// Close releases connections in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
