// Package bootstrap assembles the progress engine from configuration and
// live connections. It is shared by the HTTP server and the operator CLI.
package bootstrap

import (
	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/config"
	"github.com/noah-isme/gema-progress-api/internal/observability"
	"github.com/noah-isme/gema-progress-api/internal/progress"
	"github.com/noah-isme/gema-progress-api/internal/repository"
	"github.com/noah-isme/gema-progress-api/internal/service"
)

// Connections are the external resources the engine reads and writes.
// Redis and NATS are optional.
type Connections struct {
	DB    *gorm.DB
	Redis *redis.Client
	NATS  *nats.Conn
}

// NewProgressService wires repositories, registry, evaluator and publisher.
func NewProgressService(cfg config.Config, conns Connections, validate *validator.Validate, logger zerolog.Logger) service.ProgressService {
	registry := progress.RegistryFor(cfg.PlatformVersion)
	logger.Info().
		Str("platform_version", cfg.PlatformVersion.String()).
		Int("activity_types", registry.Len()).
		Msg("progress registry loaded")

	var cache progress.ViewCache = progress.NewMemoryViewCache()
	if conns.Redis != nil {
		cache = repository.NewRedisViewCache(conns.Redis, cfg.ViewCacheTTL)
	}

	catalog := progress.NewCatalog(registry, repository.NewCourseRepository(conns.DB))
	evaluator := progress.NewEvaluator(
		registry,
		repository.NewCompletionDataSource(conns.DB),
		repository.NewLogReaders(conns.DB, cfg.LogBackends, logger),
		cache,
		observability.NewEvaluationRecorder(),
		logger,
	)

	return service.NewProgressService(
		repository.NewBlockRepository(conns.DB),
		repository.NewRosterRepository(conns.DB),
		repository.NewAccessRepository(conns.DB),
		catalog,
		evaluator,
		service.NewSummaryPublisher(conns.Redis, conns.NATS, cfg.NATSSubject),
		validate,
		service.ProgressOptions{
			Location:        cfg.Location,
			WrapAfter:       cfg.WrapAfter,
			DefaultLongBars: cfg.DefaultLongBars,
			ShowInactive:    cfg.ShowInactive,
		},
		logger,
	)
}
