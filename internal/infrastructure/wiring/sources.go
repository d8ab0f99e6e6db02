// Package wiring construye la fuente de movimientos configurada (Postgres o API remota)
// con su caché opcional. Lo comparten el servidor y la CLI.
package wiring

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ordena/bitacora-api/internal/domain/entity"
	"github.com/ordena/bitacora-api/internal/domain/repository"
	"github.com/ordena/bitacora-api/internal/infrastructure/cache"
	"github.com/ordena/bitacora-api/internal/infrastructure/postgres"
	"github.com/ordena/bitacora-api/internal/infrastructure/remote"
	"github.com/ordena/bitacora-api/pkg/config"
)

// Sources fuente de movimientos lista para usar.
type Sources struct {
	Movements  repository.MovementSource
	Thresholds repository.ThresholdRepository // nil con la fuente remota
	Cache      *cache.CachedMovementSource    // nil sin Redis

	closers []func()
}

// Close libera pool y conexiones en orden inverso.
func (s *Sources) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// DefaultThresholds umbrales por defecto de la configuración.
func DefaultThresholds(cfg config.ReportConfig) entity.Thresholds {
	return entity.Thresholds{
		Minimum: decimal.NewFromInt(int64(cfg.StockMinDefault)),
		Maximum: decimal.NewFromInt(int64(cfg.StockMaxDefault)),
	}
}

// Open conecta la fuente indicada por SOURCE_DRIVER y la envuelve con Redis si REDIS_ADDR está definido.
// Un Redis inalcanzable no impide arrancar: se registra y se sigue sin caché.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Sources, error) {
	s := &Sources{}

	loc, err := cfg.Report.Location()
	if err != nil {
		return nil, err
	}

	switch cfg.Source.Driver {
	case config.SourceRemote:
		s.Movements = remote.NewMovementClient(cfg.Source.BaseURL, cfg.Source.Token, cfg.Source.Timeout, loc)
		log.Info().Str("base_url", cfg.Source.BaseURL).Msg("fuente de movimientos: API remota")
	case config.SourcePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		s.Movements = postgres.NewMovementRepository(pool)
		s.Thresholds = postgres.NewThresholdRepository(pool, DefaultThresholds(cfg.Report))
		log.Info().Msg("fuente de movimientos: PostgreSQL")
	default:
		return nil, fmt.Errorf("SOURCE_DRIVER %q no soportado", cfg.Source.Driver)
	}

	if cfg.Redis.Enabled() {
		store, err := cache.NewRedisStore(ctx, cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("caché deshabilitada")
			return s, nil
		}
		s.closers = append(s.closers, func() { _ = store.Close() })
		s.Cache = cache.NewCachedMovementSource(s.Movements, store, cfg.Redis.TTL, log)
		s.Movements = s.Cache
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.TTL).Msg("caché de instantáneas activa")
	}
	return s, nil
}
