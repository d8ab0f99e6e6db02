package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/ordena/bitacora-api/internal/domain/entity"
	"github.com/ordena/bitacora-api/internal/domain/repository"
)

const keyPrefix = "bitacora:movimientos:"

// ErrMiss la clave no está en caché.
var ErrMiss = errors.New("cache: clave inexistente")

// Store almacenamiento clave/valor con expiración.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

var _ repository.MovementSource = (*CachedMovementSource)(nil)

// CachedMovementSource envuelve una fuente y guarda cada instantánea bajo la consulta canónica.
// Un fallo de Redis nunca es un fallo de carga: se consulta la fuente directamente.
type CachedMovementSource struct {
	next  repository.MovementSource
	store Store
	ttl   time.Duration
	log   zerolog.Logger
}

// NewCachedMovementSource construye el decorador.
func NewCachedMovementSource(next repository.MovementSource, store Store, ttl time.Duration, log zerolog.Logger) *CachedMovementSource {
	return &CachedMovementSource{
		next:  next,
		store: store,
		ttl:   ttl,
		log:   log.With().Str("module", "cache").Logger(),
	}
}

// Key clave de caché de la consulta: los parámetros ordenados.
func Key(q repository.MovementQuery) string {
	return keyPrefix + q.Params().Encode()
}

// FetchMovements devuelve la instantánea guardada o consulta la fuente y la guarda.
func (c *CachedMovementSource) FetchMovements(ctx context.Context, q repository.MovementQuery) ([]entity.MovementRecord, error) {
	key := Key(q)

	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var records []entity.MovementRecord
		if jerr := json.Unmarshal([]byte(raw), &records); jerr == nil {
			c.log.Debug().Str("key", key).Int("records", len(records)).Msg("instantánea desde caché")
			return records, nil
		}
		c.log.Warn().Str("key", key).Msg("instantánea corrupta, se descarta")
	case !errors.Is(err, ErrMiss):
		c.log.Warn().Err(err).Str("key", key).Msg("caché no disponible")
	}

	records, err := c.next.FetchMovements(ctx, q)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(records); err == nil {
		if err := c.store.Set(ctx, key, string(b), c.ttl); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("no se pudo guardar la instantánea")
		}
	}
	return records, nil
}

// Invalidate elimina la instantánea de la consulta.
func (c *CachedMovementSource) Invalidate(ctx context.Context, q repository.MovementQuery) error {
	return c.store.Del(ctx, Key(q))
}
