// Package cache guarda instantáneas de movimientos en Redis para no repetir consultas idénticas.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config conexión a Redis.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore cliente Redis reducido a lo que usa la caché.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore conecta y verifica que Redis responda.
func NewRedisStore(ctx context.Context, cfg Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("no se puede conectar a Redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Get retorna ("", ErrMiss) si la clave no existe.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrMiss
	}
	return v, err
}

// Set guarda un valor con TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Del elimina una o más claves.
func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
