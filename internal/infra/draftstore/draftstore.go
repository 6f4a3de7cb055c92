// Package draftstore хранит черновики бронирований в redis с TTL.
// Брошенные визарды исчезают сами - чистить нечего.
package draftstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tablehub/reservation-service/internal/config"
	"github.com/tablehub/reservation-service/internal/domain"
)

// ErrDraftNotFound возвращается, когда черновик не найден или истек его TTL
var ErrDraftNotFound = errors.New("draftstore: draft not found")

// Store redis-хранилище черновиков бронирований
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает клиент redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// New создает хранилище черновиков
func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

func draftKey(id uuid.UUID) string {
	return fmt.Sprintf("draft:%s", id)
}

// Save сохраняет черновик с TTL хранилища
// Повторное сохранение того же черновика сбрасывает TTL
func (s *Store) Save(ctx context.Context, draft *domain.DraftReservation) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("draftstore: failed to marshal draft: %w", err)
	}

	if err := s.client.Set(ctx, draftKey(draft.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("draftstore: failed to set draft in redis: %w", err)
	}
	return nil
}

// Get возвращает черновик по ID
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*domain.DraftReservation, error) {
	val, err := s.client.Get(ctx, draftKey(id)).Result()
	if err == redis.Nil {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("draftstore: failed to get draft from redis: %w", err)
	}

	var draft domain.DraftReservation
	if err := json.Unmarshal([]byte(val), &draft); err != nil {
		return nil, fmt.Errorf("draftstore: failed to unmarshal draft: %w", err)
	}
	return &draft, nil
}

// Delete удаляет черновик (после превращения в бронирование или отказа)
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, draftKey(id)).Err(); err != nil {
		return fmt.Errorf("draftstore: failed to delete draft from redis: %w", err)
	}
	return nil
}
