package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Snapshot is a non-authoritative auto-save of the design document. It is
// stored verbatim, embedded base64 images included, and never triggers
// image processing.
type Snapshot struct {
	Document   json.RawMessage `json:"document"`
	Thumbnails []string        `json:"thumbnails,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// SnapshotStore persists auto-save snapshots and serializes saves per
// project.
type SnapshotStore interface {
	Put(ctx context.Context, projectID uuid.UUID, snap *Snapshot) error
	Get(ctx context.Context, projectID uuid.UUID) (*Snapshot, error)
	Delete(ctx context.Context, projectID uuid.UUID) error

	// AcquireLock takes the per-project save lock; false means another
	// save is in flight.
	AcquireLock(ctx context.Context, projectID uuid.UUID) (bool, error)
	ReleaseLock(ctx context.Context, projectID uuid.UUID) error
}

const (
	snapshotKeyPrefix = "project:autosave:"
	saveLockKeyPrefix = "project:savelock:"
)

// RedisSnapshotStore keeps snapshots in Redis with a TTL. Auto-saves are
// lossy-ok by contract, so an expired snapshot simply means falling back
// to the last manual save.
type RedisSnapshotStore struct {
	client      *redis.Client
	snapshotTTL time.Duration
	lockTTL     time.Duration
}

// NewRedisSnapshotStore creates a Redis-backed snapshot store.
func NewRedisSnapshotStore(client *redis.Client, snapshotTTL, lockTTL time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{
		client:      client,
		snapshotTTL: snapshotTTL,
		lockTTL:     lockTTL,
	}
}

func (s *RedisSnapshotStore) Put(ctx context.Context, projectID uuid.UUID, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	key := snapshotKeyPrefix + projectID.String()
	if err := s.client.Set(ctx, key, data, s.snapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

func (s *RedisSnapshotStore) Get(ctx context.Context, projectID uuid.UUID) (*Snapshot, error) {
	key := snapshotKeyPrefix + projectID.String()
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

func (s *RedisSnapshotStore) Delete(ctx context.Context, projectID uuid.UUID) error {
	return s.client.Del(ctx, snapshotKeyPrefix+projectID.String()).Err()
}

func (s *RedisSnapshotStore) AcquireLock(ctx context.Context, projectID uuid.UUID) (bool, error) {
	key := saveLockKeyPrefix + projectID.String()
	return s.client.SetNX(ctx, key, time.Now().UnixNano(), s.lockTTL).Result()
}

func (s *RedisSnapshotStore) ReleaseLock(ctx context.Context, projectID uuid.UUID) error {
	return s.client.Del(ctx, saveLockKeyPrefix+projectID.String()).Err()
}
