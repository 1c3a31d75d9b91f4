// Package cache keeps the public approved-doctor listing in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/harentsoaR/docspot-api/internal/models"
)

const approvedDoctorsKey = "docspot:doctors:approved"

// Doctors caches the approved-doctor listing. Failures are logged and
// reported as misses so callers fall back to the store.
type Doctors interface {
	Approved(ctx context.Context) ([]models.User, bool)
	SetApproved(ctx context.Context, doctors []models.User)
	Invalidate(ctx context.Context)
}

type RedisDoctors struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisDoctors(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisDoctors {
	return &RedisDoctors{client: client, ttl: ttl, log: log}
}

func (c *RedisDoctors) Approved(ctx context.Context) ([]models.User, bool) {
	raw, err := c.client.Get(ctx, approvedDoctorsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("doctor cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var doctors []models.User
	if err := json.Unmarshal(raw, &doctors); err != nil {
		c.log.Warn("doctor cache entry is corrupt", zap.Error(err))
		return nil, false
	}
	return doctors, true
}

func (c *RedisDoctors) SetApproved(ctx context.Context, doctors []models.User) {
	raw, err := json.Marshal(doctors)
	if err != nil {
		c.log.Warn("doctor cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, approvedDoctorsKey, raw, c.ttl).Err(); err != nil {
		c.log.Warn("doctor cache write failed", zap.Error(err))
	}
}

func (c *RedisDoctors) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, approvedDoctorsKey).Err(); err != nil {
		c.log.Warn("doctor cache invalidate failed", zap.Error(err))
	}
}

// Nop never hits.
type Nop struct{}

func (Nop) Approved(context.Context) ([]models.User, bool) { return nil, false }
func (Nop) SetApproved(context.Context, []models.User)     {}
func (Nop) Invalidate(context.Context)                     {}

// Connect pings Redis a few times before giving up.
func Connect(ctx context.Context, opts *redis.Options, attempts int, delay time.Duration) (*redis.Client, error) {
	client := redis.NewClient(opts)
	var err error
	for i := 0; i < attempts; i++ {
		if err = client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	_ = client.Close()
	return nil, fmt.Errorf("redis unreachable after %d attempts: %w", attempts, err)
}
