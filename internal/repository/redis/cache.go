package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/resumeforge/internal/domain"
	apperrors "github.com/utafrali/resumeforge/pkg/errors"
)

const keyPrefix = "resume:public:"

// ResumeCache caches publicly visible resumes in Redis so anonymous traffic
// does not hit PostgreSQL on every view.
type ResumeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResumeCache creates a new Redis-backed resume cache.
func NewResumeCache(client *redis.Client, ttl time.Duration) *ResumeCache {
	return &ResumeCache{
		client: client,
		ttl:    ttl,
	}
}

func cacheKey(username, slug string) string {
	return keyPrefix + username + ":" + slug
}

// Get retrieves a cached resume by owner username and slug.
func (c *ResumeCache) Get(ctx context.Context, username, slug string) (*domain.Resume, error) {
	data, err := c.client.Get(ctx, cacheKey(username, slug)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("redis get resume: %w", err)
	}

	var resume domain.Resume
	if err := json.Unmarshal(data, &resume); err != nil {
		return nil, fmt.Errorf("unmarshal cached resume: %w", err)
	}

	return &resume, nil
}

// Set caches a resume with the configured TTL.
func (c *ResumeCache) Set(ctx context.Context, username string, resume *domain.Resume) error {
	data, err := json.Marshal(resume)
	if err != nil {
		return fmt.Errorf("marshal resume: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(username, resume.Slug), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set resume: %w", err)
	}

	return nil
}

// Invalidate drops a cached resume after an update or deletion.
func (c *ResumeCache) Invalidate(ctx context.Context, username, slug string) error {
	if err := c.client.Del(ctx, cacheKey(username, slug)).Err(); err != nil {
		return fmt.Errorf("redis del resume: %w", err)
	}

	return nil
}
