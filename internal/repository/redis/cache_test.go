package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/resumeforge/internal/domain"
	apperrors "github.com/utafrali/resumeforge/pkg/errors"
)

func setupTestCache(t *testing.T) (*ResumeCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := NewResumeCache(client, time.Hour)
	return cache, mr
}

func cachedResume() *domain.Resume {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.Resume{
		ID:         "resume-1",
		UserID:     "user-1",
		Title:      "Backend Engineer",
		Slug:       "backend-engineer",
		Visibility: domain.VisibilityPublic,
		Data:       json.RawMessage(`{"basics":{}}`),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestResumeCache_SetAndGet(t *testing.T) {
	cache, _ := setupTestCache(t)

	r := cachedResume()
	require.NoError(t, cache.Set(context.Background(), "jane", r))

	got, err := cache.Get(context.Background(), "jane", "backend-engineer")
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, r.Slug, got.Slug)
	assert.JSONEq(t, string(r.Data), string(got.Data))
}

func TestResumeCache_GetMiss(t *testing.T) {
	cache, _ := setupTestCache(t)

	_, err := cache.Get(context.Background(), "jane", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestResumeCache_TTL(t *testing.T) {
	cache, mr := setupTestCache(t)

	require.NoError(t, cache.Set(context.Background(), "jane", cachedResume()))

	mr.FastForward(2 * time.Hour)

	_, err := cache.Get(context.Background(), "jane", "backend-engineer")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestResumeCache_Invalidate(t *testing.T) {
	cache, _ := setupTestCache(t)

	require.NoError(t, cache.Set(context.Background(), "jane", cachedResume()))
	require.NoError(t, cache.Invalidate(context.Background(), "jane", "backend-engineer"))

	_, err := cache.Get(context.Background(), "jane", "backend-engineer")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
