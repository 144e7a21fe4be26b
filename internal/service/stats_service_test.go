package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/campus-vault/campusvault-api/pkg/errors"
)

type mockCacheRepo struct {
	entries map[string][]byte
	sets    int
}

func (m *mockCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	payload, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (m *mockCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = payload
	m.sets++
	return nil
}

func (m *mockCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

type fixedCounter struct {
	count int
	calls int
}

func (c *fixedCounter) CountByCollege(ctx context.Context, college string) (int, error) {
	c.calls++
	return c.count, nil
}

type fixedThoughtCounter struct {
	count int
	calls int
}

func (c *fixedThoughtCounter) CountByCollege(ctx context.Context, college string, now time.Time) (int, error) {
	c.calls++
	return c.count, nil
}

func newStatsFixture() (*StatsService, *mockCacheRepo, *fixedCounter) {
	cacheRepo := &mockCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	notes := &fixedCounter{count: 12}
	svc := NewStatsService(notes, &fixedCounter{count: 7}, &fixedCounter{count: 3}, &fixedCounter{count: 2}, &fixedThoughtCounter{count: 5}, cache, nil, StatsServiceConfig{CacheTTL: time.Minute})
	return svc, cacheRepo, notes
}

func TestStatsCollegeStats(t *testing.T) {
	svc, _, _ := newStatsFixture()

	stats, err := svc.CollegeStats(context.Background(), studentClaims())
	require.NoError(t, err)
	assert.Equal(t, "NIT Warangal", stats.College)
	assert.Equal(t, 12, stats.Notes)
	assert.Equal(t, 7, stats.PYQs)
	assert.Equal(t, 3, stats.Timetables)
	assert.Equal(t, 2, stats.Announcements)
	assert.Equal(t, 5, stats.ActiveThoughts)
	assert.Equal(t, 22, stats.TotalResources)
}

func TestStatsSecondCallServedFromCache(t *testing.T) {
	svc, cacheRepo, notes := newStatsFixture()

	_, err := svc.CollegeStats(context.Background(), studentClaims())
	require.NoError(t, err)
	require.Equal(t, 1, cacheRepo.sets)
	require.Equal(t, 1, notes.calls)

	stats, err := svc.CollegeStats(context.Background(), studentClaims())
	require.NoError(t, err)
	assert.Equal(t, 12, stats.Notes)
	assert.Equal(t, 1, notes.calls, "counts must come from cache on the second call")
}

func TestStatsInvalidateForcesRecount(t *testing.T) {
	svc, _, notes := newStatsFixture()

	_, err := svc.CollegeStats(context.Background(), studentClaims())
	require.NoError(t, err)

	svc.Invalidate(context.Background(), "NIT Warangal")

	_, err = svc.CollegeStats(context.Background(), studentClaims())
	require.NoError(t, err)
	assert.Equal(t, 2, notes.calls)
}

func TestStatsDisabledCacheStillServes(t *testing.T) {
	cache := NewCacheService(nil, nil, time.Minute, nil, false)
	notes := &fixedCounter{count: 1}
	svc := NewStatsService(notes, &fixedCounter{}, &fixedCounter{}, &fixedCounter{}, &fixedThoughtCounter{}, cache, nil, StatsServiceConfig{})

	stats, err := svc.CollegeStats(context.Background(), studentClaims())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Notes)
}
