package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campus-vault/campusvault-api/internal/models"
	appErrors "github.com/campus-vault/campusvault-api/pkg/errors"
)

type noteCounter interface {
	CountByCollege(ctx context.Context, college string) (int, error)
}

type pyqCounter interface {
	CountByCollege(ctx context.Context, college string) (int, error)
}

type timetableCounter interface {
	CountByCollege(ctx context.Context, college string) (int, error)
}

type announcementCounter interface {
	CountByCollege(ctx context.Context, college string) (int, error)
}

type thoughtCounter interface {
	CountByCollege(ctx context.Context, college string, now time.Time) (int, error)
}

// StatsServiceConfig tunes stats caching.
type StatsServiceConfig struct {
	CacheTTL time.Duration
}

// StatsService aggregates per-college counts, served from cache when warm.
type StatsService struct {
	notes         noteCounter
	pyqs          pyqCounter
	timetables    timetableCounter
	announcements announcementCounter
	thoughts      thoughtCounter
	cache         *CacheService
	logger        *zap.Logger
	config        StatsServiceConfig
	now           func() time.Time
}

// NewStatsService constructs the service.
func NewStatsService(notes noteCounter, pyqs pyqCounter, timetables timetableCounter, announcements announcementCounter, thoughts thoughtCounter, cache *CacheService, logger *zap.Logger, config StatsServiceConfig) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 5 * time.Minute
	}
	return &StatsService{
		notes:         notes,
		pyqs:          pyqs,
		timetables:    timetables,
		announcements: announcements,
		thoughts:      thoughts,
		cache:         cache,
		logger:        logger,
		config:        config,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source, used by tests.
func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	if now != nil {
		s.now = now
	}
	return s
}

// CollegeStats returns aggregate counts for the actor's college.
func (s *StatsService) CollegeStats(ctx context.Context, actor *models.JWTClaims) (*models.CollegeStats, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	key := statsCacheKey(actor.College)

	var cached models.CollegeStats
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	stats, err := s.collect(ctx, actor.College)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, stats, s.config.CacheTTL); err != nil {
		s.logger.Warn("failed to cache college stats", zap.String("college", actor.College), zap.Error(err))
	}
	return stats, nil
}

// Invalidate drops the cached stats for a college after a write.
func (s *StatsService) Invalidate(ctx context.Context, college string) {
	if err := s.cache.Invalidate(ctx, statsCacheKey(college)); err != nil {
		s.logger.Warn("failed to invalidate college stats", zap.String("college", college), zap.Error(err))
	}
}

func (s *StatsService) collect(ctx context.Context, college string) (*models.CollegeStats, error) {
	notes, err := s.notes.CountByCollege(ctx, college)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to count notes")
	}
	pyqs, err := s.pyqs.CountByCollege(ctx, college)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to count question papers")
	}
	timetables, err := s.timetables.CountByCollege(ctx, college)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to count timetables")
	}
	announcements, err := s.announcements.CountByCollege(ctx, college)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to count announcements")
	}
	thoughts, err := s.thoughts.CountByCollege(ctx, college, s.now())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to count thoughts")
	}

	return &models.CollegeStats{
		College:        college,
		Notes:          notes,
		PYQs:           pyqs,
		Timetables:     timetables,
		Announcements:  announcements,
		ActiveThoughts: thoughts,
		TotalResources: notes + pyqs + timetables,
		GeneratedAt:    s.now(),
	}, nil
}

func statsCacheKey(college string) string {
	return fmt.Sprintf("stats:college:%s", slugify(college))
}
