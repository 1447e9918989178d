package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/SAP-F-2025/analytics-service/internal/cache"
	"github.com/SAP-F-2025/analytics-service/internal/events"
	"github.com/SAP-F-2025/analytics-service/internal/models"
	"github.com/SAP-F-2025/analytics-service/internal/repositories"
	"github.com/SAP-F-2025/analytics-service/internal/utils"
)

// ===== PIPELINE STATE =====

// Stage identifies where a computation run currently is. Stages advance in
// a fixed order; Failed runs still complete with an empty bundle.
type Stage string

const (
	StageIdle            Stage = "idle"
	StageInit            Stage = "init"
	StageMetrics         Stage = "metrics"
	StageFeatures        Stage = "features"
	StageClustering      Stage = "clustering"
	StageInsights        Stage = "insights"
	StageRecommendations Stage = "recommendations"
	StageCacheWrite      Stage = "cache_write"
	StageDone            Stage = "done"
	StageFailed          Stage = "failed"
)

// Progress is a coarse checkpoint emitted while a computation runs.
type Progress struct {
	Stage   Stage   `json:"stage"`
	Percent float64 `json:"percent"`
}

// ProgressFunc receives progress checkpoints. Reported percentages are
// monotonically non-decreasing within one run.
type ProgressFunc func(Progress)

// ===== SERVICE =====

// AnalyticsService computes, caches and serves per-faculty performance
// analytics. Computation never fails from the caller's point of view: a
// broken run yields an empty bundle and a logged error, because the
// consuming dashboards must always have something to render.
type AnalyticsService interface {
	// ComputeAnalytics returns the cached bundle when present, otherwise
	// runs the full pipeline. onProgress may be nil.
	ComputeAnalytics(ctx context.Context, facultyID string, onProgress ProgressFunc) (*models.AnalyticsBundle, error)

	// GetCachedAnalytics returns the cached entry, or nil when absent.
	GetCachedAnalytics(ctx context.Context, facultyID string) (*models.CacheEntry, error)

	// RefreshAnalytics invalidates the cache and recomputes.
	RefreshAnalytics(ctx context.Context, facultyID string, onProgress ProgressFunc) (*models.AnalyticsBundle, error)

	// ListSnapshots returns persisted run history, newest first.
	ListSnapshots(ctx context.Context, facultyID string, filters repositories.SnapshotFilters) ([]*models.AnalyticsSnapshot, int64, error)
}

type analyticsService struct {
	source    repositories.RecordSource
	cache     cache.AnalyticsCache
	snapshots repositories.SnapshotRepository // optional
	publisher events.EventPublisher
	logger    utils.Logger
	validator *utils.Validator

	aggregator  *MetricsAggregator
	features    *FeatureBuilder
	clusterer   ClusterStrategy
	insightGen  *InsightGenerator
	recommender *RecommendationGenerator

	locks keyedMutex
}

func NewAnalyticsService(
	source repositories.RecordSource,
	cacheStore cache.AnalyticsCache,
	snapshots repositories.SnapshotRepository,
	publisher events.EventPublisher,
	logger utils.Logger,
	validator *utils.Validator,
	workers int,
) AnalyticsService {
	return NewAnalyticsServiceWithStrategy(source, cacheStore, snapshots, publisher, logger, validator, workers, NewNearestCentroidClassifier())
}

// NewAnalyticsServiceWithStrategy allows swapping the cluster strategy,
// e.g. for the iterative k-means variant.
func NewAnalyticsServiceWithStrategy(
	source repositories.RecordSource,
	cacheStore cache.AnalyticsCache,
	snapshots repositories.SnapshotRepository,
	publisher events.EventPublisher,
	logger utils.Logger,
	validator *utils.Validator,
	workers int,
	strategy ClusterStrategy,
) AnalyticsService {
	return &analyticsService{
		source:      source,
		cache:       cacheStore,
		snapshots:   snapshots,
		publisher:   publisher,
		logger:      logger.With("service", "analytics"),
		validator:   validator,
		aggregator:  NewMetricsAggregator(source, logger, workers),
		features:    NewFeatureBuilder(source, logger, workers),
		clusterer:   strategy,
		insightGen:  NewInsightGenerator(),
		recommender: NewRecommendationGenerator(),
		locks:       keyedMutex{locks: make(map[string]*sync.Mutex)},
	}
}

// ===== PUBLIC OPERATIONS =====

func (s *analyticsService) ComputeAnalytics(ctx context.Context, facultyID string, onProgress ProgressFunc) (*models.AnalyticsBundle, error) {
	if strings.TrimSpace(facultyID) == "" {
		return nil, ErrFacultyIDRequired
	}

	// Per-faculty serialization: a second request for the same faculty
	// waits and then hits the fresh cache instead of recomputing.
	unlock := s.locks.lock(facultyID)
	defer unlock()

	entry, err := s.cache.Get(ctx, facultyID)
	if err != nil {
		s.logger.Warn("Proceeding without cache", "error", NewCacheError("get", err).Error(), "faculty_id", facultyID)
	}
	if entry != nil {
		if onProgress != nil {
			onProgress(Progress{Stage: StageDone, Percent: 100})
		}
		s.logger.Debug("Serving analytics from cache",
			"faculty_id", facultyID,
			"age_hours", entry.AgeHours(time.Now()))
		bundle := entry.Bundle
		return &bundle, nil
	}

	return s.recompute(ctx, facultyID, onProgress, false)
}

func (s *analyticsService) GetCachedAnalytics(ctx context.Context, facultyID string) (*models.CacheEntry, error) {
	if strings.TrimSpace(facultyID) == "" {
		return nil, ErrFacultyIDRequired
	}

	entry, err := s.cache.Get(ctx, facultyID)
	if err != nil {
		// Cache failure reads as a miss.
		s.logger.Warn("Cache read failed", "error", NewCacheError("get", err).Error(), "faculty_id", facultyID)
		return nil, nil
	}
	return entry, nil
}

func (s *analyticsService) RefreshAnalytics(ctx context.Context, facultyID string, onProgress ProgressFunc) (*models.AnalyticsBundle, error) {
	if strings.TrimSpace(facultyID) == "" {
		return nil, ErrFacultyIDRequired
	}

	unlock := s.locks.lock(facultyID)
	defer unlock()

	if err := s.cache.Invalidate(ctx, facultyID); err != nil {
		s.logger.Warn("Cache invalidation failed", "error", NewCacheError("invalidate", err).Error(), "faculty_id", facultyID)
	}

	bundle, err := s.recompute(ctx, facultyID, onProgress, true)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.NewAnalyticsEvent(events.EventCacheRefreshed, events.CacheRefreshedEvent{
		FacultyID: facultyID,
	}))
	return bundle, nil
}

func (s *analyticsService) ListSnapshots(ctx context.Context, facultyID string, filters repositories.SnapshotFilters) ([]*models.AnalyticsSnapshot, int64, error) {
	if strings.TrimSpace(facultyID) == "" {
		return nil, 0, ErrFacultyIDRequired
	}
	if s.snapshots == nil {
		return []*models.AnalyticsSnapshot{}, 0, nil
	}
	return s.snapshots.ListByFaculty(ctx, facultyID, filters)
}

// ===== PIPELINE =====

// recompute runs the full pipeline under the caller-held faculty lock.
func (s *analyticsService) recompute(ctx context.Context, facultyID string, onProgress ProgressFunc, refresh bool) (*models.AnalyticsBundle, error) {
	start := time.Now()
	reporter := newProgressReporter(onProgress)

	s.publishEvent(ctx, events.NewAnalyticsEvent(events.EventComputationStarted, events.ComputationStartedEvent{
		FacultyID: facultyID,
		Refresh:   refresh,
	}))

	bundle, err := s.runPipeline(ctx, facultyID, reporter)
	degraded := false
	if err != nil {
		// Caller-initiated cancellation is the one failure that surfaces.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		// Fail-safe: the dashboard always gets a bundle. Loudly logged so
		// operators see the real failure.
		s.logger.Error("Analytics computation failed, substituting empty bundle",
			"faculty_id", facultyID,
			"stage", StageFailed,
			"error", err)
		empty := models.EmptyBundle()
		bundle = &empty
		degraded = true
	}

	if !degraded {
		s.storeResults(ctx, facultyID, bundle)
	}
	reporter.report(StageDone, 100)

	s.publishEvent(ctx, events.NewAnalyticsEvent(events.EventComputationCompleted, events.ComputationCompletedEvent{
		FacultyID:     facultyID,
		DurationMs:    time.Since(start).Milliseconds(),
		TotalStudents: bundle.Performance.TotalStudents,
		ActiveCourses: bundle.Performance.ActiveCourses,
		AverageGrade:  bundle.Performance.AverageGrade,
		Degraded:      degraded,
	}))

	s.logger.Info("Analytics computation finished",
		"faculty_id", facultyID,
		"duration", time.Since(start).String(),
		"total_students", bundle.Performance.TotalStudents,
		"degraded", degraded)

	return bundle, nil
}

func (s *analyticsService) runPipeline(ctx context.Context, facultyID string, reporter *progressReporter) (bundle *models.AnalyticsBundle, err error) {
	stage := StageInit
	defer func() {
		if r := recover(); r != nil {
			bundle = nil
			err = NewComputationError(stage, fmt.Errorf("panic: %v", r))
		}
	}()

	reporter.report(StageInit, 0)

	classes, err := s.source.ClassesForFaculty(ctx, facultyID)
	if err != nil {
		return nil, NewSourceFetchError("classes_for_faculty", facultyID, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stage = StageMetrics
	metrics := s.aggregator.Aggregate(ctx, classes)
	reporter.report(StageMetrics, 20)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stage = StageFeatures
	features := s.features.Build(ctx, classes, func(processed, total int) {
		// Student fan-out occupies the 25-60 band of overall progress.
		reporter.report(StageFeatures, 25+35*float64(processed)/float64(total))
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stage = StageClustering
	reporter.report(StageClustering, 60)
	clusters := s.clusterer.Cluster(features)

	stage = StageInsights
	reporter.report(StageInsights, 80)
	insights := s.insightGen.Generate(clusters, metrics)

	stage = StageRecommendations
	reporter.report(StageRecommendations, 90)
	recommendations := s.recommender.Generate(clusters, insights)

	stage = StageCacheWrite
	reporter.report(StageCacheWrite, 95)

	return &models.AnalyticsBundle{
		Clustering:      clusters,
		Insights:        insights,
		Recommendations: recommendations,
		Performance:     metrics,
	}, nil
}

// storeResults writes the cache entry and history snapshot. Both writes
// are best-effort; failures are logged and swallowed.
func (s *analyticsService) storeResults(ctx context.Context, facultyID string, bundle *models.AnalyticsBundle) {
	if err := s.cache.Put(ctx, facultyID, *bundle); err != nil {
		s.logger.Warn("Proceeding uncached", "error", NewCacheError("put", err).Error(), "faculty_id", facultyID)
	}

	if s.snapshots == nil {
		return
	}
	payload, err := json.Marshal(bundle)
	if err != nil {
		s.logger.Warn("Skipping analytics snapshot", "error", err, "faculty_id", facultyID)
		return
	}
	snapshot := &models.AnalyticsSnapshot{
		FacultyID:      facultyID,
		AverageGrade:   bundle.Performance.AverageGrade,
		CompletionRate: bundle.Performance.CompletionRate,
		TotalStudents:  bundle.Performance.TotalStudents,
		AtRiskStudents: bundle.Performance.AtRiskStudents,
		ActiveCourses:  bundle.Performance.ActiveCourses,
		Bundle:         payload,
		ComputedAt:     time.Now(),
	}
	if err := s.snapshots.Create(ctx, snapshot); err != nil {
		s.logger.Warn("Failed to persist analytics snapshot", "error", err, "faculty_id", facultyID)
	}
}

func (s *analyticsService) publishEvent(ctx context.Context, event *events.AnalyticsEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAnalyticsEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish analytics event", "event_type", event.Type, "error", err)
	}
}

// ===== PROGRESS REPORTING =====

// progressReporter clamps reported progress to be monotonic, which keeps
// the concurrent feature fan-out from moving the bar backwards.
type progressReporter struct {
	mu   sync.Mutex
	fn   ProgressFunc
	best float64
}

func newProgressReporter(fn ProgressFunc) *progressReporter {
	return &progressReporter{fn: fn}
}

func (r *progressReporter) report(stage Stage, percent float64) {
	if r.fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if percent < r.best {
		return
	}
	r.best = percent
	r.fn(Progress{Stage: stage, Percent: percent})
}

// ===== PER-KEY LOCKING =====

// keyedMutex serializes recomputations per faculty ID. The lock map grows
// with the number of distinct faculties, which is small and bounded.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
