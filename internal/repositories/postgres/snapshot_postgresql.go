package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/analytics-service/internal/models"
	"github.com/SAP-F-2025/analytics-service/internal/repositories"
	"gorm.io/gorm"
)

type SnapshotPostgreSQL struct {
	db *gorm.DB
}

func NewSnapshotPostgreSQL(db *gorm.DB) repositories.SnapshotRepository {
	return &SnapshotPostgreSQL{db: db}
}

func (s *SnapshotPostgreSQL) Create(ctx context.Context, snapshot *models.AnalyticsSnapshot) error {
	return s.db.WithContext(ctx).Create(snapshot).Error
}

func (s *SnapshotPostgreSQL) GetLatestByFaculty(ctx context.Context, facultyID string) (*models.AnalyticsSnapshot, error) {
	var snapshot models.AnalyticsSnapshot
	err := s.db.WithContext(ctx).
		Where("faculty_id = ?", facultyID).
		Order("computed_at DESC").
		Take(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snapshot, nil
}

func (s *SnapshotPostgreSQL) ListByFaculty(ctx context.Context, facultyID string, filters repositories.SnapshotFilters) ([]*models.AnalyticsSnapshot, int64, error) {
	var snapshots []*models.AnalyticsSnapshot
	var total int64

	query := s.db.WithContext(ctx).Model(&models.AnalyticsSnapshot{}).Where("faculty_id = ?", facultyID)
	if filters.Since != nil {
		query = query.Where("computed_at >= ?", *filters.Since)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Order("computed_at DESC").Find(&snapshots).Error; err != nil {
		return nil, 0, err
	}
	return snapshots, total, nil
}

func (s *SnapshotPostgreSQL) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("computed_at < ?", cutoff).
		Delete(&models.AnalyticsSnapshot{})
	return result.RowsAffected, result.Error
}
