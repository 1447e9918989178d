package services

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SAP-F-2025/analytics-service/internal/models"
)

func TestFeatureBuilder_Build(t *testing.T) {
	ctx := context.Background()

	t.Run("one feature per enrolled student", func(t *testing.T) {
		source := newFakeRecordSource()
		source.addClass("F1", "SEC-1", 100)
		source.addStudent("SEC-1", "ST-1", "EN-1", scoreOf(90), 95)
		source.addStudent("SEC-1", "ST-2", "EN-2", scoreOf(60), 70)

		builder := NewFeatureBuilder(source, testLogger(), 4)
		features := builder.Build(ctx, source.classes["F1"], nil)

		assert.Len(t, features, 2)
		assert.Equal(t, "ST-1", features[0].StudentID)
		assert.Equal(t, 90.0, features[0].AverageGrade)
		assert.Equal(t, 95.0, features[0].AttendanceRate)
		assert.Equal(t, 30, features[0].TotalSessions)
		assert.Equal(t, 1, features[0].CompletedAssessments)
	})

	t.Run("student in two classes gets two feature rows", func(t *testing.T) {
		source := newFakeRecordSource()
		source.addClass("F1", "SEC-1", 100)
		source.addClass("F1", "SEC-2", 100)
		source.addStudent("SEC-1", "ST-1", "EN-1", scoreOf(90), 95)
		source.addStudent("SEC-2", "ST-1", "EN-2", scoreOf(50), 95)

		builder := NewFeatureBuilder(source, testLogger(), 4)
		features := builder.Build(ctx, source.classes["F1"], nil)

		assert.Len(t, features, 2)
		// Grades stay scoped to their class, no merge across enrollments.
		assert.Equal(t, 90.0, features[0].AverageGrade)
		assert.Equal(t, 50.0, features[1].AverageGrade)
	})

	t.Run("missing attendance defaults to zero", func(t *testing.T) {
		source := newFakeRecordSource()
		source.addClass("F1", "SEC-1", 100)
		source.addStudent("SEC-1", "ST-1", "EN-1", scoreOf(80), 90)
		delete(source.attendance, "EN-1")

		builder := NewFeatureBuilder(source, testLogger(), 4)
		features := builder.Build(ctx, source.classes["F1"], nil)

		assert.Len(t, features, 1)
		assert.Equal(t, 0.0, features[0].AttendanceRate)
		assert.Equal(t, 0, features[0].TotalSessions)
		assert.Equal(t, 80.0, features[0].AverageGrade)
	})

	t.Run("attendance fetch failure keeps the feature row", func(t *testing.T) {
		source := newFakeRecordSource()
		source.addClass("F1", "SEC-1", 100)
		source.addStudent("SEC-1", "ST-1", "EN-1", scoreOf(80), 90)
		source.failures["attendance:EN-1"] = assert.AnError

		builder := NewFeatureBuilder(source, testLogger(), 4)
		features := builder.Build(ctx, source.classes["F1"], nil)

		assert.Len(t, features, 1)
		assert.Equal(t, 0.0, features[0].AttendanceRate)
	})

	t.Run("ungraded and corrupt rows leave grade stats at zero", func(t *testing.T) {
		source := newFakeRecordSource()
		source.addClass("F1", "SEC-1", 100)
		source.addStudent("SEC-1", "ST-1", "EN-1", nil, 90)
		source.addStudent("SEC-1", "ST-2", "EN-2", scoreOf(150), 90)

		builder := NewFeatureBuilder(source, testLogger(), 4)
		features := builder.Build(ctx, source.classes["F1"], nil)

		assert.Len(t, features, 2)
		for _, f := range features {
			assert.Equal(t, 0.0, f.AverageGrade)
			assert.Equal(t, 0, f.CompletedAssessments)
		}
	})

	t.Run("output order is deterministic under concurrency", func(t *testing.T) {
		source := newFakeRecordSource()
		source.addClass("F1", "SEC-1", 100)
		for _, id := range []string{"1", "2", "3", "4", "5", "6", "7", "8"} {
			source.addStudent("SEC-1", "ST-"+id, "EN-"+id, scoreOf(80), 90)
		}

		builder := NewFeatureBuilder(source, testLogger(), 8)
		first := builder.Build(ctx, source.classes["F1"], nil)
		second := builder.Build(ctx, source.classes["F1"], nil)

		assert.Equal(t, first, second)
		for i, f := range first {
			assert.Equal(t, "EN-"+string(rune('1'+i)), f.EnrollmentID)
		}
	})

	t.Run("progress counts are strictly increasing", func(t *testing.T) {
		source := newFakeRecordSource()
		source.addClass("F1", "SEC-1", 100)
		for _, id := range []string{"1", "2", "3", "4", "5"} {
			source.addStudent("SEC-1", "ST-"+id, "EN-"+id, scoreOf(80), 90)
		}

		var (
			mu        sync.Mutex
			processed []int
			totals    []int
		)
		builder := NewFeatureBuilder(source, testLogger(), 4)
		builder.Build(ctx, source.classes["F1"], func(done, total int) {
			mu.Lock()
			processed = append(processed, done)
			totals = append(totals, total)
			mu.Unlock()
		})

		// Callback order can interleave under concurrency, but each count
		// from 1..n is delivered exactly once.
		assert.Len(t, processed, 5)
		sort.Ints(processed)
		assert.Equal(t, []int{1, 2, 3, 4, 5}, processed)
		for _, total := range totals {
			assert.Equal(t, 5, total)
		}
	})

	t.Run("failing roster yields no features for that class", func(t *testing.T) {
		source := newFakeRecordSource()
		source.addClass("F1", "SEC-1", 100)
		source.addClass("F1", "SEC-2", 100)
		source.addStudent("SEC-1", "ST-1", "EN-1", scoreOf(90), 95)
		source.addStudent("SEC-2", "ST-2", "EN-2", scoreOf(70), 80)
		source.failures["students:SEC-2"] = assert.AnError

		builder := NewFeatureBuilder(source, testLogger(), 4)
		features := builder.Build(ctx, source.classes["F1"], nil)

		assert.Len(t, features, 1)
		assert.Equal(t, "ST-1", features[0].StudentID)
	})
}

func TestStudentFeature_Summary(t *testing.T) {
	f := models.StudentFeature{
		StudentID:            "ST-1",
		EnrollmentID:         "EN-1",
		FullName:             "Ada Lovelace",
		AttendanceRate:       92,
		AverageGrade:         88,
		TotalSessions:        30,
		CompletedAssessments: 6,
	}

	summary := f.Summary()
	assert.Equal(t, models.StudentSummary{
		StudentID:      "ST-1",
		EnrollmentID:   "EN-1",
		FullName:       "Ada Lovelace",
		AttendanceRate: 92,
		AverageGrade:   88,
	}, summary)
}
