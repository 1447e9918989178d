package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	base := errors.New("connection refused")

	t.Run("source fetch error", func(t *testing.T) {
		err := NewSourceFetchError("students_for_class", "SEC-1", base)

		assert.Equal(t, "record source fetch students_for_class(SEC-1) failed: connection refused", err.Error())
		assert.ErrorIs(t, err, base)
		assert.True(t, IsSourceFetch(err))
		assert.False(t, IsComputation(err))
	})

	t.Run("computation error", func(t *testing.T) {
		err := NewComputationError(StageClustering, base)

		assert.Contains(t, err.Error(), "stage clustering")
		assert.ErrorIs(t, err, base)
		assert.True(t, IsComputation(err))
		assert.False(t, IsCache(err))
	})

	t.Run("cache error", func(t *testing.T) {
		err := NewCacheError("put", base)

		assert.Equal(t, "analytics cache put failed: connection refused", err.Error())
		assert.ErrorIs(t, err, base)
		assert.True(t, IsCache(err))
		assert.False(t, IsSourceFetch(err))
	})

	t.Run("wrapped errors keep their classification", func(t *testing.T) {
		err := fmt.Errorf("pipeline: %w", NewSourceFetchError("grades_for_sub_assessment", "SUB-1", base))

		assert.True(t, IsSourceFetch(err))
		assert.ErrorIs(t, err, base)
	})

	t.Run("missing faculty id counts as validation", func(t *testing.T) {
		assert.True(t, IsValidation(ErrFacultyIDRequired))
		assert.True(t, IsValidation(fmt.Errorf("handler: %w", ErrFacultyIDRequired)))
		assert.False(t, IsValidation(base))
	})
}
