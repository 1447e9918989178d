package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/SAP-F-2025/analytics-service/internal/models"
	"github.com/SAP-F-2025/analytics-service/internal/repositories"
	"github.com/SAP-F-2025/analytics-service/internal/utils"
)

// RecordsHTTP adapts the records backend's read endpoints to the
// RecordSource interface. The backend represents "no data" as an empty
// JSON array (or 404 for scalar lookups); only transport and 5xx failures
// surface as errors.
type RecordsHTTP struct {
	client  *http.Client
	baseURL string
	logger  utils.Logger
}

func NewRecordsHTTP(baseURL string, timeout time.Duration, logger utils.Logger) repositories.RecordSource {
	return &RecordsHTTP{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		logger:  logger,
	}
}

func (r *RecordsHTTP) ClassesForFaculty(ctx context.Context, facultyID string) ([]models.ClassContext, error) {
	var classes []models.ClassContext
	if err := r.getJSON(ctx, fmt.Sprintf("/faculties/%s/classes", url.PathEscape(facultyID)), &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *RecordsHTTP) StudentsForClass(ctx context.Context, sectionID string) ([]models.ClassStudent, error) {
	var students []models.ClassStudent
	if err := r.getJSON(ctx, fmt.Sprintf("/classes/%s/students", url.PathEscape(sectionID)), &students); err != nil {
		return nil, err
	}
	return students, nil
}

func (r *RecordsHTTP) AssessmentsForClass(ctx context.Context, sectionID string) ([]models.ClassAssessment, error) {
	var assessments []models.ClassAssessment
	if err := r.getJSON(ctx, fmt.Sprintf("/classes/%s/assessments", url.PathEscape(sectionID)), &assessments); err != nil {
		return nil, err
	}
	return assessments, nil
}

func (r *RecordsHTTP) SubAssessmentsForAssessment(ctx context.Context, assessmentID string) ([]models.SubAssessment, error) {
	var subs []models.SubAssessment
	if err := r.getJSON(ctx, fmt.Sprintf("/assessments/%s/sub-assessments", url.PathEscape(assessmentID)), &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *RecordsHTTP) GradesForSubAssessment(ctx context.Context, subAssessmentID string) ([]models.GradeRow, error) {
	var grades []models.GradeRow
	if err := r.getJSON(ctx, fmt.Sprintf("/sub-assessments/%s/grades", url.PathEscape(subAssessmentID)), &grades); err != nil {
		return nil, err
	}
	return grades, nil
}

func (r *RecordsHTTP) AttendanceSummaryForEnrollment(ctx context.Context, enrollmentID string) (*models.AttendanceSummary, error) {
	var summary models.AttendanceSummary
	path := fmt.Sprintf("/enrollments/%s/attendance-summary", url.PathEscape(enrollmentID))
	if err := r.getJSON(ctx, path, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *RecordsHTTP) getJSON(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build records request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("records request %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// Scalar lookups use 404 for absent rows; leave dest zeroed.
		io.Copy(io.Discard, resp.Body)
		return nil
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("records request %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode records response %s: %w", path, err)
	}
	return nil
}
