package postgres

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/analytics-service/internal/models"
	"github.com/SAP-F-2025/analytics-service/internal/repositories"
	"gorm.io/gorm"
)

// RecordsPostgreSQL reads the academic records schema directly. Used by
// deployments that share the records database instead of going through the
// records HTTP API. The schema is owned by the records service; everything
// here is read-only.
type RecordsPostgreSQL struct {
	db *gorm.DB
}

func NewRecordsPostgreSQL(db *gorm.DB) repositories.RecordSource {
	return &RecordsPostgreSQL{db: db}
}

func (r *RecordsPostgreSQL) ClassesForFaculty(ctx context.Context, facultyID string) ([]models.ClassContext, error) {
	var classes []models.ClassContext
	err := r.db.WithContext(ctx).Raw(`
		SELECT cs.id AS section_id,
		       cs.syllabus_id,
		       c.code AS course_code,
		       c.title AS course_title
		FROM class_sections cs
		JOIN syllabi s ON s.id = cs.syllabus_id
		JOIN courses c ON c.id = s.course_id
		WHERE cs.faculty_id = ?`, facultyID).Scan(&classes).Error
	if err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *RecordsPostgreSQL) StudentsForClass(ctx context.Context, sectionID string) ([]models.ClassStudent, error) {
	var students []models.ClassStudent
	err := r.db.WithContext(ctx).Raw(`
		SELECT e.student_id,
		       e.id AS enrollment_id,
		       st.full_name
		FROM enrollments e
		JOIN students st ON st.id = e.student_id
		WHERE e.section_id = ? AND e.status = 'active'`, sectionID).Scan(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (r *RecordsPostgreSQL) AssessmentsForClass(ctx context.Context, sectionID string) ([]models.ClassAssessment, error) {
	var assessments []models.ClassAssessment
	err := r.db.WithContext(ctx).Raw(`
		SELECT a.id AS assessment_id
		FROM assessments a
		WHERE a.section_id = ?`, sectionID).Scan(&assessments).Error
	if err != nil {
		return nil, err
	}
	return assessments, nil
}

func (r *RecordsPostgreSQL) SubAssessmentsForAssessment(ctx context.Context, assessmentID string) ([]models.SubAssessment, error) {
	var subs []models.SubAssessment
	err := r.db.WithContext(ctx).Raw(`
		SELECT sa.id AS sub_assessment_id,
		       sa.total_points,
		       sa.is_published
		FROM sub_assessments sa
		WHERE sa.assessment_id = ?`, assessmentID).Scan(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *RecordsPostgreSQL) GradesForSubAssessment(ctx context.Context, subAssessmentID string) ([]models.GradeRow, error) {
	var grades []models.GradeRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT g.enrollment_id,
		       g.total_score
		FROM grades g
		WHERE g.sub_assessment_id = ?`, subAssessmentID).Scan(&grades).Error
	if err != nil {
		return nil, err
	}
	return grades, nil
}

func (r *RecordsPostgreSQL) AttendanceSummaryForEnrollment(ctx context.Context, enrollmentID string) (*models.AttendanceSummary, error) {
	var summary models.AttendanceSummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT att.attendance_rate,
		       att.total_sessions
		FROM attendance_summaries att
		WHERE att.enrollment_id = ?`, enrollmentID).Take(&summary).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.AttendanceSummary{}, nil
		}
		return nil, err
	}
	return &summary, nil
}
