package models

// Read-only rows served by the academic records backend. The analytics
// pipeline never writes these; they are fetched fresh each run.

// ClassContext is the snapshot of one class a faculty member teaches.
type ClassContext struct {
	SectionID   string `json:"section_id"`
	SyllabusID  string `json:"syllabus_id"`
	CourseCode  string `json:"course_code"`
	CourseTitle string `json:"course_title"`
}

// ClassStudent is one enrollment row of a class roster.
type ClassStudent struct {
	StudentID    string `json:"student_id"`
	EnrollmentID string `json:"enrollment_id"`
	FullName     string `json:"full_name"`
}

type ClassAssessment struct {
	AssessmentID string `json:"assessment_id"`
}

// SubAssessment is a gradable component of an assessment. Only published
// sub-assessments count toward any aggregate.
type SubAssessment struct {
	SubAssessmentID string  `json:"sub_assessment_id"`
	TotalPoints     float64 `json:"total_points"`
	IsPublished     bool    `json:"is_published"`
}

// GradeRow is one student's grade for a sub-assessment. A nil TotalScore
// means the submission has not been graded.
type GradeRow struct {
	EnrollmentID string   `json:"enrollment_id"`
	TotalScore   *float64 `json:"total_score"`
}

// AttendanceSummary is the per-enrollment attendance rollup.
type AttendanceSummary struct {
	AttendanceRate float64 `json:"attendance_rate"` // percent, [0,100]
	TotalSessions  int     `json:"total_sessions"`
}
