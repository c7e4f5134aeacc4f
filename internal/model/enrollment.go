package model

type EnrollmentStatus string

const (
	EnrollmentEnrolled        EnrollmentStatus = "enrolled"
	EnrollmentInProgress      EnrollmentStatus = "in_progress"
	EnrollmentPendingApproval EnrollmentStatus = "pending_approval"
	EnrollmentCompleted       EnrollmentStatus = "completed"
)

// Enrollment registers a user in exactly one of a course or a learning plan.
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID         uint             `gorm:"index:idx_user_course,unique;index:idx_user_plan,unique;not null" json:"userId"`
	CourseID       *uint            `gorm:"index:idx_user_course,unique" json:"courseId"`
	LearningPlanID *uint            `gorm:"index:idx_user_plan,unique" json:"learningPlanId"`
	Status         EnrollmentStatus `gorm:"size:20;default:'enrolled';index" json:"status"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
