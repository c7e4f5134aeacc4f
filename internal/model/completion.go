package model

import "time"

// Completion records that a user finished either one content item (item-level,
// ContentItemID set) or an entire course/plan (course-level, CourseID or
// LearningPlanID set). The presence of a row is what counts as done.
// swagger:model Completion
type Completion struct {
	BaseModel
	UserID         uint  `gorm:"index:idx_user_item,unique;index:idx_user_course_cpl,unique;index:idx_user_plan_cpl,unique;not null" json:"userId"`
	ContentItemID  *uint `gorm:"index:idx_user_item,unique" json:"contentItemId"`
	CourseID       *uint `gorm:"index:idx_user_course_cpl,unique" json:"courseId"`
	LearningPlanID *uint `gorm:"index:idx_user_plan_cpl,unique" json:"learningPlanId"`

	Score          *float64   `json:"score"` // fraction 0..1, latest graded submission
	CertificateURL string     `gorm:"size:500" json:"certificateUrl"`
	BadgeAwarded   bool       `gorm:"default:false" json:"badgeAwarded"`
	CompletedAt    *time.Time `json:"completedAt"`
}

func (Completion) TableName() string {
	return "completions"
}
