package model

// swagger:model LearningPlan
type LearningPlan struct {
	BaseModel
	Title          string `gorm:"size:200;not null" json:"title"`
	Description    string `gorm:"type:text" json:"description"`
	CreatedByID    uint   `gorm:"index;not null" json:"createdById"`
	PublicAccess   bool   `gorm:"default:false" json:"publicAccess"`
	SelfEnrollment bool   `gorm:"default:false" json:"selfEnrollment"`
	HasCertificate bool   `gorm:"default:false" json:"hasCertificate"`
	HasBadge       bool   `gorm:"default:false" json:"hasBadge"`

	Courses []LearningPlanCourse `gorm:"foreignKey:LearningPlanID" json:"courses,omitempty"`
}

func (LearningPlan) TableName() string {
	return "learning_plans"
}

// LearningPlanCourse orders a course inside a plan. Membership is unique per
// (plan, course).
type LearningPlanCourse struct {
	BaseModel
	LearningPlanID uint `gorm:"index:idx_plan_course,unique;not null" json:"learningPlanId"`
	CourseID       uint `gorm:"index:idx_plan_course,unique;not null" json:"courseId"`
	Order          int  `gorm:"column:course_order" json:"order"`

	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (LearningPlanCourse) TableName() string {
	return "learning_plan_courses"
}
