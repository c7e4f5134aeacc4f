package model

// InstructorAssignment grants instructor-level access on a course or plan to a
// non-creator instructor. Exactly one of CourseID/LearningPlanID is set.
// swagger:model InstructorAssignment
type InstructorAssignment struct {
	BaseModel
	UserID         uint  `gorm:"index:idx_instr_course,unique;index:idx_instr_plan,unique;not null" json:"userId"`
	CourseID       *uint `gorm:"index:idx_instr_course,unique" json:"courseId"`
	LearningPlanID *uint `gorm:"index:idx_instr_plan,unique" json:"learningPlanId"`
	AssignedByID   uint  `gorm:"not null" json:"assignedById"`
}

func (InstructorAssignment) TableName() string {
	return "instructor_assignments"
}
