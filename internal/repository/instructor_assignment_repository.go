package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type InstructorAssignmentRepository struct {
	DB *gorm.DB
}

func NewInstructorAssignmentRepository(db *gorm.DB) *InstructorAssignmentRepository {
	return &InstructorAssignmentRepository{DB: db}
}

func (r *InstructorAssignmentRepository) Create(a *model.InstructorAssignment) error {
	return r.DB.Create(a).Error
}

func (r *InstructorAssignmentRepository) ExistsForCourse(userID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.InstructorAssignment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).Count(&count).Error
	return count > 0, err
}

func (r *InstructorAssignmentRepository) ExistsForPlan(userID, planID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.InstructorAssignment{}).
		Where("user_id = ? AND learning_plan_id = ?", userID, planID).Count(&count).Error
	return count > 0, err
}

func (r *InstructorAssignmentRepository) DeleteForCourse(userID, courseID uint) error {
	return r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&model.InstructorAssignment{}).Error
}
