package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type LearningPlanRepository struct {
	DB *gorm.DB
}

func NewLearningPlanRepository(db *gorm.DB) *LearningPlanRepository {
	return &LearningPlanRepository{DB: db}
}

func (r *LearningPlanRepository) Create(plan *model.LearningPlan) error {
	return r.DB.Create(plan).Error
}

func (r *LearningPlanRepository) FindByID(id uint) (*model.LearningPlan, error) {
	var plan model.LearningPlan
	err := r.DB.First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *LearningPlanRepository) Update(plan *model.LearningPlan) error {
	return r.DB.Save(plan).Error
}

func (r *LearningPlanRepository) Delete(id uint) error {
	return r.DB.Delete(&model.LearningPlan{}, id).Error
}

func (r *LearningPlanRepository) List(page, limit int) ([]model.LearningPlan, int64, error) {
	var plans []model.LearningPlan
	var total int64
	if err := r.DB.Model(&model.LearningPlan{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.DB.Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&plans).Error
	return plans, total, err
}

// ListCourses returns the plan's memberships in plan order, with courses.
func (r *LearningPlanRepository) ListCourses(planID uint) ([]model.LearningPlanCourse, error) {
	var rows []model.LearningPlanCourse
	err := r.DB.Preload("Course").
		Where("learning_plan_id = ?", planID).Order("course_order ASC").Find(&rows).Error
	return rows, err
}

func (r *LearningPlanRepository) FindMembership(planID, courseID uint) (*model.LearningPlanCourse, error) {
	var row model.LearningPlanCourse
	err := r.DB.Where("learning_plan_id = ? AND course_id = ?", planID, courseID).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *LearningPlanRepository) AddCourse(row *model.LearningPlanCourse) error {
	return r.DB.Create(row).Error
}

func (r *LearningPlanRepository) UpdateMembership(row *model.LearningPlanCourse) error {
	return r.DB.Save(row).Error
}

func (r *LearningPlanRepository) RemoveCourse(planID, courseID uint) error {
	return r.DB.Where("learning_plan_id = ? AND course_id = ?", planID, courseID).
		Delete(&model.LearningPlanCourse{}).Error
}

// ListPlansContainingCourse feeds the transitive course-through-plan access
// grant.
func (r *LearningPlanRepository) ListPlansContainingCourse(courseID uint) ([]model.LearningPlan, error) {
	var plans []model.LearningPlan
	err := r.DB.
		Joins("JOIN learning_plan_courses ON learning_plan_courses.learning_plan_id = learning_plans.id").
		Where("learning_plan_courses.course_id = ? AND learning_plan_courses.deleted_at IS NULL", courseID).
		Find(&plans).Error
	return plans, err
}
