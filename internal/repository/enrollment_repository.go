package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Create(e *model.Enrollment) error {
	return r.DB.Create(e).Error
}

func (r *EnrollmentRepository) CreateTx(tx *gorm.DB, e *model.Enrollment) error {
	return tx.Create(e).Error
}

func (r *EnrollmentRepository) FindByUserAndCourse(userID, courseID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentRepository) FindByUserAndPlan(userID, planID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("user_id = ? AND learning_plan_id = ?", userID, planID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CountActiveByCourse counts enrollments that occupy a seat. Pending requests
// do not count against the limit.
func (r *EnrollmentRepository) CountActiveByCourse(tx *gorm.DB, courseID uint) (int64, error) {
	if tx == nil {
		tx = r.DB
	}
	var count int64
	err := tx.Model(&model.Enrollment{}).
		Where("course_id = ? AND status IN ?", courseID,
			[]model.EnrollmentStatus{model.EnrollmentEnrolled, model.EnrollmentInProgress, model.EnrollmentCompleted}).
		Count(&count).Error
	return count, err
}

func (r *EnrollmentRepository) CountByCourseAndStatus(courseID uint, status model.EnrollmentStatus) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("course_id = ? AND status = ?", courseID, status).Count(&count).Error
	return count, err
}

func (r *EnrollmentRepository) CountByPlanAndStatus(planID uint, status model.EnrollmentStatus) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("learning_plan_id = ? AND status = ?", planID, status).Count(&count).Error
	return count, err
}

func (r *EnrollmentRepository) Update(e *model.Enrollment) error {
	return r.DB.Save(e).Error
}

func (r *EnrollmentRepository) UpdateStatus(id uint, status model.EnrollmentStatus) error {
	return r.DB.Model(&model.Enrollment{}).Where("id = ?", id).Update("status", status).Error
}

func (r *EnrollmentRepository) ListByUser(userID uint) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.DB.Where("user_id = ?", userID).Order("id DESC").Find(&list).Error
	return list, err
}

func (r *EnrollmentRepository) ListByCourse(courseID uint) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.DB.Where("course_id = ?", courseID).Find(&list).Error
	return list, err
}

func (r *EnrollmentRepository) FindByID(id uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.First(&e, id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}
