package service

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

type SelfEnrollRequest struct {
	CourseID       *uint `json:"courseId"`
	LearningPlanID *uint `json:"learningPlanId"`
}

type EnrollmentService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
	PlanRepo       *repository.LearningPlanRepository
	DB             *gorm.DB
}

func NewEnrollmentService(
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
	planRepo *repository.LearningPlanRepository,
	db *gorm.DB,
) *EnrollmentService {
	return &EnrollmentService{
		EnrollmentRepo: enrollmentRepo,
		CourseRepo:     courseRepo,
		PlanRepo:       planRepo,
		DB:             db,
	}
}

// SelfEnroll registers the user in a course or learning plan. Exactly one
// target must be set. Validation order: target exists (404), self-enrollment
// open (400), seat available (403), not already enrolled (409).
func (s *EnrollmentService) SelfEnroll(userID uint, req SelfEnrollRequest) (*model.Enrollment, error) {
	switch {
	case req.CourseID != nil && req.LearningPlanID == nil:
		return s.selfEnrollCourse(userID, *req.CourseID)
	case req.LearningPlanID != nil && req.CourseID == nil:
		return s.selfEnrollPlan(userID, *req.LearningPlanID)
	default:
		return nil, util.ErrInvalidRequest
	}
}

func (s *EnrollmentService) selfEnrollCourse(userID, courseID uint) (*model.Enrollment, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}

	if course.Status != model.CoursePublished {
		return nil, util.ErrCourseNotPublished
	}
	if !course.SelfEnrollment {
		return nil, util.ErrSelfEnrollDisabled
	}

	status := model.EnrollmentEnrolled
	if course.RequiresApproval {
		status = model.EnrollmentPendingApproval
	}

	enrollment := &model.Enrollment{
		UserID:   userID,
		CourseID: &course.ID,
		Status:   status,
	}

	// Limit check and insert run in one transaction; the unique
	// (user, course) index backstops concurrent duplicate enrollments.
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if course.MaxEnrollments != nil {
			count, err := s.EnrollmentRepo.CountActiveByCourse(tx, course.ID)
			if err != nil {
				return err
			}
			if count >= int64(*course.MaxEnrollments) {
				return util.ErrEnrollmentLimitReached
			}
		}
		return s.EnrollmentRepo.CreateTx(tx, enrollment)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrAlreadyEnrolled
		}
		return nil, err
	}
	return enrollment, nil
}

func (s *EnrollmentService) selfEnrollPlan(userID, planID uint) (*model.Enrollment, error) {
	plan, err := s.PlanRepo.FindByID(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	if !plan.SelfEnrollment {
		return nil, util.ErrSelfEnrollDisabled
	}

	enrollment := &model.Enrollment{
		UserID:         userID,
		LearningPlanID: &plan.ID,
		Status:         model.EnrollmentEnrolled,
	}
	if err := s.EnrollmentRepo.Create(enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrAlreadyEnrolled
		}
		return nil, err
	}
	return enrollment, nil
}

// Approve moves a pending enrollment to enrolled. The controller has already
// checked the caller manages the course.
func (s *EnrollmentService) Approve(enrollmentID uint) (*model.Enrollment, error) {
	enrollment, err := s.EnrollmentRepo.FindByID(enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	if enrollment.Status != model.EnrollmentPendingApproval {
		return enrollment, nil
	}
	enrollment.Status = model.EnrollmentEnrolled
	if err := s.EnrollmentRepo.Update(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *EnrollmentService) Reject(enrollmentID uint) error {
	enrollment, err := s.EnrollmentRepo.FindByID(enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotFound
		}
		return err
	}
	if enrollment.Status != model.EnrollmentPendingApproval {
		return util.ErrInvalidRequest
	}
	return s.EnrollmentRepo.DB.Delete(enrollment).Error
}

func (s *EnrollmentService) ListByUser(userID uint) ([]model.Enrollment, error) {
	return s.EnrollmentRepo.ListByUser(userID)
}

func (s *EnrollmentService) ListByCourse(courseID uint) ([]model.Enrollment, error) {
	return s.EnrollmentRepo.ListByCourse(courseID)
}

func (s *EnrollmentService) FindByUserAndCourse(userID, courseID uint) (*model.Enrollment, error) {
	return s.EnrollmentRepo.FindByUserAndCourse(userID, courseID)
}
