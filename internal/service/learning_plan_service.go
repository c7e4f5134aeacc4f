package service

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

type LearningPlanRequest struct {
	Title          string `json:"title" binding:"required"`
	Description    string `json:"description"`
	PublicAccess   *bool  `json:"publicAccess"`
	SelfEnrollment *bool  `json:"selfEnrollment"`
	HasCertificate *bool  `json:"hasCertificate"`
	HasBadge       *bool  `json:"hasBadge"`
}

type PlanCourseRequest struct {
	CourseID uint `json:"courseId"`
	Order    *int `json:"order"`
}

type LearningPlanService struct {
	PlanRepo   *repository.LearningPlanRepository
	CourseRepo *repository.CourseRepository
}

func NewLearningPlanService(planRepo *repository.LearningPlanRepository, courseRepo *repository.CourseRepository) *LearningPlanService {
	return &LearningPlanService{PlanRepo: planRepo, CourseRepo: courseRepo}
}

func (s *LearningPlanService) Create(creatorID uint, req LearningPlanRequest) (*model.LearningPlan, error) {
	plan := &model.LearningPlan{
		Title:       req.Title,
		Description: req.Description,
		CreatedByID: creatorID,
	}
	applyPlanFlags(plan, req)
	if err := s.PlanRepo.Create(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *LearningPlanService) Update(plan *model.LearningPlan, req LearningPlanRequest) (*model.LearningPlan, error) {
	plan.Title = req.Title
	plan.Description = req.Description
	applyPlanFlags(plan, req)
	if err := s.PlanRepo.Update(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func applyPlanFlags(plan *model.LearningPlan, req LearningPlanRequest) {
	if req.PublicAccess != nil {
		plan.PublicAccess = *req.PublicAccess
	}
	if req.SelfEnrollment != nil {
		plan.SelfEnrollment = *req.SelfEnrollment
	}
	if req.HasCertificate != nil {
		plan.HasCertificate = *req.HasCertificate
	}
	if req.HasBadge != nil {
		plan.HasBadge = *req.HasBadge
	}
}

func (s *LearningPlanService) Delete(id uint) error {
	return s.PlanRepo.Delete(id)
}

func (s *LearningPlanService) FindByID(id uint) (*model.LearningPlan, error) {
	return s.PlanRepo.FindByID(id)
}

func (s *LearningPlanService) List(page, limit int) ([]model.LearningPlan, int64, error) {
	return s.PlanRepo.List(page, limit)
}

// AddCourse attaches a course to the plan. Duplicate membership is a
// conflict, a negative order is rejected outright.
func (s *LearningPlanService) AddCourse(plan *model.LearningPlan, req PlanCourseRequest) (*model.LearningPlanCourse, error) {
	if req.Order != nil && *req.Order < 0 {
		return nil, util.ErrInvalidOrder
	}
	if _, err := s.CourseRepo.FindByID(req.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}

	order := 0
	if req.Order != nil {
		order = *req.Order
	} else {
		rows, err := s.PlanRepo.ListCourses(plan.ID)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			order = rows[len(rows)-1].Order + 1
		}
	}

	row := &model.LearningPlanCourse{
		LearningPlanID: plan.ID,
		CourseID:       req.CourseID,
		Order:          order,
	}
	if err := s.PlanRepo.AddCourse(row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrDuplicateMember
		}
		return nil, err
	}
	return row, nil
}

func (s *LearningPlanService) UpdateCourse(plan *model.LearningPlan, courseID uint, req PlanCourseRequest) (*model.LearningPlanCourse, error) {
	if req.Order != nil && *req.Order < 0 {
		return nil, util.ErrInvalidOrder
	}
	row, err := s.PlanRepo.FindMembership(plan.ID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	if req.Order != nil {
		row.Order = *req.Order
	}
	if err := s.PlanRepo.UpdateMembership(row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *LearningPlanService) RemoveCourse(planID, courseID uint) error {
	if _, err := s.PlanRepo.FindMembership(planID, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotFound
		}
		return err
	}
	return s.PlanRepo.RemoveCourse(planID, courseID)
}

func (s *LearningPlanService) ListCourses(planID uint) ([]model.LearningPlanCourse, error) {
	return s.PlanRepo.ListCourses(planID)
}
