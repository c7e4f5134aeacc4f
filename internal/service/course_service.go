package service

import (
	"errors"
	"strings"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CourseRequest struct {
	Title              string `json:"title" binding:"required"`
	Code               string `json:"code"`
	Description        string `json:"description"`
	PublicAccess       *bool  `json:"publicAccess"`
	SelfEnrollment     *bool  `json:"selfEnrollment"`
	RequiresApproval   *bool  `json:"requiresApproval"`
	SequentialRequired *bool  `json:"sequentialRequired"`
	MaxEnrollments     *int   `json:"maxEnrollments"`
	HasCertificate     *bool  `json:"hasCertificate"`
	HasBadge           *bool  `json:"hasBadge"`
}

type ContentItemRequest struct {
	Title         string `json:"title" binding:"required"`
	Type          string `json:"type" binding:"required"`
	Order         *int   `json:"order"`
	URL           string `json:"url"`
	LocalPath     string `json:"localPath"` // set by the upload handler, not the client
	Prerequisites []uint `json:"prerequisites"`
}

type CourseService struct {
	CourseRepo *repository.CourseRepository
	ItemRepo   *repository.ContentItemRepository
	TestRepo   *repository.TestRepository
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	itemRepo *repository.ContentItemRepository,
	testRepo *repository.TestRepository,
) *CourseService {
	return &CourseService{
		CourseRepo: courseRepo,
		ItemRepo:   itemRepo,
		TestRepo:   testRepo,
	}
}

func (s *CourseService) Create(creatorID uint, req CourseRequest) (*model.Course, error) {
	course := &model.Course{
		Title:       req.Title,
		Code:        req.Code,
		Description: req.Description,
		CreatedByID: creatorID,
		Status:      model.CourseDraft,
	}
	applyCourseFlags(course, req)

	if err := s.CourseRepo.Create(course); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrDuplicateCourse
		}
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Update(course *model.Course, req CourseRequest) (*model.Course, error) {
	course.Title = req.Title
	if req.Code != "" {
		course.Code = req.Code
	}
	course.Description = req.Description
	applyCourseFlags(course, req)

	if err := s.CourseRepo.Update(course); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrDuplicateCourse
		}
		return nil, err
	}
	return course, nil
}

func applyCourseFlags(course *model.Course, req CourseRequest) {
	if req.PublicAccess != nil {
		course.PublicAccess = *req.PublicAccess
	}
	if req.SelfEnrollment != nil {
		course.SelfEnrollment = *req.SelfEnrollment
	}
	if req.RequiresApproval != nil {
		course.RequiresApproval = *req.RequiresApproval
	}
	if req.SequentialRequired != nil {
		course.SequentialRequired = *req.SequentialRequired
	}
	if req.MaxEnrollments != nil {
		course.MaxEnrollments = req.MaxEnrollments
	}
	if req.HasCertificate != nil {
		course.HasCertificate = *req.HasCertificate
	}
	if req.HasBadge != nil {
		course.HasBadge = *req.HasBadge
	}
}

func (s *CourseService) SetStatus(course *model.Course, status model.CourseStatus) error {
	course.Status = status
	return s.CourseRepo.Update(course)
}

func (s *CourseService) Delete(id uint) error {
	return s.CourseRepo.Delete(id)
}

// AddContentItem appends an item to the course. When no order is given the
// item goes after the current last one. Video durations are probed from the
// uploaded file so the player can report meaningful progress fractions.
func (s *CourseService) AddContentItem(course *model.Course, req ContentItemRequest) (*model.ContentItem, error) {
	contentType := model.ContentType(strings.ToLower(req.Type))
	switch contentType {
	case model.ContentVideo, model.ContentPDF, model.ContentPPT, model.ContentHTML, model.ContentExternal, model.ContentTest:
	default:
		return nil, util.ErrInvalidRequest
	}

	order := 0
	if req.Order != nil {
		if *req.Order < 0 {
			return nil, util.ErrInvalidOrder
		}
		order = *req.Order
	} else {
		items, err := s.ItemRepo.ListByCourse(course.ID)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 {
			order = items[len(items)-1].Order + 1
		}
	}

	item := &model.ContentItem{
		CourseID:      course.ID,
		Title:         req.Title,
		Type:          contentType,
		Order:         order,
		URL:           req.URL,
		Prerequisites: req.Prerequisites,
	}

	if contentType == model.ContentVideo && req.LocalPath != "" {
		if info, err := util.ProbeVideo(req.LocalPath); err == nil {
			item.Duration = info.Duration
		} else {
			logger.Log.Warn("video probe failed", zap.String("path", req.LocalPath), zap.Error(err))
		}
	}

	if err := s.ItemRepo.Create(item); err != nil {
		return nil, err
	}

	if contentType == model.ContentTest {
		test := &model.Test{ContentItemID: item.ID, Title: req.Title}
		if err := s.TestRepo.Create(test); err != nil {
			return nil, err
		}
		item.Test = test
	}
	return item, nil
}

func (s *CourseService) UpdateContentItem(item *model.ContentItem, req ContentItemRequest) (*model.ContentItem, error) {
	item.Title = req.Title
	if req.Order != nil {
		if *req.Order < 0 {
			return nil, util.ErrInvalidOrder
		}
		item.Order = *req.Order
	}
	if req.URL != "" {
		item.URL = req.URL
	}
	if req.Prerequisites != nil {
		item.Prerequisites = req.Prerequisites
	}
	if err := s.ItemRepo.Update(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CourseService) DeleteContentItem(id uint) error {
	return s.ItemRepo.Delete(id)
}

func (s *CourseService) List(page, limit int, status model.CourseStatus) ([]model.Course, int64, error) {
	return s.CourseRepo.List(page, limit, status)
}

func (s *CourseService) FindByID(id uint) (*model.Course, error) {
	return s.CourseRepo.FindByID(id)
}
