package service

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type GroupService struct {
	GroupRepo *repository.GroupRepository
}

func NewGroupService(groupRepo *repository.GroupRepository) *GroupService {
	return &GroupService{GroupRepo: groupRepo}
}

func (s *GroupService) Create(creatorID uint, req GroupRequest) (*model.Group, error) {
	g := &model.Group{
		Name:        req.Name,
		Description: req.Description,
		InviteCode:  uuid.New().String(),
		CreatedByID: creatorID,
	}
	if err := s.GroupRepo.Create(g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GroupService) FindByID(id uint) (*model.Group, error) {
	g, err := s.GroupRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

func (s *GroupService) Delete(id uint) error {
	return s.GroupRepo.Delete(id)
}

func (s *GroupService) AddMember(groupID, userID uint) error {
	err := s.GroupRepo.AddMember(&model.GroupMember{GroupID: groupID, UserID: userID})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrDuplicateMember
	}
	return err
}

func (s *GroupService) RemoveMember(groupID, userID uint) error {
	return s.GroupRepo.RemoveMember(groupID, userID)
}

func (s *GroupService) GrantCourseAccess(groupID, courseID uint) error {
	err := s.GroupRepo.GrantCourseAccess(&model.GroupAccess{GroupID: groupID, CourseID: courseID})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil // already granted, nothing to do
	}
	return err
}

func (s *GroupService) GrantPlanAccess(groupID, planID uint) error {
	err := s.GroupRepo.GrantPlanAccess(&model.LearningPlanGroupAccess{GroupID: groupID, LearningPlanID: planID})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}
