package service

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

type UpdateRolesRequest struct {
	Roles []model.UserRole `json:"roles" binding:"required"`
}

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

func (s *UserService) FindByID(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(page, limit int) ([]model.User, int64, error) {
	return s.UserRepo.List(page, limit)
}

func (s *UserService) UpdateRoles(userID uint, roles []model.UserRole) (*model.User, error) {
	for _, role := range roles {
		switch role {
		case model.RoleAdmin, model.RoleInstructor, model.RoleLearner:
		default:
			return nil, util.ErrInvalidRequest
		}
	}

	user, err := s.FindByID(userID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateLastSeen(userID uint) error {
	return s.UserRepo.UpdateLastSeen(userID)
}
