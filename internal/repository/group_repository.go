package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type GroupRepository struct {
	DB *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{DB: db}
}

func (r *GroupRepository) Create(g *model.Group) error {
	return r.DB.Create(g).Error
}

func (r *GroupRepository) FindByID(id uint) (*model.Group, error) {
	var g model.Group
	err := r.DB.First(&g, id).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GroupRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Group{}, id).Error
}

func (r *GroupRepository) AddMember(m *model.GroupMember) error {
	return r.DB.Create(m).Error
}

func (r *GroupRepository) RemoveMember(groupID, userID uint) error {
	return r.DB.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&model.GroupMember{}).Error
}

func (r *GroupRepository) IsMember(groupID, userID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).Count(&count).Error
	return count > 0, err
}

func (r *GroupRepository) GrantCourseAccess(ga *model.GroupAccess) error {
	return r.DB.Create(ga).Error
}

func (r *GroupRepository) GrantPlanAccess(ga *model.LearningPlanGroupAccess) error {
	return r.DB.Create(ga).Error
}

// UserHasCourseAccess reports whether any group the user belongs to has been
// granted access to the course.
func (r *GroupRepository) UserHasCourseAccess(userID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.GroupAccess{}).
		Joins("JOIN group_members ON group_members.group_id = group_access.group_id").
		Where("group_members.user_id = ? AND group_access.course_id = ? AND group_members.deleted_at IS NULL",
			userID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *GroupRepository) UserHasPlanAccess(userID, planID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.LearningPlanGroupAccess{}).
		Joins("JOIN group_members ON group_members.group_id = learning_plan_group_access.group_id").
		Where("group_members.user_id = ? AND learning_plan_group_access.learning_plan_id = ? AND group_members.deleted_at IS NULL",
			userID, planID).
		Count(&count).Error
	return count > 0, err
}
