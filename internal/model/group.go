package model

// swagger:model Group
type Group struct {
	BaseModel
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	InviteCode  string `gorm:"size:36;uniqueIndex" json:"inviteCode"`
	CreatedByID uint   `gorm:"index;not null" json:"createdById"`
}

func (Group) TableName() string {
	return "groups"
}

type GroupMember struct {
	BaseModel
	GroupID uint `gorm:"index:idx_group_member,unique;not null" json:"groupId"`
	UserID  uint `gorm:"index:idx_group_member,unique;not null" json:"userId"`
}

func (GroupMember) TableName() string {
	return "group_members"
}

// GroupAccess grants every member of a group view access to a course.
type GroupAccess struct {
	BaseModel
	GroupID  uint `gorm:"index:idx_group_course,unique;not null" json:"groupId"`
	CourseID uint `gorm:"index:idx_group_course,unique;not null" json:"courseId"`
}

func (GroupAccess) TableName() string {
	return "group_access"
}

// LearningPlanGroupAccess is the plan-level counterpart of GroupAccess.
type LearningPlanGroupAccess struct {
	BaseModel
	GroupID        uint `gorm:"index:idx_group_plan,unique;not null" json:"groupId"`
	LearningPlanID uint `gorm:"index:idx_group_plan,unique;not null" json:"learningPlanId"`
}

func (LearningPlanGroupAccess) TableName() string {
	return "learning_plan_group_access"
}
