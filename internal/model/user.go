package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleInstructor UserRole = "instructor"
	RoleLearner    UserRole = "learner"
)

// RoleList is a non-exclusive set of roles, stored as a JSON array column.
type RoleList []UserRole

func (r RoleList) Value() (driver.Value, error) {
	if len(r) == 0 {
		return `["learner"]`, nil
	}
	b, err := json.Marshal(r)
	return string(b), err
}

func (r *RoleList) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	}
	return fmt.Errorf("unsupported type for RoleList: %T", value)
}

func (r RoleList) Has(role UserRole) bool {
	for _, item := range r {
		if item == role {
			return true
		}
	}
	return false
}

// swagger:model User
type User struct {
	BaseModel
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Roles     RoleList  `gorm:"type:varchar(191);default:'[\"learner\"]'" json:"roles"`
	Language  string    `gorm:"size:10;default:'en'" json:"language"`
	Avatar    string    `gorm:"size:255" json:"avatar"`
	Disabled  bool      `gorm:"default:false" json:"disabled"`
	LastLogin time.Time `json:"lastLogin"`
	LastSeen  time.Time `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool      { return u.Roles.Has(RoleAdmin) }
func (u *User) IsInstructor() bool { return u.Roles.Has(RoleInstructor) }
