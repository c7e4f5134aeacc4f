package model

type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
	CourseArchived  CourseStatus = "archived"
)

// swagger:model Course
type Course struct {
	BaseModel
	Title              string       `gorm:"size:200;not null" json:"title"`
	Code               string       `gorm:"size:50;unique" json:"code"`
	Description        string       `gorm:"type:text" json:"description"`
	CreatedByID        uint         `gorm:"index;not null" json:"createdById"`
	Status             CourseStatus `gorm:"size:20;default:'draft';index" json:"status"`
	PublicAccess       bool         `gorm:"default:false" json:"publicAccess"`
	SelfEnrollment     bool         `gorm:"default:false" json:"selfEnrollment"`
	RequiresApproval   bool         `gorm:"default:false" json:"requiresApproval"`
	SequentialRequired bool         `gorm:"default:false" json:"sequentialRequired"`
	MaxEnrollments     *int         `json:"maxEnrollments"`
	HasCertificate     bool         `gorm:"default:false" json:"hasCertificate"`
	HasBadge           bool         `gorm:"default:false" json:"hasBadge"`
	ThumbnailURL       string       `gorm:"size:255" json:"thumbnailUrl"`

	ContentItems []ContentItem `gorm:"foreignKey:CourseID" json:"contentItems,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}
