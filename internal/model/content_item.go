package model

type ContentType string

const (
	ContentVideo    ContentType = "video"
	ContentPDF      ContentType = "pdf"
	ContentPPT      ContentType = "ppt"
	ContentHTML     ContentType = "html"
	ContentExternal ContentType = "external"
	ContentTest     ContentType = "test"
)

// ContentItem is one unit of course material. Order values define the course
// sequence; they are compared, not assumed contiguous.
// swagger:model ContentItem
type ContentItem struct {
	BaseModel
	CourseID    uint        `gorm:"index;not null" json:"courseId"`
	Title       string      `gorm:"size:200;not null" json:"title"`
	Type        ContentType `gorm:"size:20;not null" json:"type"`
	Order       int         `gorm:"column:item_order;index" json:"order"`
	URL         string      `gorm:"size:500" json:"url"`
	Duration    float64     `json:"duration"` // seconds, probed for video items
	// Explicit prerequisite item IDs. When set they override sequential gating.
	Prerequisites UintList `gorm:"type:varchar(500)" json:"prerequisites"`

	Test *Test `gorm:"foreignKey:ContentItemID" json:"test,omitempty"`
}

func (ContentItem) TableName() string {
	return "content_items"
}
