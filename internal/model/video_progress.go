package model

// VideoProgress tracks playback for one (user, video item) pair.
// swagger:model VideoProgress
type VideoProgress struct {
	BaseModel
	UserID        uint    `gorm:"index:idx_user_video,unique;not null" json:"userId"`
	ContentItemID uint    `gorm:"index:idx_user_video,unique;not null" json:"contentItemId"`
	WatchTime     float64 `json:"watchTime"`     // seconds actually watched
	TotalDuration float64 `json:"totalDuration"` // seconds, 0 when unknown
	LastPosition  float64 `json:"lastPosition"`
	Completed     bool    `gorm:"default:false" json:"completed"`
	TimesWatched  int     `gorm:"default:0" json:"timesWatched"`
}

func (VideoProgress) TableName() string {
	return "video_progress"
}

// Fraction returns watchTime/totalDuration, 0 when the duration is unknown.
func (v *VideoProgress) Fraction() float64 {
	if v.TotalDuration <= 0 {
		return 0
	}
	f := v.WatchTime / v.TotalDuration
	if f > 1 {
		f = 1
	}
	return f
}
