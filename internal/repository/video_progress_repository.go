package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VideoProgressRepository struct {
	DB *gorm.DB
}

func NewVideoProgressRepository(db *gorm.DB) *VideoProgressRepository {
	return &VideoProgressRepository{DB: db}
}

func (r *VideoProgressRepository) FindByUserAndItem(userID, contentItemID uint) (*model.VideoProgress, error) {
	var vp model.VideoProgress
	err := r.DB.Where("user_id = ? AND content_item_id = ?", userID, contentItemID).First(&vp).Error
	if err != nil {
		return nil, err
	}
	return &vp, nil
}

func (r *VideoProgressRepository) ListByUserAndItems(userID uint, itemIDs []uint) (map[uint]*model.VideoProgress, error) {
	result := make(map[uint]*model.VideoProgress, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	var rows []model.VideoProgress
	err := r.DB.Where("user_id = ? AND content_item_id IN ?", userID, itemIDs).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].ContentItemID] = &rows[i]
	}
	return result, nil
}

// Upsert keeps the single row per (user, item) current.
func (r *VideoProgressRepository) Upsert(vp *model.VideoProgress) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "content_item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"watch_time", "total_duration", "last_position", "completed", "times_watched", "updated_at",
		}),
	}).Create(vp).Error
}

func (r *VideoProgressRepository) SumWatchTimeByUser(userID uint) (float64, error) {
	var total float64
	err := r.DB.Model(&model.VideoProgress{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(watch_time), 0)").Scan(&total).Error
	return total, err
}

func (r *VideoProgressRepository) ListByItem(contentItemID uint) ([]model.VideoProgress, error) {
	var rows []model.VideoProgress
	err := r.DB.Where("content_item_id = ?", contentItemID).Find(&rows).Error
	return rows, err
}
