package repository

import (
	"time"

	"lms_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompletionRepository struct {
	DB *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{DB: db}
}

func (r *CompletionRepository) FindItemCompletion(userID, contentItemID uint) (*model.Completion, error) {
	var c model.Completion
	err := r.DB.Where("user_id = ? AND content_item_id = ?", userID, contentItemID).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListItemCompletions returns the user's item-level completions for a set of
// items, keyed by content item ID.
func (r *CompletionRepository) ListItemCompletions(userID uint, itemIDs []uint) (map[uint]*model.Completion, error) {
	result := make(map[uint]*model.Completion, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	var rows []model.Completion
	err := r.DB.Where("user_id = ? AND content_item_id IN ?", userID, itemIDs).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].ContentItemID != nil {
			result[*rows[i].ContentItemID] = &rows[i]
		}
	}
	return result, nil
}

// UpsertItemCompletion writes the single item-level completion row for
// (user, item) atomically; a repeat submission refreshes the score.
func (r *CompletionRepository) UpsertItemCompletion(tx *gorm.DB, userID, contentItemID uint, score *float64) error {
	now := time.Now()
	c := model.Completion{
		UserID:        userID,
		ContentItemID: &contentItemID,
		Score:         score,
		CompletedAt:   &now,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "content_item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "completed_at", "updated_at"}),
	}).Create(&c).Error
}

func (r *CompletionRepository) FindCourseCompletion(userID, courseID uint) (*model.Completion, error) {
	var c model.Completion
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompletionRepository) FindPlanCompletion(userID, planID uint) (*model.Completion, error) {
	var c model.Completion
	err := r.DB.Where("user_id = ? AND learning_plan_id = ?", userID, planID).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertCourseCompletion is idempotent under concurrent completion checks; the
// unique (user_id, course_id) index guarantees a single row.
func (r *CompletionRepository) UpsertCourseCompletion(tx *gorm.DB, c *model.Completion) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
	}).Create(c).Error
}

func (r *CompletionRepository) CountItemCompletions(userID uint, itemIDs []uint) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.DB.Model(&model.Completion{}).
		Where("user_id = ? AND content_item_id IN ?", userID, itemIDs).Count(&count).Error
	return count, err
}

func (r *CompletionRepository) CountCourseCompletions(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Completion{}).
		Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *CompletionRepository) ListCourseCompletions(courseID uint) ([]model.Completion, error) {
	var rows []model.Completion
	err := r.DB.Where("course_id = ?", courseID).Find(&rows).Error
	return rows, err
}

func (r *CompletionRepository) ListByUser(userID uint) ([]model.Completion, error) {
	var rows []model.Completion
	err := r.DB.Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}

func (r *CompletionRepository) Create(c *model.Completion) error {
	return r.DB.Create(c).Error
}
