package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type ContentItemRepository struct {
	DB *gorm.DB
}

func NewContentItemRepository(db *gorm.DB) *ContentItemRepository {
	return &ContentItemRepository{DB: db}
}

func (r *ContentItemRepository) Create(item *model.ContentItem) error {
	return r.DB.Create(item).Error
}

func (r *ContentItemRepository) FindByID(id uint) (*model.ContentItem, error) {
	var item model.ContentItem
	err := r.DB.First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByCourse returns the course's items in ascending sequence order.
func (r *ContentItemRepository) ListByCourse(courseID uint) ([]model.ContentItem, error) {
	var items []model.ContentItem
	err := r.DB.Where("course_id = ?", courseID).Order("item_order ASC").Find(&items).Error
	return items, err
}

func (r *ContentItemRepository) CountByCourse(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ContentItem{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *ContentItemRepository) Update(item *model.ContentItem) error {
	return r.DB.Save(item).Error
}

func (r *ContentItemRepository) Delete(id uint) error {
	return r.DB.Delete(&model.ContentItem{}, id).Error
}
