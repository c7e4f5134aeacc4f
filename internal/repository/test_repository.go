package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

// FindByID loads a test with its ordered questions and options.
func (r *TestRepository) FindByID(id uint) (*model.Test, error) {
	var test model.Test
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_order ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("option_order ASC")
		}).
		First(&test, id).Error
	if err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *TestRepository) FindByContentItem(contentItemID uint) (*model.Test, error) {
	var test model.Test
	err := r.DB.Where("content_item_id = ?", contentItemID).First(&test).Error
	if err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *TestRepository) Create(test *model.Test) error {
	return r.DB.Create(test).Error
}

func (r *TestRepository) Update(test *model.Test) error {
	return r.DB.Save(test).Error
}

func (r *TestRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Test{}, id).Error
}

func (r *TestRepository) FindQuestionByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("option_order ASC")
	}).First(&q, id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *TestRepository) CreateQuestion(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *TestRepository) UpdateQuestion(q *model.Question) error {
	// Options are replaced wholesale so flag and order edits stick.
	if err := r.DB.Where("question_id = ?", q.ID).Delete(&model.QuestionOption{}).Error; err != nil {
		return err
	}
	return r.DB.Session(&gorm.Session{FullSaveAssociations: true}).Save(q).Error
}

func (r *TestRepository) DeleteQuestion(id uint) error {
	if err := r.DB.Where("question_id = ?", id).Delete(&model.QuestionOption{}).Error; err != nil {
		return err
	}
	return r.DB.Delete(&model.Question{}, id).Error
}

func (r *TestRepository) CountQuestions(testID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("test_id = ?", testID).Count(&count).Error
	return count, err
}
