package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) CountByUserAndTest(tx *gorm.DB, userID, testID uint) (int64, error) {
	if tx == nil {
		tx = r.DB
	}
	var count int64
	err := tx.Model(&model.TestAttempt{}).
		Where("user_id = ? AND test_id = ?", userID, testID).Count(&count).Error
	return count, err
}

// CreateWithAnswers persists the attempt and its per-question answers in the
// caller's transaction. The unique (test, user, attempt_number) index makes
// concurrent submissions with the same number fail on insert rather than
// silently exceed the attempt limit.
func (r *AttemptRepository) CreateWithAnswers(tx *gorm.DB, attempt *model.TestAttempt, answers []model.TestAnswer) error {
	if err := tx.Create(attempt).Error; err != nil {
		return err
	}
	for i := range answers {
		answers[i].AttemptID = attempt.ID
	}
	if len(answers) > 0 {
		if err := tx.Create(&answers).Error; err != nil {
			return err
		}
	}
	attempt.Answers = answers
	return nil
}

func (r *AttemptRepository) ListByUserAndTest(userID, testID uint) ([]model.TestAttempt, error) {
	var attempts []model.TestAttempt
	err := r.DB.Where("user_id = ? AND test_id = ?", userID, testID).
		Order("attempt_number ASC").Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListByTest(testID uint) ([]model.TestAttempt, error) {
	var attempts []model.TestAttempt
	err := r.DB.Where("test_id = ?", testID).Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListByUser(userID uint) ([]model.TestAttempt, error) {
	var attempts []model.TestAttempt
	err := r.DB.Where("user_id = ?", userID).Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) BestScore(userID, testID uint) (*float64, error) {
	var attempts []model.TestAttempt
	err := r.DB.Where("user_id = ? AND test_id = ?", userID, testID).Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	if len(attempts) == 0 {
		return nil, nil
	}
	best := attempts[0].Score
	for _, a := range attempts[1:] {
		if a.Score > best {
			best = a.Score
		}
	}
	return &best, nil
}

// ListAnswersByTest returns every answer row for a test's attempts, for the
// per-question analytics rollup.
func (r *AttemptRepository) ListAnswersByTest(testID uint) ([]model.TestAnswer, error) {
	var answers []model.TestAnswer
	err := r.DB.
		Joins("JOIN test_attempts ON test_attempts.id = test_answers.attempt_id").
		Where("test_attempts.test_id = ? AND test_attempts.deleted_at IS NULL", testID).
		Find(&answers).Error
	return answers, err
}
