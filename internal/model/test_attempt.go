package model

import "time"

// TestAttempt is one graded submission. Rows are immutable once created;
// the full attempt history is retained. AttemptNumber is 1-based per
// (user, test) and unique so concurrent submissions cannot exceed the limit.
// swagger:model TestAttempt
type TestAttempt struct {
	BaseModel
	TestID        uint      `gorm:"index:idx_test_user_attempt,unique;not null" json:"testId"`
	UserID        uint      `gorm:"index:idx_test_user_attempt,unique;not null" json:"userId"`
	AttemptNumber int       `gorm:"index:idx_test_user_attempt,unique;not null" json:"attemptNumber"`
	Score         float64   `json:"score"` // fraction earned/total
	PointsEarned  float64   `json:"pointsEarned"`
	TotalPoints   float64   `json:"totalPoints"`
	Passed        bool      `json:"passed"`
	TimeSpent     int       `json:"timeSpent"` // seconds
	SubmittedAt   time.Time `json:"submittedAt"`

	Answers []TestAnswer `gorm:"foreignKey:AttemptID" json:"answers,omitempty"`
}

func (TestAttempt) TableName() string {
	return "test_attempts"
}

// swagger:model TestAnswer
type TestAnswer struct {
	BaseModel
	AttemptID       uint     `gorm:"index;not null" json:"attemptId"`
	QuestionID      uint     `gorm:"index;not null" json:"questionId"`
	IsCorrect       bool     `json:"isCorrect"`
	PointsEarned    float64  `json:"pointsEarned"`
	SelectedOptions UintList `gorm:"type:varchar(500)" json:"selectedOptions"`
	AnswerText      string   `gorm:"size:1000" json:"answerText"`
}

func (TestAnswer) TableName() string {
	return "test_answers"
}
