package service

import (
	"errors"
	"strings"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

type QuestionOptionRequest struct {
	Text    string `json:"text" binding:"required"`
	Correct bool   `json:"correct"`
}

type QuestionRequest struct {
	Type          string                  `json:"type" binding:"required"`
	Text          string                  `json:"text" binding:"required"`
	Points        *float64                `json:"points"`
	Order         *int                    `json:"order"`
	CorrectAnswer string                  `json:"correctAnswer"`
	Explanation   string                  `json:"explanation"`
	Options       []QuestionOptionRequest `json:"options"`
}

type TestSettingsRequest struct {
	Title              string   `json:"title"`
	PassingScore       *float64 `json:"passingScore"`
	MaxAttempts        *int     `json:"maxAttempts"`
	TimeLimit          *int     `json:"timeLimit"`
	ShowCorrectAnswers *bool    `json:"showCorrectAnswers"`
	RandomizeQuestions *bool    `json:"randomizeQuestions"`
	RandomizeOptions   *bool    `json:"randomizeOptions"`
}

type QuestionService struct {
	TestRepo *repository.TestRepository
}

func NewQuestionService(testRepo *repository.TestRepository) *QuestionService {
	return &QuestionService{TestRepo: testRepo}
}

func buildQuestion(testID uint, req QuestionRequest) (*model.Question, error) {
	qtype := model.QuestionType(strings.ToLower(req.Type))
	switch qtype {
	case model.SingleChoice, model.MultipleChoice:
		if len(req.Options) < 2 {
			return nil, util.ErrInvalidRequest
		}
		correct := 0
		for _, o := range req.Options {
			if o.Correct {
				correct++
			}
		}
		if correct == 0 || (qtype == model.SingleChoice && correct > 1) {
			return nil, util.ErrInvalidRequest
		}
	case model.TrueFalse:
		switch strings.ToLower(req.CorrectAnswer) {
		case "true", "false":
		default:
			return nil, util.ErrInvalidRequest
		}
	case model.ShortAnswer, model.FillBlank:
		if req.CorrectAnswer == "" {
			return nil, util.ErrInvalidRequest
		}
	default:
		return nil, util.ErrInvalidRequest
	}

	q := &model.Question{
		TestID:        testID,
		Type:          qtype,
		Text:          req.Text,
		Points:        1,
		CorrectAnswer: req.CorrectAnswer,
		Explanation:   req.Explanation,
	}
	if req.Points != nil {
		if *req.Points < 0 {
			return nil, util.ErrInvalidRequest
		}
		q.Points = *req.Points
	}
	if req.Order != nil {
		q.Order = *req.Order
	}
	for i, o := range req.Options {
		q.Options = append(q.Options, model.QuestionOption{
			Text:    o.Text,
			Correct: o.Correct,
			Order:   i,
		})
	}
	return q, nil
}

func (s *QuestionService) AddQuestion(testID uint, req QuestionRequest) (*model.Question, error) {
	q, err := buildQuestion(testID, req)
	if err != nil {
		return nil, err
	}
	if q.Order == 0 && req.Order == nil {
		n, err := s.TestRepo.CountQuestions(testID)
		if err != nil {
			return nil, err
		}
		q.Order = int(n)
	}
	if err := s.TestRepo.CreateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

// UpdateQuestion replaces the question and its options wholesale. Past
// attempts stay graded as they were; grading always reads current answers.
func (s *QuestionService) UpdateQuestion(existing *model.Question, req QuestionRequest) (*model.Question, error) {
	q, err := buildQuestion(existing.TestID, req)
	if err != nil {
		return nil, err
	}
	q.ID = existing.ID
	if req.Order == nil {
		q.Order = existing.Order
	}
	if err := s.TestRepo.UpdateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) DeleteQuestion(id uint) error {
	return s.TestRepo.DeleteQuestion(id)
}

func (s *QuestionService) FindQuestionByID(id uint) (*model.Question, error) {
	q, err := s.TestRepo.FindQuestionByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) UpdateTestSettings(test *model.Test, req TestSettingsRequest) (*model.Test, error) {
	if req.Title != "" {
		test.Title = req.Title
	}
	if req.PassingScore != nil {
		if *req.PassingScore < 0 || *req.PassingScore > 1 {
			return nil, util.ErrInvalidRequest
		}
		test.PassingScore = *req.PassingScore
	}
	if req.MaxAttempts != nil {
		if *req.MaxAttempts < 1 {
			test.MaxAttempts = nil
		} else {
			test.MaxAttempts = req.MaxAttempts
		}
	}
	if req.TimeLimit != nil {
		test.TimeLimit = req.TimeLimit
	}
	if req.ShowCorrectAnswers != nil {
		test.ShowCorrectAnswers = *req.ShowCorrectAnswers
	}
	if req.RandomizeQuestions != nil {
		test.RandomizeQuestions = *req.RandomizeQuestions
	}
	if req.RandomizeOptions != nil {
		test.RandomizeOptions = *req.RandomizeOptions
	}
	if err := s.TestRepo.Update(test); err != nil {
		return nil, err
	}
	return test, nil
}
