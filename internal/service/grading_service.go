package service

import (
	"errors"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/monitoring"

	"gorm.io/gorm"
)

type SubmittedAnswer struct {
	QuestionID      uint   `json:"questionId" binding:"required"`
	SelectedOptions []int  `json:"selectedOptions"` // option indices, choice types
	AnswerText      string `json:"answerText"`      // true_false / short_answer / fill_blank
}

type SubmitAttemptRequest struct {
	Answers   []SubmittedAnswer `json:"answers"`
	TimeSpent int               `json:"timeSpent" binding:"min=0"`
}

type AttemptResult struct {
	Attempt *model.TestAttempt `json:"attempt"`
	Answers []model.TestAnswer `json:"answers"`
}

type TestProgress struct {
	TestID            uint                `json:"testId"`
	Attempts          []model.TestAttempt `json:"attempts"`
	BestScore         *float64            `json:"bestScore"`
	Passed            bool                `json:"passed"`
	CanRetake         bool                `json:"canRetake"`
	RemainingAttempts *int                `json:"remainingAttempts"` // nil = unlimited
}

// GradingService grades test submissions: per-question-type answer matching,
// point aggregation, pass/fail, attempt-limit enforcement and the follow-up
// completion update.
type GradingService struct {
	TestRepo    *repository.TestRepository
	AttemptRepo *repository.AttemptRepository
	ItemRepo    *repository.ContentItemRepository
	CourseRepo  *repository.CourseRepository
	Access      *AccessService
	Progress    *ProgressService
	DB          *gorm.DB
}

func NewGradingService(
	testRepo *repository.TestRepository,
	attemptRepo *repository.AttemptRepository,
	itemRepo *repository.ContentItemRepository,
	courseRepo *repository.CourseRepository,
	access *AccessService,
	progress *ProgressService,
	db *gorm.DB,
) *GradingService {
	return &GradingService{
		TestRepo:    testRepo,
		AttemptRepo: attemptRepo,
		ItemRepo:    itemRepo,
		CourseRepo:  courseRepo,
		Access:      access,
		Progress:    progress,
		DB:          db,
	}
}

// SubmitAttempt checks preconditions in order (test exists, user has access,
// attempts remain), grades every question, and persists attempt + answers +
// item completion as one transaction. The attempt row is immutable; history
// is never overwritten.
func (s *GradingService) SubmitAttempt(user *model.User, testID uint, req SubmitAttemptRequest) (*AttemptResult, error) {
	test, err := s.TestRepo.FindByID(testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}

	item, err := s.ItemRepo.FindByID(test.ContentItemID)
	if err != nil {
		return nil, err
	}
	course, err := s.CourseRepo.FindByID(item.CourseID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.Access.IsEnrolledOrHasAccess(user, course)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, util.ErrForbidden
	}

	attempt := &model.TestAttempt{
		TestID:      test.ID,
		UserID:      user.ID,
		TotalPoints: test.TotalPoints(),
		TimeSpent:   req.TimeSpent,
		SubmittedAt: time.Now(),
	}
	answers := gradeAll(test, req.Answers)
	for _, a := range answers {
		attempt.PointsEarned += a.PointsEarned
	}
	if attempt.TotalPoints > 0 {
		attempt.Score = attempt.PointsEarned / attempt.TotalPoints
	}
	attempt.Passed = attempt.Score >= test.PassingScore

	// The count check and the insert share a transaction, and the unique
	// attempt-number index catches the remaining race between two submissions
	// that both saw the same count; one retry re-reads the count, which then
	// rejects over-limit submissions.
	for retry := 0; ; retry++ {
		err = s.DB.Transaction(func(tx *gorm.DB) error {
			count, err := s.AttemptRepo.CountByUserAndTest(tx, user.ID, test.ID)
			if err != nil {
				return err
			}
			if test.MaxAttempts != nil && count >= int64(*test.MaxAttempts) {
				return util.ErrMaxAttemptsReached
			}
			attempt.AttemptNumber = int(count) + 1

			if err := s.AttemptRepo.CreateWithAnswers(tx, attempt, answers); err != nil {
				return err
			}

			if attempt.Passed {
				score := attempt.Score
				if err := s.Progress.UpsertItemCompletionTx(tx, user.ID, item.ID, &score); err != nil {
					return err
				}
			}
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && retry == 0 {
			attempt.ID = 0
			for i := range answers {
				answers[i].ID = 0
			}
			continue
		}
		return nil, err
	}

	outcome := "failed"
	if attempt.Passed {
		outcome = "passed"
		// Passing the test may have been the last missing item.
		if _, err := s.Progress.CheckAndCompleteCourse(course, user.ID); err != nil {
			return nil, err
		}
	}
	monitoring.TestSubmissions.WithLabelValues(outcome).Inc()

	return &AttemptResult{Attempt: attempt, Answers: attempt.Answers}, nil
}

// gradeAll grades every question of the test. A question absent from the
// submitted answers is simply wrong: zero points, no error.
func gradeAll(test *model.Test, submitted []SubmittedAnswer) []model.TestAnswer {
	byQuestion := make(map[uint]*SubmittedAnswer, len(submitted))
	for i := range submitted {
		byQuestion[submitted[i].QuestionID] = &submitted[i]
	}

	answers := make([]model.TestAnswer, 0, len(test.Questions))
	for i := range test.Questions {
		q := &test.Questions[i]
		answers = append(answers, gradeQuestion(q, byQuestion[q.ID]))
	}
	return answers
}

// gradeQuestion dispatches on the question type. All grading is binary: full
// points or none, no partial credit.
func gradeQuestion(q *model.Question, sub *SubmittedAnswer) model.TestAnswer {
	answer := model.TestAnswer{QuestionID: q.ID}
	if sub == nil {
		return answer
	}

	answer.AnswerText = sub.AnswerText
	for _, idx := range sub.SelectedOptions {
		if idx >= 0 {
			answer.SelectedOptions = append(answer.SelectedOptions, uint(idx))
		}
	}

	switch q.Type {
	case model.SingleChoice:
		answer.IsCorrect = gradeSingleChoice(q, sub.SelectedOptions)
	case model.MultipleChoice:
		answer.IsCorrect = gradeMultipleChoice(q, sub.SelectedOptions)
	case model.TrueFalse:
		answer.IsCorrect = gradeTrueFalse(q, sub.AnswerText)
	case model.ShortAnswer, model.FillBlank:
		answer.IsCorrect = gradeTextAnswer(q, sub.AnswerText)
	}

	if answer.IsCorrect {
		answer.PointsEarned = q.Points
	}
	return answer
}

// gradeSingleChoice: exactly one selected index, matching the unique option
// flagged correct.
func gradeSingleChoice(q *model.Question, selected []int) bool {
	correct := q.CorrectOptionIndices()
	if len(selected) != 1 || len(correct) != 1 {
		return false
	}
	return selected[0] == correct[0]
}

// gradeMultipleChoice: the selected set must equal the correct set exactly.
func gradeMultipleChoice(q *model.Question, selected []int) bool {
	correct := q.CorrectOptionIndices()
	if len(correct) == 0 || len(selected) != len(correct) {
		return false
	}
	correctSet := make(map[int]bool, len(correct))
	for _, idx := range correct {
		correctSet[idx] = true
	}
	seen := make(map[int]bool, len(selected))
	for _, idx := range selected {
		if !correctSet[idx] || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}

// gradeTrueFalse accepts only the literal strings "true" and "false";
// anything else is wrong, not an error.
func gradeTrueFalse(q *model.Question, text string) bool {
	if text != "true" && text != "false" {
		return false
	}
	return text == q.CorrectAnswer
}

func gradeTextAnswer(q *model.Question, text string) bool {
	return text == q.CorrectAnswer
}

// GetTestProgress summarizes the user's attempt history for a test.
func (s *GradingService) GetTestProgress(user *model.User, testID uint) (*TestProgress, error) {
	test, err := s.TestRepo.FindByID(testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}

	item, err := s.ItemRepo.FindByID(test.ContentItemID)
	if err != nil {
		return nil, err
	}
	course, err := s.CourseRepo.FindByID(item.CourseID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.Access.IsEnrolledOrHasAccess(user, course)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, util.ErrForbidden
	}

	attempts, err := s.AttemptRepo.ListByUserAndTest(user.ID, test.ID)
	if err != nil {
		return nil, err
	}

	progress := &TestProgress{
		TestID:    test.ID,
		Attempts:  attempts,
		CanRetake: true,
	}
	for i := range attempts {
		a := &attempts[i]
		if progress.BestScore == nil || a.Score > *progress.BestScore {
			progress.BestScore = &a.Score
		}
		if a.Passed {
			progress.Passed = true
		}
	}
	if test.MaxAttempts != nil {
		remaining := *test.MaxAttempts - len(attempts)
		if remaining < 0 {
			remaining = 0
		}
		progress.RemainingAttempts = &remaining
		progress.CanRetake = remaining > 0
	}
	return progress, nil
}
