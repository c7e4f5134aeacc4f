package service

import (
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) seedSingleChoiceQuestion(t *testing.T, testID uint, points float64, order int) *model.Question {
	t.Helper()
	q := &model.Question{
		TestID: testID, Type: model.SingleChoice, Text: "pick one", Points: points, Order: order,
		Options: []model.QuestionOption{
			{Text: "right", Correct: true, Order: 1},
			{Text: "wrong", Order: 2},
			{Text: "also wrong", Order: 3},
		},
	}
	require.NoError(t, e.db.Create(q).Error)
	return q
}

func (e *testEnv) seedTrueFalseQuestion(t *testing.T, testID uint, points float64, order int) *model.Question {
	t.Helper()
	q := &model.Question{
		TestID: testID, Type: model.TrueFalse, Text: "is it so", Points: points, Order: order,
		CorrectAnswer: "true",
	}
	require.NoError(t, e.db.Create(q).Error)
	return q
}

func TestGradeQuestion(t *testing.T) {
	single := &model.Question{Type: model.SingleChoice, Points: 2, Options: []model.QuestionOption{
		{Text: "a"}, {Text: "b", Correct: true}, {Text: "c"},
	}}
	multi := &model.Question{Type: model.MultipleChoice, Points: 3, Options: []model.QuestionOption{
		{Text: "a", Correct: true}, {Text: "b"}, {Text: "c", Correct: true},
	}}
	tf := &model.Question{Type: model.TrueFalse, Points: 1, CorrectAnswer: "false"}
	text := &model.Question{Type: model.ShortAnswer, Points: 1, CorrectAnswer: "goroutine"}

	cases := []struct {
		name    string
		q       *model.Question
		sub     *SubmittedAnswer
		correct bool
	}{
		{"unanswered scores zero", single, nil, false},
		{"single choice correct", single, &SubmittedAnswer{SelectedOptions: []int{1}}, true},
		{"single choice wrong option", single, &SubmittedAnswer{SelectedOptions: []int{0}}, false},
		{"single choice multiple selections", single, &SubmittedAnswer{SelectedOptions: []int{0, 1}}, false},
		{"multiple choice exact set", multi, &SubmittedAnswer{SelectedOptions: []int{2, 0}}, true},
		{"multiple choice subset", multi, &SubmittedAnswer{SelectedOptions: []int{0}}, false},
		{"multiple choice superset", multi, &SubmittedAnswer{SelectedOptions: []int{0, 1, 2}}, false},
		{"multiple choice duplicate selection", multi, &SubmittedAnswer{SelectedOptions: []int{0, 0}}, false},
		{"true false match", tf, &SubmittedAnswer{AnswerText: "false"}, true},
		{"true false mismatch", tf, &SubmittedAnswer{AnswerText: "true"}, false},
		{"true false uppercase rejected", tf, &SubmittedAnswer{AnswerText: "FALSE"}, false},
		{"true false padded rejected", tf, &SubmittedAnswer{AnswerText: " false "}, false},
		{"true false garbage", tf, &SubmittedAnswer{AnswerText: "maybe"}, false},
		{"text exact match", text, &SubmittedAnswer{AnswerText: "goroutine"}, true},
		{"text mismatch", text, &SubmittedAnswer{AnswerText: "thread"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			answer := gradeQuestion(tc.q, tc.sub)
			assert.Equal(t, tc.correct, answer.IsCorrect)
			if tc.correct {
				assert.Equal(t, tc.q.Points, answer.PointsEarned)
			} else {
				assert.Zero(t, answer.PointsEarned)
			}
		})
	}
}

// Weighted two-question test: 7 + 3 points with a 0.7 passing score. The
// threshold is inclusive, so answering only the big question passes exactly.
func TestSubmitAttempt_Scoring(t *testing.T) {
	e := newTestEnv(t)
	owner := e.seedUser(t, "owner", model.RoleInstructor)
	course := e.seedCourse(t, owner.ID)
	_, test := e.seedTest(t, course.ID, 1, func(ts *model.Test) { ts.PassingScore = 0.7 })
	q1 := e.seedSingleChoiceQuestion(t, test.ID, 7, 1)
	q2 := e.seedTrueFalseQuestion(t, test.ID, 3, 2)

	learner := e.seedUser(t, "learner")
	e.seedEnrollment(t, learner.ID, course.ID, model.EnrollmentEnrolled)

	submit := func(answers []SubmittedAnswer) *AttemptResult {
		result, err := e.grading.SubmitAttempt(learner, test.ID, SubmitAttemptRequest{Answers: answers})
		require.NoError(t, err)
		return result
	}

	t.Run("all correct", func(t *testing.T) {
		result := submit([]SubmittedAnswer{
			{QuestionID: q1.ID, SelectedOptions: []int{0}},
			{QuestionID: q2.ID, AnswerText: "true"},
		})
		assert.InDelta(t, 1.0, result.Attempt.Score, 1e-9)
		assert.True(t, result.Attempt.Passed)
		assert.Equal(t, 1, result.Attempt.AttemptNumber)
		assert.Len(t, result.Answers, 2)
	})

	t.Run("exactly at threshold passes", func(t *testing.T) {
		result := submit([]SubmittedAnswer{
			{QuestionID: q1.ID, SelectedOptions: []int{0}},
			{QuestionID: q2.ID, AnswerText: "false"},
		})
		assert.InDelta(t, 0.7, result.Attempt.Score, 1e-9)
		assert.True(t, result.Attempt.Passed)
		assert.Equal(t, 2, result.Attempt.AttemptNumber)
	})

	t.Run("below threshold fails", func(t *testing.T) {
		result := submit([]SubmittedAnswer{
			{QuestionID: q2.ID, AnswerText: "true"},
		})
		assert.InDelta(t, 0.3, result.Attempt.Score, 1e-9)
		assert.False(t, result.Attempt.Passed)
		assert.Len(t, result.Answers, 2, "unanswered questions still get an answer row")
	})

	t.Run("empty submission scores zero", func(t *testing.T) {
		result := submit(nil)
		assert.Zero(t, result.Attempt.Score)
		assert.False(t, result.Attempt.Passed)
	})
}

// The latest passing score overwrites the item completion; failing attempts
// leave it alone.
func TestSubmitAttempt_CompletionScoreFollowsLatestPass(t *testing.T) {
	e := newTestEnv(t)
	owner := e.seedUser(t, "owner", model.RoleInstructor)
	course := e.seedCourse(t, owner.ID)
	item, test := e.seedTest(t, course.ID, 1, func(ts *model.Test) { ts.PassingScore = 0.5 })
	q1 := e.seedSingleChoiceQuestion(t, test.ID, 1, 1)
	q2 := e.seedTrueFalseQuestion(t, test.ID, 1, 2)

	learner := e.seedUser(t, "learner")
	e.seedEnrollment(t, learner.ID, course.ID, model.EnrollmentEnrolled)

	_, err := e.grading.SubmitAttempt(learner, test.ID, SubmitAttemptRequest{Answers: []SubmittedAnswer{
		{QuestionID: q1.ID, SelectedOptions: []int{0}},
		{QuestionID: q2.ID, AnswerText: "true"},
	}})
	require.NoError(t, err)

	completion, err := e.completionRepo.FindItemCompletion(learner.ID, item.ID)
	require.NoError(t, err)
	require.NotNil(t, completion.Score)
	assert.InDelta(t, 1.0, *completion.Score, 1e-9)

	// A later pass with a lower score still overwrites.
	_, err = e.grading.SubmitAttempt(learner, test.ID, SubmitAttemptRequest{Answers: []SubmittedAnswer{
		{QuestionID: q1.ID, SelectedOptions: []int{0}},
	}})
	require.NoError(t, err)

	completion, err = e.completionRepo.FindItemCompletion(learner.ID, item.ID)
	require.NoError(t, err)
	require.NotNil(t, completion.Score)
	assert.InDelta(t, 0.5, *completion.Score, 1e-9)

	// A failing attempt does not touch the completion.
	_, err = e.grading.SubmitAttempt(learner, test.ID, SubmitAttemptRequest{})
	require.NoError(t, err)

	completion, err = e.completionRepo.FindItemCompletion(learner.ID, item.ID)
	require.NoError(t, err)
	require.NotNil(t, completion.Score)
	assert.InDelta(t, 0.5, *completion.Score, 1e-9)

	var count int64
	require.NoError(t, e.db.Model(&model.Completion{}).
		Where("user_id = ? AND content_item_id = ?", learner.ID, item.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "completion row is upserted, never duplicated")
}

func TestSubmitAttempt_AttemptLimit(t *testing.T) {
	e := newTestEnv(t)
	owner := e.seedUser(t, "owner", model.RoleInstructor)
	course := e.seedCourse(t, owner.ID)
	_, test := e.seedTest(t, course.ID, 1, func(ts *model.Test) {
		max := 3
		ts.MaxAttempts = &max
	})
	e.seedSingleChoiceQuestion(t, test.ID, 1, 1)

	learner := e.seedUser(t, "learner")
	e.seedEnrollment(t, learner.ID, course.ID, model.EnrollmentEnrolled)

	for i := 1; i <= 3; i++ {
		result, err := e.grading.SubmitAttempt(learner, test.ID, SubmitAttemptRequest{})
		require.NoError(t, err)
		assert.Equal(t, i, result.Attempt.AttemptNumber)
	}

	_, err := e.grading.SubmitAttempt(learner, test.ID, SubmitAttemptRequest{})
	assert.ErrorIs(t, err, util.ErrMaxAttemptsReached)

	count, err := e.attemptRepo.CountByUserAndTest(nil, learner.ID, test.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count, "the rejected attempt is never persisted")
}

func TestSubmitAttempt_Preconditions(t *testing.T) {
	e := newTestEnv(t)
	owner := e.seedUser(t, "owner", model.RoleInstructor)
	course := e.seedCourse(t, owner.ID)
	_, test := e.seedTest(t, course.ID, 1)
	learner := e.seedUser(t, "learner")

	t.Run("unknown test", func(t *testing.T) {
		_, err := e.grading.SubmitAttempt(learner, test.ID+999, SubmitAttemptRequest{})
		assert.ErrorIs(t, err, util.ErrNotFound)
	})

	t.Run("not enrolled", func(t *testing.T) {
		_, err := e.grading.SubmitAttempt(learner, test.ID, SubmitAttemptRequest{})
		assert.ErrorIs(t, err, util.ErrForbidden)
	})
}

func TestSubmitAttempt_PassingCompletesSingleItemCourse(t *testing.T) {
	e := newTestEnv(t)
	owner := e.seedUser(t, "owner", model.RoleInstructor)
	course := e.seedCourse(t, owner.ID)
	_, test := e.seedTest(t, course.ID, 1)
	q := e.seedSingleChoiceQuestion(t, test.ID, 1, 1)

	learner := e.seedUser(t, "learner")
	enr := e.seedEnrollment(t, learner.ID, course.ID, model.EnrollmentEnrolled)

	result, err := e.grading.SubmitAttempt(learner, test.ID, SubmitAttemptRequest{Answers: []SubmittedAnswer{
		{QuestionID: q.ID, SelectedOptions: []int{0}},
	}})
	require.NoError(t, err)
	require.True(t, result.Attempt.Passed)

	_, err = e.completionRepo.FindCourseCompletion(learner.ID, course.ID)
	require.NoError(t, err, "passing the only item completes the course")

	got, err := e.enrollmentRepo.FindByID(enr.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentCompleted, got.Status)
}

func TestGetTestProgress(t *testing.T) {
	e := newTestEnv(t)
	owner := e.seedUser(t, "owner", model.RoleInstructor)
	course := e.seedCourse(t, owner.ID)
	_, test := e.seedTest(t, course.ID, 1, func(ts *model.Test) {
		ts.PassingScore = 0.7
		max := 3
		ts.MaxAttempts = &max
	})
	q1 := e.seedSingleChoiceQuestion(t, test.ID, 7, 1)
	q2 := e.seedTrueFalseQuestion(t, test.ID, 3, 2)

	learner := e.seedUser(t, "learner")
	e.seedEnrollment(t, learner.ID, course.ID, model.EnrollmentEnrolled)

	_, err := e.grading.SubmitAttempt(learner, test.ID, SubmitAttemptRequest{Answers: []SubmittedAnswer{
		{QuestionID: q2.ID, AnswerText: "true"},
	}})
	require.NoError(t, err)
	_, err = e.grading.SubmitAttempt(learner, test.ID, SubmitAttemptRequest{Answers: []SubmittedAnswer{
		{QuestionID: q1.ID, SelectedOptions: []int{0}},
	}})
	require.NoError(t, err)

	progress, err := e.grading.GetTestProgress(learner, test.ID)
	require.NoError(t, err)
	assert.Len(t, progress.Attempts, 2)
	require.NotNil(t, progress.BestScore)
	assert.InDelta(t, 0.7, *progress.BestScore, 1e-9)
	assert.True(t, progress.Passed)
	require.NotNil(t, progress.RemainingAttempts)
	assert.Equal(t, 1, *progress.RemainingAttempts)
	assert.True(t, progress.CanRetake)
}
