package service

import (
	"context"
	"encoding/csv"
	"strconv"
	"strings"
	"testing"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCourseCompletion(t *testing.T, e *testEnv, userID, courseID uint, score *float64, cert string, badge bool) {
	t.Helper()
	now := time.Now()
	require.NoError(t, e.db.Create(&model.Completion{
		UserID: userID, CourseID: &courseID,
		Score: score, CertificateURL: cert, BadgeAwarded: badge, CompletedAt: &now,
	}).Error)
}

func TestForCourse_ZeroState(t *testing.T) {
	e := newTestEnv(t)
	owner := e.seedUser(t, "owner", model.RoleInstructor)
	course := e.seedCourse(t, owner.ID)

	out, err := e.analytics.ForCourse(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, out.CourseID)
	assert.Zero(t, out.Enrollments.Total)
	assert.Zero(t, out.Completions)
	assert.Zero(t, out.Certificates)
	assert.Zero(t, out.AverageScore)
	assert.Zero(t, out.TotalWatchMinutes)
}

func TestForCourse_Rollup(t *testing.T) {
	e := newTestEnv(t)
	owner := e.seedUser(t, "owner", model.RoleInstructor)
	course := e.seedCourse(t, owner.ID)
	video := e.seedItem(t, course.ID, model.ContentVideo, 1)
	doc := e.seedItem(t, course.ID, model.ContentPDF, 2)

	alice := e.seedUser(t, "alice")
	bob := e.seedUser(t, "bob")
	carol := e.seedUser(t, "carol")

	e.seedEnrollment(t, alice.ID, course.ID, model.EnrollmentCompleted)
	e.seedEnrollment(t, bob.ID, course.ID, model.EnrollmentInProgress)
	e.seedEnrollment(t, carol.ID, course.ID, model.EnrollmentPendingApproval)

	// Alice finished both items with graded scores averaging 0.75.
	high, low := 0.9, 0.6
	require.NoError(t, e.completionRepo.UpsertItemCompletion(e.db, alice.ID, video.ID, &high))
	require.NoError(t, e.completionRepo.UpsertItemCompletion(e.db, alice.ID, doc.ID, &low))
	seedCourseCompletion(t, e, alice.ID, course.ID, &high, "/certificates/a.html", true)

	require.NoError(t, e.db.Create(&model.VideoProgress{
		UserID: alice.ID, ContentItemID: video.ID, WatchTime: 300, TotalDuration: 300, Completed: true,
	}).Error)
	require.NoError(t, e.db.Create(&model.VideoProgress{
		UserID: bob.ID, ContentItemID: video.ID, WatchTime: 120, TotalDuration: 300,
	}).Error)

	out, err := e.analytics.ForCourse(context.Background(), course.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, out.Enrollments.Total)
	assert.EqualValues(t, 1, out.Enrollments.Completed)
	assert.EqualValues(t, 1, out.Enrollments.InProgress)
	assert.EqualValues(t, 1, out.Enrollments.PendingApproval)
	assert.EqualValues(t, 1, out.Completions)
	assert.EqualValues(t, 1, out.Certificates)
	assert.EqualValues(t, 1, out.Badges)
	assert.Equal(t, 75, out.AverageScore)
	assert.Equal(t, 7, out.TotalWatchMinutes)
}

func TestForUser(t *testing.T) {
	e := newTestEnv(t)
	owner := e.seedUser(t, "owner", model.RoleInstructor)
	course := e.seedCourse(t, owner.ID)
	item := e.seedItem(t, course.ID, model.ContentPDF, 1)
	learner := e.seedUser(t, "learner")

	e.seedEnrollment(t, learner.ID, course.ID, model.EnrollmentCompleted)
	require.NoError(t, e.completionRepo.UpsertItemCompletion(e.db, learner.ID, item.ID, nil))
	seedCourseCompletion(t, e, learner.ID, course.ID, nil, "/certificates/u.html", true)

	require.NoError(t, e.db.Create(&model.VideoProgress{
		UserID: learner.ID, ContentItemID: item.ID, WatchTime: 600, TotalDuration: 600,
	}).Error)

	out, err := e.analytics.ForUser(context.Background(), learner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, out.Enrollments.Completed)
	assert.EqualValues(t, 1, out.ItemsCompleted, "course-level rows are not item completions")
	assert.EqualValues(t, 1, out.Certificates)
	assert.EqualValues(t, 1, out.Badges)
	assert.Equal(t, 10, out.TotalWatchMinutes)
	assert.Zero(t, out.AverageScore, "no attempts yet")
}

func TestForVideo(t *testing.T) {
	e := newTestEnv(t)
	owner := e.seedUser(t, "owner", model.RoleInstructor)
	course := e.seedCourse(t, owner.ID)
	video := e.seedItem(t, course.ID, model.ContentVideo, 1)
	alice := e.seedUser(t, "alice")
	bob := e.seedUser(t, "bob")

	require.NoError(t, e.db.Create(&model.VideoProgress{
		UserID: alice.ID, ContentItemID: video.ID, WatchTime: 100, TotalDuration: 100, Completed: true,
	}).Error)
	require.NoError(t, e.db.Create(&model.VideoProgress{
		UserID: bob.ID, ContentItemID: video.ID, WatchTime: 50, TotalDuration: 100,
	}).Error)

	out, err := e.analytics.ForVideo(context.Background(), video.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Viewers)
	assert.Equal(t, 1, out.Completions)
	assert.Equal(t, 75, out.AverageWatched)
	assert.Equal(t, 2, out.TotalWatchMinutes)
}

func TestForTest(t *testing.T) {
	e := newTestEnv(t)
	owner := e.seedUser(t, "owner", model.RoleInstructor)
	course := e.seedCourse(t, owner.ID)
	_, test := e.seedTest(t, course.ID, 1, func(ts *model.Test) { ts.PassingScore = 0.7 })
	q := e.seedSingleChoiceQuestion(t, test.ID, 1, 1)

	alice := e.seedUser(t, "alice")
	bob := e.seedUser(t, "bob")

	now := time.Now()
	attempts := []model.TestAttempt{
		{TestID: test.ID, UserID: alice.ID, AttemptNumber: 1, Score: 0.5, Passed: false, SubmittedAt: now},
		{TestID: test.ID, UserID: alice.ID, AttemptNumber: 2, Score: 0.9, Passed: true, SubmittedAt: now},
		{TestID: test.ID, UserID: bob.ID, AttemptNumber: 1, Score: 0.1, Passed: false, SubmittedAt: now},
		{TestID: test.ID, UserID: bob.ID, AttemptNumber: 2, Score: 0.7, Passed: true, SubmittedAt: now},
	}
	for i := range attempts {
		require.NoError(t, e.db.Create(&attempts[i]).Error)
		require.NoError(t, e.db.Create(&model.TestAnswer{
			AttemptID: attempts[i].ID, QuestionID: q.ID, IsCorrect: attempts[i].Passed,
		}).Error)
	}

	out, err := e.analytics.ForTest(context.Background(), test.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Attempts)
	assert.Equal(t, 2, out.UniqueTakers)
	assert.Equal(t, 55, out.AverageScore)
	assert.Equal(t, 50, out.PassRate)

	assert.Equal(t, 1, out.ScoreDistribution["0-19"])
	assert.Equal(t, 1, out.ScoreDistribution["40-59"])
	assert.Equal(t, 1, out.ScoreDistribution["60-79"])
	assert.Equal(t, 1, out.ScoreDistribution["80-100"])
	assert.Zero(t, out.ScoreDistribution["20-39"])

	require.Len(t, out.Questions, 1)
	assert.Equal(t, q.ID, out.Questions[0].QuestionID)
	assert.Equal(t, 4, out.Questions[0].Attempts)
	assert.Equal(t, 2, out.Questions[0].Correct)
	assert.InDelta(t, 0.5, out.Questions[0].FractionCorrect, 1e-9)
}

func TestForPlan(t *testing.T) {
	e := newTestEnv(t)
	owner := e.seedUser(t, "owner", model.RoleInstructor)
	course := e.seedCourse(t, owner.ID)
	plan := &model.LearningPlan{Title: "Path", CreatedByID: owner.ID}
	require.NoError(t, e.planRepo.Create(plan))
	require.NoError(t, e.planRepo.AddCourse(&model.LearningPlanCourse{
		LearningPlanID: plan.ID, CourseID: course.ID, Order: 1,
	}))

	learner := e.seedUser(t, "learner")
	e.seedPlanEnrollment(t, learner.ID, plan.ID)

	now := time.Now()
	require.NoError(t, e.db.Create(&model.Completion{
		UserID: learner.ID, LearningPlanID: &plan.ID, BadgeAwarded: true, CompletedAt: &now,
	}).Error)

	out, err := e.analytics.ForPlan(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Courses)
	assert.EqualValues(t, 1, out.Enrollments.Enrolled)
	assert.EqualValues(t, 1, out.Completions)
	assert.EqualValues(t, 1, out.Badges)
	assert.Zero(t, out.Certificates)
}

func TestValidateExportTarget(t *testing.T) {
	assert.NoError(t, ValidateExportTarget(ExportRequest{Type: "COURSE", EntityID: 1}))
	assert.NoError(t, ValidateExportTarget(ExportRequest{Type: "course", EntityID: 1, Format: "csv"}))

	assert.ErrorIs(t, ValidateExportTarget(ExportRequest{Type: "LEARNING_PLAN", EntityID: 1}), util.ErrNotImplemented)
	assert.ErrorIs(t, ValidateExportTarget(ExportRequest{Type: "TEST", EntityID: 1}), util.ErrNotImplemented)
	assert.ErrorIs(t, ValidateExportTarget(ExportRequest{Type: "WIDGET", EntityID: 1}), util.ErrInvalidRequest)
	assert.ErrorIs(t, ValidateExportTarget(ExportRequest{Type: "COURSE", EntityID: 1, Format: "xlsx"}), util.ErrInvalidRequest)
}

func TestExportCSV(t *testing.T) {
	e := newTestEnv(t)
	owner := e.seedUser(t, "owner", model.RoleInstructor)
	course := e.seedCourse(t, owner.ID)
	alice := e.seedUser(t, "alice")
	bob := e.seedUser(t, "bob")

	e.seedEnrollment(t, alice.ID, course.ID, model.EnrollmentCompleted)
	e.seedEnrollment(t, bob.ID, course.ID, model.EnrollmentInProgress)

	score := 0.85
	seedCourseCompletion(t, e, alice.ID, course.ID, &score, "/certificates/a.html", true)

	data, filename, err := e.analytics.ExportCSV(ExportRequest{Type: "COURSE", EntityID: course.ID})
	require.NoError(t, err)
	assert.Contains(t, filename, ".csv")

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus one row per enrollment")
	assert.Equal(t, []string{"user_id", "status", "completed", "score", "certificate_url", "badge_awarded"}, records[0])

	byUser := map[string][]string{}
	for _, rec := range records[1:] {
		byUser[rec[0]] = rec
	}
	aliceRow := byUser[strconv.FormatUint(uint64(alice.ID), 10)]
	require.NotNil(t, aliceRow)
	assert.Equal(t, "completed", aliceRow[1])
	assert.Equal(t, "true", aliceRow[2])
	assert.Equal(t, "0.85", aliceRow[3])
	assert.Equal(t, "/certificates/a.html", aliceRow[4])
	assert.Equal(t, "true", aliceRow[5])

	bobRow := byUser[strconv.FormatUint(uint64(bob.ID), 10)]
	require.NotNil(t, bobRow)
	assert.Equal(t, "in_progress", bobRow[1])
	assert.Equal(t, "false", bobRow[2])
	assert.Empty(t, bobRow[3])
}
