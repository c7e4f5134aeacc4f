package controller

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync/atomic"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/service"
	"lms_backend/internal/util"
	"lms_backend/pkg/database"
	"lms_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

var dbSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:ctrl%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// questionFixture seeds a private published course holding one test question
// and wires the question controller the way app.go does.
type questionFixture struct {
	db         *gorm.DB
	controller *QuestionController
	owner      *model.User
	course     *model.Course
	question   *model.Question
}

func newQuestionFixture(t *testing.T) *questionFixture {
	t.Helper()
	db := newTestDB(t)

	testRepo := repository.NewTestRepository(db)
	itemRepo := repository.NewContentItemRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	access := service.NewAccessService(
		repository.NewEnrollmentRepository(db),
		repository.NewInstructorAssignmentRepository(db),
		repository.NewGroupRepository(db),
		repository.NewLearningPlanRepository(db),
	)
	ctrl := NewQuestionController(service.NewQuestionService(testRepo), access, testRepo, itemRepo, courseRepo)

	owner := &model.User{Name: "owner", Email: "owner@example.com", Password: "hashed",
		Roles: model.RoleList{model.RoleInstructor}}
	require.NoError(t, db.Create(owner).Error)

	course := &model.Course{Title: "Private Course", Code: "QC-1", CreatedByID: owner.ID,
		Status: model.CoursePublished}
	require.NoError(t, db.Create(course).Error)

	item := &model.ContentItem{CourseID: course.ID, Title: "Final Test", Type: model.ContentTest, Order: 1}
	require.NoError(t, db.Create(item).Error)
	testRow := &model.Test{ContentItemID: item.ID, Title: item.Title, PassingScore: 0.6}
	require.NoError(t, db.Create(testRow).Error)

	question := &model.Question{
		TestID: testRow.ID, Type: model.SingleChoice, Text: "pick one", Points: 1, Order: 1,
		Options: []model.QuestionOption{
			{Text: "right", Correct: true, Order: 1},
			{Text: "wrong", Order: 2},
		},
	}
	require.NoError(t, db.Create(question).Error)

	return &questionFixture{db: db, controller: ctrl, owner: owner, course: course, question: question}
}

func (f *questionFixture) seedLearner(t *testing.T, name string) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: name + "@example.com", Password: "hashed",
		Roles: model.RoleList{model.RoleLearner}}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *questionFixture) enroll(t *testing.T, userID uint) {
	t.Helper()
	require.NoError(t, f.db.Create(&model.Enrollment{
		UserID: userID, CourseID: &f.course.ID, Status: model.EnrollmentEnrolled,
	}).Error)
}

// invoke runs a handler directly with the claims the auth middleware would
// have attached.
func (f *questionFixture) invoke(user *model.User, method string, handler gin.HandlerFunc, questionID uint) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(method, "/", nil)
	ctx.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(uint64(questionID), 10)}}
	ctx.Set("user", &util.Claims{UserID: user.ID, Roles: user.Roles, Email: user.Email})
	handler(ctx)
	return w
}

// Reading a question follows course view access: enrollment alone is enough,
// and so is public access or the blanket instructor view.
func TestGetQuestion_AccessFollowsCourseView(t *testing.T) {
	t.Run("stranger is denied", func(t *testing.T) {
		f := newQuestionFixture(t)
		stranger := f.seedLearner(t, "stranger")

		w := f.invoke(stranger, http.MethodGet, f.controller.GetQuestion, f.question.ID)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("enrollment alone grants the read", func(t *testing.T) {
		f := newQuestionFixture(t)
		learner := f.seedLearner(t, "learner")
		f.enroll(t, learner.ID)

		w := f.invoke(learner, http.MethodGet, f.controller.GetQuestion, f.question.ID)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("public access grants the read", func(t *testing.T) {
		f := newQuestionFixture(t)
		require.NoError(t, f.db.Model(f.course).Update("public_access", true).Error)
		stranger := f.seedLearner(t, "stranger")

		w := f.invoke(stranger, http.MethodGet, f.controller.GetQuestion, f.question.ID)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unrelated instructor keeps the blanket view", func(t *testing.T) {
		f := newQuestionFixture(t)
		other := &model.User{Name: "other", Email: "other@example.com", Password: "hashed",
			Roles: model.RoleList{model.RoleInstructor}}
		require.NoError(t, f.db.Create(other).Error)

		w := f.invoke(other, http.MethodGet, f.controller.GetQuestion, f.question.ID)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown question is 404 before any access check", func(t *testing.T) {
		f := newQuestionFixture(t)
		stranger := f.seedLearner(t, "stranger")

		w := f.invoke(stranger, http.MethodGet, f.controller.GetQuestion, f.question.ID+999)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// View access never unlocks writes: an enrolled learner can read a question
// but not change or delete it.
func TestQuestionWrites_RequireCourseManage(t *testing.T) {
	f := newQuestionFixture(t)
	learner := f.seedLearner(t, "learner")
	f.enroll(t, learner.ID)

	w := f.invoke(learner, http.MethodPut, f.controller.UpdateQuestion, f.question.ID)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.invoke(learner, http.MethodDelete, f.controller.DeleteQuestion, f.question.ID)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.invoke(f.owner, http.MethodDelete, f.controller.DeleteQuestion, f.question.ID)
	assert.Equal(t, http.StatusOK, w.Code)
}
