package service

import (
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/pkg/database"
	"lms_backend/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

var dbSeq atomic.Int64

// newTestDB opens a fresh in-memory database with the full schema. Each test
// gets its own named database so connection pooling cannot leak rows across
// tests.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// testEnv wires the repositories and services the same way app.go does,
// against an in-memory database and without redis or object storage.
type testEnv struct {
	db *gorm.DB

	userRepo       *repository.UserRepository
	courseRepo     *repository.CourseRepository
	itemRepo       *repository.ContentItemRepository
	enrollmentRepo *repository.EnrollmentRepository
	completionRepo *repository.CompletionRepository
	videoRepo      *repository.VideoProgressRepository
	testRepo       *repository.TestRepository
	attemptRepo    *repository.AttemptRepository
	planRepo       *repository.LearningPlanRepository
	groupRepo      *repository.GroupRepository
	assignmentRepo *repository.InstructorAssignmentRepository
	analyticsRepo  *repository.AnalyticsRepository

	access     *AccessService
	progress   *ProgressService
	grading    *GradingService
	enrollment *EnrollmentService
	analytics  *AnalyticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	e := &testEnv{
		db:             db,
		userRepo:       repository.NewUserRepository(db),
		courseRepo:     repository.NewCourseRepository(db),
		itemRepo:       repository.NewContentItemRepository(db),
		enrollmentRepo: repository.NewEnrollmentRepository(db),
		completionRepo: repository.NewCompletionRepository(db),
		videoRepo:      repository.NewVideoProgressRepository(db),
		testRepo:       repository.NewTestRepository(db),
		attemptRepo:    repository.NewAttemptRepository(db),
		planRepo:       repository.NewLearningPlanRepository(db),
		groupRepo:      repository.NewGroupRepository(db),
		assignmentRepo: repository.NewInstructorAssignmentRepository(db),
		analyticsRepo:  repository.NewAnalyticsRepository(db),
	}

	e.access = NewAccessService(e.enrollmentRepo, e.assignmentRepo, e.groupRepo, e.planRepo)
	e.progress = NewProgressService(e.itemRepo, e.completionRepo, e.videoRepo, e.enrollmentRepo, nil, db)
	e.grading = NewGradingService(e.testRepo, e.attemptRepo, e.itemRepo, e.courseRepo, e.access, e.progress, db)
	e.enrollment = NewEnrollmentService(e.enrollmentRepo, e.courseRepo, e.planRepo, db)
	e.analytics = NewAnalyticsService(e.analyticsRepo, e.enrollmentRepo, e.completionRepo, e.videoRepo,
		e.attemptRepo, e.testRepo, e.planRepo, e.userRepo, nil)
	return e
}

var seedSeq atomic.Int64

func (e *testEnv) seedUser(t *testing.T, name string, roles ...model.UserRole) *model.User {
	t.Helper()
	if len(roles) == 0 {
		roles = []model.UserRole{model.RoleLearner}
	}
	u := &model.User{
		Name:     name,
		Email:    fmt.Sprintf("%s%d@example.com", name, seedSeq.Add(1)),
		Password: "hashed",
		Roles:    roles,
	}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) seedCourse(t *testing.T, creatorID uint, mutate ...func(*model.Course)) *model.Course {
	t.Helper()
	c := &model.Course{
		Title:       "Test Course",
		Code:        fmt.Sprintf("CRS-%d", seedSeq.Add(1)),
		CreatedByID: creatorID,
		Status:      model.CoursePublished,
	}
	for _, fn := range mutate {
		fn(c)
	}
	require.NoError(t, e.db.Create(c).Error)
	return c
}

func (e *testEnv) seedItem(t *testing.T, courseID uint, typ model.ContentType, order int, mutate ...func(*model.ContentItem)) *model.ContentItem {
	t.Helper()
	item := &model.ContentItem{
		CourseID: courseID,
		Title:    fmt.Sprintf("Item %d", order),
		Type:     typ,
		Order:    order,
	}
	for _, fn := range mutate {
		fn(item)
	}
	require.NoError(t, e.db.Create(item).Error)
	return item
}

// seedTest creates a test content item and its test row in one go.
func (e *testEnv) seedTest(t *testing.T, courseID uint, order int, mutate ...func(*model.Test)) (*model.ContentItem, *model.Test) {
	t.Helper()
	item := e.seedItem(t, courseID, model.ContentTest, order)
	test := &model.Test{ContentItemID: item.ID, Title: item.Title, PassingScore: 0.6}
	for _, fn := range mutate {
		fn(test)
	}
	require.NoError(t, e.db.Create(test).Error)
	return item, test
}

func (e *testEnv) seedEnrollment(t *testing.T, userID, courseID uint, status model.EnrollmentStatus) *model.Enrollment {
	t.Helper()
	enr := &model.Enrollment{UserID: userID, CourseID: &courseID, Status: status}
	require.NoError(t, e.db.Create(enr).Error)
	return enr
}

func (e *testEnv) seedPlanEnrollment(t *testing.T, userID, planID uint) *model.Enrollment {
	t.Helper()
	enr := &model.Enrollment{UserID: userID, LearningPlanID: &planID, Status: model.EnrollmentEnrolled}
	require.NoError(t, e.db.Create(enr).Error)
	return enr
}
