package service

import (
	"testing"

	"lms_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Each grant is an independent OR branch: a user with no relationship to the
// course is denied, and adding any single grant flips the decision.
func TestCanAccessCourse_GrantComposition(t *testing.T) {
	t.Run("no relationship denies", func(t *testing.T) {
		e := newTestEnv(t)
		owner := e.seedUser(t, "owner", model.RoleInstructor)
		course := e.seedCourse(t, owner.ID)
		stranger := e.seedUser(t, "stranger")

		ok, err := e.access.CanAccessCourse(stranger, course, LevelView)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("admin manages everything", func(t *testing.T) {
		e := newTestEnv(t)
		owner := e.seedUser(t, "owner", model.RoleInstructor)
		course := e.seedCourse(t, owner.ID)
		admin := e.seedUser(t, "admin", model.RoleAdmin)

		ok, err := e.access.CanAccessCourse(admin, course, LevelManage)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("creator manages own course", func(t *testing.T) {
		e := newTestEnv(t)
		owner := e.seedUser(t, "owner", model.RoleInstructor)
		course := e.seedCourse(t, owner.ID)

		ok, err := e.access.CanAccessCourse(owner, course, LevelManage)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("assigned instructor manages", func(t *testing.T) {
		e := newTestEnv(t)
		owner := e.seedUser(t, "owner", model.RoleInstructor)
		course := e.seedCourse(t, owner.ID)
		helper := e.seedUser(t, "helper", model.RoleInstructor)
		require.NoError(t, e.assignmentRepo.Create(&model.InstructorAssignment{
			UserID: helper.ID, CourseID: &course.ID, AssignedByID: owner.ID,
		}))

		ok, err := e.access.CanAccessCourse(helper, course, LevelManage)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("public course viewable by anyone", func(t *testing.T) {
		e := newTestEnv(t)
		owner := e.seedUser(t, "owner", model.RoleInstructor)
		course := e.seedCourse(t, owner.ID, func(c *model.Course) { c.PublicAccess = true })
		stranger := e.seedUser(t, "stranger")

		ok, err := e.access.CanAccessCourse(stranger, course, LevelView)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = e.access.CanAccessCourse(stranger, course, LevelManage)
		require.NoError(t, err)
		assert.False(t, ok, "public access grants view, never manage")
	})

	t.Run("enrollment grants view", func(t *testing.T) {
		e := newTestEnv(t)
		owner := e.seedUser(t, "owner", model.RoleInstructor)
		course := e.seedCourse(t, owner.ID)
		learner := e.seedUser(t, "learner")
		e.seedEnrollment(t, learner.ID, course.ID, model.EnrollmentEnrolled)

		ok, err := e.access.CanAccessCourse(learner, course, LevelView)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("group access grants view", func(t *testing.T) {
		e := newTestEnv(t)
		owner := e.seedUser(t, "owner", model.RoleInstructor)
		course := e.seedCourse(t, owner.ID)
		learner := e.seedUser(t, "learner")

		group := &model.Group{Name: "cohort", InviteCode: model.GenerateUUID(), CreatedByID: owner.ID}
		require.NoError(t, e.groupRepo.Create(group))
		require.NoError(t, e.groupRepo.AddMember(&model.GroupMember{GroupID: group.ID, UserID: learner.ID}))
		require.NoError(t, e.groupRepo.GrantCourseAccess(&model.GroupAccess{GroupID: group.ID, CourseID: course.ID}))

		ok, err := e.access.CanAccessCourse(learner, course, LevelView)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("plan enrollment reaches contained course", func(t *testing.T) {
		e := newTestEnv(t)
		owner := e.seedUser(t, "owner", model.RoleInstructor)
		course := e.seedCourse(t, owner.ID)
		learner := e.seedUser(t, "learner")

		plan := &model.LearningPlan{Title: "Path", CreatedByID: owner.ID}
		require.NoError(t, e.planRepo.Create(plan))
		require.NoError(t, e.planRepo.AddCourse(&model.LearningPlanCourse{
			LearningPlanID: plan.ID, CourseID: course.ID, Order: 1,
		}))

		ok, err := e.access.CanAccessCourse(learner, course, LevelView)
		require.NoError(t, err)
		assert.False(t, ok, "plan membership alone grants nothing")

		e.seedPlanEnrollment(t, learner.ID, plan.ID)
		ok, err = e.access.CanAccessCourse(learner, course, LevelView)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("public plan reaches contained course", func(t *testing.T) {
		e := newTestEnv(t)
		owner := e.seedUser(t, "owner", model.RoleInstructor)
		course := e.seedCourse(t, owner.ID)
		learner := e.seedUser(t, "learner")

		plan := &model.LearningPlan{Title: "Open Path", CreatedByID: owner.ID, PublicAccess: true}
		require.NoError(t, e.planRepo.Create(plan))
		require.NoError(t, e.planRepo.AddCourse(&model.LearningPlanCourse{
			LearningPlanID: plan.ID, CourseID: course.ID, Order: 1,
		}))

		ok, err := e.access.CanAccessCourse(learner, course, LevelView)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("plan group access reaches contained course", func(t *testing.T) {
		e := newTestEnv(t)
		owner := e.seedUser(t, "owner", model.RoleInstructor)
		course := e.seedCourse(t, owner.ID)
		learner := e.seedUser(t, "learner")

		plan := &model.LearningPlan{Title: "Group Path", CreatedByID: owner.ID}
		require.NoError(t, e.planRepo.Create(plan))
		require.NoError(t, e.planRepo.AddCourse(&model.LearningPlanCourse{
			LearningPlanID: plan.ID, CourseID: course.ID, Order: 1,
		}))

		group := &model.Group{Name: "team", InviteCode: model.GenerateUUID(), CreatedByID: owner.ID}
		require.NoError(t, e.groupRepo.Create(group))
		require.NoError(t, e.groupRepo.AddMember(&model.GroupMember{GroupID: group.ID, UserID: learner.ID}))
		require.NoError(t, e.groupRepo.GrantPlanAccess(&model.LearningPlanGroupAccess{
			GroupID: group.ID, LearningPlanID: plan.ID,
		}))

		ok, err := e.access.CanAccessCourse(learner, course, LevelView)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

// The instructor role grants blanket view through CanAccessCourse, but the
// stricter enrolled check requires a concrete relationship to the course.
func TestInstructorViewVersusEnrolledCheck(t *testing.T) {
	e := newTestEnv(t)
	owner := e.seedUser(t, "owner", model.RoleInstructor)
	course := e.seedCourse(t, owner.ID)
	other := e.seedUser(t, "other", model.RoleInstructor)

	ok, err := e.access.CanAccessCourse(other, course, LevelView)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.access.CanAccessCourse(other, course, LevelManage)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.access.IsEnrolledOrHasAccess(other, course)
	require.NoError(t, err)
	assert.False(t, ok, "unrelated instructor cannot reach course content")

	e.seedEnrollment(t, other.ID, course.ID, model.EnrollmentEnrolled)
	ok, err = e.access.IsEnrolledOrHasAccess(other, course)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanAccessPlan(t *testing.T) {
	e := newTestEnv(t)
	owner := e.seedUser(t, "owner", model.RoleInstructor)
	plan := &model.LearningPlan{Title: "Path", CreatedByID: owner.ID}
	require.NoError(t, e.planRepo.Create(plan))

	learner := e.seedUser(t, "learner")
	ok, err := e.access.CanAccessPlan(learner, plan, LevelView)
	require.NoError(t, err)
	assert.False(t, ok)

	e.seedPlanEnrollment(t, learner.ID, plan.ID)
	ok, err = e.access.CanAccessPlan(learner, plan, LevelView)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.access.CanAccessPlan(owner, plan, LevelManage)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.access.IsEnrolledOrHasPlanAccess(learner, plan)
	require.NoError(t, err)
	assert.True(t, ok)
}
