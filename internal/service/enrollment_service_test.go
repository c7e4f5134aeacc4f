package service

import (
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfEnroll_Course(t *testing.T) {
	e := newTestEnv(t)
	owner := e.seedUser(t, "owner", model.RoleInstructor)
	learner := e.seedUser(t, "learner")

	t.Run("open course enrolls immediately", func(t *testing.T) {
		course := e.seedCourse(t, owner.ID, func(c *model.Course) { c.SelfEnrollment = true })

		enr, err := e.enrollment.SelfEnroll(learner.ID, SelfEnrollRequest{CourseID: &course.ID})
		require.NoError(t, err)
		assert.Equal(t, model.EnrollmentEnrolled, enr.Status)
		require.NotNil(t, enr.CourseID)
		assert.Equal(t, course.ID, *enr.CourseID)
	})

	t.Run("unknown course", func(t *testing.T) {
		missing := uint(99999)
		_, err := e.enrollment.SelfEnroll(learner.ID, SelfEnrollRequest{CourseID: &missing})
		assert.ErrorIs(t, err, util.ErrNotFound)
	})

	t.Run("draft course rejected", func(t *testing.T) {
		course := e.seedCourse(t, owner.ID, func(c *model.Course) {
			c.Status = model.CourseDraft
			c.SelfEnrollment = true
		})
		_, err := e.enrollment.SelfEnroll(learner.ID, SelfEnrollRequest{CourseID: &course.ID})
		assert.ErrorIs(t, err, util.ErrCourseNotPublished)
	})

	t.Run("self-enrollment disabled", func(t *testing.T) {
		course := e.seedCourse(t, owner.ID)
		_, err := e.enrollment.SelfEnroll(learner.ID, SelfEnrollRequest{CourseID: &course.ID})
		assert.ErrorIs(t, err, util.ErrSelfEnrollDisabled)
	})

	t.Run("duplicate enrollment", func(t *testing.T) {
		course := e.seedCourse(t, owner.ID, func(c *model.Course) { c.SelfEnrollment = true })
		_, err := e.enrollment.SelfEnroll(learner.ID, SelfEnrollRequest{CourseID: &course.ID})
		require.NoError(t, err)

		_, err = e.enrollment.SelfEnroll(learner.ID, SelfEnrollRequest{CourseID: &course.ID})
		assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)
	})

	t.Run("target must be exactly one", func(t *testing.T) {
		course := e.seedCourse(t, owner.ID, func(c *model.Course) { c.SelfEnrollment = true })
		planID := uint(1)

		_, err := e.enrollment.SelfEnroll(learner.ID, SelfEnrollRequest{})
		assert.ErrorIs(t, err, util.ErrInvalidRequest)

		_, err = e.enrollment.SelfEnroll(learner.ID, SelfEnrollRequest{CourseID: &course.ID, LearningPlanID: &planID})
		assert.ErrorIs(t, err, util.ErrInvalidRequest)
	})
}

func TestSelfEnroll_EnrollmentLimit(t *testing.T) {
	e := newTestEnv(t)
	owner := e.seedUser(t, "owner", model.RoleInstructor)
	course := e.seedCourse(t, owner.ID, func(c *model.Course) {
		c.SelfEnrollment = true
		max := 1
		c.MaxEnrollments = &max
	})

	first := e.seedUser(t, "first")
	second := e.seedUser(t, "second")

	_, err := e.enrollment.SelfEnroll(first.ID, SelfEnrollRequest{CourseID: &course.ID})
	require.NoError(t, err)

	_, err = e.enrollment.SelfEnroll(second.ID, SelfEnrollRequest{CourseID: &course.ID})
	assert.ErrorIs(t, err, util.ErrEnrollmentLimitReached)
	assert.EqualError(t, err, "Enrollment limit reached")
}

func TestSelfEnroll_ApprovalFlow(t *testing.T) {
	e := newTestEnv(t)
	owner := e.seedUser(t, "owner", model.RoleInstructor)
	course := e.seedCourse(t, owner.ID, func(c *model.Course) {
		c.SelfEnrollment = true
		c.RequiresApproval = true
	})
	learner := e.seedUser(t, "learner")

	enr, err := e.enrollment.SelfEnroll(learner.ID, SelfEnrollRequest{CourseID: &course.ID})
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentPendingApproval, enr.Status)

	t.Run("approve promotes to enrolled", func(t *testing.T) {
		approved, err := e.enrollment.Approve(enr.ID)
		require.NoError(t, err)
		assert.Equal(t, model.EnrollmentEnrolled, approved.Status)

		// Approving twice is harmless.
		again, err := e.enrollment.Approve(enr.ID)
		require.NoError(t, err)
		assert.Equal(t, model.EnrollmentEnrolled, again.Status)
	})

	t.Run("reject requires pending status", func(t *testing.T) {
		err := e.enrollment.Reject(enr.ID)
		assert.ErrorIs(t, err, util.ErrInvalidRequest)
	})

	t.Run("reject removes a pending request", func(t *testing.T) {
		other := e.seedUser(t, "other")
		pending, err := e.enrollment.SelfEnroll(other.ID, SelfEnrollRequest{CourseID: &course.ID})
		require.NoError(t, err)

		require.NoError(t, e.enrollment.Reject(pending.ID))

		_, err = e.enrollmentRepo.FindByUserAndCourse(other.ID, course.ID)
		assert.Error(t, err)
	})

	t.Run("approve unknown enrollment", func(t *testing.T) {
		_, err := e.enrollment.Approve(99999)
		assert.ErrorIs(t, err, util.ErrNotFound)
	})
}

// Pending requests do not occupy a seat, so approval-gated courses can hold
// more requests than the limit.
func TestSelfEnroll_PendingDoesNotCountAgainstLimit(t *testing.T) {
	e := newTestEnv(t)
	owner := e.seedUser(t, "owner", model.RoleInstructor)
	course := e.seedCourse(t, owner.ID, func(c *model.Course) {
		c.SelfEnrollment = true
		c.RequiresApproval = true
		max := 1
		c.MaxEnrollments = &max
	})

	first := e.seedUser(t, "first")
	second := e.seedUser(t, "second")

	_, err := e.enrollment.SelfEnroll(first.ID, SelfEnrollRequest{CourseID: &course.ID})
	require.NoError(t, err)
	_, err = e.enrollment.SelfEnroll(second.ID, SelfEnrollRequest{CourseID: &course.ID})
	require.NoError(t, err)
}

func TestSelfEnroll_Plan(t *testing.T) {
	e := newTestEnv(t)
	owner := e.seedUser(t, "owner", model.RoleInstructor)
	learner := e.seedUser(t, "learner")

	open := &model.LearningPlan{Title: "Open Path", CreatedByID: owner.ID, SelfEnrollment: true}
	require.NoError(t, e.planRepo.Create(open))
	closed := &model.LearningPlan{Title: "Closed Path", CreatedByID: owner.ID}
	require.NoError(t, e.planRepo.Create(closed))

	enr, err := e.enrollment.SelfEnroll(learner.ID, SelfEnrollRequest{LearningPlanID: &open.ID})
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentEnrolled, enr.Status)
	require.NotNil(t, enr.LearningPlanID)
	assert.Equal(t, open.ID, *enr.LearningPlanID)

	_, err = e.enrollment.SelfEnroll(learner.ID, SelfEnrollRequest{LearningPlanID: &open.ID})
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)

	_, err = e.enrollment.SelfEnroll(learner.ID, SelfEnrollRequest{LearningPlanID: &closed.ID})
	assert.ErrorIs(t, err, util.ErrSelfEnrollDisabled)

	missing := uint(99999)
	_, err = e.enrollment.SelfEnroll(learner.ID, SelfEnrollRequest{LearningPlanID: &missing})
	assert.ErrorIs(t, err, util.ErrNotFound)
}
