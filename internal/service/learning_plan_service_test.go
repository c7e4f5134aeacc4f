package service

import (
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPlanCourse(t *testing.T) {
	e := newTestEnv(t)
	plans := NewLearningPlanService(e.planRepo, e.courseRepo)
	owner := e.seedUser(t, "owner", model.RoleInstructor)
	plan := &model.LearningPlan{Title: "Path", CreatedByID: owner.ID}
	require.NoError(t, e.planRepo.Create(plan))
	course := e.seedCourse(t, owner.ID)
	second := e.seedCourse(t, owner.ID)

	t.Run("appends after the highest order", func(t *testing.T) {
		row, err := plans.AddCourse(plan, PlanCourseRequest{CourseID: course.ID})
		require.NoError(t, err)
		assert.Equal(t, 0, row.Order)

		row, err = plans.AddCourse(plan, PlanCourseRequest{CourseID: second.ID})
		require.NoError(t, err)
		assert.Equal(t, 1, row.Order)
	})

	t.Run("duplicate membership is a distinct conflict", func(t *testing.T) {
		_, err := plans.AddCourse(plan, PlanCourseRequest{CourseID: course.ID})
		assert.ErrorIs(t, err, util.ErrDuplicateMember)
		assert.NotErrorIs(t, err, util.ErrDuplicateCourse, "course-code conflicts are a different error")
	})

	t.Run("unknown course", func(t *testing.T) {
		_, err := plans.AddCourse(plan, PlanCourseRequest{CourseID: 99999})
		assert.ErrorIs(t, err, util.ErrNotFound)
	})

	t.Run("negative order rejected", func(t *testing.T) {
		neg := -1
		_, err := plans.AddCourse(plan, PlanCourseRequest{CourseID: second.ID, Order: &neg})
		assert.ErrorIs(t, err, util.ErrInvalidOrder)
	})
}
