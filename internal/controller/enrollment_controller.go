package controller

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
	AccessService     *service.AccessService
	CourseService     *service.CourseService
	PlanService       *service.LearningPlanService
}

func NewEnrollmentController(
	enrollmentService *service.EnrollmentService,
	accessService *service.AccessService,
	courseService *service.CourseService,
	planService *service.LearningPlanService,
) *EnrollmentController {
	return &EnrollmentController{
		EnrollmentService: enrollmentService,
		AccessService:     accessService,
		CourseService:     courseService,
		PlanService:       planService,
	}
}

// SelfEnroll godoc
// @Summary Enroll the caller in a course or learning plan
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.SelfEnrollRequest true "exactly one of courseId/learningPlanId"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Failure 400 {object} util.Response "self-enrollment closed or target not published"
// @Failure 403 {object} util.Response "enrollment limit reached"
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "already enrolled"
// @Router /api/enrollments/self [post]
func (c *EnrollmentController) SelfEnroll(ctx *gin.Context) {
	var req service.SelfEnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	enrollment, err := c.EnrollmentService.SelfEnroll(claims.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidRequest):
			util.BadRequest(ctx, "exactly one of courseId or learningPlanId must be set")
		case errors.Is(err, util.ErrNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrCourseNotPublished), errors.Is(err, util.ErrSelfEnrollDisabled):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrEnrollmentLimitReached):
			util.Forbidden(ctx, err.Error())
		case errors.Is(err, util.ErrAlreadyEnrolled):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, enrollment)
}

// ListMine godoc
// @Summary The caller's enrollments
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Enrollment}
// @Router /api/enrollments [get]
func (c *EnrollmentController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	enrollments, err := c.EnrollmentService.ListByUser(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, enrollments)
}

// ListByCourse godoc
// @Summary Enrollments of a course (manage access required)
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "course id"
// @Success 200 {object} util.Response{data=[]model.Enrollment}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{courseId}/enrollments [get]
func (c *EnrollmentController) ListByCourse(ctx *gin.Context) {
	courseID, ok := paramID(ctx, "courseId")
	if !ok {
		return
	}
	course, err := c.CourseService.FindByID(courseID)
	if err != nil {
		util.NotFound(ctx)
		return
	}

	user := util.ClaimsToUser(util.GetUserFromContext(ctx))
	allowed, err := c.AccessService.CanAccessCourse(user, course, service.LevelManage)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if !allowed {
		util.Forbidden(ctx, "")
		return
	}

	enrollments, err := c.EnrollmentService.ListByCourse(courseID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, enrollments)
}

// manageEnrollment resolves a pending enrollment and checks manage access on
// its target before an approve/reject decision.
func (c *EnrollmentController) manageEnrollment(ctx *gin.Context) (*model.Enrollment, bool) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return nil, false
	}
	enrollment, err := c.EnrollmentService.EnrollmentRepo.FindByID(id)
	if err != nil {
		util.NotFound(ctx)
		return nil, false
	}

	user := util.ClaimsToUser(util.GetUserFromContext(ctx))
	var allowed bool
	switch {
	case enrollment.CourseID != nil:
		course, err := c.CourseService.FindByID(*enrollment.CourseID)
		if err != nil {
			util.NotFound(ctx)
			return nil, false
		}
		allowed, err = c.AccessService.CanAccessCourse(user, course, service.LevelManage)
		if err != nil {
			util.LogInternalError(ctx, err)
			return nil, false
		}
	case enrollment.LearningPlanID != nil:
		plan, err := c.PlanService.FindByID(*enrollment.LearningPlanID)
		if err != nil {
			util.NotFound(ctx)
			return nil, false
		}
		allowed, err = c.AccessService.CanAccessPlan(user, plan, service.LevelManage)
		if err != nil {
			util.LogInternalError(ctx, err)
			return nil, false
		}
	}
	if !allowed {
		util.Forbidden(ctx, "")
		return nil, false
	}
	return enrollment, true
}

// Approve godoc
// @Summary Approve a pending enrollment
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "enrollment id"
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Failure 400 {object} util.Response "not pending approval"
// @Router /api/enrollments/{id}/approve [post]
func (c *EnrollmentController) Approve(ctx *gin.Context) {
	enrollment, ok := c.manageEnrollment(ctx)
	if !ok {
		return
	}
	approved, err := c.EnrollmentService.Approve(enrollment.ID)
	if err != nil {
		if errors.Is(err, util.ErrInvalidRequest) {
			util.BadRequest(ctx, "enrollment is not pending approval")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, approved)
}

// Reject godoc
// @Summary Reject a pending enrollment
// @Tags enrollments
// @Security BearerAuth
// @Param id path int true "enrollment id"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "not pending approval"
// @Router /api/enrollments/{id}/reject [post]
func (c *EnrollmentController) Reject(ctx *gin.Context) {
	enrollment, ok := c.manageEnrollment(ctx)
	if !ok {
		return
	}
	if err := c.EnrollmentService.Reject(enrollment.ID); err != nil {
		if errors.Is(err, util.ErrInvalidRequest) {
			util.BadRequest(ctx, "enrollment is not pending approval")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}
