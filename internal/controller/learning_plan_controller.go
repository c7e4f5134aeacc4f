package controller

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LearningPlanController struct {
	PlanService   *service.LearningPlanService
	AccessService *service.AccessService
}

func NewLearningPlanController(planService *service.LearningPlanService, accessService *service.AccessService) *LearningPlanController {
	return &LearningPlanController{PlanService: planService, AccessService: accessService}
}

func (c *LearningPlanController) loadPlan(ctx *gin.Context, level service.AccessLevel) (*model.LearningPlan, bool) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return nil, false
	}
	plan, err := c.PlanService.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return nil, false
	}

	user := util.ClaimsToUser(util.GetUserFromContext(ctx))
	allowed, err := c.AccessService.CanAccessPlan(user, plan, level)
	if err != nil {
		util.LogInternalError(ctx, err)
		return nil, false
	}
	if !allowed {
		util.Forbidden(ctx, "")
		return nil, false
	}
	return plan, true
}

// ListPlans godoc
// @Summary List learning plans
// @Tags learning-plans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/learning-plans [get]
func (c *LearningPlanController) ListPlans(ctx *gin.Context) {
	page, limit := pageParams(ctx)
	plans, total, err := c.PlanService.List(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: plans, Total: total, Page: page, Limit: limit})
}

// GetPlan godoc
// @Summary Get a learning plan
// @Tags learning-plans
// @Produce json
// @Security BearerAuth
// @Param id path int true "plan id"
// @Success 200 {object} util.Response{data=model.LearningPlan}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/learning-plans/{id} [get]
func (c *LearningPlanController) GetPlan(ctx *gin.Context) {
	plan, ok := c.loadPlan(ctx, service.LevelView)
	if !ok {
		return
	}
	util.Success(ctx, plan)
}

// CreatePlan godoc
// @Summary Create a learning plan
// @Tags learning-plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.LearningPlanRequest true "plan payload"
// @Success 201 {object} util.Response{data=model.LearningPlan}
// @Router /api/learning-plans [post]
func (c *LearningPlanController) CreatePlan(ctx *gin.Context) {
	var req service.LearningPlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	claims := util.GetUserFromContext(ctx)
	plan, err := c.PlanService.Create(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, plan)
}

// UpdatePlan godoc
// @Summary Update a learning plan
// @Tags learning-plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "plan id"
// @Param body body service.LearningPlanRequest true "plan payload"
// @Success 200 {object} util.Response{data=model.LearningPlan}
// @Router /api/learning-plans/{id} [put]
func (c *LearningPlanController) UpdatePlan(ctx *gin.Context) {
	plan, ok := c.loadPlan(ctx, service.LevelManage)
	if !ok {
		return
	}
	var req service.LearningPlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	updated, err := c.PlanService.Update(plan, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, updated)
}

// DeletePlan godoc
// @Summary Delete a learning plan
// @Tags learning-plans
// @Security BearerAuth
// @Param id path int true "plan id"
// @Success 200 {object} util.Response
// @Router /api/learning-plans/{id} [delete]
func (c *LearningPlanController) DeletePlan(ctx *gin.Context) {
	plan, ok := c.loadPlan(ctx, service.LevelManage)
	if !ok {
		return
	}
	if err := c.PlanService.Delete(plan.ID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListPlanCourses godoc
// @Summary Courses in a plan, in order
// @Tags learning-plans
// @Produce json
// @Security BearerAuth
// @Param id path int true "plan id"
// @Success 200 {object} util.Response{data=[]model.LearningPlanCourse}
// @Router /api/learning-plans/{id}/courses [get]
func (c *LearningPlanController) ListPlanCourses(ctx *gin.Context) {
	plan, ok := c.loadPlan(ctx, service.LevelView)
	if !ok {
		return
	}
	rows, err := c.PlanService.ListCourses(plan.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// AddPlanCourse godoc
// @Summary Add a course to a plan
// @Tags learning-plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "plan id"
// @Param body body service.PlanCourseRequest true "membership payload"
// @Success 201 {object} util.Response{data=model.LearningPlanCourse}
// @Failure 400 {object} util.Response "negative order"
// @Failure 409 {object} util.Response "course already in plan"
// @Router /api/learning-plans/{id}/courses [post]
func (c *LearningPlanController) AddPlanCourse(ctx *gin.Context) {
	plan, ok := c.loadPlan(ctx, service.LevelManage)
	if !ok {
		return
	}
	var req service.PlanCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.CourseID == 0 {
		util.BadRequest(ctx, "courseId is required")
		return
	}
	row, err := c.PlanService.AddCourse(plan, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidOrder):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrDuplicateMember):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, row)
}

// UpdatePlanCourse godoc
// @Summary Reorder a course inside a plan
// @Tags learning-plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "plan id"
// @Param courseId path int true "course id"
// @Param body body service.PlanCourseRequest true "membership payload"
// @Success 200 {object} util.Response{data=model.LearningPlanCourse}
// @Failure 400 {object} util.Response "negative order"
// @Router /api/learning-plans/{id}/courses/{courseId} [put]
func (c *LearningPlanController) UpdatePlanCourse(ctx *gin.Context) {
	plan, ok := c.loadPlan(ctx, service.LevelManage)
	if !ok {
		return
	}
	courseID, ok := paramID(ctx, "courseId")
	if !ok {
		return
	}
	var req service.PlanCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	req.CourseID = courseID
	row, err := c.PlanService.UpdateCourse(plan, courseID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidOrder):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, row)
}

// RemovePlanCourse godoc
// @Summary Remove a course from a plan
// @Tags learning-plans
// @Security BearerAuth
// @Param id path int true "plan id"
// @Param courseId path int true "course id"
// @Success 200 {object} util.Response
// @Router /api/learning-plans/{id}/courses/{courseId} [delete]
func (c *LearningPlanController) RemovePlanCourse(ctx *gin.Context) {
	plan, ok := c.loadPlan(ctx, service.LevelManage)
	if !ok {
		return
	}
	courseID, ok := paramID(ctx, "courseId")
	if !ok {
		return
	}
	if err := c.PlanService.RemoveCourse(plan.ID, courseID); err != nil {
		if errors.Is(err, util.ErrNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}
