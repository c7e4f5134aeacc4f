package controller

import (
	"errors"
	"net/http"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
	AccessService    *service.AccessService
	CourseRepo       *repository.CourseRepository
	ItemRepo         *repository.ContentItemRepository
	TestRepo         *repository.TestRepository
	PlanRepo         *repository.LearningPlanRepository
}

func NewAnalyticsController(
	analyticsService *service.AnalyticsService,
	accessService *service.AccessService,
	courseRepo *repository.CourseRepository,
	itemRepo *repository.ContentItemRepository,
	testRepo *repository.TestRepository,
	planRepo *repository.LearningPlanRepository,
) *AnalyticsController {
	return &AnalyticsController{
		AnalyticsService: analyticsService,
		AccessService:    accessService,
		CourseRepo:       courseRepo,
		ItemRepo:         itemRepo,
		TestRepo:         testRepo,
		PlanRepo:         planRepo,
	}
}

// manageCourse checks the caller manages the given course. Analytics are an
// instructor-facing surface: creator, assigned instructor or admin only.
func (c *AnalyticsController) manageCourse(ctx *gin.Context, courseID uint) bool {
	course, err := c.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return false
	}
	user := util.ClaimsToUser(util.GetUserFromContext(ctx))
	allowed, err := c.AccessService.CanAccessCourse(user, course, service.LevelManage)
	if err != nil {
		util.LogInternalError(ctx, err)
		return false
	}
	if !allowed {
		util.Forbidden(ctx, "")
		return false
	}
	return true
}

// UserAnalytics godoc
// @Summary Learning rollup for a user
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path int true "user id"
// @Success 200 {object} util.Response{data=service.UserAnalytics}
// @Failure 403 {object} util.Response
// @Router /api/analytics/user/{id} [get]
func (c *AnalyticsController) UserAnalytics(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	if !claims.Roles.Has(model.RoleAdmin) && claims.UserID != id {
		util.Forbidden(ctx, "")
		return
	}

	out, err := c.AnalyticsService.ForUser(ctx.Request.Context(), id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, out)
}

// VideoAnalytics godoc
// @Summary Playback rollup for a video item
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path int true "content item id"
// @Success 200 {object} util.Response{data=service.VideoAnalytics}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/analytics/video/{id} [get]
func (c *AnalyticsController) VideoAnalytics(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	item, err := c.ItemRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	if !c.manageCourse(ctx, item.CourseID) {
		return
	}

	out, err := c.AnalyticsService.ForVideo(ctx.Request.Context(), id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, out)
}

// CourseAnalytics godoc
// @Summary Enrollment and completion rollup for a course
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path int true "course id"
// @Success 200 {object} util.Response{data=service.CourseAnalytics}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/analytics/course/{id} [get]
func (c *AnalyticsController) CourseAnalytics(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if !c.manageCourse(ctx, id) {
		return
	}

	out, err := c.AnalyticsService.ForCourse(ctx.Request.Context(), id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, out)
}

// TestAnalytics godoc
// @Summary Attempt and per-question rollup for a test
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path int true "test id"
// @Success 200 {object} util.Response{data=service.TestAnalytics}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/analytics/test/{id} [get]
func (c *AnalyticsController) TestAnalytics(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	test, err := c.TestRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	item, err := c.ItemRepo.FindByID(test.ContentItemID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if !c.manageCourse(ctx, item.CourseID) {
		return
	}

	out, err := c.AnalyticsService.ForTest(ctx.Request.Context(), id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, out)
}

// PlanAnalytics godoc
// @Summary Enrollment rollup for a learning plan
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path int true "plan id"
// @Success 200 {object} util.Response{data=service.PlanAnalytics}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/analytics/learning-plan/{id} [get]
func (c *AnalyticsController) PlanAnalytics(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	plan, err := c.PlanRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	user := util.ClaimsToUser(util.GetUserFromContext(ctx))
	allowed, err := c.AccessService.CanAccessPlan(user, plan, service.LevelManage)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if !allowed {
		util.Forbidden(ctx, "")
		return
	}

	out, err := c.AnalyticsService.ForPlan(ctx.Request.Context(), id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, out)
}

// Export godoc
// @Summary Export analytics as CSV
// @Description Only COURSE targets are exportable today. LEARNING_PLAN and
// @Description TEST respond 400.
// @Tags analytics
// @Accept json
// @Produce text/csv
// @Security BearerAuth
// @Param body body service.ExportRequest true "export target"
// @Success 200 {string} string "csv body"
// @Failure 400 {object} util.Response "unsupported target"
// @Failure 403 {object} util.Response
// @Router /api/analytics/export [post]
func (c *AnalyticsController) Export(ctx *gin.Context) {
	var req service.ExportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := service.ValidateExportTarget(req); err != nil {
		switch {
		case errors.Is(err, util.ErrNotImplemented):
			util.BadRequest(ctx, err.Error())
		default:
			util.BadRequest(ctx, "unknown export type or format")
		}
		return
	}
	if !c.manageCourse(ctx, req.EntityID) {
		return
	}

	data, filename, err := c.AnalyticsService.ExportCSV(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", "attachment; filename="+filename)
	ctx.Data(http.StatusOK, "text/csv", data)
}
