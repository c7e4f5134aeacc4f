package controller

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProgressController struct {
	ProgressService *service.ProgressService
	GradingService  *service.GradingService
	AccessService   *service.AccessService
	CourseRepo      *repository.CourseRepository
	ItemRepo        *repository.ContentItemRepository
}

func NewProgressController(
	progressService *service.ProgressService,
	gradingService *service.GradingService,
	accessService *service.AccessService,
	courseRepo *repository.CourseRepository,
	itemRepo *repository.ContentItemRepository,
) *ProgressController {
	return &ProgressController{
		ProgressService: progressService,
		GradingService:  gradingService,
		AccessService:   accessService,
		CourseRepo:      courseRepo,
		ItemRepo:        itemRepo,
	}
}

// loadEnrolledCourse resolves a course id param and requires the caller to be
// enrolled or otherwise granted content access.
func (c *ProgressController) loadEnrolledCourse(ctx *gin.Context, param string) (*model.Course, *model.User, bool) {
	id, ok := paramID(ctx, param)
	if !ok {
		return nil, nil, false
	}
	course, err := c.CourseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return nil, nil, false
	}

	user := util.ClaimsToUser(util.GetUserFromContext(ctx))
	allowed, err := c.AccessService.IsEnrolledOrHasAccess(user, course)
	if err != nil {
		util.LogInternalError(ctx, err)
		return nil, nil, false
	}
	if !allowed {
		util.Forbidden(ctx, "")
		return nil, nil, false
	}
	return course, user, true
}

// GetCourseProgress godoc
// @Summary Per-item progress and unlock state for a course
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "course id"
// @Success 200 {object} util.Response{data=service.CourseProgress}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/progress/course/{courseId} [get]
func (c *ProgressController) GetCourseProgress(ctx *gin.Context) {
	course, user, ok := c.loadEnrolledCourse(ctx, "courseId")
	if !ok {
		return
	}
	progress, err := c.ProgressService.ComputeCourseProgress(course, user.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// GetTestProgress godoc
// @Summary Attempt history, best score and retake state for a test
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param testId path int true "test id"
// @Success 200 {object} util.Response{data=service.TestProgress}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/progress/test/{testId} [get]
func (c *ProgressController) GetTestProgress(ctx *gin.Context) {
	testID, ok := paramID(ctx, "testId")
	if !ok {
		return
	}
	user := util.ClaimsToUser(util.GetUserFromContext(ctx))

	progress, err := c.GradingService.GetTestProgress(user, testID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrForbidden):
			util.Forbidden(ctx, "")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, progress)
}

// SubmitTest godoc
// @Summary Submit answers for grading
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param testId path int true "test id"
// @Param body body service.SubmitAttemptRequest true "answers"
// @Success 201 {object} util.Response{data=service.AttemptResult}
// @Failure 403 {object} util.Response "no access or attempt limit reached"
// @Failure 404 {object} util.Response
// @Router /api/progress/test/{testId} [post]
func (c *ProgressController) SubmitTest(ctx *gin.Context) {
	testID, ok := paramID(ctx, "testId")
	if !ok {
		return
	}
	var req service.SubmitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	user := util.ClaimsToUser(util.GetUserFromContext(ctx))

	result, err := c.GradingService.SubmitAttempt(user, testID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrForbidden):
			util.Forbidden(ctx, "")
		case errors.Is(err, util.ErrMaxAttemptsReached):
			util.Forbidden(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, result)
}

// MarkItemCompleted godoc
// @Summary Mark a non-test content item completed
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param itemId path int true "content item id"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/progress/item/{itemId}/complete [post]
func (c *ProgressController) MarkItemCompleted(ctx *gin.Context) {
	item, course, user, ok := c.loadEnrolledItem(ctx)
	if !ok {
		return
	}
	if item.Type == model.ContentTest {
		util.BadRequest(ctx, "test items are completed by passing the test")
		return
	}
	if err := c.ProgressService.MarkItemCompleted(course, item, user.ID, nil); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// VideoHeartbeat godoc
// @Summary Record video playback progress
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param itemId path int true "content item id"
// @Param body body service.VideoHeartbeat true "playback state"
// @Success 200 {object} util.Response{data=model.VideoProgress}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/progress/video/{itemId} [post]
func (c *ProgressController) VideoHeartbeat(ctx *gin.Context) {
	item, course, user, ok := c.loadEnrolledItem(ctx)
	if !ok {
		return
	}
	if item.Type != model.ContentVideo {
		util.BadRequest(ctx, "not a video item")
		return
	}

	var hb service.VideoHeartbeat
	if err := ctx.ShouldBindJSON(&hb); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	vp, err := c.ProgressService.RecordVideoProgress(course, item, user.ID, hb)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, vp)
}

func (c *ProgressController) loadEnrolledItem(ctx *gin.Context) (*model.ContentItem, *model.Course, *model.User, bool) {
	itemID, ok := paramID(ctx, "itemId")
	if !ok {
		return nil, nil, nil, false
	}
	item, err := c.ItemRepo.FindByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return nil, nil, nil, false
	}
	course, err := c.CourseRepo.FindByID(item.CourseID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return nil, nil, nil, false
	}

	user := util.ClaimsToUser(util.GetUserFromContext(ctx))
	allowed, err := c.AccessService.IsEnrolledOrHasAccess(user, course)
	if err != nil {
		util.LogInternalError(ctx, err)
		return nil, nil, nil, false
	}
	if !allowed {
		util.Forbidden(ctx, "")
		return nil, nil, nil, false
	}
	return item, course, user, true
}
