package controller

import (
	"errors"

	"lms_backend/internal/repository"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CompletionController struct {
	ProgressService *service.ProgressService
	AccessService   *service.AccessService
	CourseRepo      *repository.CourseRepository
	CompletionRepo  *repository.CompletionRepository
}

func NewCompletionController(
	progressService *service.ProgressService,
	accessService *service.AccessService,
	courseRepo *repository.CourseRepository,
	completionRepo *repository.CompletionRepository,
) *CompletionController {
	return &CompletionController{
		ProgressService: progressService,
		AccessService:   accessService,
		CourseRepo:      courseRepo,
		CompletionRepo:  completionRepo,
	}
}

// CheckCourse godoc
// @Summary Re-evaluate course completion for the caller
// @Description Recomputes progress and finalizes the course completion record
// @Description when every item is done. Safe to call repeatedly.
// @Tags completions
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "course id"
// @Success 200 {object} util.Response{data=service.CompletionResult}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/completions/check-course/{courseId} [post]
func (c *CompletionController) CheckCourse(ctx *gin.Context) {
	courseID, ok := paramID(ctx, "courseId")
	if !ok {
		return
	}
	course, err := c.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	user := util.ClaimsToUser(util.GetUserFromContext(ctx))
	allowed, err := c.AccessService.IsEnrolledOrHasAccess(user, course)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if !allowed {
		util.Forbidden(ctx, "")
		return
	}

	result, err := c.ProgressService.CheckAndCompleteCourse(course, user.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// ListMine godoc
// @Summary The caller's completion records
// @Tags completions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Completion}
// @Router /api/completions [get]
func (c *CompletionController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	completions, err := c.CompletionRepo.ListByUser(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, completions)
}
