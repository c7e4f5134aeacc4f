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

type CourseController struct {
	CourseService  *service.CourseService
	AccessService  *service.AccessService
	AssignmentRepo *repository.InstructorAssignmentRepository
}

func NewCourseController(
	courseService *service.CourseService,
	accessService *service.AccessService,
	assignmentRepo *repository.InstructorAssignmentRepository,
) *CourseController {
	return &CourseController{
		CourseService:  courseService,
		AccessService:  accessService,
		AssignmentRepo: assignmentRepo,
	}
}

// loadCourse resolves the :id course and enforces the required access level.
// Missing courses are 404 before any access decision.
func (c *CourseController) loadCourse(ctx *gin.Context, level service.AccessLevel) (*model.Course, *model.User, bool) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return nil, nil, false
	}
	course, err := c.CourseService.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return nil, nil, false
	}

	user := util.ClaimsToUser(util.GetUserFromContext(ctx))
	allowed, err := c.AccessService.CanAccessCourse(user, course, level)
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

// ListCourses godoc
// @Summary List courses
// @Tags courses
// @Produce json
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Param status query string false "draft|published|archived"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	page, limit := pageParams(ctx)
	status := model.CourseStatus(ctx.Query("status"))

	claims := util.GetUserFromContext(ctx)
	// Anonymous and plain-learner listings only ever see published courses.
	if claims == nil || !(claims.Roles.Has(model.RoleAdmin) || claims.Roles.Has(model.RoleInstructor)) {
		status = model.CoursePublished
	}

	courses, total, err := c.CourseService.List(page, limit, status)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: courses, Total: total, Page: page, Limit: limit})
}

// GetCourse godoc
// @Summary Get a course with its content items
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "course id"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	course, _, ok := c.loadCourse(ctx, service.LevelView)
	if !ok {
		return
	}
	full, err := c.CourseService.CourseRepo.FindByIDWithItems(course.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, full)
}

// CreateCourse godoc
// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CourseRequest true "course payload"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 409 {object} util.Response "duplicate course code"
// @Router /api/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	course, err := c.CourseService.Create(claims.UserID, req)
	if err != nil {
		if errors.Is(err, util.ErrDuplicateCourse) {
			util.Conflict(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, course)
}

// UpdateCourse godoc
// @Summary Update a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "course id"
// @Param body body service.CourseRequest true "course payload"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	course, _, ok := c.loadCourse(ctx, service.LevelManage)
	if !ok {
		return
	}
	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	updated, err := c.CourseService.Update(course, req)
	if err != nil {
		if errors.Is(err, util.ErrDuplicateCourse) {
			util.Conflict(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, updated)
}

// DeleteCourse godoc
// @Summary Delete a course
// @Tags courses
// @Security BearerAuth
// @Param id path int true "course id"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	course, _, ok := c.loadCourse(ctx, service.LevelManage)
	if !ok {
		return
	}
	if err := c.CourseService.Delete(course.ID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

func (c *CourseController) setStatus(ctx *gin.Context, status model.CourseStatus) {
	course, _, ok := c.loadCourse(ctx, service.LevelManage)
	if !ok {
		return
	}
	if err := c.CourseService.SetStatus(course, status); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// PublishCourse godoc
// @Summary Publish a course
// @Tags courses
// @Security BearerAuth
// @Param id path int true "course id"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /api/courses/{id}/publish [post]
func (c *CourseController) PublishCourse(ctx *gin.Context) {
	c.setStatus(ctx, model.CoursePublished)
}

// ArchiveCourse godoc
// @Summary Archive a course
// @Tags courses
// @Security BearerAuth
// @Param id path int true "course id"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /api/courses/{id}/archive [post]
func (c *CourseController) ArchiveCourse(ctx *gin.Context) {
	c.setStatus(ctx, model.CourseArchived)
}

// AddContentItem godoc
// @Summary Add a content item to a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "course id"
// @Param body body service.ContentItemRequest true "item payload"
// @Success 201 {object} util.Response{data=model.ContentItem}
// @Failure 400 {object} util.Response
// @Router /api/courses/{id}/items [post]
func (c *CourseController) AddContentItem(ctx *gin.Context) {
	course, _, ok := c.loadCourse(ctx, service.LevelManage)
	if !ok {
		return
	}
	var req service.ContentItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	req.LocalPath = "" // only the upload endpoint may set this

	item, err := c.CourseService.AddContentItem(course, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidRequest):
			util.BadRequest(ctx, "unknown content type")
		case errors.Is(err, util.ErrInvalidOrder):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, item)
}

// UpdateContentItem godoc
// @Summary Update a content item
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "course id"
// @Param itemId path int true "content item id"
// @Param body body service.ContentItemRequest true "item payload"
// @Success 200 {object} util.Response{data=model.ContentItem}
// @Router /api/courses/{id}/items/{itemId} [put]
func (c *CourseController) UpdateContentItem(ctx *gin.Context) {
	course, _, ok := c.loadCourse(ctx, service.LevelManage)
	if !ok {
		return
	}
	itemID, ok := paramID(ctx, "itemId")
	if !ok {
		return
	}
	item, err := c.CourseService.ItemRepo.FindByID(itemID)
	if err != nil || item.CourseID != course.ID {
		util.NotFound(ctx)
		return
	}

	var req service.ContentItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	updated, err := c.CourseService.UpdateContentItem(item, req)
	if err != nil {
		if errors.Is(err, util.ErrInvalidOrder) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, updated)
}

// DeleteContentItem godoc
// @Summary Delete a content item
// @Tags courses
// @Security BearerAuth
// @Param id path int true "course id"
// @Param itemId path int true "content item id"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/items/{itemId} [delete]
func (c *CourseController) DeleteContentItem(ctx *gin.Context) {
	course, _, ok := c.loadCourse(ctx, service.LevelManage)
	if !ok {
		return
	}
	itemID, ok := paramID(ctx, "itemId")
	if !ok {
		return
	}
	item, err := c.CourseService.ItemRepo.FindByID(itemID)
	if err != nil || item.CourseID != course.ID {
		util.NotFound(ctx)
		return
	}
	if err := c.CourseService.DeleteContentItem(itemID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// AssignInstructor godoc
// @Summary Assign an instructor to a course
// @Tags courses
// @Security BearerAuth
// @Param id path int true "course id"
// @Param userId path int true "instructor user id"
// @Success 201 {object} util.Response
// @Router /api/courses/{id}/instructors/{userId} [post]
func (c *CourseController) AssignInstructor(ctx *gin.Context) {
	course, user, ok := c.loadCourse(ctx, service.LevelManage)
	if !ok {
		return
	}
	userID, ok := paramID(ctx, "userId")
	if !ok {
		return
	}
	courseID := course.ID
	err := c.AssignmentRepo.Create(&model.InstructorAssignment{
		UserID:       userID,
		CourseID:     &courseID,
		AssignedByID: user.ID,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.Conflict(ctx, "instructor already assigned")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, nil)
}

// UnassignInstructor godoc
// @Summary Remove an instructor assignment
// @Tags courses
// @Security BearerAuth
// @Param id path int true "course id"
// @Param userId path int true "instructor user id"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/instructors/{userId} [delete]
func (c *CourseController) UnassignInstructor(ctx *gin.Context) {
	course, _, ok := c.loadCourse(ctx, service.LevelManage)
	if !ok {
		return
	}
	userID, ok := paramID(ctx, "userId")
	if !ok {
		return
	}
	if err := c.AssignmentRepo.DeleteForCourse(userID, course.ID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
