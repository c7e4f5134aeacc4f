package controller

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GroupController struct {
	GroupService  *service.GroupService
	CourseService *service.CourseService
	PlanService   *service.LearningPlanService
	AccessService *service.AccessService
}

func NewGroupController(
	groupService *service.GroupService,
	courseService *service.CourseService,
	planService *service.LearningPlanService,
	accessService *service.AccessService,
) *GroupController {
	return &GroupController{
		GroupService:  groupService,
		CourseService: courseService,
		PlanService:   planService,
		AccessService: accessService,
	}
}

// group mutations are restricted to the group's creator or an admin.
func (c *GroupController) loadOwnedGroup(ctx *gin.Context) (*model.Group, bool) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return nil, false
	}
	group, err := c.GroupService.FindByID(id)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return nil, false
	}

	claims := util.GetUserFromContext(ctx)
	if !claims.Roles.Has(model.RoleAdmin) && group.CreatedByID != claims.UserID {
		util.Forbidden(ctx, "")
		return nil, false
	}
	return group, true
}

// CreateGroup godoc
// @Summary Create a group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.GroupRequest true "group payload"
// @Success 201 {object} util.Response{data=model.Group}
// @Router /api/groups [post]
func (c *GroupController) CreateGroup(ctx *gin.Context) {
	var req service.GroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	claims := util.GetUserFromContext(ctx)
	group, err := c.GroupService.Create(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, group)
}

// GetGroup godoc
// @Summary Get a group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "group id"
// @Success 200 {object} util.Response{data=model.Group}
// @Router /api/groups/{id} [get]
func (c *GroupController) GetGroup(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	group, err := c.GroupService.FindByID(id)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, group)
}

// DeleteGroup godoc
// @Summary Delete a group
// @Tags groups
// @Security BearerAuth
// @Param id path int true "group id"
// @Success 200 {object} util.Response
// @Router /api/groups/{id} [delete]
func (c *GroupController) DeleteGroup(ctx *gin.Context) {
	group, ok := c.loadOwnedGroup(ctx)
	if !ok {
		return
	}
	if err := c.GroupService.Delete(group.ID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// AddMember godoc
// @Summary Add a user to a group
// @Tags groups
// @Security BearerAuth
// @Param id path int true "group id"
// @Param userId path int true "user id"
// @Success 201 {object} util.Response
// @Failure 409 {object} util.Response "already a member"
// @Router /api/groups/{id}/members/{userId} [post]
func (c *GroupController) AddMember(ctx *gin.Context) {
	group, ok := c.loadOwnedGroup(ctx)
	if !ok {
		return
	}
	userID, ok := paramID(ctx, "userId")
	if !ok {
		return
	}
	if err := c.GroupService.AddMember(group.ID, userID); err != nil {
		if errors.Is(err, util.ErrDuplicateMember) {
			util.Conflict(ctx, "user is already a member")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, nil)
}

// RemoveMember godoc
// @Summary Remove a user from a group
// @Tags groups
// @Security BearerAuth
// @Param id path int true "group id"
// @Param userId path int true "user id"
// @Success 200 {object} util.Response
// @Router /api/groups/{id}/members/{userId} [delete]
func (c *GroupController) RemoveMember(ctx *gin.Context) {
	group, ok := c.loadOwnedGroup(ctx)
	if !ok {
		return
	}
	userID, ok := paramID(ctx, "userId")
	if !ok {
		return
	}
	if err := c.GroupService.RemoveMember(group.ID, userID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// GrantCourseAccess godoc
// @Summary Grant the group view access to a course
// @Tags groups
// @Security BearerAuth
// @Param id path int true "group id"
// @Param courseId path int true "course id"
// @Success 201 {object} util.Response
// @Router /api/groups/{id}/courses/{courseId} [post]
func (c *GroupController) GrantCourseAccess(ctx *gin.Context) {
	group, ok := c.loadOwnedGroup(ctx)
	if !ok {
		return
	}
	courseID, ok := paramID(ctx, "courseId")
	if !ok {
		return
	}
	course, err := c.CourseService.FindByID(courseID)
	if err != nil {
		util.NotFound(ctx)
		return
	}

	// Granting access to a course requires managing that course too.
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

	if err := c.GroupService.GrantCourseAccess(group.ID, courseID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, nil)
}

// GrantPlanAccess godoc
// @Summary Grant the group view access to a learning plan
// @Tags groups
// @Security BearerAuth
// @Param id path int true "group id"
// @Param planId path int true "plan id"
// @Success 201 {object} util.Response
// @Router /api/groups/{id}/learning-plans/{planId} [post]
func (c *GroupController) GrantPlanAccess(ctx *gin.Context) {
	group, ok := c.loadOwnedGroup(ctx)
	if !ok {
		return
	}
	planID, ok := paramID(ctx, "planId")
	if !ok {
		return
	}
	plan, err := c.PlanService.FindByID(planID)
	if err != nil {
		util.NotFound(ctx)
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

	if err := c.GroupService.GrantPlanAccess(group.ID, planID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, nil)
}
