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

type QuestionController struct {
	QuestionService *service.QuestionService
	AccessService   *service.AccessService
	TestRepo        *repository.TestRepository
	ItemRepo        *repository.ContentItemRepository
	CourseRepo      *repository.CourseRepository
}

func NewQuestionController(
	questionService *service.QuestionService,
	accessService *service.AccessService,
	testRepo *repository.TestRepository,
	itemRepo *repository.ContentItemRepository,
	courseRepo *repository.CourseRepository,
) *QuestionController {
	return &QuestionController{
		QuestionService: questionService,
		AccessService:   accessService,
		TestRepo:        testRepo,
		ItemRepo:        itemRepo,
		CourseRepo:      courseRepo,
	}
}

func (c *QuestionController) courseForTest(test *model.Test) (*model.Course, error) {
	item, err := c.ItemRepo.FindByID(test.ContentItemID)
	if err != nil {
		return nil, err
	}
	return c.CourseRepo.FindByID(item.CourseID)
}

// loadTest resolves the :id test and requires manage access on its course.
func (c *QuestionController) loadTest(ctx *gin.Context) (*model.Test, bool) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return nil, false
	}
	test, err := c.TestRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return nil, false
	}
	course, err := c.courseForTest(test)
	if err != nil {
		util.LogInternalError(ctx, err)
		return nil, false
	}

	user := util.ClaimsToUser(util.GetUserFromContext(ctx))
	allowed, err := c.AccessService.CanAccessCourse(user, course, service.LevelManage)
	if err != nil {
		util.LogInternalError(ctx, err)
		return nil, false
	}
	if !allowed {
		util.Forbidden(ctx, "")
		return nil, false
	}
	return test, true
}

// GetTest godoc
// @Summary A test with its questions, for authoring
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param id path int true "test id"
// @Success 200 {object} util.Response{data=model.Test}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/tests/{id} [get]
func (c *QuestionController) GetTest(ctx *gin.Context) {
	test, ok := c.loadTest(ctx)
	if !ok {
		return
	}
	util.Success(ctx, test)
}

// UpdateTest godoc
// @Summary Update test settings
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "test id"
// @Param body body service.TestSettingsRequest true "settings"
// @Success 200 {object} util.Response{data=model.Test}
// @Failure 400 {object} util.Response
// @Router /api/tests/{id} [put]
func (c *QuestionController) UpdateTest(ctx *gin.Context) {
	test, ok := c.loadTest(ctx)
	if !ok {
		return
	}
	var req service.TestSettingsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	updated, err := c.QuestionService.UpdateTestSettings(test, req)
	if err != nil {
		if errors.Is(err, util.ErrInvalidRequest) {
			util.BadRequest(ctx, "passingScore must be between 0 and 1")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, updated)
}

// AddQuestion godoc
// @Summary Add a question to a test
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "test id"
// @Param body body service.QuestionRequest true "question payload"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response
// @Router /api/tests/{id}/questions [post]
func (c *QuestionController) AddQuestion(ctx *gin.Context) {
	test, ok := c.loadTest(ctx)
	if !ok {
		return
	}
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	q, err := c.QuestionService.AddQuestion(test.ID, req)
	if err != nil {
		if errors.Is(err, util.ErrInvalidRequest) {
			util.BadRequest(ctx, "invalid question payload for type "+req.Type)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, q)
}

// loadQuestion resolves the :id question. Reading follows course view access
// (enrollment, public access, group or plan access, or any instructor), while
// writes require a course manager (creator, assigned, admin).
func (c *QuestionController) loadQuestion(ctx *gin.Context, write bool) (*model.Question, bool) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return nil, false
	}
	q, err := c.QuestionService.FindQuestionByID(id)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return nil, false
	}

	test, err := c.TestRepo.FindByID(q.TestID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return nil, false
	}
	course, err := c.courseForTest(test)
	if err != nil {
		util.LogInternalError(ctx, err)
		return nil, false
	}

	required := service.LevelView
	if write {
		required = service.LevelManage
	}
	user := util.ClaimsToUser(util.GetUserFromContext(ctx))
	allowed, err := c.AccessService.CanAccessCourse(user, course, required)
	if err != nil {
		util.LogInternalError(ctx, err)
		return nil, false
	}
	if !allowed {
		util.Forbidden(ctx, "")
		return nil, false
	}
	return q, true
}

// GetQuestion godoc
// @Summary Get a question
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param id path int true "question id"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	q, ok := c.loadQuestion(ctx, false)
	if !ok {
		return
	}
	util.Success(ctx, q)
}

// UpdateQuestion godoc
// @Summary Replace a question and its options
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "question id"
// @Param body body service.QuestionRequest true "question payload"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/questions/{id} [put]
func (c *QuestionController) UpdateQuestion(ctx *gin.Context) {
	q, ok := c.loadQuestion(ctx, true)
	if !ok {
		return
	}
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	updated, err := c.QuestionService.UpdateQuestion(q, req)
	if err != nil {
		if errors.Is(err, util.ErrInvalidRequest) {
			util.BadRequest(ctx, "invalid question payload for type "+req.Type)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, updated)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags questions
// @Security BearerAuth
// @Param id path int true "question id"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	q, ok := c.loadQuestion(ctx, true)
	if !ok {
		return
	}
	if err := c.QuestionService.DeleteQuestion(q.ID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
