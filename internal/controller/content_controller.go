package controller

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/service"
	"elearn_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ContentController 管理测验、作业和题目的教师端接口
type ContentController struct {
	ContentService *service.ContentService
}

func NewContentController(contentService *service.ContentService) *ContentController {
	return &ContentController{ContentService: contentService}
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "无效的ID参数")
		return 0, false
	}
	return uint(id), true
}

// CreateTest godoc
// @Summary 创建测验
// @Tags 内容管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.TestRequest true "测验信息"
// @Success 201 {object} util.Response{data=model.Test} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/tests [post]
func (c *ContentController) CreateTest(ctx *gin.Context) {
	var req service.TestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	test, err := c.ContentService.CreateTest(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, test)
}

// UpdateTest godoc
// @Summary 更新测验
// @Tags 内容管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "测验ID"
// @Param   body body service.TestRequest true "测验信息"
// @Success 200 {object} util.Response{data=model.Test} "成功"
// @Router /api/tests/{id} [put]
func (c *ContentController) UpdateTest(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.TestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	test, err := c.ContentService.UpdateTest(id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, test)
}

// DeleteTest godoc
// @Summary 删除测验
// @Tags 内容管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/tests/{id} [delete]
func (c *ContentController) DeleteTest(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.ContentService.DeleteTest(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// GetTest godoc
// @Summary 获取测验详情
// @Tags 内容管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response{data=model.Test} "成功"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/tests/{id} [get]
func (c *ContentController) GetTest(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	test, err := c.ContentService.GetTest(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, test)
}

// ListTests godoc
// @Summary 课程测验列表
// @Tags 内容管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId query int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.Test} "成功"
// @Router /api/tests [get]
func (c *ContentController) ListTests(ctx *gin.Context) {
	courseID, err := strconv.ParseUint(ctx.Query("courseId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "缺少 courseId 参数")
		return
	}

	tests, err := c.ContentService.ListTestsByCourse(uint(courseID))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, tests)
}

// CreateAssignment godoc
// @Summary 创建作业
// @Description 创建带起止时间窗口的作业
// @Tags 内容管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.AssignmentRequest true "作业信息"
// @Success 201 {object} util.Response{data=model.Assignment} "创建成功"
// @Router /api/assignments [post]
func (c *ContentController) CreateAssignment(ctx *gin.Context) {
	var req service.AssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.ContentService.CreateAssignment(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, a)
}

// UpdateAssignment godoc
// @Summary 更新作业
// @Tags 内容管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "作业ID"
// @Param   body body service.AssignmentRequest true "作业信息"
// @Success 200 {object} util.Response{data=model.Assignment} "成功"
// @Router /api/assignments/{id} [put]
func (c *ContentController) UpdateAssignment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.AssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.ContentService.UpdateAssignment(id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, a)
}

// DeleteAssignment godoc
// @Summary 删除作业
// @Tags 内容管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "作业ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/assignments/{id} [delete]
func (c *ContentController) DeleteAssignment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.ContentService.DeleteAssignment(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// ListAssignments godoc
// @Summary 课程作业列表
// @Tags 内容管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId query int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.Assignment} "成功"
// @Router /api/assignments [get]
func (c *ContentController) ListAssignments(ctx *gin.Context) {
	courseID, err := strconv.ParseUint(ctx.Query("courseId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "缺少 courseId 参数")
		return
	}

	assignments, err := c.ContentService.ListAssignmentsByCourse(uint(courseID))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, assignments)
}

// CreateQuestion godoc
// @Summary 创建题目
// @Description 为测验或作业添加题目，支持选择题、填空题和编程题
// @Tags 内容管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.QuestionRequest true "题目信息"
// @Success 201 {object} util.Response{data=model.Question} "创建成功"
// @Failure 400 {object} util.Response "题目定义不合法"
// @Router /api/questions [post]
func (c *ContentController) CreateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.ContentService.CreateQuestion(req)
	if err != nil {
		if errors.Is(err, util.ErrInvalidQuestion) {
			util.BadRequest(ctx, "题目定义不合法")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, q)
}

// UpdateQuestion godoc
// @Summary 更新题目
// @Tags 内容管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Param   body body service.QuestionRequest true "题目信息"
// @Success 200 {object} util.Response{data=model.Question} "成功"
// @Router /api/questions/{id} [put]
func (c *ContentController) UpdateQuestion(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.ContentService.UpdateQuestion(id, req)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidQuestion):
			util.BadRequest(ctx, "题目定义不合法")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Tags 内容管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/questions/{id} [delete]
func (c *ContentController) DeleteQuestion(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.ContentService.DeleteQuestion(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// ListQuestions godoc
// @Summary 题目列表（教师视图）
// @Description 按内容获取全部题目，含参考答案
// @Tags 内容管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   contentType query string true "内容类型 test|assignment"
// @Param   contentId query int true "内容ID"
// @Success 200 {object} util.Response{data=[]model.Question} "成功"
// @Router /api/questions [get]
func (c *ContentController) ListQuestions(ctx *gin.Context) {
	contentType := model.ContentType(ctx.Query("contentType"))
	contentID, err := strconv.ParseUint(ctx.Query("contentId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "缺少 contentId 参数")
		return
	}

	questions, err := c.ContentService.ListQuestions(contentType, uint(contentID))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, questions)
}
