package controller

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/service"
	"elearn_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

// AssessmentController 学生端答题接口：取题、限时会话、提交判分、代码执行
type AssessmentController struct {
	ContentService *service.ContentService
	GradingService *service.GradingService
	SessionService *service.TestSessionService
	JudgeService   *service.JudgeService
}

func NewAssessmentController(
	contentService *service.ContentService,
	gradingService *service.GradingService,
	sessionService *service.TestSessionService,
	judgeService *service.JudgeService,
) *AssessmentController {
	return &AssessmentController{
		ContentService: contentService,
		GradingService: gradingService,
		SessionService: sessionService,
		JudgeService:   judgeService,
	}
}

// ListStudentQuestions godoc
// @Summary 学生取题
// @Description 获取测验或作业的题目，不含参考答案
// @Tags 答题
// @Produce  json
// @Security ApiKeyAuth
// @Param   contentType query string true "内容类型 test|assignment"
// @Param   contentId query int true "内容ID"
// @Success 200 {object} util.Response{data=[]service.StudentQuestion} "成功"
// @Router /api/student/questions [get]
func (c *AssessmentController) ListStudentQuestions(ctx *gin.Context) {
	contentType := model.ContentType(ctx.Query("contentType"))
	contentID, err := strconv.ParseUint(ctx.Query("contentId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "缺少 contentId 参数")
		return
	}

	questions, err := c.ContentService.ListStudentQuestions(contentType, uint(contentID))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, questions)
}

// Submit godoc
// @Summary 提交答卷
// @Description 校验全部答案并计算百分制得分，同一内容重复提交覆盖旧成绩
// @Tags 答题
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.SubmissionRequest true "答卷内容"
// @Success 200 {object} util.Response{data=model.Result} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "未选修课程"
// @Failure 404 {object} util.Response "内容不存在"
// @Router /api/submissions [post]
func (c *AssessmentController) Submit(ctx *gin.Context) {
	var req service.SubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	result, err := c.GradingService.Grade(claims.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNotEnrolled):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrContentNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// GetMyResult godoc
// @Summary 查询我的成绩
// @Tags 答题
// @Produce  json
// @Security ApiKeyAuth
// @Param   contentType query string true "内容类型 test|assignment"
// @Param   contentId query int true "内容ID"
// @Success 200 {object} util.Response{data=model.Result} "成功"
// @Failure 404 {object} util.Response "尚无成绩"
// @Router /api/my/results [get]
func (c *AssessmentController) GetMyResult(ctx *gin.Context) {
	contentType := model.ContentType(ctx.Query("contentType"))
	contentID, err := strconv.ParseUint(ctx.Query("contentId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "缺少 contentId 参数")
		return
	}

	claims := util.GetUserFromContext(ctx)
	result, err := c.GradingService.GetResult(claims.UserID, contentType, uint(contentID))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, result)
}

// StartTest godoc
// @Summary 开始限时测验
// @Description 创建答题会话并开始计时；重复调用返回已有会话
// @Tags 答题
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response{data=model.TestSession} "成功"
// @Failure 403 {object} util.Response "测验未发布"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/tests/{id}/start [post]
func (c *AssessmentController) StartTest(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	claims := util.GetUserFromContext(ctx)
	session, err := c.SessionService.StartTest(claims.UserID, id)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrContentNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrTestNotPublished):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, session)
}

// ProgressRequest 答题草稿
// swagger:model ProgressRequest
type ProgressRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

// SaveProgress godoc
// @Summary 保存答题进度
// @Description 周期性保存草稿答案，断线后可恢复
// @Tags 答题
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "测验ID"
// @Param   body body ProgressRequest true "草稿答案"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "会话不存在"
// @Failure 409 {object} util.Response "测验已提交"
// @Router /api/tests/{id}/progress [put]
func (c *AssessmentController) SaveProgress(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req ProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if err := c.SessionService.SaveProgress(claims.UserID, id, req.Answers); err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrTestAlreadySubmitted):
			util.Error(ctx, 409, "测验已提交，不能再修改答案")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, nil)
}

// GetSession godoc
// @Summary 查询答题会话状态
// @Description 返回剩余时间、草稿答案和会话状态
// @Tags 答题
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response{data=service.SessionStatus} "成功"
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/tests/{id}/session [get]
func (c *AssessmentController) GetSession(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	claims := util.GetUserFromContext(ctx)
	status, err := c.SessionService.GetStatus(claims.UserID, id)
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) || errors.Is(err, util.ErrContentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, status)
}

// SubmitTest godoc
// @Summary 提交限时测验
// @Description 结束会话并判分，答题用时由服务端计时
// @Tags 答题
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "测验ID"
// @Param   body body ProgressRequest true "最终答案"
// @Success 200 {object} util.Response{data=model.Result} "成功"
// @Failure 404 {object} util.Response "会话不存在"
// @Failure 409 {object} util.Response "测验已提交"
// @Router /api/tests/{id}/submit [post]
func (c *AssessmentController) SubmitTest(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req ProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	result, err := c.SessionService.SubmitTest(claims.UserID, id, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound), errors.Is(err, util.ErrContentNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrTestAlreadySubmitted):
			util.Error(ctx, 409, "测验已提交，不能重复提交")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// GetAssignmentWindow godoc
// @Summary 查询作业时间窗口状态
// @Tags 答题
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "作业ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 404 {object} util.Response "作业不存在"
// @Router /api/assignments/{id}/window [get]
func (c *AssessmentController) GetAssignmentWindow(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	a, err := c.ContentService.GetAssignment(id)
	if err != nil {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, gin.H{
		"assignmentId": a.ID,
		"status":       c.SessionService.AssignmentWindowStatus(a),
		"startTime":    a.StartTime,
		"endTime":      a.EndTime,
	})
}

// ExecuteRequest 在线运行代码请求
// swagger:model ExecuteRequest
type ExecuteRequest struct {
	SourceCode string `json:"sourceCode" binding:"required"`
	LanguageID int    `json:"languageId" binding:"required"`
	Stdin      string `json:"stdin"`
}

// Execute godoc
// @Summary 在线运行代码
// @Description 将代码提交到沙箱执行并等待结果
// @Tags 答题
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body ExecuteRequest true "代码与输入"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 502 {object} util.Response "执行服务不可用"
// @Failure 504 {object} util.Response "执行超时"
// @Router /api/execute [post]
func (c *AssessmentController) Execute(ctx *gin.Context) {
	var req ExecuteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.JudgeService.RunToCompletion(ctx.Request.Context(), req.SourceCode, req.LanguageID, req.Stdin)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExecutionTimeout):
			util.Error(ctx, 504, "代码执行超时")
		case errors.Is(err, service.ErrJudgeUnavailable):
			util.Error(ctx, 502, "执行服务暂时不可用")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{
		"output":  result.Output(),
		"time":    result.Time,
		"status":  result.Status.Description,
		"pending": result.Pending(),
	})
}

// RunQuestionCases godoc
// @Summary 按题目测试用例运行代码
// @Description 对编程题的每个测试用例执行一次代码并返回输出
// @Tags 答题
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Param   body body ExecuteRequest true "代码"
// @Success 200 {object} util.Response{data=[]service.CaseRun} "成功"
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/questions/{id}/run [post]
func (c *AssessmentController) RunQuestionCases(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req ExecuteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.ContentService.GetQuestion(id)
	if err != nil {
		util.NotFound(ctx)
		return
	}

	runs, err := c.JudgeService.RunQuestionCases(ctx.Request.Context(), q, req.SourceCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExecutionTimeout):
			util.Error(ctx, 504, "代码执行超时")
		case errors.Is(err, service.ErrJudgeUnavailable):
			util.Error(ctx, 502, "执行服务暂时不可用")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, runs)
}
