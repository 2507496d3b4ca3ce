package controller

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/service"
	"elearn_backend/internal/util"
	"errors"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseController struct {
	CourseService  *service.CourseService
	StorageService *service.StorageService
}

func NewCourseController(courseService *service.CourseService, storageService *service.StorageService) *CourseController {
	return &CourseController{
		CourseService:  courseService,
		StorageService: storageService,
	}
}

// CreateCourse godoc
// @Summary 创建课程
// @Description 教师创建一门新课程
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CourseRequest true "课程信息"
// @Success 201 {object} util.Response{data=model.Course} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	course, err := c.CourseService.CreateCourse(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, course)
}

// UpdateCourse godoc
// @Summary 更新课程
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   body body service.CourseRequest true "课程信息"
// @Success 200 {object} util.Response{data=model.Course} "成功"
// @Failure 403 {object} util.Response "无权操作"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "无效的课程ID")
		return
	}

	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	course, err := c.CourseService.UpdateCourse(claims.UserID, uint(id), req)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary 删除课程
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response "成功"
// @Failure 403 {object} util.Response "无权操作"
// @Router /api/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "无效的课程ID")
		return
	}

	claims := util.GetUserFromContext(ctx)
	if err := c.CourseService.DeleteCourse(claims.UserID, uint(id)); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, nil)
}

// GetCourse godoc
// @Summary 获取课程详情
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Course} "成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "无效的课程ID")
		return
	}

	course, err := c.CourseService.GetCourse(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, course)
}

// ListCourses godoc
// @Summary 课程列表
// @Description 分页获取已发布课程
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	courses, total, err := c.CourseService.ListCourses(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"courses": courses, "total": total})
}

// Enroll godoc
// @Summary 选修课程
// @Description 学生加入一门已发布的课程
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id}/enroll [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "无效的课程ID")
		return
	}

	claims := util.GetUserFromContext(ctx)
	if err := c.CourseService.Enroll(claims.UserID, uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, nil)
}

// ListMyCourses godoc
// @Summary 我的课程
// @Description 获取当前学生已选修的课程
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Course} "成功"
// @Router /api/my/courses [get]
func (c *CourseController) ListMyCourses(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courses, err := c.CourseService.ListEnrolledCourses(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, courses)
}

// UploadResource godoc
// @Summary 上传课程资源
// @Description 教师上传课件等资源文件
// @Tags 课程
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   file formData file true "资源文件"
// @Success 201 {object} util.Response{data=model.CourseResource} "创建成功"
// @Router /api/courses/{id}/resources [post]
func (c *CourseController) UploadResource(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "无效的课程ID")
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少上传文件")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	// 使用 UUID 避免文件名冲突
	storedName := uuid.New().String() + filepath.Ext(fileHeader.Filename)
	url, err := c.StorageService.Upload(ctx.Request.Context(), storedName, file, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	claims := util.GetUserFromContext(ctx)
	resource := &model.CourseResource{
		CourseID:    uint(id),
		UploaderID:  claims.UserID,
		Title:       ctx.DefaultPostForm("title", fileHeader.Filename),
		FileName:    fileHeader.Filename,
		FileURL:     url,
		FileSize:    fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}
	if err := c.CourseService.AddResource(resource); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, resource)
}

// ListResources godoc
// @Summary 课程资源列表
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.CourseResource} "成功"
// @Router /api/courses/{id}/resources [get]
func (c *CourseController) ListResources(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "无效的课程ID")
		return
	}

	resources, err := c.CourseService.ListResources(uint(id))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, resources)
}
