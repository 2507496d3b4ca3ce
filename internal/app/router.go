package app

import (
	"elearn_backend/docs"
	"elearn_backend/internal/config"
	"elearn_backend/internal/middleware"
	"elearn_backend/internal/model"
	"elearn_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		// 学生/通用 授权接口
		a.registerStudentRoutes(authGroup, c)

		// 教师相关接口
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)

	// 课程浏览与选课
	rg.GET("/courses", c.course.ListCourses)
	rg.GET("/courses/:id", c.course.GetCourse)
	rg.POST("/courses/:id/enroll", c.course.Enroll)
	rg.GET("/courses/:id/resources", c.course.ListResources)
	rg.GET("/my/courses", c.course.ListMyCourses)

	// 答题：取题、提交、查成绩
	rg.GET("/student/questions", c.assessment.ListStudentQuestions)
	rg.POST("/submissions", c.assessment.Submit)
	rg.GET("/my/results", c.assessment.GetMyResult)

	// 限时测验会话
	rg.POST("/tests/:id/start", c.assessment.StartTest)
	rg.PUT("/tests/:id/progress", c.assessment.SaveProgress)
	rg.GET("/tests/:id/session", c.assessment.GetSession)
	rg.POST("/tests/:id/submit", c.assessment.SubmitTest)

	// 作业时间窗口
	rg.GET("/assignments/:id/window", c.assessment.GetAssignmentWindow)

	// 在线运行代码
	rg.POST("/execute", c.assessment.Execute)
	rg.POST("/questions/:id/run", c.assessment.RunQuestionCases)

	// 排行榜
	rg.GET("/leaderboard", c.leaderboard.GetLeaderboard)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/")
	teacher.Use(middleware.RoleMiddleware(model.Teacher, model.Admin))
	{
		teacher.POST("/courses", c.course.CreateCourse)
		teacher.PUT("/courses/:id", c.course.UpdateCourse)
		teacher.DELETE("/courses/:id", c.course.DeleteCourse)
		teacher.POST("/courses/:id/resources", c.course.UploadResource)

		teacher.POST("/tests", c.content.CreateTest)
		teacher.GET("/tests", c.content.ListTests)
		teacher.GET("/tests/:id", c.content.GetTest)
		teacher.PUT("/tests/:id", c.content.UpdateTest)
		teacher.DELETE("/tests/:id", c.content.DeleteTest)

		teacher.POST("/assignments", c.content.CreateAssignment)
		teacher.GET("/assignments", c.content.ListAssignments)
		teacher.PUT("/assignments/:id", c.content.UpdateAssignment)
		teacher.DELETE("/assignments/:id", c.content.DeleteAssignment)

		teacher.POST("/questions", c.content.CreateQuestion)
		teacher.GET("/questions", c.content.ListQuestions)
		teacher.PUT("/questions/:id", c.content.UpdateQuestion)
		teacher.DELETE("/questions/:id", c.content.DeleteQuestion)
	}
}
