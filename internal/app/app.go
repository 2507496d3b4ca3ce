package app

import (
	"context"
	"elearn_backend/internal/config"
	"elearn_backend/internal/controller"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/service"
	"elearn_backend/pkg/database"
	"elearn_backend/pkg/logger"
	"elearn_backend/pkg/monitoring"
	"elearn_backend/pkg/security"
	"elearn_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	stopCh          chan struct{}
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	course     *repository.CourseRepository
	test       *repository.TestRepository
	assignment *repository.AssignmentRepository
	question   *repository.QuestionRepository
	result     *repository.ResultRepository
	resource   *repository.ResourceRepository
}

type services struct {
	auth        *service.AuthService
	storage     *service.StorageService
	course      *service.CourseService
	content     *service.ContentService
	judge       *service.JudgeService
	grading     *service.GradingService
	session     *service.TestSessionService
	leaderboard *service.LeaderboardService
}

type controllers struct {
	auth        *controller.AuthController
	course      *controller.CourseController
	content     *controller.ContentController
	assessment  *controller.AssessmentController
	leaderboard *controller.LeaderboardController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// OnConfigReload 配置文件热更新回调，由 configwatcher 驱动
func (a *App) OnConfigReload(raw interface{}) {
	cfg, ok := raw.(*config.Config)
	if !ok {
		return
	}
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		course:     repository.NewCourseRepository(db),
		test:       repository.NewTestRepository(db),
		assignment: repository.NewAssignmentRepository(db),
		question:   repository.NewQuestionRepository(db),
		result:     repository.NewResultRepository(db),
		resource:   repository.NewResourceRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.course = service.NewCourseService(repos.course, repos.resource)
	s.content = service.NewContentService(repos.test, repos.assignment, repos.question)
	s.judge = service.NewJudgeService(cfg)
	s.grading = service.NewGradingService(repos.question, repos.result, repos.course)
	s.session = service.NewTestSessionService(repos.test, s.grading)
	s.leaderboard = service.NewLeaderboardService(repos.result, rdb)

	// 判题端点和轮询参数支持配置热更新
	a.RegisterConfigCallback(s.judge.Reconfigure)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		course:      controller.NewCourseController(s.course, s.storage),
		content:     controller.NewContentController(s.content),
		assessment:  controller.NewAssessmentController(s.content, s.grading, s.session, s.judge),
		leaderboard: controller.NewLeaderboardController(s.leaderboard),
		health:      controller.NewHealthController(db, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 周期检查到期的限时测验会话并自动交卷
func (a *App) startBackgroundTasks(s *services) {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-a.stopCh:
				return
			case <-ticker.C:
				if n := s.session.ExpireOverdueSessions(); n > 0 {
					logger.Log.Info("auto-submitted expired test sessions", zap.Int("count", n))
				}
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// Redis 只用于榜单缓存，连接失败时降级为直接查库
		logger.Log.Warn("Failed to initialize redis, leaderboard cache disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		stopCh: make(chan struct{}),
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		_, err := tracing.InitTracer("elearn-platform", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	close(a.stopCh)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
