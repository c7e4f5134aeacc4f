package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/controller"
	"lms_backend/internal/repository"
	"lms_backend/internal/service"
	"lms_backend/pkg/configwatcher"
	"lms_backend/pkg/database"
	"lms_backend/pkg/logger"
	"lms_backend/pkg/monitoring"
	"lms_backend/pkg/security"
	"lms_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	course     *repository.CourseRepository
	item       *repository.ContentItemRepository
	enrollment *repository.EnrollmentRepository
	completion *repository.CompletionRepository
	video      *repository.VideoProgressRepository
	test       *repository.TestRepository
	attempt    *repository.AttemptRepository
	plan       *repository.LearningPlanRepository
	group      *repository.GroupRepository
	assignment *repository.InstructorAssignmentRepository
	analytics  *repository.AnalyticsRepository
}

type services struct {
	storage    *service.StorageService
	auth       *service.AuthService
	user       *service.UserService
	access     *service.AccessService
	course     *service.CourseService
	progress   *service.ProgressService
	grading    *service.GradingService
	enrollment *service.EnrollmentService
	plan       *service.LearningPlanService
	question   *service.QuestionService
	group      *service.GroupService
	analytics  *service.AnalyticsService
}

type controllers struct {
	auth       *controller.AuthController
	user       *controller.UserController
	course     *controller.CourseController
	progress   *controller.ProgressController
	completion *controller.CompletionController
	enrollment *controller.EnrollmentController
	question   *controller.QuestionController
	plan       *controller.LearningPlanController
	group      *controller.GroupController
	analytics  *controller.AnalyticsController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		course:     repository.NewCourseRepository(db),
		item:       repository.NewContentItemRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
		completion: repository.NewCompletionRepository(db),
		video:      repository.NewVideoProgressRepository(db),
		test:       repository.NewTestRepository(db),
		attempt:    repository.NewAttemptRepository(db),
		plan:       repository.NewLearningPlanRepository(db),
		group:      repository.NewGroupRepository(db),
		assignment: repository.NewInstructorAssignmentRepository(db),
		analytics:  repository.NewAnalyticsRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.access = service.NewAccessService(repos.enrollment, repos.assignment, repos.group, repos.plan)
	s.course = service.NewCourseService(repos.course, repos.item, repos.test)
	s.progress = service.NewProgressService(repos.item, repos.completion, repos.video, repos.enrollment, s.storage, db)
	s.grading = service.NewGradingService(repos.test, repos.attempt, repos.item, repos.course, s.access, s.progress, db)
	s.enrollment = service.NewEnrollmentService(repos.enrollment, repos.course, repos.plan, db)
	s.plan = service.NewLearningPlanService(repos.plan, repos.course)
	s.question = service.NewQuestionService(repos.test)
	s.group = service.NewGroupService(repos.group)
	s.analytics = service.NewAnalyticsService(
		repos.analytics,
		repos.enrollment,
		repos.completion,
		repos.video,
		repos.attempt,
		repos.test,
		repos.plan,
		repos.user,
		rdb,
	)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth, s.user),
		user:       controller.NewUserController(s.user),
		course:     controller.NewCourseController(s.course, s.access, repos.assignment),
		progress:   controller.NewProgressController(s.progress, s.grading, s.access, repos.course, repos.item),
		completion: controller.NewCompletionController(s.progress, s.access, repos.course, repos.completion),
		enrollment: controller.NewEnrollmentController(s.enrollment, s.access, s.course, s.plan),
		question:   controller.NewQuestionController(s.question, s.access, repos.test, repos.item, repos.course),
		plan:       controller.NewLearningPlanController(s.plan, s.access),
		group:      controller.NewGroupController(s.group, s.course, s.plan, s.access),
		analytics:  controller.NewAnalyticsController(s.analytics, s.access, repos.course, repos.item, repos.test, repos.plan),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}

	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// Analytics caching degrades to direct queries without redis.
		logger.Log.Warn("Redis unavailable, running without analytics cache", zap.Error(err))
		rdb = nil
	}
	app.Redis = rdb

	repos := app.initRepositories(db)
	svcs := app.initServices(repos, cfg, db, rdb)
	ctrls := app.initControllers(svcs, repos, db)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("lms-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, ctrls, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
		updated, ok := newCfg.(*config.Config)
		if !ok {
			return
		}
		logger.Log.Info("Config reloaded")
		for _, cb := range app.configCallbacks {
			cb(updated)
		}
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
