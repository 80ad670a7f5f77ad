package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"training_tracker/internal/config"
	"training_tracker/internal/controller"
	"training_tracker/internal/repository"
	"training_tracker/internal/service"
	"training_tracker/pkg/configwatcher"
	"training_tracker/pkg/database"
	"training_tracker/pkg/logger"
	"training_tracker/pkg/monitoring"
	"training_tracker/pkg/security"
	"training_tracker/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	origins         *security.OriginList
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	course     *repository.CourseRepository
	assignment *repository.AssignmentRepository
	progress   *repository.ProgressRepository
	session    *repository.SessionRepository
}

type services struct {
	auth       *service.AuthService
	user       *service.UserService
	course     *service.CourseService
	assignment *service.AssignmentService
	progress   *service.ProgressService
	report     *service.ReportService
	storage    *service.StorageService
}

type controllers struct {
	auth       *controller.AuthController
	user       *controller.UserController
	course     *controller.CourseController
	assignment *controller.AssignmentController
	progress   *controller.ProgressController
	report     *controller.ReportController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	repos := &repositories{
		user:       repository.NewUserRepository(db),
		course:     repository.NewCourseRepository(db),
		assignment: repository.NewAssignmentRepository(db),
		progress:   repository.NewProgressRepository(db),
	}
	if rdb != nil {
		repos.session = repository.NewSessionRepository(rdb)
	}
	return repos
}

func (a *App) initServices(repos *repositories, cfg *config.Config) (*services, error) {
	storage, err := service.NewStorageService(&cfg.Storage)
	if err != nil {
		return nil, err
	}

	// a nil *SessionRepository must not reach the interface
	var revoker service.TokenRevoker
	if repos.session != nil {
		revoker = repos.session
	}

	return &services{
		storage:    storage,
		auth:       service.NewAuthService(repos.user, cfg, revoker),
		user:       service.NewUserService(repos.user),
		course:     service.NewCourseService(repos.course, &cfg.Courses),
		assignment: service.NewAssignmentService(repos.assignment, repos.user, repos.course),
		progress:   service.NewProgressService(repos.progress, repos.assignment),
		report:     service.NewReportService(repos.course, repos.user, repos.assignment, repos.progress, storage, &cfg.Reports),
	}, nil
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		user:       controller.NewUserController(s.user),
		course:     controller.NewCourseController(s.course),
		assignment: controller.NewAssignmentController(s.assignment),
		progress:   controller.NewProgressController(s.progress),
		report:     controller.NewReportController(s.report),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(a.origins))
	router.Use(security.Secure())
	if cfg.RateLimit.MaxRequests > 0 {
		router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))
	}

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// NewApp connects the configured stores and builds the HTTP application.
func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	migrate := cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode
	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, migrate)
	if err != nil {
		return nil, err
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, err
	}

	app, err := NewAppWithStores(cfg, db, rdb)
	if err != nil {
		return nil, err
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, err
		}
		app.tracer = tp
	}

	return app, nil
}

// NewAppWithStores builds the application on already opened stores. rdb may be nil.
func NewAppWithStores(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*App, error) {
	gin.SetMode(cfg.Server.Mode)

	app := &App{
		Config:  cfg,
		DB:      db,
		Redis:   rdb,
		origins: security.NewOriginList(cfg.CORS.AllowedOrigins),
	}

	repos := app.initRepositories(db, rdb)
	services, err := app.initServices(repos, cfg)
	if err != nil {
		return nil, err
	}
	controllers := app.initControllers(services, db)

	monitoring.Init()

	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, services)

	app.RegisterConfigCallback(func(c *config.Config) {
		logger.SetMode(c.Server.Mode)
		app.origins.Set(c.CORS.AllowedOrigins)
	})

	return app, nil
}

func (a *App) reload(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

// Run serves until SIGINT or SIGTERM, then drains requests for up to five seconds.
func (a *App) Run() error {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	done := make(chan struct{})
	defer close(done)
	if a.Config.Path != "" {
		go func() {
			if err := configwatcher.WatchConfig(a.Config.Path, a.reload, done); err != nil {
				logger.Log.Warn("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
	return nil
}
