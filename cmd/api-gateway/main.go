package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campusops/timetable-api/api/swagger"
	"github.com/campusops/timetable-api/internal/engine"
	"github.com/campusops/timetable-api/internal/handler"
	"github.com/campusops/timetable-api/internal/middleware"
	"github.com/campusops/timetable-api/internal/models"
	"github.com/campusops/timetable-api/internal/repository"
	"github.com/campusops/timetable-api/internal/service"
	"github.com/campusops/timetable-api/pkg/cache"
	"github.com/campusops/timetable-api/pkg/config"
	"github.com/campusops/timetable-api/pkg/database"
	"github.com/campusops/timetable-api/pkg/logger"
	corsmiddleware "github.com/campusops/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusops/timetable-api/pkg/middleware/requestid"
)

// @title Timetable API
// @version 1.0.0
// @description Constraint-based timetable generation and conflict detection
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	courseRepo := repository.NewCourseRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	specialRepo := repository.NewSpecialScheduleRepository(db)
	commitmentRepo := repository.NewCommitmentRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	grid := engine.Grid{
		Days:        cfg.Grid.Days,
		SlotsPerDay: cfg.Grid.SlotsPerDay,
		SlotMinutes: cfg.Grid.SlotMinutes,
		DayStart:    cfg.Grid.DayStart,
	}
	budget := engine.Budget{
		MaxBacktracks:  cfg.Engine.MaxBacktracks,
		RepairAttempts: cfg.Engine.RepairAttempts,
		Seed:           cfg.Engine.Seed,
	}
	catalog := engine.NewCatalog(grid, engine.DefaultOptions())
	store := engine.NewStore(engine.NewDetector(catalog), engine.NewRoster(nil, nil, nil))

	timetableSvc := service.NewTimetableService(store, service.TimetableServiceConfig{
		Grid:         grid,
		Budget:       budget,
		CacheTTL:     cfg.Timetable.CacheTTL,
		KeepVersions: cfg.Timetable.KeepVersions,
	}, service.TimetableRepos{
		Courses:     courseRepo,
		Faculty:     facultyRepo,
		Rooms:       roomRepo,
		Commitments: commitmentRepo,
		Exclusions:  specialRepo,
		Versions:    timetableRepo,
	}, cacheRepo, metrics, validate, logr)

	courseSvc := service.NewCourseService(courseRepo, timetableSvc, validate, logr)
	facultySvc := service.NewFacultyService(facultyRepo, timetableSvc, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, timetableSvc, validate, logr)
	specialSvc := service.NewSpecialScheduleService(specialRepo, timetableSvc, validate, logr)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	timetableSvc.Start(rootCtx)
	defer timetableSvc.Stop()

	courseHandler := handler.NewCourseHandler(courseSvc)
	facultyHandler := handler.NewFacultyHandler(facultySvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	specialHandler := handler.NewSpecialScheduleHandler(specialSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	editors := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleScheduler)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.OptionalJWT(cfg.JWT.Secret))
	{
		api.GET("/courses", courseHandler.List)
		api.GET("/courses/:id", courseHandler.Get)
		api.GET("/faculty", facultyHandler.List)
		api.GET("/faculty/:id", facultyHandler.Get)
		api.GET("/rooms", roomHandler.List)
		api.GET("/rooms/:id", roomHandler.Get)
		api.GET("/special-schedules", specialHandler.List)

		api.GET("/timetable", timetableHandler.Get)
		api.GET("/timetable/status", timetableHandler.Status)
		api.GET("/timetable/versions", timetableHandler.ListVersions)
		api.GET("/timetable/versions/:id", timetableHandler.GetVersion)
	}

	mutations := r.Group(cfg.APIPrefix)
	mutations.Use(middleware.JWT(cfg.JWT.Secret), editors)
	{
		mutations.POST("/courses", courseHandler.Create)
		mutations.PUT("/courses/:id", courseHandler.Update)
		mutations.DELETE("/courses/:id", courseHandler.Delete)
		mutations.POST("/faculty", facultyHandler.Create)
		mutations.PUT("/faculty/:id", facultyHandler.Update)
		mutations.DELETE("/faculty/:id", facultyHandler.Delete)
		mutations.POST("/rooms", roomHandler.Create)
		mutations.PUT("/rooms/:id", roomHandler.Update)
		mutations.DELETE("/rooms/:id", roomHandler.Delete)
		mutations.POST("/special-schedules", specialHandler.Create)
		mutations.DELETE("/special-schedules/:id", specialHandler.Delete)

		mutations.POST("/timetable/generate", timetableHandler.Generate)
		mutations.DELETE("/timetable/generate", timetableHandler.CancelGenerate)
		mutations.POST("/timetable/moves", timetableHandler.Move)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
