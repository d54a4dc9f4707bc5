package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campushq/timetable-api/api/swagger"
	"github.com/campushq/timetable-api/internal/handler"
	"github.com/campushq/timetable-api/internal/middleware"
	"github.com/campushq/timetable-api/internal/models"
	"github.com/campushq/timetable-api/internal/repository"
	"github.com/campushq/timetable-api/internal/service"
	"github.com/campushq/timetable-api/pkg/cache"
	"github.com/campushq/timetable-api/pkg/config"
	"github.com/campushq/timetable-api/pkg/database"
	"github.com/campushq/timetable-api/pkg/logger"
	corsmiddleware "github.com/campushq/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushq/timetable-api/pkg/middleware/requestid"
)

// @title CampusHQ Timetable API
// @version 1.0.0
// @description University timetable management with conflict detection
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

	timetableRepo := repository.NewTimetableRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	conflictRepo := repository.NewConflictRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Timetable.CacheTTL, logr, cfg.Timetable.CacheEnabled)
	verifier := service.NewAuthVerifier(cfg.JWT.Secret)

	timetableSvc := service.NewTimetableService(timetableRepo, courseRepo, roomRepo, conflictRepo, cacheSvc, metricsSvc, validate, logr)
	conflictSvc := service.NewConflictService(conflictRepo, timetableSvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, validate, logr)
	instructorSvc := service.NewInstructorService(instructorRepo, validate, logr)
	exportSvc := service.NewExportService(timetableRepo, roomRepo, logr, cfg.Timetable.ExportEnabled)

	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	conflictHandler := handler.NewConflictHandler(conflictSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	instructorHandler := handler.NewInstructorHandler(instructorSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(verifier))

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor, models.RoleStudent)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor)

	timetable := api.Group("/timetable")
	{
		timetable.GET("", anyRole, timetableHandler.Get)
		timetable.PUT("", adminOnly, timetableHandler.Save)
		timetable.GET("/detect", adminOnly, timetableHandler.Detect)
		timetable.GET("/layout", staff, timetableHandler.Layout)
		timetable.POST("/move", adminOnly, timetableHandler.Move)
		timetable.POST("/reassign", adminOnly, timetableHandler.Reassign)
		timetable.POST("/publish", adminOnly, timetableHandler.Publish)
		timetable.GET("/export/csv", staff, exportHandler.CSV)
		timetable.GET("/export/pdf", staff, exportHandler.PDF)
	}

	conflicts := api.Group("/conflicts", adminOnly)
	{
		conflicts.GET("", conflictHandler.List)
		conflicts.GET("/summary", conflictHandler.Summary)
		conflicts.POST("/auto-resolve", conflictHandler.AutoResolve)
		conflicts.GET("/:id", conflictHandler.Get)
		conflicts.PATCH("/:id/status", conflictHandler.UpdateStatus)
	}

	courses := api.Group("/courses")
	{
		courses.GET("", staff, courseHandler.List)
		courses.GET("/:id", staff, courseHandler.Get)
		courses.POST("", adminOnly, courseHandler.Create)
		courses.POST("/import", adminOnly, courseHandler.Import)
		courses.PUT("/:id", adminOnly, courseHandler.Update)
		courses.DELETE("/:id", adminOnly, courseHandler.Delete)
	}

	rooms := api.Group("/rooms")
	{
		rooms.GET("", staff, roomHandler.List)
		rooms.GET("/:id", staff, roomHandler.Get)
		rooms.POST("", adminOnly, roomHandler.Create)
		rooms.POST("/import", adminOnly, roomHandler.Import)
		rooms.PUT("/:id", adminOnly, roomHandler.Update)
		rooms.DELETE("/:id", adminOnly, roomHandler.Delete)
	}

	instructors := api.Group("/instructors")
	{
		instructors.GET("", staff, instructorHandler.List)
		instructors.GET("/active", staff, instructorHandler.ListActive)
		instructors.GET("/:id", staff, instructorHandler.Get)
		instructors.POST("", adminOnly, instructorHandler.Create)
		instructors.PUT("/:id", adminOnly, instructorHandler.Update)
		instructors.DELETE("/:id", adminOnly, instructorHandler.Deactivate)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
