package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/univista/sis-api/api/swagger"
	"github.com/univista/sis-api/internal/handler"
	"github.com/univista/sis-api/internal/middleware"
	"github.com/univista/sis-api/internal/models"
	"github.com/univista/sis-api/internal/repository"
	"github.com/univista/sis-api/internal/service"
	"github.com/univista/sis-api/pkg/cache"
	"github.com/univista/sis-api/pkg/config"
	"github.com/univista/sis-api/pkg/database"
	"github.com/univista/sis-api/pkg/logger"
	corsmiddleware "github.com/univista/sis-api/pkg/middleware/cors"
	reqidmiddleware "github.com/univista/sis-api/pkg/middleware/requestid"
)

// @title Univista SIS API
// @version 1.0.0
// @description Student information system backend: auth, dashboards, attendance and grading
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)
		defer cacheRepo.Close() //nolint:errcheck
	}

	userRepo := repository.NewUserRepository(db)
	universityRepo := repository.NewUniversityRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)

	authSvc := service.NewAuthService(userRepo, universityRepo, studentRepo, facultyRepo, cfg.JWT, validate, logr)
	userSvc := service.NewUserService(userRepo, studentRepo, facultyRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, facultyRepo, enrollmentRepo, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Faculties:   facultyRepo,
		Students:    studentRepo,
		Offerings:   courseRepo,
		Enrollments: enrollmentRepo,
		Attendance:  attendanceRepo,
		Assessments: assessmentRepo,
		Cache:       cacheSvc,
		Logger:      logr,
		CacheTTL:    cfg.Dashboard.CacheTTL,
	})
	attendanceSvc := service.NewAttendanceService(facultyRepo, courseRepo, enrollmentRepo, attendanceRepo, cacheSvc, validate, logr)
	gradeSvc := service.NewGradeService(facultyRepo, courseRepo, enrollmentRepo, assessmentRepo, cacheSvc, validate, logr)
	reportSvc := service.NewReportService(facultyRepo, courseRepo, enrollmentRepo, attendanceRepo, assessmentRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group(cfg.APIPrefix)

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)

	users := v1.Group("/users", middleware.JWT(authSvc))
	users.GET("/me", userHandler.Me)
	users.PATCH("/me", userHandler.UpdateProfile)

	courses := v1.Group("/courses", middleware.JWT(authSvc))
	courses.GET("", courseHandler.List)

	students := v1.Group("/students", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleStudent))
	students.GET("/dashboard", dashboardHandler.Student)

	faculty := v1.Group("/faculty", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleFaculty))
	faculty.GET("/dashboard", dashboardHandler.Faculty)
	faculty.POST("/attendance", attendanceHandler.Record)
	faculty.GET("/offerings", courseHandler.MyOfferings)
	faculty.GET("/offerings/:id/roster", courseHandler.Roster)
	faculty.GET("/offerings/:id/assessments", gradeHandler.ListAssessments)
	faculty.GET("/offerings/:id/report", reportHandler.OfferingReport)
	faculty.POST("/assessments", gradeHandler.CreateAssessment)
	faculty.POST("/grades", gradeHandler.EnterGrade)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	logr.Sugar().Infow("server stopped")
}
