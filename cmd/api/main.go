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
	"github.com/redis/go-redis/v9"

	_ "github.com/edulane/sims-api/api/swagger"
	"github.com/edulane/sims-api/internal/handler"
	"github.com/edulane/sims-api/internal/repository"
	"github.com/edulane/sims-api/internal/service"
	"github.com/edulane/sims-api/pkg/cache"
	"github.com/edulane/sims-api/pkg/config"
	"github.com/edulane/sims-api/pkg/database"
	"github.com/edulane/sims-api/pkg/jobs"
	"github.com/edulane/sims-api/pkg/logger"
	"github.com/edulane/sims-api/pkg/storage"
)

// @title EduLane SIMS API
// @version 1.0.0
// @description Student information management system
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

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, login rate limiting disabled", "error", err)
		} else {
			defer redisClient.Close()
		}
	}

	fileStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	gradeTypeRepo := repository.NewGradeTypeRepository(db)
	sectionGradeTypeRepo := repository.NewSectionGradeTypeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	homeworkRepo := repository.NewHomeworkRepository(db)
	timesheetRepo := repository.NewTimesheetRepository(db)

	// Services.
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, studentRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	sectionSvc := service.NewSectionService(sectionRepo, courseRepo, teacherRepo, validate, logr)
	gradeTypeSvc := service.NewGradeTypeService(gradeTypeRepo, validate, logr)
	initializer := service.NewGradeInitializer(gradeRepo, gradeTypeRepo, enrollmentRepo, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, sectionRepo, initializer, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, enrollmentRepo, validate, logr)
	sectionGradeTypeSvc := service.NewSectionGradeTypeService(sectionGradeTypeRepo, sectionRepo, gradeTypeRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, sectionRepo, validate, logr)
	homeworkSvc := service.NewHomeworkService(homeworkRepo, sectionRepo, validate, logr)
	timesheetSvc := service.NewTimesheetService(timesheetRepo, teacherRepo, validate, logr)
	exportSvc := service.NewExportService(gradeRepo, attendanceRepo, timesheetRepo, fileStore, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seedCtx, cancelSeed := context.WithTimeout(ctx, 10*time.Second)
	if err := gradeTypeSvc.Seed(seedCtx); err != nil {
		logr.Sugar().Warnw("grade type seeding failed", "error", err)
	}
	cancelSeed()

	// Background reconciliation queue. Jobs re-run the full reconcile pass,
	// so a retry after partial failure is safe.
	queue := jobs.NewQueue("grade-reconcile", func(ctx context.Context, job jobs.Job) error {
		summary, err := initializer.ReconcileAll(ctx)
		if err != nil {
			return err
		}
		metricsSvc.ObserveGradeInit(summary)
		if _, err := exportSvc.Cleanup(); err != nil {
			logr.Sugar().Warnw("export cleanup failed", "error", err)
		}
		return nil
	}, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()

	deps := routerDeps{
		cfg:         cfg,
		logger:      logr,
		redis:       redisClient,
		metrics:     metricsSvc,
		auth:        handler.NewAuthHandler(authSvc, userSvc, metricsSvc),
		users:       handler.NewUserHandler(userSvc),
		students:    handler.NewStudentHandler(studentSvc),
		teachers:    handler.NewTeacherHandler(teacherSvc),
		courses:     handler.NewCourseHandler(courseSvc),
		sections:    handler.NewSectionHandler(sectionSvc),
		enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
		grades:      handler.NewGradeHandler(gradeSvc),
		gradeTypes:  handler.NewGradeTypeHandler(gradeTypeSvc),
		sectionGT:   handler.NewSectionGradeTypeHandler(sectionGradeTypeSvc),
		attendance:  handler.NewAttendanceHandler(attendanceSvc),
		homework:    handler.NewHomeworkHandler(homeworkSvc),
		timesheets:  handler.NewTimesheetHandler(timesheetSvc),
		exports:     handler.NewExportHandler(exportSvc),
		admin:       handler.NewAdminHandler(initializer, metricsSvc, queue, logr),
		authSvc:     authSvc,
		db:          db,
	}
	r := newRouter(deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
