package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/edulane/sims-api/internal/handler"
	"github.com/edulane/sims-api/internal/middleware"
	"github.com/edulane/sims-api/internal/models"
	"github.com/edulane/sims-api/internal/service"
	"github.com/edulane/sims-api/pkg/config"
	"github.com/edulane/sims-api/pkg/logger"
	corsmiddleware "github.com/edulane/sims-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edulane/sims-api/pkg/middleware/requestid"
)

type routerDeps struct {
	cfg     *config.Config
	logger  *zap.Logger
	redis   *redis.Client
	metrics *service.MetricsService
	authSvc *service.AuthService
	db      *sqlx.DB

	auth        *handler.AuthHandler
	users       *handler.UserHandler
	students    *handler.StudentHandler
	teachers    *handler.TeacherHandler
	courses     *handler.CourseHandler
	sections    *handler.SectionHandler
	enrollments *handler.EnrollmentHandler
	grades      *handler.GradeHandler
	gradeTypes  *handler.GradeTypeHandler
	sectionGT   *handler.SectionGradeTypeHandler
	attendance  *handler.AttendanceHandler
	homework    *handler.HomeworkHandler
	timesheets  *handler.TimesheetHandler
	exports     *handler.ExportHandler
	admin       *handler.AdminHandler
}

func newRouter(deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.logger))
	r.Use(corsmiddleware.New(deps.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := deps.db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(deps.metrics.Handler()))

	if deps.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(deps.cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login",
			middleware.LoginRateLimit(deps.redis, deps.cfg.Auth.LoginLimit, deps.cfg.Auth.LoginWindow, deps.metrics, deps.logger),
			deps.auth.Login)
		auth.POST("/register", deps.auth.Register)
		auth.GET("/me", middleware.JWT(deps.authSvc), deps.auth.Me)
	}

	// Signed token authorises the download on its own.
	api.GET("/exports/download/:token", deps.exports.Download)

	protected := api.Group("")
	protected.Use(middleware.JWT(deps.authSvc))

	staff := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)
	admins := middleware.RequireRoles(models.RoleAdmin)

	users := protected.Group("/users", admins)
	{
		users.GET("", deps.users.List)
		users.POST("", deps.users.Create)
		users.GET("/:id", deps.users.Get)
		users.PUT("/:id", deps.users.Update)
		users.PUT("/:id/password", deps.users.ChangePassword)
		users.DELETE("/:id", deps.users.Delete)
	}

	students := protected.Group("/students")
	{
		students.GET("", staff, deps.students.List)
		students.GET("/:id", middleware.RBAC("TEACHER", "ADMIN", "SELF"), deps.students.Get)
		students.POST("", admins, deps.students.Create)
		students.PUT("/:id", admins, deps.students.Update)
		students.DELETE("/:id", admins, deps.students.Delete)
	}

	teachers := protected.Group("/teachers")
	{
		teachers.GET("", staff, deps.teachers.List)
		teachers.GET("/:id", staff, deps.teachers.Get)
		teachers.POST("", admins, deps.teachers.Create)
		teachers.PUT("/:id", admins, deps.teachers.Update)
		teachers.DELETE("/:id", admins, deps.teachers.Delete)
	}

	courses := protected.Group("/courses")
	{
		courses.GET("", deps.courses.List)
		courses.GET("/:id", deps.courses.Get)
		courses.POST("", admins, deps.courses.Create)
		courses.PUT("/:id", admins, deps.courses.Update)
		courses.DELETE("/:id", admins, deps.courses.Delete)
	}

	sections := protected.Group("/sections")
	{
		sections.GET("", deps.sections.List)
		sections.GET("/:id", deps.sections.Get)
		sections.POST("", admins, deps.sections.Create)
		sections.PUT("/:id", admins, deps.sections.Update)
		sections.DELETE("/:id", admins, deps.sections.Delete)

		sections.GET("/:id/grade-types", deps.sectionGT.List)
		sections.PATCH("/:id/grade-types/sort", staff, deps.sectionGT.Reorder)
		sections.POST("/:id/grade-types/:gradeTypeId", staff, deps.sectionGT.Associate)
		sections.DELETE("/:id/grade-types/:gradeTypeId", staff, deps.sectionGT.Disassociate)
		sections.PATCH("/:id/grade-types/:gradeTypeId/toggle", staff, deps.sectionGT.Toggle)
	}

	enrollments := protected.Group("/enrollments")
	{
		enrollments.GET("", staff, deps.enrollments.List)
		enrollments.GET("/:id", staff, deps.enrollments.Get)
		enrollments.POST("", admins, deps.enrollments.Create)
		enrollments.PATCH("/:id", admins, deps.enrollments.Update)
		enrollments.DELETE("/:id", admins, deps.enrollments.Delete)
	}

	grades := protected.Group("/grades")
	{
		grades.GET("", deps.grades.List)
		grades.GET("/export", staff, deps.exports.ExportGrades)
		grades.GET("/:id", deps.grades.Get)
		grades.POST("", staff, deps.grades.Create)
		grades.PATCH("/:id", staff, deps.grades.Update)
		grades.DELETE("/:id", admins, deps.grades.Delete)
	}

	gradeTypes := protected.Group("/grade-types")
	{
		gradeTypes.GET("", deps.gradeTypes.List)
		gradeTypes.GET("/:id", deps.gradeTypes.Get)
		gradeTypes.POST("", admins, deps.gradeTypes.Create)
		gradeTypes.PUT("/:id", admins, deps.gradeTypes.Update)
		gradeTypes.DELETE("/:id", admins, deps.gradeTypes.Delete)
	}

	attendance := protected.Group("/attendance")
	{
		attendance.GET("", deps.attendance.List)
		attendance.GET("/export", staff, deps.exports.ExportAttendance)
		attendance.POST("", staff, deps.attendance.Create)
		attendance.PUT("/:id", staff, deps.attendance.Update)
		attendance.DELETE("/:id", staff, deps.attendance.Delete)
	}

	homework := protected.Group("/homework")
	{
		homework.GET("", deps.homework.List)
		homework.GET("/:id", deps.homework.Get)
		homework.POST("", staff, deps.homework.Create)
		homework.PUT("/:id", staff, deps.homework.Update)
		homework.DELETE("/:id", staff, deps.homework.Delete)
	}

	timesheets := protected.Group("/timesheets")
	{
		timesheets.GET("", staff, deps.timesheets.List)
		timesheets.GET("/export", admins, deps.exports.ExportTimesheets)
		timesheets.GET("/:id", staff, deps.timesheets.Get)
		timesheets.POST("", staff, deps.timesheets.Create)
		timesheets.PATCH("/:id/status", admins, deps.timesheets.UpdateStatus)
		timesheets.DELETE("/:id", staff, deps.timesheets.Delete)
	}

	adminGroup := protected.Group("/admin", admins)
	{
		adminGroup.POST("/grades/initialize", deps.admin.InitializeGrades)
	}

	return r
}
