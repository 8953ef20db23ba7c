// Package router assembles the gin engine and its route table.
package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/roomsched-api/internal/handler"
	"github.com/noah-isme/roomsched-api/internal/middleware"
	"github.com/noah-isme/roomsched-api/internal/models"
	"github.com/noah-isme/roomsched-api/internal/service"
	"github.com/noah-isme/roomsched-api/pkg/config"
	"github.com/noah-isme/roomsched-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/roomsched-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/roomsched-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler mounted by the router. Report is optional.
type Handlers struct {
	Auth          *handler.AuthHandler
	User          *handler.UserHandler
	Room          *handler.RoomHandler
	Course        *handler.CourseHandler
	Enrollment    *handler.EnrollmentHandler
	Booking       *handler.BookingHandler
	ChangeRequest *handler.ChangeRequestHandler
	Report        *handler.ReportHandler
	Metrics       *handler.MetricsHandler
}

// Dependencies carries the shared infrastructure the middleware chain needs.
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *service.MetricsService
	Tokens   middleware.TokenValidator
	Audit    middleware.AuditWriter
	Handlers Handlers
}

// New builds the engine with global middleware and all routes registered.
func New(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	h := deps.Handlers
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())
	registerAuth(api, deps)

	secured := api.Group("")
	secured.Use(middleware.JWT(deps.Tokens))
	registerCatalog(secured, deps)
	registerScheduling(secured, deps)
	registerUsers(secured, deps)
	secured.GET("/metrics/snapshot", middleware.RequireRoles(models.RoleAdmin), h.Metrics.Snapshot)
	registerReports(api, secured, deps)

	return r
}

func registerAuth(api *gin.RouterGroup, deps Dependencies) {
	h := deps.Handlers.Auth
	auth := api.Group("/auth")
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.Refresh)

	authed := auth.Group("")
	authed.Use(middleware.JWT(deps.Tokens))
	authed.POST("/logout", h.Logout)
	authed.POST("/change-password", h.ChangePassword)
	authed.GET("/me", h.Me)
}

// registerCatalog mounts rooms, courses and enrollments. Reads are open to any
// signed-in user; writes are admin-only and audited here since their services
// do not audit themselves.
func registerCatalog(secured *gin.RouterGroup, deps Dependencies) {
	admin := middleware.RequireRoles(models.RoleAdmin)
	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(deps.Audit, deps.Logger, action, resource)
	}

	secured.GET("/time-blocks", handler.TimeBlocks)

	rooms := secured.Group("/rooms")
	room := deps.Handlers.Room
	rooms.GET("", room.List)
	rooms.GET("/available", room.Available)
	rooms.GET("/:id", room.Get)
	rooms.POST("", admin, audit(models.AuditActionRoomCreate, "room"), room.Create)
	rooms.PUT("/:id", admin, audit(models.AuditActionRoomUpdate, "room"), room.Update)
	rooms.DELETE("/:id", admin, audit(models.AuditActionRoomDelete, "room"), room.Delete)

	courses := secured.Group("/courses")
	course := deps.Handlers.Course
	courses.GET("", course.List)
	courses.GET("/:id", course.Get)
	courses.POST("", admin, audit(models.AuditActionCourseCreate, "course"), course.Create)
	courses.PUT("/:id", admin, audit(models.AuditActionCourseUpdate, "course"), course.Update)
	courses.DELETE("/:id", admin, audit(models.AuditActionCourseDelete, "course"), course.Delete)

	enrollments := secured.Group("/enrollments")
	enrollment := deps.Handlers.Enrollment
	enrollments.GET("", enrollment.List)
	enrollments.GET("/:id", enrollment.Get)
	enrollments.POST("", admin, audit(models.AuditActionEnrollmentCreate, "enrollment"), enrollment.Create)
	enrollments.PUT("/:id", admin, audit(models.AuditActionEnrollmentUpdate, "enrollment"), enrollment.Update)
	enrollments.DELETE("/:id", admin, audit(models.AuditActionEnrollmentDelete, "enrollment"), enrollment.Delete)
}

func registerScheduling(secured *gin.RouterGroup, deps Dependencies) {
	admin := middleware.RequireRoles(models.RoleAdmin)

	bookings := secured.Group("/bookings")
	booking := deps.Handlers.Booking
	bookings.GET("", booking.List)
	bookings.GET("/:id", booking.Get)
	bookings.POST("", admin, booking.Create)
	bookings.PUT("/:id", admin, booking.Update)
	bookings.DELETE("/:id", admin, booking.Delete)

	requests := secured.Group("/change-requests")
	cr := deps.Handlers.ChangeRequest
	requests.GET("", cr.List)
	requests.GET("/:id", cr.Get)
	requests.POST("", cr.Create)
	requests.POST("/:id/review", admin, cr.Review)
}

func registerUsers(secured *gin.RouterGroup, deps Dependencies) {
	h := deps.Handlers.User
	users := secured.Group("/users")
	users.GET("", middleware.RequireRoles(models.RoleAdmin), h.List)
	users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), middleware.Self), h.Get)
	users.POST("", middleware.RequireRoles(models.RoleAdmin), h.Create)
	users.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), h.Update)
	users.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), h.Delete)
}

// registerReports mounts the report endpoints when reports are enabled. The
// download route is authorised by its signed token instead of a JWT.
func registerReports(api, secured *gin.RouterGroup, deps Dependencies) {
	h := deps.Handlers.Report
	if h == nil {
		return
	}
	api.GET("/reports/download/:token", h.DownloadReport)
	reports := secured.Group("/reports")
	reports.POST("", h.GenerateReport)
	reports.GET("/:id", h.ReportStatus)
}
