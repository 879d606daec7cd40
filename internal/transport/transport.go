package transport

import (
	"errors"
	"net/http"
	"time"

	"github.com/evently/evently/config"
	"github.com/evently/evently/internal/entity"
	"github.com/evently/evently/internal/monitoring"
	"github.com/evently/evently/internal/transport/middleware"
	"github.com/evently/evently/pkg/session"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handlers собирает все обработчики HTTP-слоя.
type Handlers struct {
	Event *EventHandler
	RSVP  *RSVPHandler
	Auth  *AuthHandler
	Admin *AdminHandler
}

// InitRoutes строит gin-роутер со всеми публичными, пользовательскими и
// административными маршрутами.
func InitRoutes(
	cfg *config.Config,
	handlers *Handlers,
	sessions *session.Manager,
	metrics *monitoring.Metrics,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(cfg.Server.Timeout))
	if metrics != nil {
		router.Use(metrics.Middleware())
		router.GET("/metrics", metrics.Handler())
	}

	startedAt := time.Now()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"version":   cfg.Server.AppVersion,
			"uptime":    time.Since(startedAt).String(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")

	public := api.Group("/public")
	{
		public.POST("/auth/signup", handlers.Auth.Signup)
		public.POST("/auth/login", handlers.Auth.Login)
		public.POST("/auth/logout", handlers.Auth.Logout)

		public.GET("/home", handlers.Event.Home)
		public.GET("/events", handlers.Event.ListPublic)
		public.GET("/events/:id", handlers.Event.GetEvent)

		// Гостевое бронирование: сессия не требуется и не проверяется.
		public.POST("/rsvp", handlers.RSVP.CreateRSVP)
	}

	auth := api.Group("/auth")
	auth.Use(middleware.RequireSession(sessions, cfg.Auth.CookieName))
	{
		events := auth.Group("/events")
		{
			events.GET("", handlers.Event.ListMine)
			events.POST("", handlers.Event.CreateEvent)
			events.PUT("/:id", handlers.Event.UpdateEvent)
			events.DELETE("/:id", handlers.Event.DeleteEvent)
			events.GET("/:id/stats", handlers.RSVP.GetEventStats)
			events.GET("/:id/rsvps", handlers.RSVP.ListEventRSVPs)
		}

		auth.GET("/staff/events", handlers.Event.ListAssigned)

		admin := auth.Group("/admin")
		admin.Use(middleware.RequireRole(entity.RoleAdmin))
		{
			admin.GET("/stats", handlers.Admin.Stats)
			admin.GET("/users", handlers.Admin.ListUsers)
			admin.PATCH("/users/:id/block", handlers.Admin.BlockUser)
			admin.PATCH("/users/:id/unblock", handlers.Admin.UnblockUser)
			admin.PATCH("/users/:id/role", handlers.Admin.SetUserRole)

			admin.GET("/events", handlers.Admin.ListEvents)
			admin.POST("/events", handlers.Event.CreateEvent)
			admin.PUT("/events/:id", handlers.Event.UpdateEvent)
			admin.DELETE("/events/:id", handlers.Event.DeleteEvent)
			admin.PATCH("/events/:id/assign", handlers.Admin.AssignEvent)
		}
	}

	return router
}

// respondError транслирует ошибки-сентинелы доменного слоя в HTTP-ответы
// с закрытым набором кодов. Неизвестные ошибки логируются и скрываются
// за INTERNAL_ERROR.
func respondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"

	switch {
	case errors.Is(err, entity.ErrInvalidInput):
		status, code = http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, entity.ErrInvalidRole):
		status, code = http.StatusBadRequest, "INVALID_ROLE"
	case errors.Is(err, entity.ErrEventNotFound),
		errors.Is(err, entity.ErrUserNotFound):
		status, code = http.StatusBadRequest, "NOT_FOUND"
	case errors.Is(err, entity.ErrStaffNotFound):
		status, code = http.StatusBadRequest, "STAFF_NOT_FOUND"
	case errors.Is(err, entity.ErrNotEnoughSpots):
		status, code = http.StatusConflict, "INSUFFICIENT_SPOTS"
	case errors.Is(err, entity.ErrEventPast):
		status, code = http.StatusConflict, "EVENT_PAST"
	case errors.Is(err, entity.ErrAlreadyRSVPed):
		status, code = http.StatusConflict, "ALREADY_RSVPED"
	case errors.Is(err, entity.ErrDuplicateSlug):
		status, code = http.StatusConflict, "DUPLICATE_SLUG"
	case errors.Is(err, entity.ErrEmailTaken):
		status, code = http.StatusConflict, "EMAIL_TAKEN"
	case errors.Is(err, entity.ErrInvalidCredentials),
		errors.Is(err, entity.ErrUserBlocked):
		status, code = http.StatusUnauthorized, "INVALID_CREDENTIALS"
	case errors.Is(err, entity.ErrForbidden):
		status, code = http.StatusForbidden, "FORBIDDEN"
	default:
		logrus.Errorf("unhandled error in %s %s: %v",
			c.Request.Method, c.Request.URL.Path, err)
	}

	c.JSON(status, gin.H{"success": false, "error": code})
}
