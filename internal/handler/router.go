package handler

import (
	"net/http"

	"github.com/agendoc/agendoc/internal/config"
	"github.com/agendoc/agendoc/internal/domain"
	"github.com/agendoc/agendoc/internal/handler/middleware"
	v1 "github.com/agendoc/agendoc/internal/handler/v1"
	"github.com/agendoc/agendoc/pkg/auth"
	"github.com/agendoc/agendoc/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers bundles the v1 handler set for router wiring.
type Handlers struct {
	Auth             *v1.AuthHandler
	Availability     *v1.AvailabilityHandler
	Appointments     *v1.AppointmentHandler
	Calendars        *v1.CalendarHandler
	AppointmentTypes *v1.AppointmentTypeHandler
	BookingTokens    *v1.BookingTokenHandler
	SamsEvents       *v1.SamsEventHandler
	Specialties      *v1.SpecialtyHandler
	Patient          *v1.PatientHandler
}

func NewRouter(
	cfg *config.Config,
	log *zap.Logger,
	collector *metrics.Collector,
	jwtManager *auth.JWTManager,
	h Handlers,
) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics(collector))
	r.Use(middleware.CORS(cfg.CORS))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.App.Version})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := r.Group("/api/v1")

	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)

	// Public patient flow, gated on a single-use booking token.
	public := api.Group("/public/booking/:token")
	{
		public.GET("", h.Patient.Session)
		public.GET("/slots", h.Patient.Slots)
		public.POST("/appointments", h.Patient.Book)
	}

	// Dashboard routes: authenticated staff only.
	dash := api.Group("")
	dash.Use(middleware.Authenticate(jwtManager))
	dash.Use(middleware.RequireRole(domain.RoleAdmin, domain.RoleDoctor))
	{
		dash.POST("/auth/password", h.Auth.ChangePassword)

		dash.GET("/availability/slots", h.Availability.Slots)
		dash.GET("/availability/feed", h.Availability.Feed)

		dash.POST("/appointments", h.Appointments.Create)
		dash.GET("/appointments", h.Appointments.List)
		dash.GET("/appointments/:id", h.Appointments.Get)
		dash.POST("/appointments/:id/cancel", h.Appointments.Cancel)
		dash.POST("/appointments/:id/transfer", h.Appointments.Transfer)

		dash.GET("/calendars/mine", h.Calendars.Mine)
		dash.PATCH("/calendars/:id/booking-window", h.Calendars.UpdateBookingWindow)
		dash.DELETE("/calendars/:id", h.Calendars.Delete)

		dash.POST("/calendars/:id/rules", h.Calendars.CreateRule)
		dash.GET("/calendars/:id/rules", h.Calendars.ListRules)
		dash.DELETE("/calendars/:id/rules/:ruleId", h.Calendars.DeleteRule)

		dash.POST("/calendars/:id/exceptions", h.Calendars.CreateException)
		dash.GET("/calendars/:id/exceptions", h.Calendars.ListExceptions)
		dash.DELETE("/calendars/:id/exceptions/:exceptionId", h.Calendars.DeleteException)

		dash.GET("/calendars/:id/appointment-types", h.AppointmentTypes.ListByCalendar)
		dash.POST("/appointment-types", h.AppointmentTypes.Create)
		dash.PATCH("/appointment-types/:id", h.AppointmentTypes.Update)
		dash.DELETE("/appointment-types/:id", h.AppointmentTypes.Delete)

		dash.POST("/booking-tokens", h.BookingTokens.Issue)

		dash.GET("/specialties", h.Specialties.List)
	}

	// The specialty referential is admin-curated.
	specialties := api.Group("/specialties")
	specialties.Use(middleware.Authenticate(jwtManager))
	specialties.Use(middleware.RequireRole(domain.RoleAdmin))
	{
		specialties.POST("", h.Specialties.Create)
		specialties.DELETE("/:id", h.Specialties.Delete)
	}

	// SAMS roster management is admin-only.
	admin := api.Group("/sams-events")
	admin.Use(middleware.Authenticate(jwtManager))
	admin.Use(middleware.RequireRole(domain.RoleAdmin))
	{
		admin.POST("", h.SamsEvents.Create)
		admin.GET("", h.SamsEvents.List)
		admin.GET("/:id", h.SamsEvents.Get)
		admin.DELETE("/:id", h.SamsEvents.Delete)
	}

	return r
}
