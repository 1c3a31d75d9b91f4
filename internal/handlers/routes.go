package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harentsoaR/docspot-api/internal/apperr"
	"github.com/harentsoaR/docspot-api/internal/middleware"
	"github.com/harentsoaR/docspot-api/internal/models"
)

type RouterOptions struct {
	ServiceName string
	CORSOrigins []string
	Development bool
	Log         *zap.Logger
}

// NewRouter wires the middleware chain and every route with its access policy.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
	}))
	r.Use(middleware.Tracing(opts.ServiceName))
	r.Use(middleware.RequestLogger(opts.Log))
	r.Use(middleware.ErrorHandler(opts.Log, opts.Development))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	gate := middleware.NewGate(h.Auth)
	customer := gate.Protect(middleware.Roles(models.RoleCustomer))
	doctor := gate.Protect(middleware.Roles(models.RoleDoctor))
	parties := gate.Protect(middleware.Roles(models.RoleCustomer, models.RoleDoctor))
	anyone := gate.Protect(middleware.Any)
	admin := gate.Protect(middleware.Roles(models.RoleAdmin))

	api := r.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", h.Login)
	}

	doctorRoutes := api.Group("/doctors")
	{
		doctorRoutes.GET("", h.ListDoctors)
		doctorRoutes.GET("/:id", h.GetDoctor)
	}

	appointmentRoutes := api.Group("/appointments")
	{
		appointmentRoutes.POST("", customer, h.BookAppointment)
		appointmentRoutes.GET("/myappointments", parties, h.MyAppointments)
		appointmentRoutes.PUT("/:id/status", doctor, h.UpdateAppointmentStatus)
		appointmentRoutes.PUT("/:id/cancel", customer, h.CancelAppointment)
		appointmentRoutes.GET("/:id/summary.pdf", parties, h.AppointmentSummaryPDF)
	}

	userRoutes := api.Group("/users")
	{
		userRoutes.GET("/profile", anyone, h.GetProfile)
		userRoutes.PUT("/profile", anyone, h.UpdateProfile)
	}

	adminRoutes := api.Group("/admin")
	{
		adminRoutes.GET("/doctors/pending",
			gate.Protect(middleware.Policy{Roles: []models.Role{models.RoleAdmin}, AllowUnapproved: true}),
			h.PendingDoctors)
		adminRoutes.PUT("/doctors/:id/approve", admin, h.ApproveDoctor)
		adminRoutes.DELETE("/doctors/:id", admin, h.RejectDoctor)
	}

	r.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperr.NotFound("Not Found - " + c.Request.URL.Path))
	})

	return r
}
