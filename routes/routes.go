package routes

import (
	"time"

	"decorbook/handlers"
	"decorbook/middleware"
	"decorbook/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options carries the cross-cutting pieces the router needs.
type Options struct {
	Logger         *zap.Logger
	AllowedOrigins []string
	// Limiter guards the public submission endpoints; nil disables limiting.
	Limiter *middleware.RateLimiter
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health.Health)
}

// RegisterBookingRoutes sets up the public booking form and the admin list.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle, limit gin.HandlerFunc) {
	api := r.Group("/api")
	{
		api.POST("/book", limit, hb.Booking.CreateBooking)
		api.POST("/check-availability", hb.Booking.CheckAvailability)

		// Admin (authentication is handled in front of this service)
		api.GET("/bookings", hb.Booking.ListBookings)
		api.PATCH("/bookings/:id/status", hb.Booking.UpdateBookingStatus)
	}
}

// RegisterContactRoutes sets up the contact form and its admin views.
func RegisterContactRoutes(r *gin.Engine, hb *handlers.HandlerBundle, limit gin.HandlerFunc) {
	api := r.Group("/api")
	{
		api.POST("/contact", limit, hb.Contact.SubmitContact)
		api.GET("/contacts", hb.Contact.ListContacts)
		api.PATCH("/contacts/:id/status", hb.Contact.UpdateContactStatus)
	}
}

// RegisterAdminRoutes sets up the read-only dashboard reports.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	dashboard := r.Group("/api/admin/dashboard")
	{
		dashboard.GET("/stats", hb.Admin.DashboardStats)
		dashboard.GET("/revenue-chart", hb.Admin.RevenueChart)
		dashboard.GET("/package-stats", hb.Admin.PackageStats)
	}
}

// NewRouter builds the engine with global middleware and every endpoint.
func NewRouter(hb *handlers.HandlerBundle, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(utils.ErrorHandler(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	var limit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if opts.Limiter != nil {
		limit = opts.Limiter.Middleware()
	}

	RegisterHealthRoute(r, hb)
	RegisterBookingRoutes(r, hb, limit)
	RegisterContactRoutes(r, hb, limit)
	if hb.Admin != nil {
		RegisterAdminRoutes(r, hb)
	}
	return r
}

// corsConfig allows every origin when none are configured.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
