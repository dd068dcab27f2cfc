package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/servicehub-backend/internal/auth"
	"github.com/nekogravitycat/servicehub-backend/internal/availability"
	availabilityHttp "github.com/nekogravitycat/servicehub-backend/internal/availability/http"
	"github.com/nekogravitycat/servicehub-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/servicehub-backend/internal/booking/http"
	"github.com/nekogravitycat/servicehub-backend/internal/catalog"
	catalogHttp "github.com/nekogravitycat/servicehub-backend/internal/catalog/http"
	"github.com/nekogravitycat/servicehub-backend/internal/dashboard"
	dashboardHttp "github.com/nekogravitycat/servicehub-backend/internal/dashboard/http"
	"github.com/nekogravitycat/servicehub-backend/internal/file"
	fileHttp "github.com/nekogravitycat/servicehub-backend/internal/file/http"
	"github.com/nekogravitycat/servicehub-backend/internal/notification"
	notificationHttp "github.com/nekogravitycat/servicehub-backend/internal/notification/http"
	"github.com/nekogravitycat/servicehub-backend/internal/payment"
	paymentHttp "github.com/nekogravitycat/servicehub-backend/internal/payment/http"
	"github.com/nekogravitycat/servicehub-backend/internal/provider"
	providerHttp "github.com/nekogravitycat/servicehub-backend/internal/provider/http"
	"github.com/nekogravitycat/servicehub-backend/internal/review"
	reviewHttp "github.com/nekogravitycat/servicehub-backend/internal/review/http"
	"github.com/nekogravitycat/servicehub-backend/internal/search"
	searchHttp "github.com/nekogravitycat/servicehub-backend/internal/search/http"
	"github.com/nekogravitycat/servicehub-backend/internal/user"
	userHttp "github.com/nekogravitycat/servicehub-backend/internal/user/http"
)

// Config carries the services the router exposes.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService         user.Service
	FileService         file.Service
	CatalogService      catalog.Service
	ProviderService     provider.Service
	SearchService       search.Service
	BookingService      booking.Service
	PaymentService      payment.Service
	ReviewService       review.Service
	NotificationService notification.Service
	AvailabilityService availability.Service
	DashboardService    dashboard.Service
	JWTManager          *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"http://localhost:3000", // Frontend dev server
		"http://localhost:8081", // Swagger
	}
	if origins := splitOrigins(cfg.ProdOrigins); cfg.IsProduction && len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition"}
	r.Use(cors.New(corsConfig))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// customerMiddleware / providerMiddleware: Check the stored account's role.
	customerMiddleware := RequireAccountRole(cfg.UserService, user.RoleCustomer)
	providerMiddleware := RequireAccountRole(cfg.UserService, user.RoleProvider)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	fileHandler := fileHttp.NewHandler(cfg.FileService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHttp.NewHandler(cfg.UserService, cfg.JWTManager), authMiddleware)
		fileHttp.RegisterRoutes(v1, fileHandler, authMiddleware)
		catalogHttp.RegisterRoutes(v1, catalogHttp.NewHandler(cfg.CatalogService, fileHandler), authMiddleware, providerMiddleware)
		providerHttp.RegisterRoutes(v1, providerHttp.NewHandler(cfg.ProviderService), authMiddleware, providerMiddleware)
		searchHttp.RegisterRoutes(v1, searchHttp.NewHandler(cfg.SearchService), authMiddleware, customerMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHttp.NewHandler(cfg.BookingService), authMiddleware, customerMiddleware)
		paymentHttp.RegisterRoutes(v1, paymentHttp.NewHandler(cfg.PaymentService), authMiddleware, customerMiddleware)
		reviewHttp.RegisterRoutes(v1, reviewHttp.NewHandler(cfg.ReviewService), authMiddleware, customerMiddleware)
		notificationHttp.RegisterRoutes(v1, notificationHttp.NewHandler(cfg.NotificationService), authMiddleware)
		availabilityHttp.RegisterRoutes(v1, availabilityHttp.NewHandler(cfg.AvailabilityService), authMiddleware, providerMiddleware)
		dashboardHttp.RegisterRoutes(v1, dashboardHttp.NewHandler(cfg.DashboardService), authMiddleware, providerMiddleware)
	}

	return r
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
