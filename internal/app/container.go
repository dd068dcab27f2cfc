package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/servicehub-backend/internal/api"
	"github.com/nekogravitycat/servicehub-backend/internal/auth"
	"github.com/nekogravitycat/servicehub-backend/internal/availability"
	"github.com/nekogravitycat/servicehub-backend/internal/booking"
	"github.com/nekogravitycat/servicehub-backend/internal/catalog"
	"github.com/nekogravitycat/servicehub-backend/internal/dashboard"
	"github.com/nekogravitycat/servicehub-backend/internal/db"
	"github.com/nekogravitycat/servicehub-backend/internal/file"
	"github.com/nekogravitycat/servicehub-backend/internal/notification"
	"github.com/nekogravitycat/servicehub-backend/internal/payment"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/storage"
	"github.com/nekogravitycat/servicehub-backend/internal/provider"
	"github.com/nekogravitycat/servicehub-backend/internal/review"
	"github.com/nekogravitycat/servicehub-backend/internal/search"
	"github.com/nekogravitycat/servicehub-backend/internal/tasks"
	"github.com/nekogravitycat/servicehub-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	Scheduler    tasks.Scheduler
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int
	StoragePath  string

	PaymentDelay         time.Duration
	PaymentSettleTimeout time.Duration
	PaymentSuccessRate   float64
	// PaymentSeed seeds the simulated gateway outcome source.
	PaymentSeed int64
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
// Handlers for deferred tasks are registered on cfg.Scheduler; the caller starts and stops it.
func NewContainer(cfg Config) (*Container, error) {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	txManager := db.NewTxManager(cfg.DBPool)

	fileStorage, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init storage failed: %w", err)
	}

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// File Module
	fileService := file.NewService(file.NewPgxRepository(cfg.DBPool), fileStorage)

	// Catalog Module
	catalogRepo := catalog.NewPgxRepository(cfg.DBPool)
	catalogService := catalog.NewService(catalogRepo, txManager)

	// Provider Module
	providerRepo := provider.NewPgxRepository(cfg.DBPool)
	providerService := provider.NewService(providerRepo)

	// Search Module
	searchService := search.NewService(search.NewPgxRepository(cfg.DBPool))

	// Notification Module
	notificationService := notification.NewService(notification.NewPgxRepository(cfg.DBPool), cfg.Scheduler)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, txManager, userRepo, catalogRepo, providerRepo, notificationService)

	// Payment Module
	paymentService := payment.NewService(
		payment.NewPgxRepository(cfg.DBPool),
		bookingRepo,
		txManager,
		notificationService,
		cfg.Scheduler,
		payment.NewRandOutcome(cfg.PaymentSeed),
		payment.Config{
			Delay:         cfg.PaymentDelay,
			SuccessRate:   cfg.PaymentSuccessRate,
			SettleTimeout: cfg.PaymentSettleTimeout,
		},
	)

	// Review Module
	reviewRepo := review.NewPgxRepository(cfg.DBPool)
	reviewService := review.NewService(reviewRepo, bookingRepo, providerRepo, txManager, notificationService)

	// Availability Module
	availabilityService := availability.NewService(availability.NewPgxRepository(cfg.DBPool))

	// Dashboard Module
	dashboardService := dashboard.NewService(dashboard.NewPgxRepository(cfg.DBPool), bookingRepo, reviewRepo, notificationService)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:        cfg.IsProduction,
		ProdOrigins:         cfg.ProdOrigins,
		UserService:         userService,
		FileService:         fileService,
		CatalogService:      catalogService,
		ProviderService:     providerService,
		SearchService:       searchService,
		BookingService:      bookingService,
		PaymentService:      paymentService,
		ReviewService:       reviewService,
		NotificationService: notificationService,
		AvailabilityService: availabilityService,
		DashboardService:    dashboardService,
		JWTManager:          jwtManager,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}, nil
}
