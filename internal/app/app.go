package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"slotwise/internal/config"
	"slotwise/internal/events"
	"slotwise/internal/middleware"
	"slotwise/internal/modules/auth"
	"slotwise/internal/modules/booking"
	"slotwise/internal/modules/catalog"
	"slotwise/internal/modules/classes"
	"slotwise/internal/modules/feed"
	"slotwise/internal/pkg/jwt"
	"slotwise/internal/repository"
)

type Options struct {
	Config *config.Config
	DB     *gorm.DB
	Log    *slog.Logger
	// Publishers receive schedule events in addition to the websocket hub.
	Publishers []events.Publisher
	// RelayFeed leaves the hub out of the direct fan-out; a Redis relay feeds it instead.
	RelayFeed bool
	// Now overrides the clock used for availability; nil means time.Now.
	Now func() time.Time
}

// App is the wired HTTP service.
type App struct {
	Router *gin.Engine
	Store  *repository.Store
	Hub    *feed.Hub
	JWT    *jwt.Service
}

func New(opts Options) *App {
	cfg, log := opts.Config, opts.Log
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	store := repository.NewStore(opts.DB)
	hub := feed.NewHub()
	publisher := events.Multi(opts.Publishers)
	if !opts.RelayFeed {
		publisher = append(events.Multi{hub}, opts.Publishers...)
	}
	tokens := jwt.New(cfg.JWTSecret, cfg.JWTTTL)
	guard := middleware.NewOrganizationGuard(store.Organizations)

	authHandler := auth.NewHandler(auth.NewService(store.Users, store, tokens, log))
	catalogHandler := catalog.NewHandler(catalog.NewService(
		store.Facilities,
		store.Locations,
		store.Organizations,
		store.WorkingHours,
		log,
	))
	bookingService := booking.NewService(
		store.Bookings,
		store.Classes,
		store.Facilities,
		store.WorkingHours,
		store,
		publisher,
		log,
	)
	if opts.Now != nil {
		bookingService.WithClock(opts.Now)
	}
	bookingHandler := booking.NewHandler(bookingService)
	classesHandler := classes.NewHandler(classes.NewService(
		store.Classes,
		store.Facilities,
		store.Locations,
		store,
		store,
		publisher,
		log,
	))
	feedHandler := feed.NewHandler(hub, store.Facilities, cfg.CORSOrigins, log)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorLogger(log), middleware.CORS(cfg.CORSOrigins))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)
		catalogHandler.RegisterPublicRoutes(v1)
		bookingHandler.RegisterPublicRoutes(v1)

		feedHandler.RegisterRoutes(v1.Group("", middleware.JWTAuthWithQuery(tokens)))

		protected := v1.Group("", middleware.JWTAuth(tokens))
		{
			authHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterRoutes(protected, middleware.StaffOnly())

			staff := protected.Group("", middleware.StaffOnly(), guard.RequireActiveSubscription())
			classesHandler.RegisterRoutes(staff)

			owner := protected.Group("", middleware.OwnerOnly(), guard.RequireActiveSubscription())
			catalogHandler.RegisterOwnerRoutes(owner, guard.RequireSameOrganization())
		}
	}

	return &App{Router: r, Store: store, Hub: hub, JWT: tokens}
}
