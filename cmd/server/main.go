package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/restaurant-table-reservation/internal/config"      // Environment config loaders
	"github.com/iliyamo/restaurant-table-reservation/internal/database"    // MySQL connection pool
	"github.com/iliyamo/restaurant-table-reservation/internal/handler"     // HTTP handlers
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"  // Rate limit and cache middleware
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"       // Booking event consumer
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"  // MySQL repositories
	"github.com/iliyamo/restaurant-table-reservation/internal/reservation" // Table reservation engine
	"github.com/iliyamo/restaurant-table-reservation/internal/router"      // Route registration
	queue_publisher "github.com/iliyamo/restaurant-table-reservation/internal/service" // Event publisher
)

func main() {
	// Load .env when present; real deployments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables rate limiting and the
	// catalog response cache but never blocks bookings.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and caching disabled")
	}

	restaurants := repository.NewRestaurantRepo(db)
	bookings := repository.NewBookingRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	engine := reservation.NewEngine(restaurants, bookings)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	catalogH := handler.NewCatalogHandler(restaurants)
	bookingH := handler.NewBookingHandler(engine, restaurants, queue_publisher.AMQPPublisher{})

	e := echo.New()
	e.HideBanner = true

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterCatalog(e, catalogH, cfg.JWTSecret, rateLimit, cache)
	router.RegisterBookings(e, bookingH, cfg.JWTSecret)

	// Consume booking events in the background; the consumer keeps
	// reconnecting on its own when the broker drops.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
