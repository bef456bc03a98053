package main // Entry point package

import (
	"database/sql"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/kafet/cafeteria-reservation/internal/config"
	"github.com/kafet/cafeteria-reservation/internal/database"
	"github.com/kafet/cafeteria-reservation/internal/handler"
	"github.com/kafet/cafeteria-reservation/internal/middleware"
	"github.com/kafet/cafeteria-reservation/internal/queue"
	"github.com/kafet/cafeteria-reservation/internal/repository"
	"github.com/kafet/cafeteria-reservation/internal/router"
	"github.com/kafet/cafeteria-reservation/internal/service"
	"github.com/kafet/cafeteria-reservation/internal/storage"
)

func main() {
	// Load .env when present; real deployments set variables directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}
	cfg := config.Load()

	var (
		db  *sql.DB
		err error
	)
	switch cfg.DBDriver {
	case "sqlite":
		db, err = database.OpenSQLite(cfg.DBPath)
	default:
		db, err = database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	images, err := storage.NewImageStore(cfg.ImageDir)
	if err != nil {
		log.Fatalf("image store init failed: %v", err)
	}

	// Repositories.
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	menuRepo := repository.NewMenuRepo(db)
	reservationRepo := repository.NewReservationRepo(db)

	// Reservation service with the change feed and photo cleanup wired in.
	svc := service.NewReservationService(db, menuRepo, reservationRepo)
	svc.Publish = queue.PublishMenuItemEvent
	svc.Images = images

	// Handlers.
	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	menuHandler := handler.NewMenuHandler(menuRepo)
	adminMenuHandler := handler.NewAdminMenuHandler(menuRepo, svc, images)
	reservationHandler := handler.NewReservationHandler(svc, reservationRepo)
	adminReservationHandler := handler.NewAdminReservationHandler(svc, reservationRepo)

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	// Redis backs both the rate limiter and the response cache; with no
	// Redis available both middlewares turn into pass-throughs.
	rdb := config.NewRedisClient()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	menuCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e, images.Dir())
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublicMenu(e, menuHandler, menuCache)
	router.RegisterUserRoutes(e, reservationHandler, cfg.JWTSecret)
	router.RegisterAdminRoutes(e, adminMenuHandler, adminReservationHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, driver=%s)", addr, cfg.Env, cfg.DBDriver)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
