package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/netprime/streaming-catalog/internal/config"
	"github.com/netprime/streaming-catalog/internal/database"
	"github.com/netprime/streaming-catalog/internal/handler"
	"github.com/netprime/streaming-catalog/internal/middleware"
	"github.com/netprime/streaming-catalog/internal/queue"
	"github.com/netprime/streaming-catalog/internal/repository"
	"github.com/netprime/streaming-catalog/internal/router"
	"github.com/netprime/streaming-catalog/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins

	cfg := config.Load()

	db, err := database.Open(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("mongo connect failed: %v", err)
	}
	if err := database.EnsureIndexes(context.Background(), db); err != nil {
		log.Fatalf("ensure indexes failed: %v", err)
	}

	// Redis backs the response cache, the auth rate limiter and the logout
	// denylist.  A nil client disables all three.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache, rate limiting and token revocation disabled")
	}

	users := repository.NewUserRepo(db)
	movies := repository.NewMovieRepo(db)
	genres := repository.NewGenreRepo(db)
	sessions := repository.NewSessionRepo(rdb)

	watch := service.NewWatchState(users, movies, queue.PublishWatchProgress)

	authH := handler.NewAuthHandler(cfg, users, sessions)
	movieH := handler.NewMovieHandler(movies, genres)
	genreH := handler.NewGenreHandler(genres, movies)
	userH := handler.NewUserHandler(users, movies, watch)

	// Consume watch-progress events in the background; the consumer runs
	// its own reconnect loop.
	go func() {
		if err := queue.StartWatchConsumer(); err != nil {
			log.Printf("watch consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	origin := cfg.FrontendURL
	if origin == "" {
		origin = "http://localhost:5173"
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{origin},
		AllowCredentials: true,
	}))

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret, sessions, limiter)
	router.RegisterCatalog(e, movieH, genreH, cfg.JWTSecret, sessions, cache)
	router.RegisterUser(e, userH, cfg.JWTSecret, sessions)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
