package main // Entry point package

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/vidverse/user-service/internal/config"
	"github.com/vidverse/user-service/internal/database"
	"github.com/vidverse/user-service/internal/handler"
	"github.com/vidverse/user-service/internal/queue"
	"github.com/vidverse/user-service/internal/repository"
	"github.com/vidverse/user-service/internal/router"
	"github.com/vidverse/user-service/internal/service"
	"github.com/vidverse/user-service/internal/uploader"
	"github.com/vidverse/user-service/internal/utils"
)

func main() {
	// Load .env for local development; in real deployments the variables
	// come from the environment and the file is absent.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	signer := utils.NewTokenSigner(utils.TokenConfig{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     time.Duration(cfg.AccessTTLMin) * time.Minute,
		RefreshTTL:    time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour,
	})

	users := repository.NewUserRepo(db)
	media := uploader.NewS3Uploader(cfg)
	auth := service.NewAuthService(users, media, signer, queue.Publisher{}, cfg.BcryptCost)

	// Redis backs the profile cache; nil disables it gracefully.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Print("redis unavailable, profile cache disabled")
	}

	// Background consumer writing signup log lines from the broker.
	if os.Getenv("SIGNUP_CONSUMER_ENABLED") != "false" {
		go func() {
			if err := queue.StartSignupConsumer(); err != nil {
				log.Printf("signup-consumer: %v", err)
			}
		}()
	}

	e := echo.New()
	a := handler.NewAuthHandler(cfg, auth)
	router.RegisterRoutes(e)
	router.RegisterAuth(e, a, signer)
	router.RegisterPublic(e, a, rdb, config.LoadCacheConfig())

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
