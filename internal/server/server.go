package server

import (
	"log"

	"backend-trailator/internal/auth"
	"backend-trailator/internal/config"
	"backend-trailator/internal/notify"
	"backend-trailator/internal/reputation"
	"backend-trailator/internal/trailobject"
	"backend-trailator/internal/upload"
	"backend-trailator/internal/user"
	"backend-trailator/internal/visit"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Alerts *notify.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Alerts: notify.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	engine := reputation.NewEngine(s.DB)
	objects := trailobject.NewService(s.DB, s.Redis, engine)
	users := user.NewService(s.DB, s.Redis)
	visits := visit.NewService(objects, engine, users, s.Alerts, s.Cfg.NearbyRadiusM, s.Cfg.NotificationInterval)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	trailobject.RegisterRoutes(s.App.Group("/objects"), objects, jwtMiddleware)
	user.RegisterRoutes(s.App.Group("/users"), users, jwtMiddleware)
	visit.RegisterRoutes(s.App.Group("/visits"), visits, jwtMiddleware)
	notify.RegisterRoutes(s.App.Group("/alerts"), s.Alerts, jwtMiddleware)

	uploader, err := upload.NewCloudinaryUploader(s.Cfg.CloudinaryCloudName, s.Cfg.CloudinaryAPIKey, s.Cfg.CloudinaryAPISecret)
	if err != nil {
		log.Printf("image uploads disabled: %v", err)
		return
	}
	upload.RegisterRoutes(s.App.Group("/uploads"), upload.NewService(s.DB, uploader), jwtMiddleware)
}
