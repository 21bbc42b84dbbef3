// @title Account Service API
// @version 1.0
// @description Auth/Profile/Media endpoints.
// @BasePath /
// @schemes http
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer <opaque token>

package api

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/wavely/account-service/config"
	"github.com/wavely/account-service/infra/queue"
	"github.com/wavely/account-service/internal/api/rest/handlers"
	"github.com/wavely/account-service/internal/api/rest/middleware"
	"github.com/wavely/account-service/internal/domain"
	"github.com/wavely/account-service/internal/helper"
	"github.com/wavely/account-service/internal/logger"
	"github.com/wavely/account-service/internal/repository"
	"github.com/wavely/account-service/internal/services"
	"github.com/wavely/account-service/pkg/cloudinary"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func StartServer(cfg config.Config) {
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("logger init error: %v", err)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 8 * 1024 * 1024,
	})

	// ---------- CORS ----------
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	// ---------- DB ----------
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseDSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	log.Println("database connected")

	// ---------- MIGRATION (guarded by advisory lock) ----------
	const migrateLockID int64 = 20260901

	if err := db.Exec("SELECT pg_advisory_lock(?)", migrateLockID).Error; err != nil {
		log.Fatalf("migration lock error: %v", err)
	}
	defer func() {
		_ = db.Exec("SELECT pg_advisory_unlock(?)", migrateLockID).Error
	}()

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.AuthToken{},
		&domain.Avatar{},
		&domain.BackgroundImage{},
		&domain.PasswordReset{},
	); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	log.Println("migration successful")

	// ---------- Infra ----------
	kafkaProducer := queue.NewProducer(
		cfg.KafkaBroker,
		cfg.KafkaTopic,
		cfg.KafkaUsername,
		cfg.KafkaPassword,
	)
	cld, err := cloudinary.New()
	if err != nil {
		log.Fatalf("cloudinary init error: %v", err)
	}
	up := cloudinary.NewCloudinaryUploader(cld)

	authHelper := helper.SetupAuth()

	// ---------- Repositories ----------
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)

	// ---------- Services ----------
	authSvc := services.NewAuthService(userRepo, tokenRepo, resetRepo, kafkaProducer, authHelper)
	profileSvc := services.NewProfileService(userRepo, mediaRepo, kafkaProducer, authHelper)
	mediaSvc := services.NewMediaService(mediaRepo, up, services.MediaURLConfig{
		PublicBaseURL:    cfg.PublicBaseURL,
		DefaultAvatarURL: cfg.DefaultAvatarURL,
		DefaultBgURL:     cfg.DefaultBgURL,
	})

	// ---------- Handlers ----------
	authRequired := middleware.AuthMiddleware(authHelper, tokenRepo, userRepo)

	handlers.NewAuthHandler(authSvc, authHelper).SetupRoutes(app, authRequired)
	handlers.NewProfileHandler(profileSvc, authHelper).SetupRoutes(app, authRequired)
	handlers.NewMediaHandler(mediaSvc, authHelper).SetupRoutes(app, authRequired)

	// ---------- Health ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// ---------- Listen ----------
	addr := cfg.ServerPort
	log.Println("listening on", addr)
	log.Fatal(app.Listen(addr))
}
