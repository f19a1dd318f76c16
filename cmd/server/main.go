package main

import (
	"log"
	"strings"
	"time"

	"github.com/campusbridge/jobmarket/internal/config"
	"github.com/campusbridge/jobmarket/internal/handler"
	"github.com/campusbridge/jobmarket/internal/middleware"
	"github.com/campusbridge/jobmarket/internal/model"
	"github.com/campusbridge/jobmarket/internal/repository"
	"github.com/campusbridge/jobmarket/internal/service"
	"github.com/campusbridge/jobmarket/pkg/database"
	"github.com/campusbridge/jobmarket/pkg/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := seedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}

	redisClient := newRedisClient(cfg)
	searchService := newSearchService(cfg)
	imageStorage := newImageStorage()

	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	jobRepo := repository.NewJobRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg.JWTSecret)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	authHandler := handler.NewAuthHandler(authService, authMiddleware)

	navigationHandler := handler.NewNavigationHandler(authHandler)

	profileService := service.NewProfileService(userRepo)
	profileHandler := handler.NewProfileHandler(profileService)

	companyService := service.NewCompanyService(companyRepo)
	companyHandler := handler.NewCompanyHandler(companyService)

	jobService := service.NewJobService(jobRepo, companyRepo, searchService, imageStorage, cfg.CloudinaryUploadFolder)
	jobHandler := handler.NewJobHandler(jobService)

	notificationService := service.NewNotificationService(notificationRepo, redisClient)
	notificationHandler := handler.NewNotificationHandler(notificationService, redisClient)

	applicationService := service.NewApplicationService(applicationRepo, jobRepo, notificationService, redisClient, cfg.ApplySubmitCooldown)
	applicationHandler := handler.NewApplicationHandler(applicationService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	setupCORS(router, cfg)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/session", authHandler.GetSession)
	}
	api.GET("/navigation/resolve", navigationHandler.Resolve)

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		profile := protected.Group("/profile")
		{
			profile.GET("/me", profileHandler.GetCurrentProfile)
			profile.PUT("", profileHandler.UpdateProfile)
		}

		protected.GET("/companies/:id", companyHandler.GetCompany)
		protected.GET("/jobs", jobHandler.GetAllJobs)
		protected.GET("/jobs/:id", jobHandler.GetJob)

		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PATCH("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PATCH("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		// Student routes
		student := protected.Group("")
		student.Use(authMiddleware.RequireRole(model.RoleStudent))
		{
			student.POST("/jobs/:id/applications", applicationHandler.SubmitApplication)
			student.GET("/applications/me", applicationHandler.GetMyApplications)
		}

		// Employer routes
		employer := protected.Group("")
		employer.Use(authMiddleware.RequireRole(model.RoleEmployer))
		{
			employer.POST("/companies", companyHandler.CreateCompany)
			employer.GET("/companies/me", companyHandler.GetMyCompany)
			employer.PUT("/companies/:id", companyHandler.UpdateCompany)

			employer.POST("/jobs", jobHandler.CreateJob)
			employer.PUT("/jobs/:id", jobHandler.UpdateJob)
			employer.POST("/jobs/:id/images", jobHandler.UploadJobImages)
		employer.DELETE("/jobs/:id/images", jobHandler.DeleteJobImage)

			employer.GET("/jobs/:id/applications", applicationHandler.GetJobApplications)
			employer.PATCH("/applications/:id/status", applicationHandler.UpdateApplicationStatus)
		}
	}

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Profile{},
		&model.Company{},
		&model.Job{},
		&model.Application{},
		&model.Notification{},
	)
}

func seedRoles(db *gorm.DB) error {
	defaultRoles := []model.Role{
		{Name: model.RoleStudent, Description: "Student looking for jobs"},
		{Name: model.RoleEmployer, Description: "Employer posting jobs"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&model.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func newRedisClient(cfg *config.Config) *redis.Client {
	if cfg.RedisURL == "" {
		log.Println("REDIS_URL is not set, rate limiting and live notifications are disabled")
		return nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}

	return redis.NewClient(opt)
}

func newSearchService(cfg *config.Config) service.JobSearchService {
	if cfg.MeiliMasterKey == "" {
		log.Println("MEILI_MASTER_KEY is not set, job search falls back to database queries")
		return nil
	}

	meiliHost := cfg.MeiliSearchHost
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}

	client := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	return service.NewJobSearchService(client)
}

func setupCORS(router *gin.Engine, cfg *config.Config) {
	origins := strings.Split(cfg.AllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

func newImageStorage() storage.ImageStorage {
	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Printf("cloudinary storage unavailable, job image upload disabled: %v", err)
		return nil
	}

	return imageStorage
}
