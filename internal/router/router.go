package router

import (
	"time"

	"github.com/rigaku-tools/machine-fleet-backend/internal/handlers"
	"github.com/rigaku-tools/machine-fleet-backend/internal/middleware"
	"github.com/rigaku-tools/machine-fleet-backend/internal/services"
	"github.com/rigaku-tools/machine-fleet-backend/internal/services/auth"
	"github.com/rigaku-tools/machine-fleet-backend/internal/services/email"
	"github.com/rigaku-tools/machine-fleet-backend/internal/services/events"
	"github.com/rigaku-tools/machine-fleet-backend/internal/services/excel"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin router with the fleet-management routes.
func SetupRouter(db *gorm.DB, publisher *events.Publisher, sender email.Sender, validator email.Validator) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Services
	authService := auth.NewAuthService(db, sender, validator)
	machineService := services.NewMachineService(db, publisher)
	userService := services.NewUserService(db)
	excelService := excel.NewService()

	// Middleware with services
	bearerTokenMiddleware := middleware.NewBearerTokenMiddleware(authService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	machineHandler := handlers.NewMachineHandler(machineService, excelService)
	userHandler := handlers.NewUserHandler(userService)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
				"time":   time.Now().Format(time.RFC3339),
			})
		})

		// Auth routes (public)
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(bearerTokenMiddleware.BearerTokenAuthMiddleware())
		{
			protected.POST("/auth/change-password", authHandler.ChangePassword)

			machines := protected.Group("/machines")
			{
				machines.GET("", machineHandler.GetAllMachines)
				machines.GET("/export", machineHandler.ExportMachines)
				machines.GET("/by-name/:name", machineHandler.GetMachineByName)
				machines.GET("/by-status/:status", machineHandler.GetMachinesByStatus)
				machines.GET("/by-location", machineHandler.GetMachinesByLocation)
				machines.GET("/:id", machineHandler.GetMachineByID)
				machines.POST("", machineHandler.CreateMachine)
				machines.PUT("/:id", machineHandler.UpdateMachine)
				machines.PATCH("/:id", machineHandler.UpdateMachine)
				machines.DELETE("/:id", machineHandler.DeleteMachine)
			}

			// Admin-only user management
			users := protected.Group("/users")
			users.Use(middleware.RequireAdmin())
			{
				users.GET("", userHandler.GetAllUsers)
				users.GET("/:id", userHandler.GetUser)
				users.POST("", userHandler.CreateUser)
				users.PUT("/:id", userHandler.UpdateUser)
				users.DELETE("/:id", userHandler.DeleteUser)
			}
		}
	}

	return r
}
