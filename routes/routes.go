package routes

import (
	"birthday-backend/config"
	"birthday-backend/controllers"
	"birthday-backend/services"
	"birthday-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(scheduler *services.BirthdayScheduler) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	// Health & root endpoints for platform checks
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "service": "birthday-backend"})
	})
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	schedulerController := controllers.SchedulerController{Scheduler: scheduler}
	reportController := controllers.ReportController{}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Contact routes
		contacts := api.Group("/contacts")
		{
			contacts.POST("", controllers.CreateContact)
			contacts.GET("", controllers.GetContacts)
			contacts.GET("/:id", controllers.GetContact)
			contacts.PUT("/:id", controllers.UpdateContact)
			contacts.DELETE("/:id", controllers.DeleteContact)
		}

		// Settings routes
		api.GET("/settings", controllers.GetSettings)
		api.POST("/settings", controllers.UpdateSettings)

		// Birthday routes
		birthdays := api.Group("/birthdays")
		{
			birthdays.GET("/today", schedulerController.TodaysBirthdays)
			birthdays.GET("/upcoming", schedulerController.UpcomingBirthdays)
		}

		// WhatsApp routes
		whatsapp := api.Group("/whatsapp")
		{
			whatsapp.POST("/send-birthday-messages", schedulerController.SendBirthdayMessages)
			whatsapp.POST("/send-test", controllers.SendTestMessage)
			whatsapp.POST("/send-individual", controllers.SendIndividualMessage)
			whatsapp.GET("/status", controllers.GetWhatsAppStatus)
		}

		// Scheduler routes
		scheduler := api.Group("/scheduler")
		{
			scheduler.POST("/start", schedulerController.Start)
			scheduler.POST("/stop", schedulerController.Stop)
			scheduler.GET("/status", schedulerController.Status)
			scheduler.POST("/start-interval", schedulerController.StartInterval)
			scheduler.POST("/stop-interval", schedulerController.StopInterval)
			scheduler.POST("/start-interval-until", schedulerController.StartIntervalUntil)
			scheduler.POST("/run-now", schedulerController.RunNow)
			scheduler.GET("/preview", schedulerController.Preview)
		}

		// Dashboard and reports
		api.GET("/dashboard", schedulerController.Dashboard)
		api.GET("/reports", reportController.GetDeliveryReport)
	}

	return r
}
