package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"birthday-backend/config"
	"birthday-backend/models"
	"birthday-backend/routes"
	"birthday-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Contact{},
		&models.Settings{},
		&models.MessageLog{},
	)
}

func main() {
	// All scheduling and "today" decisions use Indian Standard Time,
	// regardless of the host timezone.
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		log.Printf("Failed to load Asia/Kolkata timezone data: %v; using fixed IST offset", err)
		loc = time.FixedZone("IST", 5*3600+30*60)
	}

	store := services.NewDBStore(config.DB)
	scheduler := services.NewBirthdayScheduler(store, services.NewWhatsAppService, loc)

	// Arm the daily check at boot; the API can reschedule or stop it later.
	hour := envInt("DAILY_CHECK_HOUR", 9)
	minute := envInt("DAILY_CHECK_MINUTE", 0)
	if ok, message := scheduler.StartDailyCheck(hour, minute); !ok {
		log.Printf("Scheduler auto-start failed: %s", message)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter(scheduler)
	printRoutes(r)
	r.Run(":" + port)
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
