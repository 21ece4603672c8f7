package main

import (
	"log"

	"github.com/examsutra/ExamSutra/config"
	"github.com/examsutra/ExamSutra/routes"
	"github.com/examsutra/ExamSutra/utils"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}

	// Initialize database
	config.InitDB()

	// Start the background sweeper for stale orders and lapsed purchases
	sweeper := utils.NewSweeper(config.DB, cfg.SweepInterval, cfg.OrderGraceWindow)
	sweeper.Start()
	defer sweeper.Stop()

	// Set up router
	router := routes.SetupRouter()

	utils.LogInfo("Server starting on port %s", cfg.Port)
	// Start server
	if err := router.Run(":" + cfg.Port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
