package main

import (
	"github.com/civicpulse/civicpulse/config"
	"github.com/civicpulse/civicpulse/models"
	"github.com/civicpulse/civicpulse/routes"
	"github.com/civicpulse/civicpulse/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.Complaint{}, &models.DailyTraffic{})

	// Missing Cloudinary credentials are tolerated; photo submissions are
	// rejected until they are configured.
	if err := utils.InitUploader(cfg); err != nil {
		utils.Sugar.Warnf("image uploader not available: %v", err)
	}

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
