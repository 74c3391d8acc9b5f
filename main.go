package main

import (
	"github.com/movefit/streakd/config"
	"github.com/movefit/streakd/models"
	"github.com/movefit/streakd/routes"
	"github.com/movefit/streakd/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	// Streak tables plus local copies of the collaborator-owned tables the
	// engine reads (activity log, subscriptions) for self-contained deploys.
	db := config.InitDatabase(
		&models.UserStreak{},
		&models.StreakMilestone{},
		&models.MilestoneProgress{},
		&models.CoinTransaction{},
		&models.StreakActivityLog{},
		&models.UserSubscription{},
	)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
