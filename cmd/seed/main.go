package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sahilchouksey/campus-events/config"
	"github.com/sahilchouksey/campus-events/database"
	"github.com/sahilchouksey/campus-events/utils/logger"
)

func main() {
	if err := config.LoadENV(); err != nil {
		logger.Warn().Err(err).Msg(".env could not be loaded, using process environment")
	}

	env, err := config.Get()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Init(logger.Config{Level: env.LOG_LEVEL, Format: "console"})

	store, err := database.StartGORM(env)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	separator := strings.Repeat("=", 60)
	fmt.Println(separator)
	fmt.Println("Campus Events - Database Seeding")
	fmt.Println(separator)

	if err := database.RunSeeds(store.GetDB()); err != nil {
		logger.Error().Err(err).Msg("seeding failed")
		os.Exit(1)
	}

	fmt.Println(separator)
	fmt.Println("Admin user is created from ADMIN_EMAIL and ADMIN_PASSWORD when set.")
}
