package main

import (
	"github.com/sahilchouksey/campus-events/app"
	"github.com/sahilchouksey/campus-events/utils/logger"
)

func main() {
	// setup and run app
	if err := app.SetupAndRunServer(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
