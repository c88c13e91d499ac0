package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"sdg-dashboard/config"
	"sdg-dashboard/services"
	"sdg-dashboard/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd(cfg, logger)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("%v", err)
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode maps failures to process exit codes: 2 for a bad selection,
// 1 for everything else, including unreadable data sources.
func exitCode(err error) int {
	var unknown *services.UnknownKeyError
	if errors.As(err, &unknown) || errors.Is(err, services.ErrNoCountries) {
		return 2
	}
	return 1
}
