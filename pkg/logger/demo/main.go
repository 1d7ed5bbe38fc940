package main

import (
	"log/slog"

	"github.com/zeus1292/investorlens/pkg/logger"
)

func main() {
	// Create a colored logger
	log := logger.NewDefaultLogger(slog.LevelDebug)

	log.Info("============================================")
	log.Info("    InvestorLens Colored Logger Demo")
	log.Info("============================================")
	log.Info("")

	log.Debug("Debug message - standard color")
	log.Info("Info message - standard color")
	log.Info("Snapshot saved to cache - green!")
	log.Info("Directory snapshot loaded - also green!")
	log.Warn("Warning message - yellow!")
	log.Error("Error message - red!")

	log.Info("")
	log.Info("Data lifecycle events are highlighted in green:")
	log.Info("Persisting company directory", "companies", 48)
	log.Info("Snapshot restored", "duration", "12ms")

	log.Info("")
	log.Warn("Warnings appear in yellow for attention")
	log.Error("Errors appear in red for immediate visibility")

	log.Info("")
	log.Info("Demo complete!")
}
