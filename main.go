package main

import (
	"os"

	"github.com/deploymenttheory/go-interactor/cmd"
	"github.com/deploymenttheory/go-interactor/internal/logger"
)

func main() {
	err := cmd.Execute()

	// Ensure logs are flushed before exit
	logger.Sync()

	if err != nil {
		os.Exit(1)
	}
}
