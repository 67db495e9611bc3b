// File: cmd/cosctl/main.go
package main

import (
	"os"

	"cosctl/internal/logger"

	// Provider implementations register themselves in their init() functions
	_ "cosctl/internal/provider"
)

func main() {
	log := logger.NewLogger()

	app, err := newApp(log)
	if err != nil {
		log.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	os.Exit(Execute(app))
}
