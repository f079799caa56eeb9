// Command enciclo is the command-line console of the enciclo backend.
//
// Usage:
//
//	enciclo login -u ana
//	enciclo users --rows 50 --sort user:desc --filter email:endsWith=@enciclo.es
//	enciclo stats sessions -i
//	enciclo watch
//	enciclo repo upload 'docs/**/*.pdf'
//	enciclo chat "¿Qué es la enciclopedia?"
//
// Configuration is read from the per-user config.yaml (see --config) with
// API_BASE_URL, API_USERNAME, API_SECRET and the other environment
// overrides applied on top.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "enciclo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd(&app{}).ExecuteContext(ctx)
}
