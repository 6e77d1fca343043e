package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Praveen2412/pastekeeper/internal/app"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pasteKeeper, err := app.New()
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	if err := pasteKeeper.Run(ctx); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
