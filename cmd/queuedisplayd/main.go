// Command queuedisplayd runs the queue display daemon in the foreground
// using the default configuration search path. It is intended for service
// managers that supervise the process directly instead of going through
// `queuedisplay start`.
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"

	"queuedisplay/internal/config"
	"queuedisplay/internal/daemonrun"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}

	cfg, _, _, err := config.Load(os.Getenv("QUEUEDISPLAY_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: cfg.Logging.Level}); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Fatalf("daemon: %v", err)
		}
	}
}
