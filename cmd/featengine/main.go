package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mandeep1729/algomatic-state/internal/featengine"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	cfg := featengine.LoadConfig()
	log.Printf("[featengine] mode=%s backend=%s timeframes=%v interval=%dmin",
		cfg.Mode, cfg.StoreBackend, cfg.Timeframes, cfg.IntervalMinutes)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	svc, err := featengine.New(ctx, cfg)
	if err != nil {
		log.Fatalf("[featengine] init failed: %v", err)
	}

	if err := svc.Run(ctx); err != nil {
		log.Fatalf("[featengine] fatal: %v", err)
	}
}
