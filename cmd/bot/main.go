package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fidelbot/internal/bootstrap"
	"fidelbot/internal/buildinfo"
	"fidelbot/internal/config"
	"fidelbot/internal/logger"
)

const defaultConfigPath = "config.yaml"

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}

	log.Printf("fidelbot %s (%s) loading config: %s", buildinfo.Version, buildinfo.Commit, cfgPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := bootstrap.Run(ctx, cfg); err != nil {
		log.Fatalf("bot terminated: %v", err)
	}
}
