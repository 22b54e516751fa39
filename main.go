package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"casino/economy-bot/cmd"

	log "github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.NewRootCommand().ExecuteContext(ctx); err != nil {
		log.WithError(err).Fatal("Application error")
	}
}
