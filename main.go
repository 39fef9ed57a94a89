package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spuzmc/spuz-get/cmd"
	"github.com/spuzmc/spuz-get/pkg/logging"
)

func main() {
	logging.SetupLogger()
	rootCMD := cmd.GetRootCommand()

	// cancelling the command context cancels the running job
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCMD.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
