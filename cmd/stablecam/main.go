// StableCam - stable identity for USB cameras.
//
// Cameras enumerate in whatever order the operating system finds them, so
// "camera 0" today can be "camera 1" tomorrow. StableCam assigns each
// physical camera a durable identifier resolved from its hardware identity
// and keeps that mapping in a registry that survives reboots and replugs.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	Execute(ctx)
}
