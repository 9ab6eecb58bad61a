package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// offlineAnnotation marks commands that run without a server connection.
const offlineAnnotation = "jx.offline"

// NeedsService reports whether c talks to the contents server.
func NeedsService(c *cobra.Command) bool {
	for ; c != nil; c = c.Parent() {
		if c.Annotations[offlineAnnotation] == "true" {
			return false
		}
	}
	return true
}

func offline() map[string]string {
	return map[string]string{offlineAnnotation: "true"}
}

// commandContext is cancelled on interrupt.
func commandContext(c *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}
