// Command catalog serves GET /catalog/{userId}, composing the rating and info
// services.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	app "github.com/okian/marquee/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, app.NewCatalog); err != nil {
		// The logger may not be configured yet.
		_, _ = os.Stderr.WriteString("catalog: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
