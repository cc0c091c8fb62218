// Command rating serves user and movie ratings.
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

	if err := app.Run(ctx, app.NewRating); err != nil {
		// The logger may not be configured yet.
		_, _ = os.Stderr.WriteString("rating: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
