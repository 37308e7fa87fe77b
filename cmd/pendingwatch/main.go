// Command pendingwatch polls the pending-survey notifications of one company
// and logs when new surveys become available.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bolsatrabajo/api/internal/config"
	"github.com/bolsatrabajo/api/internal/survey/watch"
)

func main() {
	cfg := config.LoadWatch()

	poller := watch.NewPoller(watch.Config{
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		BaseURL:    cfg.BaseURL,
		Token:      cfg.Token,
		CompanyID:  cfg.CompanyID,
		Logger:     cfg.Log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// seed the tracker so the first scheduled poll only reports new surveys
	poller.Run(ctx)
	if total, at, ok := poller.Last(); ok {
		cfg.Log.Printf("pending surveys at start: %d (as of %s)", total, at.Format(time.RFC3339))
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(cfg.Schedule, func() { poller.Run(ctx) }); err != nil {
		cfg.Log.Fatalf("invalid schedule %q: %v", cfg.Schedule, err)
	}
	c.Start()
	cfg.Log.Printf("polling %s every %q", cfg.BaseURL, cfg.Schedule)

	<-ctx.Done()
	<-c.Stop().Done()
	if total, at, ok := poller.Last(); ok {
		cfg.Log.Printf("stopped; last pending total %d seen at %s", total, at.Format(time.RFC3339))
		return
	}
	cfg.Log.Printf("stopped")
}
