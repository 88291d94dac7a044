package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/brewhollow/shop-backend/internal/tokenstore"
)

// Start schedules the daily sweep that drops expired token records. Safe to
// run alongside request traffic; no live token can reference an expired row.
func Start(store *tokenstore.Store, l *slog.Logger) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)

	s.Every(1).Day().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		pruned, err := store.Prune(ctx)
		if err != nil {
			l.Error("token_prune_failed", "error", err)
			return
		}
		l.Info("token_prune_complete", "pruned", pruned)
	})

	s.StartAsync()
	return s
}
