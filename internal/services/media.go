package services

import (
	"context"
	"log/slog"
)

// LogMediaStore records purge requests in the log. The image bucket sweeps
// unreferenced objects on its own lifecycle.
type LogMediaStore struct{}

func (LogMediaStore) Purge(_ context.Context, urls []string) error {
	if len(urls) > 0 {
		slog.Info("media purge requested", "action", "media_purge", "count", len(urls), "urls", urls)
	}
	return nil
}
