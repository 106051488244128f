package ingest

import (
	"context"
	"time"

	"annualreports/internal/assets"

	"go.uber.org/zap"
)

// cleanup remembers the assets created during one ingestion attempt so they
// can be deleted when a later step fails.
type cleanup struct {
	store   assets.Store
	logger  *zap.SugaredLogger
	timeout time.Duration
	created []assets.Asset
}

func (c *cleanup) track(asset assets.Asset) {
	c.created = append(c.created, asset)
}

// run deletes every tracked asset that keep does not claim. Deletes use a
// context detached from the request, so a disconnected client doesn't stop
// them. Failures are logged and never returned.
func (c *cleanup) run(ctx context.Context, keep func(ctx context.Context, asset assets.Asset) bool) {
	if len(c.created) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	for _, asset := range c.created {
		if keep != nil && keep(ctx, asset) {
			c.logger.Infow("Keeping asset referenced by a stored report", "asset", asset.ID)
			cleanupDeletesTotal.WithLabelValues("kept").Inc()
			continue
		}

		deleteCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.store.Delete(deleteCtx, asset)
		cancel()

		if err != nil {
			c.logger.Warnw("Failed to delete orphaned asset", "asset", asset.ID, "kind", asset.Kind, "error", err)
			cleanupDeletesTotal.WithLabelValues("failed").Inc()
			continue
		}

		c.logger.Infow("Deleted orphaned asset", "asset", asset.ID)
		cleanupDeletesTotal.WithLabelValues("deleted").Inc()
	}

	c.created = nil
}
