package catalog

import (
	"context"

	"golang.org/x/sync/errgroup"

	"photoapp/failure"
	"photoapp/models"
)

type Stats struct {
	BucketStatus string
	Users        int64
	Assets       int64
}

// Stats checks the bucket and counts users and assets, concurrently.
func (c *Catalog) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		headCtx, cancel := c.withTimeout(gctx)
		defer cancel()
		if err := c.store.Head(headCtx); err != nil {
			return failure.Upstream.Wrap(err)
		}
		stats.BucketStatus = "success"
		return nil
	})
	g.Go(func() (err error) {
		stats.Users, err = models.UserCount(gctx, c.db)
		return err
	})
	g.Go(func() (err error) {
		stats.Assets, err = models.AssetCount(gctx, c.db)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return stats, nil
}
