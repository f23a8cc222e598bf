package catalog

import (
	"context"

	"go.uber.org/zap"

	"photoapp/failure"
	"photoapp/log"
	"photoapp/storage"
)

// Page returns at most PageSize objects with keys strictly after cursor, in
// the store's ascending key order. The next cursor is the last key of this
// page; nothing about past pages is kept here, so any server can serve any
// page.
func (c *Catalog) Page(ctx context.Context, prefix, cursor string) ([]storage.Object, error) {
	listCtx, cancel := c.withTimeout(ctx)
	defer cancel()
	objects, err := c.store.List(listCtx, storage.ListOptions{
		Prefix:     prefix,
		StartAfter: cursor,
		MaxKeys:    c.opts.PageSize,
	})
	if err != nil {
		c.logger.Error("bucket listing failed", log.KindUpstream, zap.String("cursor", cursor), zap.Error(err))
		return nil, failure.Upstream.Wrap(err)
	}
	if objects == nil {
		objects = []storage.Object{}
	}
	return objects, nil
}
