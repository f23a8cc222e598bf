// Package catalog uploads, retrieves and lists the stored images.
package catalog

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"photoapp/storage"
)

type Options struct {
	PageSize int64
	// StoreTimeout bounds each object store call, zero means no bound
	StoreTimeout time.Duration
}

// Catalog ties asset rows to their objects. It keeps no state between
// calls; everything lives in the database and the object store.
type Catalog struct {
	db     *gorm.DB
	store  storage.ObjectStore
	opts   Options
	logger *zap.Logger
}

func New(db *gorm.DB, store storage.ObjectStore, opts Options, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{db: db, store: store, opts: opts, logger: logger}
}

func (c *Catalog) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.StoreTimeout > 0 {
		return context.WithTimeout(ctx, c.opts.StoreTimeout)
	}
	return context.WithCancel(ctx)
}
