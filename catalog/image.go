package catalog

import (
	"context"
	"encoding/base64"
	"errors"

	"go.uber.org/zap"

	"photoapp/failure"
	"photoapp/log"
	"photoapp/models"
	"photoapp/storage"
)

type Image struct {
	Asset models.Asset
	Data  string // base64
}

// Image fetches the bytes of assetID. A row whose object cannot be found is
// reported as failure.Consistency, other store errors as failure.Upstream.
func (c *Catalog) Image(ctx context.Context, assetID uint64) (Image, error) {
	asset, err := models.AssetByID(ctx, c.db, assetID)
	if err != nil {
		return Image{}, err
	}

	getCtx, cancel := c.withTimeout(ctx)
	defer cancel()
	body, err := c.store.Get(getCtx, asset.BucketKey)
	if errors.Is(err, storage.ErrNotExist) {
		c.logger.Error("asset object missing", log.KindConsistency,
			zap.Uint64("asset", assetID), zap.String("key", asset.BucketKey))
		return Image{Asset: asset}, failure.Consistency.Wrap(err)
	}
	if err != nil {
		c.logger.Error("asset download failed", log.KindUpstream,
			zap.Uint64("asset", assetID), zap.String("key", asset.BucketKey), zap.Error(err))
		return Image{Asset: asset}, failure.Upstream.Wrap(err)
	}
	return Image{Asset: asset, Data: base64.StdEncoding.EncodeToString(body)}, nil
}
