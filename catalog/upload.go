package catalog

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"photoapp/failure"
	"photoapp/log"
	"photoapp/models"
	"photoapp/storage"
)

// Upload stores a base64 encoded image for userID and records it as a new
// asset. The asset row is written only after the object is in the store.
func (c *Catalog) Upload(ctx context.Context, userID uint64, assetName, data string) (models.Asset, error) {
	if assetName == "" {
		return models.Asset{}, failure.Validation.New("assetname is required")
	}
	if data == "" {
		return models.Asset{}, failure.Validation.New("data is required")
	}
	user, err := models.UserByID(ctx, c.db, userID)
	if err != nil {
		return models.Asset{}, err
	}
	if strings.Trim(user.BucketFolder, "/") == "" {
		return models.Asset{}, failure.Validation.New("user %d has no bucket folder", userID)
	}
	body, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return models.Asset{}, failure.Validation.New("data is not valid base64: %v", err)
	}
	contentType := mimetype.Detect(body).String()
	if !strings.HasPrefix(contentType, "image/") {
		return models.Asset{}, failure.Validation.New("data is not an image (%s)", contentType)
	}

	key, err := storage.NewKey(user.BucketFolder, contentType)
	if err != nil {
		return models.Asset{}, err
	}
	putCtx, cancel := c.withTimeout(ctx)
	defer cancel()
	if err = c.store.Put(putCtx, key, body, contentType); err != nil {
		c.logger.Error("upload failed", log.KindUpstream, zap.String("key", key), zap.Error(err))
		return models.Asset{}, failure.Upstream.Wrap(err)
	}

	asset := models.Asset{
		UserID:    user.UserID,
		AssetName: assetName,
		BucketKey: key,
	}
	if err = models.AssetCreate(ctx, c.db, &asset); err != nil {
		// The object stays behind without a row
		c.logger.Error("asset insert failed", log.SourceDB, zap.String("key", key), zap.Error(err))
		return models.Asset{}, err
	}
	c.logger.Info("asset uploaded",
		zap.Uint64("asset", asset.AssetID),
		zap.Uint64("user", user.UserID),
		zap.String("key", key),
		zap.Int("size", len(body)))
	return asset, nil
}
