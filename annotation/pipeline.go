package annotation

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"photoapp/failure"
	"photoapp/log"
	"photoapp/models"
	"photoapp/storage"
	"photoapp/vision"
)

type Options struct {
	Bucket        string
	MaxLabels     int64
	MinConfidence float64
	// Timeout bounds the vision call, zero means no bound
	Timeout time.Duration
	// InlineImages sends the image bytes instead of a bucket reference. The
	// vision service can only read S3 buckets itself.
	InlineImages bool
	// StoreTimeout bounds the object store read of an inline image
	StoreTimeout time.Duration
}

// Pipeline runs Gate, the vision service and Ingestor for one asset.
//
// Check and write are not locked: two concurrent requests for an asset that
// was never analyzed can both call the vision service and both insert their
// labels.
type Pipeline struct {
	gate     *Gate
	ingestor *Ingestor
	store    storage.ObjectStore
	detector vision.Detector
	opts     Options
	logger   *zap.Logger
}

func NewPipeline(db *gorm.DB, store storage.ObjectStore, detector vision.Detector, opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		gate:     NewGate(db),
		ingestor: NewIngestor(db),
		store:    store,
		detector: detector,
		opts:     opts,
		logger:   logger,
	}
}

// Annotate returns the labels of assetID, calling the vision service only
// when none are stored yet. Stored labels come back sorted by name, fresh
// ones in the order the service returned them.
func (p *Pipeline) Annotate(ctx context.Context, assetID uint64) (Result, error) {
	result, err := p.gate.Check(ctx, assetID)
	if err != nil || result.State == StateAnalyzed {
		return result, err
	}

	start := time.Now()
	image, err := p.image(ctx, result.Asset)
	if err != nil {
		return result, err
	}
	detected, err := p.detect(ctx, image)
	if err != nil {
		p.logger.Error("label detection failed", log.SourceVision, log.KindUpstream,
			zap.Uint64("asset", assetID), zap.Error(err))
		return result, failure.Upstream.Wrap(err)
	}

	labels := make([]models.Label, 0, len(detected))
	for n, l := range detected {
		if l.Name == "" {
			p.logger.Error("label without name", log.SourceVision, log.KindUpstream,
				zap.Uint64("asset", assetID), zap.Int("index", n))
			return result, failure.Upstream.New("vision service returned label %d of asset %d without a name", n, assetID)
		}
		labels = append(labels, models.Label{
			AssetID:    assetID,
			Name:       l.Name,
			Confidence: Truncate(l.Confidence),
		})
	}
	if len(labels) == 0 {
		result.State = StateAnalysisEmpty
		result.Labels = labels
		p.logger.Info("no labels found", zap.Uint64("asset", assetID))
		return result, nil
	}

	written, err := p.ingestor.Persist(ctx, assetID, labels)
	if err != nil {
		p.logger.Error("storing labels failed", log.SourceDB, zap.Uint64("asset", assetID), zap.Error(err))
		return result, err
	}
	p.logger.Info("asset annotated",
		zap.Uint64("asset", assetID),
		zap.Int64("labels", written),
		zap.Duration("time", time.Since(start)))

	result.State = StateAnalyzed
	result.Labels = labels
	return result, nil
}

// image references the asset in its bucket, or carries its bytes when
// InlineImages is set.
func (p *Pipeline) image(ctx context.Context, asset models.Asset) (vision.Image, error) {
	image := vision.Image{Bucket: p.opts.Bucket, Key: asset.BucketKey}
	if !p.opts.InlineImages {
		return image, nil
	}
	getCtx, cancel := withTimeout(ctx, p.opts.StoreTimeout)
	defer cancel()
	body, err := p.store.Get(getCtx, asset.BucketKey)
	if errors.Is(err, storage.ErrNotExist) {
		p.logger.Error("asset object missing", log.KindConsistency,
			zap.Uint64("asset", asset.AssetID), zap.String("key", asset.BucketKey))
		return image, failure.Consistency.Wrap(err)
	}
	if err != nil {
		p.logger.Error("asset download failed", log.KindUpstream,
			zap.Uint64("asset", asset.AssetID), zap.String("key", asset.BucketKey), zap.Error(err))
		return image, failure.Upstream.Wrap(err)
	}
	image.Bytes = body
	return image, nil
}

func (p *Pipeline) detect(ctx context.Context, image vision.Image) ([]vision.Label, error) {
	detectCtx, cancel := withTimeout(ctx, p.opts.Timeout)
	defer cancel()
	return p.detector.DetectLabels(detectCtx, image, p.opts.MaxLabels, p.opts.MinConfidence)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}
