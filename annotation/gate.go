package annotation

import (
	"context"

	"gorm.io/gorm"

	"photoapp/models"
)

// Gate decides whether an asset still needs analysis. Any stored label row
// means it does not.
type Gate struct {
	db *gorm.DB
}

func NewGate(db *gorm.DB) *Gate {
	return &Gate{db: db}
}

// Check returns StateUnknownAsset with a failure.NotFound error, StateAnalyzed
// with the stored labels sorted by name, or StateNotAnalyzed.
func (g *Gate) Check(ctx context.Context, assetID uint64) (Result, error) {
	asset, err := models.AssetByID(ctx, g.db, assetID)
	if err != nil {
		return Result{State: StateUnknownAsset}, err
	}
	labels, err := models.LabelsForAsset(ctx, g.db, assetID)
	if err != nil {
		return Result{State: StateNotAnalyzed, Asset: asset}, err
	}
	if len(labels) > 0 {
		return Result{State: StateAnalyzed, Asset: asset, Labels: labels}, nil
	}
	return Result{State: StateNotAnalyzed, Asset: asset, Labels: []models.Label{}}, nil
}
