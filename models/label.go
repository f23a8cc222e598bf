package models

import (
	"context"

	"gorm.io/gorm"
)

// Label is one machine generated label of an asset. Rows for an asset are
// written once, as a batch; their presence means the asset was analyzed.
type Label struct {
	AssetID    uint64 `gorm:"column:assetid;not null;index:idx_labels_asset" json:"-"`
	Name       string `gorm:"column:labelname;type:varchar(128);not null;index:idx_labels_name" json:"name"`
	Confidence int    `gorm:"column:confidencelevel;not null" json:"confidence"` // Percentage, [0, 100]
}

// LabelMatch is an asset found by label search.
type LabelMatch struct {
	AssetID    uint64 `gorm:"column:assetid" json:"asset_id"`
	Confidence int    `gorm:"column:confidencelevel" json:"confidence"`
}

// LabelsForAsset returns the stored labels sorted by name.
func LabelsForAsset(ctx context.Context, db *gorm.DB, assetID uint64) ([]Label, error) {
	labels := []Label{}
	err := db.WithContext(ctx).
		Where("assetid = ?", assetID).
		Order("labelname ASC").
		Find(&labels).Error
	return labels, err
}

// LabelSearch returns every asset carrying the given label name.
func LabelSearch(ctx context.Context, db *gorm.DB, name string) ([]LabelMatch, error) {
	matches := []LabelMatch{}
	err := db.WithContext(ctx).
		Model(&Label{}).
		Select("assetid, confidencelevel").
		Where("labelname = ?", name).
		Order("assetid ASC").
		Scan(&matches).Error
	return matches, err
}
