package models

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"photoapp/failure"
)

type Asset struct {
	AssetID   uint64 `gorm:"column:assetid;primaryKey" json:"assetid"`
	UserID    uint64 `gorm:"column:userid;not null;index" json:"userid"`
	AssetName string `gorm:"column:assetname;type:varchar(128)" json:"assetname"` // As uploaded, never used as a path
	// BucketKey is assigned once at upload and never changes
	BucketKey string `gorm:"column:bucketkey;type:varchar(255);not null;uniqueIndex:uniq_bucketkey" json:"bucketkey"`
}

func AssetList(ctx context.Context, db *gorm.DB) ([]Asset, error) {
	assets := []Asset{}
	err := db.WithContext(ctx).Order("assetid").Find(&assets).Error
	return assets, err
}

func AssetByID(ctx context.Context, db *gorm.DB, id uint64) (a Asset, err error) {
	err = db.WithContext(ctx).Take(&a, "assetid = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return a, failure.NotFound.New("asset %d", id)
	}
	return a, err
}

func AssetCreate(ctx context.Context, db *gorm.DB, a *Asset) error {
	return db.WithContext(ctx).Create(a).Error
}

func AssetCount(ctx context.Context, db *gorm.DB) (count int64, err error) {
	err = db.WithContext(ctx).Model(&Asset{}).Count(&count).Error
	return count, err
}
