package annotation

import (
	"context"
	"fmt"
	"math"

	"gorm.io/gorm"

	"photoapp/failure"
	"photoapp/models"
)

// Ingestor writes the labels of one asset.
type Ingestor struct {
	db *gorm.DB
}

func NewIngestor(db *gorm.DB) *Ingestor {
	return &Ingestor{db: db}
}

// Truncate turns a service confidence into the stored percentage. It floors:
// 91.99 is stored as 91.
func Truncate(confidence float64) int {
	return int(math.Floor(confidence))
}

// Persist stores all labels of assetID as a single multi-row INSERT inside a
// transaction, so either every row is written or none is. Confidence range
// is not re-checked.
func (i *Ingestor) Persist(ctx context.Context, assetID uint64, labels []models.Label) (int64, error) {
	if len(labels) == 0 {
		return 0, nil
	}
	rows := make([]models.Label, len(labels))
	for n, l := range labels {
		if l.Name == "" {
			return 0, failure.Validation.New("label %d of asset %d has no name", n, assetID)
		}
		rows[n] = models.Label{AssetID: assetID, Name: l.Name, Confidence: l.Confidence}
	}

	var written int64
	err := i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Create(&rows)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(rows)) {
			return fmt.Errorf("wrote %d of %d labels", result.RowsAffected, len(rows))
		}
		written = result.RowsAffected
		return nil
	})
	return written, err
}
