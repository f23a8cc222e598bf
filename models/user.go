package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"photoapp/failure"
)

type User struct {
	UserID       uint64 `gorm:"column:userid;primaryKey" json:"userid"`
	Email        string `gorm:"type:varchar(128);not null;uniqueIndex:uniq_email" json:"email"`
	LastName     string `gorm:"column:lastname;type:varchar(64)" json:"lastname"`
	FirstName    string `gorm:"column:firstname;type:varchar(64)" json:"firstname"`
	BucketFolder string `gorm:"column:bucketfolder;type:varchar(48)" json:"bucketfolder"` // Storage prefix for all of the user's assets
}

func UserList(ctx context.Context, db *gorm.DB) ([]User, error) {
	users := []User{}
	err := db.WithContext(ctx).Order("userid").Find(&users).Error
	return users, err
}

func UserByID(ctx context.Context, db *gorm.DB, id uint64) (u User, err error) {
	err = db.WithContext(ctx).Take(&u, "userid = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return u, failure.NotFound.New("user %d", id)
	}
	return u, err
}

func UserCount(ctx context.Context, db *gorm.DB) (count int64, err error) {
	err = db.WithContext(ctx).Model(&User{}).Count(&count).Error
	return count, err
}

// UserUpsert inserts u, or updates the names and bucket folder of the user
// with the same email. The write itself is a single INSERT .. ON CONFLICT so
// two concurrent calls can never create two rows for one email. inserted is
// decided by a read in the same transaction and may be wrong under a race
// between two first-time writers; the stored row and returned id are not.
func UserUpsert(ctx context.Context, db *gorm.DB, u *User) (inserted bool, err error) {
	if u.Email == "" {
		return false, failure.Validation.New("email is required")
	}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&User{}).Where("email = ?", u.Email).Count(&existing).Error; err != nil {
			return err
		}
		inserted = existing == 0

		row := User{
			Email:        u.Email,
			LastName:     u.LastName,
			FirstName:    u.FirstName,
			BucketFolder: u.BucketFolder,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"lastname", "firstname", "bucketfolder"}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		// LastInsertId is not reliable after the update branch, read it back
		stored := User{}
		if err = tx.Take(&stored, "email = ?", u.Email).Error; err != nil {
			return err
		}
		*u = stored
		return nil
	})
	return inserted, err
}
