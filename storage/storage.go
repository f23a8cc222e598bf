package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photoapp/config"
)

type StorageType uint8

const (
	StorageTypeFile StorageType = 0
	StorageTypeS3   StorageType = 1
)

// ErrNotExist is returned by Get when the key is not in the bucket.
var ErrNotExist = errors.New("object does not exist")

// Object describes one stored object. Field names follow the S3 listing so
// clients can keep reading Key, LastModified and Size.
type Object struct {
	Key          string    `json:"Key"`
	LastModified time.Time `json:"LastModified"`
	ETag         string    `json:"ETag"`
	Size         int64     `json:"Size"`
	StorageClass string    `json:"StorageClass"`
}

// ListOptions selects one page of a listing. Keys are returned in ascending
// order, starting strictly after StartAfter.
type ListOptions struct {
	Prefix     string
	StartAfter string
	MaxKeys    int64
}

// ObjectStore is the part of a bucket the server uses.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, opts ListOptions) ([]Object, error)
	// Head checks that the bucket exists and is reachable
	Head(ctx context.Context) error
	Bucket() string
}

// Bucket describes where objects live: an S3 bucket or a directory on disk.
type Bucket struct {
	Name        string
	StorageType StorageType
	Path        string // Path on a drive
	Region      string
	Endpoint    string
	S3Key       string
	S3Secret    string
}

func (b *Bucket) IsS3() bool {
	return b.StorageType == StorageTypeS3
}

// BucketFrom picks S3 when a bucket name is configured, the disk otherwise.
func BucketFrom(cfg *config.Config) Bucket {
	if cfg.S3Bucket != "" {
		return Bucket{
			Name:        cfg.S3Bucket,
			StorageType: StorageTypeS3,
			Region:      cfg.S3Region,
			Endpoint:    cfg.S3Endpoint,
			S3Key:       cfg.S3Key,
			S3Secret:    cfg.S3Secret,
		}
	}
	return Bucket{
		Name:        "disk",
		StorageType: StorageTypeFile,
		Path:        cfg.DiskPath,
	}
}

// New returns the ObjectStore for bucket.
func New(bucket Bucket) (ObjectStore, error) {
	switch bucket.StorageType {
	case StorageTypeFile:
		return NewDiskStorage(bucket)
	case StorageTypeS3:
		return NewS3Storage(bucket)
	}
	return nil, fmt.Errorf("storage type unavailable for bucket %q", bucket.Name)
}
