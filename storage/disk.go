package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const diskStorageClass = "STANDARD"

// DiskStorage keeps objects as files under BasePath; the key is the
// slash separated path relative to it.
type DiskStorage struct {
	bucket Bucket
	// BasePath is a directory (usually mount point of a disk) that is writable by the current process
	BasePath string
}

func NewDiskStorage(bucket Bucket) (*DiskStorage, error) {
	if bucket.Path == "" {
		return nil, errors.New("disk storage needs a path")
	}
	if err := os.MkdirAll(bucket.Path, 0777); err != nil {
		return nil, err
	}
	return &DiskStorage{bucket: bucket, BasePath: bucket.Path}, nil
}

func (s *DiskStorage) Bucket() string {
	return s.bucket.Name
}

func (s *DiskStorage) getFullPath(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.BasePath, filepath.FromSlash(key)), nil
}

func (s *DiskStorage) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fileName, err := s.getFullPath(key)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(fileName), 0777); err != nil {
		return err
	}
	// Write then rename so a reader never sees half an object
	tmp := fileName + ".tmp"
	if err = os.WriteFile(tmp, body, 0666); err != nil {
		return err
	}
	return os.Rename(tmp, fileName)
}

func (s *DiskStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fileName, err := s.getFullPath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fileName)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, key)
	}
	return data, err
}

func (s *DiskStorage) List(ctx context.Context, opts ListOptions) ([]Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keys := []string{}
	infos := map[string]fs.FileInfo{}
	err := filepath.WalkDir(s.BasePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, ".tmp") {
			return nil
		}
		rel, err := filepath.Rel(s.BasePath, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, opts.Prefix) || key <= opts.StartAfter {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		keys = append(keys, key)
		infos[key] = info
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	if opts.MaxKeys >= 0 && int64(len(keys)) > opts.MaxKeys {
		keys = keys[:opts.MaxKeys]
	}

	result := []Object{}
	for _, key := range keys {
		etag, err := s.etag(key)
		if err != nil {
			return nil, err
		}
		result = append(result, Object{
			Key:          key,
			LastModified: infos[key].ModTime().UTC(),
			ETag:         etag,
			Size:         infos[key].Size(),
			StorageClass: diskStorageClass,
		})
	}
	return result, nil
}

// etag mimics the S3 ETag of a single part upload: the quoted MD5 of the body.
func (s *DiskStorage) etag(key string) (string, error) {
	fileName, err := s.getFullPath(key)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(fileName)
	if err != nil {
		return "", err
	}
	sum := md5.Sum(data)
	return `"` + hex.EncodeToString(sum[:]) + `"`, nil
}

func (s *DiskStorage) Head(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fi, err := os.Stat(s.BasePath)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", s.BasePath)
	}
	return nil
}
