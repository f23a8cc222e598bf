package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type S3Storage struct {
	bucket   Bucket
	s3Client s3iface.S3API
	uploader *s3manager.Uploader
}

// NewSession creates an AWS session for region. Static credentials are used
// when key is set, the default credential chain otherwise.
func NewSession(region, key, secret string) (*session.Session, error) {
	awsConfig := aws.NewConfig().WithRegion(region)
	if key != "" {
		awsConfig = awsConfig.WithCredentials(credentials.NewStaticCredentials(key, secret, ""))
	}
	return session.NewSession(awsConfig)
}

func NewS3Storage(bucket Bucket) (*S3Storage, error) {
	sess, err := NewSession(bucket.Region, bucket.S3Key, bucket.S3Secret)
	if err != nil {
		return nil, err
	}
	override := aws.NewConfig()
	if bucket.Endpoint != "" {
		override = override.WithEndpoint(bucket.Endpoint).WithS3ForcePathStyle(true)
	}
	return NewS3StorageWithClient(bucket, s3.New(sess, override)), nil
}

func NewS3StorageWithClient(bucket Bucket, client s3iface.S3API) *S3Storage {
	return &S3Storage{
		bucket:   bucket,
		s3Client: client,
		uploader: s3manager.NewUploaderWithClient(client),
	}
}

func (s *S3Storage) Bucket() string {
	return s.bucket.Name
}

func (s *S3Storage) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket.Name),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        bytes.NewReader(body),
	})
	return err
}

func (s *S3Storage) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket.Name),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && (aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound") {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, key)
		}
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// List asks S3 for one page. Ordering and the exclusive StartAfter bound are
// S3's own; nothing is re-sorted here.
func (s *S3Storage) List(ctx context.Context, opts ListOptions) ([]Object, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket.Name),
		MaxKeys: aws.Int64(opts.MaxKeys),
	}
	if opts.Prefix != "" {
		input.Prefix = aws.String(opts.Prefix)
	}
	if opts.StartAfter != "" {
		input.StartAfter = aws.String(opts.StartAfter)
	}
	resp, err := s.s3Client.ListObjectsV2WithContext(ctx, input)
	if err != nil {
		return nil, err
	}
	result := []Object{}
	if aws.Int64Value(resp.KeyCount) == 0 {
		return result, nil
	}
	for _, o := range resp.Contents {
		result = append(result, Object{
			Key:          aws.StringValue(o.Key),
			LastModified: aws.TimeValue(o.LastModified),
			ETag:         aws.StringValue(o.ETag),
			Size:         aws.Int64Value(o.Size),
			StorageClass: aws.StringValue(o.StorageClass),
		})
	}
	return result, nil
}

func (s *S3Storage) Head(ctx context.Context) error {
	_, err := s.s3Client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket.Name),
	})
	return err
}
