package log

import "go.uber.org/zap"

var (
	SourceDB     = zap.String("source", "db")
	SourceS3     = zap.String("source", "s3")
	SourceDisk   = zap.String("source", "disk")
	SourceVision = zap.String("source", "rekognition")

	// KindConsistency marks a database row whose object is gone from the store
	KindConsistency = zap.String("kind", "consistency_violation")
	KindUpstream    = zap.String("kind", "upstream_failure")
)
