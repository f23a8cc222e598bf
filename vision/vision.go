// Package vision asks an image analysis service for content labels.
package vision

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/rekognition"
	"github.com/aws/aws-sdk-go/service/rekognition/rekognitioniface"
)

// Label as returned by the service, confidence is a percentage.
type Label struct {
	Name       string
	Confidence float64
}

// Image is either an object in an S3 bucket or the image bytes themselves.
// Bytes win when both are set.
type Image struct {
	Bucket string
	Key    string
	Bytes  []byte
}

// Detector finds labels in an image.
type Detector interface {
	DetectLabels(ctx context.Context, image Image, maxLabels int64, minConfidence float64) ([]Label, error)
}

type Rekognition struct {
	client rekognitioniface.RekognitionAPI
}

func NewRekognition(sess *session.Session, region string) *Rekognition {
	return NewRekognitionWithClient(rekognition.New(sess, aws.NewConfig().WithRegion(region)))
}

func NewRekognitionWithClient(client rekognitioniface.RekognitionAPI) *Rekognition {
	return &Rekognition{client: client}
}

// DetectLabels returns the labels in service order.
func (r *Rekognition) DetectLabels(ctx context.Context, image Image, maxLabels int64, minConfidence float64) ([]Label, error) {
	input := &rekognition.Image{}
	if len(image.Bytes) > 0 {
		input.Bytes = image.Bytes
	} else {
		input.S3Object = &rekognition.S3Object{
			Bucket: aws.String(image.Bucket),
			Name:   aws.String(image.Key),
		}
	}
	resp, err := r.client.DetectLabelsWithContext(ctx, &rekognition.DetectLabelsInput{
		Image:         input,
		MaxLabels:     aws.Int64(maxLabels),
		MinConfidence: aws.Float64(minConfidence),
	})
	if err != nil {
		return nil, err
	}
	labels := make([]Label, 0, len(resp.Labels))
	for _, l := range resp.Labels {
		labels = append(labels, Label{
			Name:       aws.StringValue(l.Name),
			Confidence: aws.Float64Value(l.Confidence),
		})
	}
	return labels, nil
}
