package vision

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/rekognition"
	"github.com/aws/aws-sdk-go/service/rekognition/rekognitioniface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRekognition struct {
	rekognitioniface.RekognitionAPI
	input  *rekognition.DetectLabelsInput
	output *rekognition.DetectLabelsOutput
	err    error
}

func (f *fakeRekognition) DetectLabelsWithContext(_ aws.Context, in *rekognition.DetectLabelsInput, _ ...request.Option) (*rekognition.DetectLabelsOutput, error) {
	f.input = in
	return f.output, f.err
}

func TestDetectLabels(t *testing.T) {
	client := &fakeRekognition{output: &rekognition.DetectLabelsOutput{
		Labels: []*rekognition.Label{
			{Name: aws.String("Rodent"), Confidence: aws.Float64(91.99)},
			{Name: aws.String("Animal"), Confidence: aws.Float64(99.5)},
		},
	}}
	r := NewRekognitionWithClient(client)

	labels, err := r.DetectLabels(context.Background(), Image{Bucket: "photoapp", Key: "u/degu.jpg"}, 100, 80)
	require.NoError(t, err)
	assert.Equal(t, []Label{{"Rodent", 91.99}, {"Animal", 99.5}}, labels)

	assert.Equal(t, "photoapp", aws.StringValue(client.input.Image.S3Object.Bucket))
	assert.Equal(t, "u/degu.jpg", aws.StringValue(client.input.Image.S3Object.Name))
	assert.Equal(t, int64(100), aws.Int64Value(client.input.MaxLabels))
	assert.Equal(t, 80.0, aws.Float64Value(client.input.MinConfidence))
	assert.Nil(t, client.input.Image.Bytes)
}

func TestDetectLabelsFromBytes(t *testing.T) {
	client := &fakeRekognition{output: &rekognition.DetectLabelsOutput{
		Labels: []*rekognition.Label{{Name: aws.String("Dog"), Confidence: aws.Float64(88.5)}},
	}}
	r := NewRekognitionWithClient(client)

	body := []byte("\xff\xd8\xff\xe0")
	labels, err := r.DetectLabels(context.Background(), Image{Bucket: "disk", Key: "u/dog.jpg", Bytes: body}, 100, 80)
	require.NoError(t, err)
	assert.Equal(t, []Label{{"Dog", 88.5}}, labels)
	assert.Equal(t, body, client.input.Image.Bytes)
	assert.Nil(t, client.input.Image.S3Object)
}

func TestDetectLabelsEmptyAndError(t *testing.T) {
	client := &fakeRekognition{output: &rekognition.DetectLabelsOutput{}}
	r := NewRekognitionWithClient(client)

	labels, err := r.DetectLabels(context.Background(), Image{Bucket: "b", Key: "k"}, 100, 80)
	require.NoError(t, err)
	assert.Empty(t, labels)

	client.err = errors.New("throttled")
	_, err = r.DetectLabels(context.Background(), Image{Bucket: "b", Key: "k"}, 100, 80)
	assert.EqualError(t, err, "throttled")
}
