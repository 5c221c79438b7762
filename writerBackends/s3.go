package writerbackends

import (
	"context"
	"fmt"
	"io"

	"quranreel/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// UploadToS3WithCreds uploads the video to an S3 object and is fully
// self-contained, initializing its own client. An optional endpoint
// selects an S3-compatible service with path-style addressing.
func UploadToS3WithCreds(ctx context.Context, accessInfo map[string]string, name string, reader io.Reader) (string, error) {
	creds := credentials.NewStaticCredentialsProvider(accessInfo["accessKey"], accessInfo["secretKey"], "")
	bucket := accessInfo["bucket"]
	s3Client := s3.New(s3.Options{
		Region:      accessInfo["region"],
		Credentials: creds,
	}, func(o *s3.Options) {
		if endpoint := accessInfo["endpoint"]; endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	uploader := manager.NewUploader(s3Client)
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(name),
		Body:        reader,
		ContentType: aws.String("video/mp4"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s to bucket %s: %w", name, bucket, err)
	}

	logger.Infof("Successfully uploaded object '%s' to bucket '%s'", name, bucket)
	return fmt.Sprintf("s3://%s/%s", bucket, name), nil
}
