package writerbackends

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"quranreel/logger"
)

// UploadToGCSWithJSON uploads the video to a Google Cloud Storage object,
// using a service account key given base64 encoded (raw JSON is accepted too).
func UploadToGCSWithJSON(ctx context.Context, accessInfo map[string]string, name string, reader io.Reader) (string, error) {
	credentialsJSON, err := base64.StdEncoding.DecodeString(accessInfo["credentialsJSON"])
	if err != nil {
		credentialsJSON = []byte(accessInfo["credentialsJSON"])
	}
	bucketName := accessInfo["bucket"]
	client, err := storage.NewClient(ctx, option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return "", fmt.Errorf("storage.NewClient: %w", err)
	}
	defer client.Close()

	wc := client.Bucket(bucketName).Object(name).NewWriter(ctx)
	wc.ContentType = "video/mp4"
	if _, err = io.Copy(wc, reader); err != nil {
		wc.Close()
		return "", fmt.Errorf("io.Copy: %w", err)
	}
	// Close completes the upload.
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("Writer.Close: %w", err)
	}

	logger.Infof("Successfully uploaded object '%s' to bucket '%s'", name, bucketName)
	return fmt.Sprintf("gs://%s/%s", bucketName, name), nil
}
