package writerbackends

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// Backend names accepted by WriteVideo.
const (
	DirectServe = "directServe"
	S3          = "s3"
	GCS         = "gcs"
	SFTP        = "sftp"
)

var requiredKeys = map[string][]string{
	DirectServe: nil,
	S3:          {"accessKey", "secretKey", "region", "bucket"},
	GCS:         {"credentialsJSON", "bucket"},
	SFTP:        {"host", "user", "remoteDir"},
}

// Validate checks that accessInfo carries what backendType needs.
func Validate(backendType string, accessInfo map[string]string) error {
	keys, ok := requiredKeys[backendType]
	if !ok {
		return fmt.Errorf("unknown backend type: %s", backendType)
	}
	var missing []string
	for _, k := range keys {
		if strings.TrimSpace(accessInfo[k]) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required accessInfo keys for %s: %s", backendType, strings.Join(missing, ", "))
	}
	if backendType == SFTP && accessInfo["password"] == "" && accessInfo["privateKey"] == "" {
		return fmt.Errorf("no auth method provided; set password or privateKey in accessInfo")
	}
	return nil
}

// ObjectName joins an optional prefix and a file name with forward slashes.
func ObjectName(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// WriteVideo stores reader as name on the given backend and returns the
// location it was written to.
func WriteVideo(ctx context.Context, accessInfo map[string]string, name string, reader io.Reader, backendType string) (string, error) {
	if err := Validate(backendType, accessInfo); err != nil {
		return "", err
	}
	switch backendType {
	case DirectServe:
		loc, err := UploadToDirectServe(ctx, accessInfo, name, reader)
		if err != nil {
			return "", fmt.Errorf("failed to upload to direct serve: %w", err)
		}
		return loc, nil
	case S3:
		loc, err := UploadToS3WithCreds(ctx, accessInfo, name, reader)
		if err != nil {
			return "", fmt.Errorf("failed to upload to S3: %w", err)
		}
		return loc, nil
	case GCS:
		loc, err := UploadToGCSWithJSON(ctx, accessInfo, name, reader)
		if err != nil {
			return "", fmt.Errorf("failed to upload to GCS: %w", err)
		}
		return loc, nil
	case SFTP:
		loc, err := UploadToSFTPWithCreds(ctx, accessInfo, name, reader)
		if err != nil {
			return "", fmt.Errorf("failed to upload to SFTP: %w", err)
		}
		return loc, nil
	}
	return "", fmt.Errorf("unknown backend type: %s", backendType)
}
