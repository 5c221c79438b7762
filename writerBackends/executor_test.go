package writerbackends

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		info    map[string]string
		wantErr bool
	}{
		{"direct serve needs nothing", DirectServe, nil, false},
		{"s3 complete", S3, map[string]string{"accessKey": "a", "secretKey": "s", "region": "r", "bucket": "b"}, false},
		{"s3 missing bucket", S3, map[string]string{"accessKey": "a", "secretKey": "s", "region": "r"}, true},
		{"gcs complete", GCS, map[string]string{"credentialsJSON": "e30=", "bucket": "b"}, false},
		{"sftp without auth", SFTP, map[string]string{"host": "h", "user": "u", "remoteDir": "/r"}, true},
		{"sftp with password", SFTP, map[string]string{"host": "h", "user": "u", "remoteDir": "/r", "password": "p"}, false},
		{"unknown", "ftp", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.backend, tt.info)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestObjectName(t *testing.T) {
	if got := ObjectName("/reels/", "a.mp4"); got != "reels/a.mp4" {
		t.Errorf("Unexpected name %s", got)
	}
	if got := ObjectName("", "a.mp4"); got != "a.mp4" {
		t.Errorf("Unexpected name %s", got)
	}
}

func TestWriteVideoDirectServe(t *testing.T) {
	base := t.TempDir()
	info := map[string]string{"baseDir": base, "folder": "archive"}

	loc, err := WriteVideo(context.Background(), info, "reels/job.mp4", strings.NewReader("mp4"), DirectServe)
	if err != nil {
		t.Fatalf("WriteVideo failed: %v", err)
	}
	if loc != "/files/archive/reels/job.mp4" {
		t.Errorf("Unexpected location %s", loc)
	}
	data, err := os.ReadFile(filepath.Join(base, "archive", "reels", "job.mp4"))
	if err != nil || string(data) != "mp4" {
		t.Errorf("Unexpected file content %q (%v)", data, err)
	}
}

func TestDirectServeRejectsEscape(t *testing.T) {
	info := map[string]string{"baseDir": t.TempDir()}
	if _, err := UploadToDirectServe(context.Background(), info, "../../etc/x.mp4", strings.NewReader("x")); err == nil {
		t.Error("Expected a path outside baseDir to be rejected")
	}
}
