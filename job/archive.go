package job

import (
	"context"
	"fmt"
	"os"

	"quranreel/credentials"
	writerbackends "quranreel/writerBackends"
)

// Archiver copies finished videos to a storage backend.
type Archiver struct {
	Backend    string
	AccessInfo map[string]string
	Prefix     string
}

// NewArchiver resolves the credentials stored under key. directServe
// needs none, so key may be empty for it.
func NewArchiver(backend, key, prefix string, creds *credentials.Store) (*Archiver, error) {
	info := map[string]string{}
	if key != "" {
		if creds == nil {
			return nil, fmt.Errorf("archive credentials %s: no credentials store", key)
		}
		stored, err := creds.Get(key)
		if err != nil {
			return nil, fmt.Errorf("archive credentials: %w", err)
		}
		info = stored
	}
	if err := writerbackends.Validate(backend, info); err != nil {
		return nil, err
	}
	return &Archiver{Backend: backend, AccessInfo: info, Prefix: prefix}, nil
}

// Archive uploads the file at path as <prefix>/<id>.mp4.
func (a *Archiver) Archive(ctx context.Context, id, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return writerbackends.WriteVideo(ctx, a.AccessInfo, writerbackends.ObjectName(a.Prefix, id+".mp4"), f, a.Backend)
}
