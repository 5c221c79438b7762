package writerbackends

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"quranreel/config"
	"quranreel/logger"
)

// UploadToDirectServe writes the video below the directory served at /files/.
// accessInfo may set baseDir (defaults to REEL_SERVE_DIR) and folder.
func UploadToDirectServe(ctx context.Context, accessInfo map[string]string, name string, reader io.Reader) (string, error) {
	baseDir := accessInfo["baseDir"]
	if baseDir == "" {
		baseDir = config.GetDirectServeBaseDir()
	}
	fullPath := filepath.Join(baseDir, accessInfo["folder"], filepath.FromSlash(name))
	rel, err := filepath.Rel(baseDir, fullPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directories: %w", err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	if _, err := io.Copy(file, &ctxReader{ctx: ctx, r: reader}); err != nil {
		file.Close()
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write to file %s: %w", fullPath, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close file %s: %w", fullPath, err)
	}

	logger.Infof("Successfully saved '%s' to '%s'", name, fullPath)
	return "/files/" + filepath.ToSlash(rel), nil
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
