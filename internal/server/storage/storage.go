// Package storage persists uploaded files and hands back a reference string
// that is stored on the owning record.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/server/config"
)

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Body        io.Reader
}

// FileStore saves an upload and returns its stable reference.
type FileStore interface {
	Save(ctx context.Context, upload *Upload) (string, error)
}

// ObjectName names a stored file "<unix-millis><ext>", keeping the
// extension of the client's filename.
func ObjectName(now time.Time, filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) < 2 || len(ext) > 16 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return fmt.Sprintf("%d%s", now.UnixMilli(), ext)
}

// NewFileStore builds the store selected by cfg.UploadBackend.
func NewFileStore(ctx context.Context, cfg *config.Config) (FileStore, error) {
	switch cfg.UploadBackend {
	case config.UploadLocal:
		return NewLocalStore(cfg.UploadDir)
	case config.UploadS3:
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.UploadBackend)
	}
}
