package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/filex"
)

const maxNameAttempts = 100

// LocalStore writes uploads into a directory on local disk. The returned
// reference is the configured directory joined with the file name, e.g.
// "uploads/1718000000000.png".
type LocalStore struct {
	dir    string
	prefix string
	now    func() time.Time
}

func NewLocalStore(dir string) (*LocalStore, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("prepare upload dir: %w", err)
	}
	return &LocalStore{dir: abs, prefix: dir, now: time.Now}, nil
}

// Dir is the absolute directory files are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes the upload under a fresh name. Names are claimed with O_EXCL
// so two uploads in the same millisecond never overwrite each other.
func (s *LocalStore) Save(ctx context.Context, upload *Upload) (string, error) {
	ts := s.now()

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		name := ObjectName(ts.Add(time.Duration(attempt)*time.Millisecond), upload.Filename)
		f, err := filex.CreateExclusive(s.dir, name)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create upload file: %w", err)
		}

		if _, err := io.Copy(f, upload.Body); err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
			return "", fmt.Errorf("write upload file: %w", err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(f.Name())
			return "", fmt.Errorf("close upload file: %w", err)
		}

		return path.Join(filepath.ToSlash(s.prefix), name), nil
	}

	return "", errors.New("no free upload file name")
}
