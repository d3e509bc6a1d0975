package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/hillchart/pkg/errors"
)

// FileStore keeps each chart as <dir>/<chart>.json.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// DefaultDir returns ~/.local/share/hillchart/charts, honoring
// XDG_DATA_HOME.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "hillchart", "charts"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStore, err, "get home dir")
	}
	return filepath.Join(home, ".local", "share", "hillchart", "charts"), nil
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
// An empty dir uses [DefaultDir].
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create chart dir")
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the file a chart is stored in.
func (s *FileStore) Path(chart string) string {
	return filepath.Join(s.dir, chart+".json")
}

func (s *FileStore) Name() string { return BackendFile }

func (s *FileStore) Load(ctx context.Context, chart string) (Document, error) {
	if err := errors.ValidateChartName(chart); err != nil {
		return Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path(chart))
	if os.IsNotExist(err) {
		return Document{}, notFound(chart)
	}
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeStore, err, "read chart %q", chart)
	}
	return Decode(data)
}

// Save writes the chart to a temp file and renames it into place, so a
// crash never leaves a truncated chart behind.
func (s *FileStore) Save(ctx context.Context, chart string, doc Document) error {
	if err := errors.ValidateChartName(chart); err != nil {
		return err
	}
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+chart+".*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeStore, err, "write chart %q", chart)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeStore, err, "chmod chart %q", chart)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write chart %q", chart)
	}
	if err := os.Rename(tmp.Name(), s.Path(chart)); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "replace chart %q", chart)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
