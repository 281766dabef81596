package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
)

// FileStore keeps one JSON file per record in a directory. It is safe for
// concurrent use within one process.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a store under baseDir. If baseDir is empty it
// defaults to ~/.local/share/mavcrawl/records.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".local", "share", "mavcrawl", "records")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Path returns the directory holding the record files.
func (s *FileStore) Path() string { return s.baseDir }

func (s *FileStore) recordPath(c artifact.Coordinate) string {
	return filepath.Join(s.baseDir, url.PathEscape(c.String())+".json")
}

func (s *FileStore) read(c artifact.Coordinate) (*artifact.Record, error) {
	data, err := os.ReadFile(s.recordPath(c))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read record: %w", err)
	}
	var rec artifact.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", c, err)
	}
	return &rec, nil
}

func (s *FileStore) write(rec *artifact.Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	path := s.recordPath(rec.Coordinate)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return os.Rename(tmp, path)
}

func (s *FileStore) Get(_ context.Context, c artifact.Coordinate) (*artifact.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(c)
}

func (s *FileStore) Exists(_ context.Context, c artifact.Coordinate) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := os.Stat(s.recordPath(c))
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

func (s *FileStore) Upsert(_ context.Context, rec *artifact.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.read(rec.Coordinate)
	if err != nil && err != ErrNotFound {
		return err
	}
	return s.write(merge(cur, rec))
}

func (s *FileStore) MarkChild(_ context.Context, parent, child artifact.Coordinate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.read(parent)
	switch {
	case err == ErrNotFound:
		return true, s.write(artifact.NewPlaceholder(parent, child))
	case err != nil:
		return false, err
	}
	if cur.AddChildren(child) == 0 {
		return false, nil
	}
	return false, s.write(cur)
}

func (s *FileStore) Records(_ context.Context, status artifact.Status) ([]*artifact.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}
	var out []*artifact.Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			continue
		}
		c, err := artifact.Parse(key)
		if err != nil {
			continue
		}
		rec, err := s.read(c)
		if err != nil {
			return nil, err
		}
		if status == "" || rec.Status == status {
			out = append(out, rec)
		}
	}
	sortRecords(out)
	return out, nil
}

func (s *FileStore) Close(context.Context) error { return nil }

var _ Store = (*FileStore)(nil)
