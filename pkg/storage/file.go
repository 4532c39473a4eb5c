package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileStore keeps each record as a JSON file in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
	now     func() time.Time
}

// NewFileStore creates a file-based store.
// If baseDir is empty, defaults to ~/.local/share/mysterygraph/mysteries/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".local", "share", "mysterygraph", "mysteries")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{baseDir: baseDir, now: time.Now}, nil
}

func (s *FileStore) recordPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Save(ctx context.Context, r *Record) error {
	if err := prepare(r, s.now()); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	tmp := s.recordPath(r.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write record file: %w", err)
	}
	if err := os.Rename(tmp, s.recordPath(r.ID)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write record file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Record, error) {
	if !validID(id) {
		return nil, notFound(id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.recordPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("read record file: %w", err)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", id, err)
	}
	return &r, nil
}

func (s *FileStore) List(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read storage dir: %w", err)
	}

	out := make([]Record, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, name))
		if err != nil {
			continue
		}
		var r Record
		if err := json.Unmarshal(data, &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	sortRecords(out)
	return out, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return notFound(id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.recordPath(id)); err != nil {
		if os.IsNotExist(err) {
			return notFound(id)
		}
		return fmt.Errorf("remove record file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
