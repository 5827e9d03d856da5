package runlog

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/beamforge/pkg/errors"
)

// FileStore appends run records to a JSON lines file. Records are
// immutable events, so the file only ever grows; unparseable lines are
// skipped on read rather than failing the whole history.
type FileStore struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// NewFileStore opens (or creates) a run log at path. An empty path
// defaults to ~/.config/beamforge/runs.jsonl.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolving home directory")
		}
		path = filepath.Join(home, ".config", "beamforge", "runs.jsonl")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "creating run log directory")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "opening run log %s", path)
	}
	return &FileStore{path: path, f: f}, nil
}

// Append adds a record, assigning a fresh ID when the record has none.
func (s *FileStore) Append(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = NewID()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding run record")
	}
	if _, err := s.f.Write(append(data, '\n')); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "appending run record")
	}
	return nil
}

// Get retrieves a record by ID. When an ID appears more than once the
// latest line wins.
func (s *FileStore) Get(ctx context.Context, id string) (*Record, error) {
	recs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := len(recs) - 1; i >= 0; i-- {
		if recs[i].ID == id {
			return recs[i], nil
		}
	}
	return nil, errors.New(errors.ErrCodeRunNotFound, "run %s not found", id)
}

// List returns all records in append order.
func (s *FileStore) List(ctx context.Context) ([]*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "reading run log")
	}
	defer f.Close()

	var recs []*Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		recs = append(recs, &rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "reading run log")
	}
	return recs, nil
}

// Close closes the underlying file.
func (s *FileStore) Close() error {
	return s.f.Close()
}

// Path returns the location of the run log file.
func (s *FileStore) Path() string {
	return s.path
}

var _ Store = (*FileStore)(nil)
