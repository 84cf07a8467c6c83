package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// fileSchema is the on-disk shape: a single sorted id list.
type fileSchema struct {
	SeenIDs []string `json:"seen_ids"`
}

// Store persists a Set as a JSON file. Saves go through a sibling lock file
// and a write-temp-then-rename sequence, so an aborted run never leaves a
// partially written state file behind.
type Store struct {
	path string
	lock *flock.Flock
}

// NewStore returns a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Load reads the persisted seen-set. A missing file is a fresh start; an
// unparsable one is logged and treated as empty, never fatal.
func (s *Store) Load() Set {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("could not read state file, starting fresh",
				slog.String("path", s.path),
				slog.Any("error", err),
			)
		}
		return NewSet()
	}

	var schema fileSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		slog.Warn("could not parse state file, starting fresh",
			slog.String("path", s.path),
			slog.Any("error", err),
		)
		return NewSet()
	}
	return NewSet(schema.SeenIDs...)
}

// Save writes the seen-set atomically, replacing the previous state file.
func (s *Store) Save(seen Set) error {
	if err := ensureDir(s.path); err != nil {
		return err
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock state file: %w", err)
	}
	defer s.lock.Unlock()

	payload, err := json.MarshalIndent(fileSchema{SeenIDs: seen.SortedIDs()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	payload = append(payload, '\n')

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
