package strategy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"zapretctl/pkg/logging"
)

const subsystem = "Strategy"

// Store persists the discovered strategy list in a single file.
type Store struct {
	Path string
}

// NewStore returns a Store backed by path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Exists reports whether the store file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// Load reads the stored strategies. Empty entries are skipped. A missing
// file yields an empty list.
func (s *Store) Load() ([]string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read strategy store: %w", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		return nil, withPath(err, s.Path)
	}
	strategies := make([]string, 0, len(decoded))
	for _, d := range decoded {
		if d != "" {
			strategies = append(strategies, d)
		}
	}
	return strategies, nil
}

// Save replaces the store with strategies.
func (s *Store) Save(strategies []string) error {
	if err := s.writeAtomic(Encode(strategies)); err != nil {
		return err
	}
	logging.Info(subsystem, "Saved %d strategies to %s", len(strategies), s.Path)
	return nil
}

// Import validates the strategy file at src and, only if every entry is
// valid, copies it byte for byte into the store. On failure the store is
// left untouched.
func (s *Store) Import(src string) ([]string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", src, err)
	}

	strategies, err := Decode(data)
	if err != nil {
		return nil, withPath(err, src)
	}
	if err := Validate(strategies); err != nil {
		return nil, withPath(err, src)
	}

	if err := s.writeAtomic(data); err != nil {
		return nil, err
	}
	logging.Info(subsystem, "Imported %d strategies from %s", len(strategies), src)
	return strategies, nil
}

// writeAtomic writes data to a temp file next to the store and renames it
// into place.
func (s *Store) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".strategies-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write strategy store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write strategy store: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to write strategy store: %w", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		return fmt.Errorf("failed to replace strategy store: %w", err)
	}
	return nil
}

func withPath(err error, path string) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.Path == "" {
		return &ParseError{Path: path, Reason: pe.Reason}
	}
	return err
}
