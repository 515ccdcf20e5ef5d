package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-pipeparams/pkg/params"
)

// FileStore keeps overrides in a YAML file of parameter key to canonical
// literal text. A missing file on Load is not an error; it just means no
// overrides were saved yet.
type FileStore struct {
	path string
}

// NewFileStore constructs a file-backed store at the given path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("store: file path is required")
	}
	return &FileStore{path: path}, nil
}

// Load reads the file and replays every entry through Registry.Set.
func (s *FileStore) Load(ctx context.Context, reg *params.Registry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: read %s: %w", s.path, err)
	}

	raw := make(map[string]string)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("store: parse %s: %w", s.path, err)
	}
	return applyOverrides(reg, raw)
}

// Save serializes the registry's current overrides back to the file. An
// empty override layer still writes a file so a later Load is a no-op rather
// than a surprise.
func (s *FileStore) Save(ctx context.Context, reg *params.Registry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := yaml.Marshal(serializeOverrides(reg))
	if err != nil {
		return fmt.Errorf("store: serialize overrides: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", s.path, err)
	}
	return nil
}
