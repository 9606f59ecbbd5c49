package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"MediaCurator/internal/domain"
	"MediaCurator/internal/ports"
)

// FileStore persists the rule set as a declarative JSON document. Rules are
// plain data only; nothing in the file is ever executed.
type FileStore struct {
	path string
}

var _ ports.RuleStore = (*FileStore)(nil)

// NewFileStore points the store at the rule file location.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the current rule set. A missing file yields an empty set so
// scoring can proceed on base scores alone.
func (s *FileStore) Load() (domain.RuleSet, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.RuleSet{}, nil
		}
		return domain.RuleSet{}, fmt.Errorf("read rule file: %w", err)
	}

	var set domain.RuleSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return domain.RuleSet{}, fmt.Errorf("parse rule file: %w", err)
	}

	return set, nil
}

// Save replaces the rule file wholesale with the given set. The write goes
// through a temp file so a crash cannot leave a truncated rule file behind.
func (s *FileStore) Save(set domain.RuleSet) error {
	raw, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal rule set: %w", err)
	}

	tmp := s.path + ".tmp"
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create rule dir: %w", err)
		}
	}

	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write rule file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace rule file: %w", err)
	}

	return nil
}
