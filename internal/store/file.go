package store

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"sigs.k8s.io/yaml"

	"healthsync/internal/cvconfig"
	"healthsync/internal/reconciler"
	"healthsync/pkg/logging"
)

// FileStore keeps the configs of every monitored service in a YAML file
// below a root directory.
type FileStore struct {
	mu   sync.RWMutex
	root string
}

// NewFileStore returns a FileStore rooted at root. The directory is created
// on the first write.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// Root returns the directory the store writes to.
func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) List(ctx context.Context, scope cvconfig.Scope, monitoredServiceIdentifier string) ([]cvconfig.CVConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load(Location{Scope: scope, MonitoredServiceIdentifier: monitoredServiceIdentifier})
}

func (s *FileStore) Apply(ctx context.Context, mutations reconciler.MutationSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, sets := split(mutations)
	next := make(map[Location][]cvconfig.CVConfig, len(order))
	for _, loc := range order {
		current, err := s.load(loc)
		if err != nil {
			return err
		}
		updated, err := applyTo(current, *sets[loc])
		if err != nil {
			return fmt.Errorf("failed to apply mutations to %s: %w", loc, err)
		}
		next[loc] = updated
	}

	for _, loc := range order {
		if err := s.save(loc, next[loc]); err != nil {
			return err
		}
	}
	return nil
}

// path returns the file holding the configs of loc.
func (s *FileStore) path(loc Location) string {
	return filepath.Join(
		s.root,
		escapeSegment(loc.Scope.AccountID),
		escapeSegment(loc.Scope.OrgIdentifier),
		escapeSegment(loc.Scope.ProjectIdentifier),
		escapeSegment(loc.MonitoredServiceIdentifier)+".yaml",
	)
}

func (s *FileStore) load(loc Location) ([]cvconfig.CVConfig, error) {
	path := s.path(loc)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []cvconfig.CVConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	var configs []cvconfig.CVConfig
	if err := yaml.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}

	owned := make([]cvconfig.CVConfig, 0, len(configs))
	for _, c := range configs {
		if locationOf(c) != loc {
			logging.Warn("Store", "Ignoring config %s of %s found in %s", c.Label(), locationOf(c), path)
			continue
		}
		owned = append(owned, c)
	}
	configs = owned

	logging.Debug("Store", "Loaded %d configs for %s from %s", len(configs), loc, path)
	return configs, nil
}

// save writes configs to the file of loc, or removes the file when no
// config is left. The file is replaced atomically.
func (s *FileStore) save(loc Location, configs []cvconfig.CVConfig) error {
	path := s.path(loc)
	if len(configs) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete file %s: %w", path, err)
		}
		logging.Info("Store", "Removed %s", path)
		return nil
	}

	data, err := yaml.Marshal(configs)
	if err != nil {
		return fmt.Errorf("failed to encode configs for %s: %w", loc, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".healthsync-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace file %s: %w", path, err)
	}

	logging.Info("Store", "Saved %d configs for %s to %s", len(configs), loc, path)
	return nil
}

// escapeSegment turns an identifier into a single path segment. Distinct
// identifiers always give distinct segments: PathEscape escapes '%' itself,
// so the extra escapes for '.' and ':' cannot collide with escaped input.
// An empty identifier maps to "%", which escaping never produces.
func escapeSegment(name string) string {
	if name == "" {
		return "%"
	}
	escaped := url.PathEscape(name)
	escaped = strings.ReplaceAll(escaped, ".", "%2E")
	return strings.ReplaceAll(escaped, ":", "%3A")
}
