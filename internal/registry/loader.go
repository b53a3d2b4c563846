package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"flamed/internal/common/fsutil"
	"flamed/internal/config"
	"flamed/pkg/types"
)

// LoadDir scans a directory for model descriptors (*.yaml, *.yml, *.json, *.toml).
// ID defaults to the filename without extension and Name to the ID; Path is the
// absolute descriptor path. Models are returned sorted by ID.
func LoadDir(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	seen := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !config.Supported(e.Name()) {
			continue
		}
		p := filepath.Join(abs, e.Name())
		m, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[m.ID]; dup {
			return nil, fmt.Errorf("duplicate model id %q in %s and %s", m.ID, prev, p)
		}
		seen[m.ID] = p
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// LoadFile reads a single descriptor.
func LoadFile(path string) (types.Model, error) {
	var m types.Model
	b, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := config.Decode(filepath.Ext(path), b, &m); err != nil {
		return m, fmt.Errorf("descriptor %s: %w", filepath.Base(path), err)
	}
	m.Path = path
	if m.ID == "" {
		m.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if m.Name == "" {
		m.Name = m.ID
	}
	if m.Corpus != "" {
		corpus, err := fsutil.ResolveBeside(path, m.Corpus)
		if err != nil {
			return m, err
		}
		if !fsutil.PathExists(corpus) {
			return m, fmt.Errorf("descriptor %s: corpus %s not found", filepath.Base(path), corpus)
		}
	}
	return m, nil
}
