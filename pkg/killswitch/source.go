package killswitch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Source provides kill-switch configuration to the store.
//
// Load returns (nil, nil) when the source has no configuration at all; that
// absence is meaningful and distinct from a load error.
type Source interface {
	Load(ctx context.Context) (*Config, error)
}

// FileSource loads kill-switch configuration from a YAML file.
//
// A missing file means "no configuration" (nil, nil), which the store treats
// as fail-closed in prod. A present but malformed file is an error, and the
// store keeps serving the previous snapshot.
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed configuration source.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load reads and parses the configuration file.
func (f *FileSource) Load(ctx context.Context) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read kill-switch config %q: %w", f.path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse kill-switch config %q: %w", f.path, err)
	}

	if cfg.Scope == "" {
		cfg.Scope = ScopeGlobal
	}
	if len(cfg.TenantOverrides) > 0 {
		cfg.Scope = ScopeTenant
	}

	return &cfg, nil
}

// MemorySource serves an in-memory configuration. Useful for tests and for
// admin-push deployments where config arrives over the wire.
type MemorySource struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewMemorySource creates a memory source with the given initial config
// (nil means "no configuration").
func NewMemorySource(cfg *Config) *MemorySource {
	return &MemorySource{cfg: cfg}
}

// Load returns a copy of the held configuration.
func (m *MemorySource) Load(ctx context.Context) (*Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.cfg == nil {
		return nil, nil
	}
	cp := *m.cfg
	if m.cfg.TenantOverrides != nil {
		cp.TenantOverrides = make(map[string]Mode, len(m.cfg.TenantOverrides))
		for k, v := range m.cfg.TenantOverrides {
			cp.TenantOverrides[k] = v
		}
	}
	cp.RoutePatterns = append([]string(nil), m.cfg.RoutePatterns...)
	return &cp, nil
}

// Set replaces the held configuration.
func (m *MemorySource) Set(cfg *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
}

// hashConfig computes a stable sha256 fingerprint of a configuration. The
// encoding is canonical (sorted override keys) so equal configs always hash
// equal regardless of map iteration order.
func hashConfig(cfg *Config) string {
	var sb strings.Builder
	sb.WriteString(cfg.Version)
	sb.WriteByte('|')
	sb.WriteString(string(cfg.Mode))
	sb.WriteByte('|')
	sb.WriteString(string(cfg.Scope))
	sb.WriteByte('|')

	keys := make([]string, 0, len(cfg.TenantOverrides))
	for k := range cfg.TenantOverrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(string(cfg.TenantOverrides[k]))
		sb.WriteByte(';')
	}
	sb.WriteByte('|')

	patterns := append([]string(nil), cfg.RoutePatterns...)
	sort.Strings(patterns)
	for _, p := range patterns {
		sb.WriteString(p)
		sb.WriteByte(';')
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
