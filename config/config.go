package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to upper-cased key names for environment
// variable lookup: key "data_dir" maps to SLRFLOW_DATA_DIR.
const EnvPrefix = "SLRFLOW_"

// WorkspaceConfigName is the filename looked up in the workspace root.
const WorkspaceConfigName = ".slrflow.yaml"

// ResolverConfig configures the layered config resolver.
type ResolverConfig struct {
	// Defaults provides the default values for configuration keys.
	Defaults map[string]string

	// ValidKeys lists keys accepted from config files.
	// If nil, all keys are valid.
	ValidKeys []string

	// WorkspaceRootFinder locates the workspace root directory. If nil,
	// the resolver walks up from the working directory looking for a
	// .slrflow.yaml file or a .slrflow data directory.
	WorkspaceRootFinder func(startDir string) string

	// ErrWriter is where warnings are written.
	// Defaults to os.Stderr if nil.
	ErrWriter io.Writer
}

// DefaultResolverConfig returns the standard pipeline configuration.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		Defaults: Defaults(),
		ValidKeys: []string{
			KeyDataDir, KeyMailto, KeyMaxResults, KeyModelTier,
			KeyWebhookURL, KeySlackWebhook, KeyLogLevel,
		},
	}
}

// Resolver handles layered configuration resolution.
type Resolver struct {
	config        ResolverConfig
	globalPath    string
	workspacePath string
	workspaceRoot string

	// Warnings collects non-fatal issues during resolution.
	Warnings []string
}

// NewResolver creates a new configuration resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	resolver := &Resolver{config: cfg}

	if cfg.ErrWriter == nil {
		resolver.config.ErrWriter = os.Stderr
	}

	find := cfg.WorkspaceRootFinder
	if find == nil {
		find = findWorkspaceRoot
	}
	if root := find("."); root != "" {
		resolver.workspaceRoot = root
		resolver.workspacePath = filepath.Join(root, WorkspaceConfigName)
	}

	if home, err := os.UserHomeDir(); err == nil {
		resolver.globalPath = filepath.Join(home, ".config", "slrflow", "config.yaml")
	}

	return resolver
}

// NewResolverWithPaths creates a resolver with explicit global and
// workspace config paths. This is useful for testing.
func NewResolverWithPaths(cfg ResolverConfig, globalPath, workspacePath string) *Resolver {
	resolver := &Resolver{
		config:        cfg,
		globalPath:    globalPath,
		workspacePath: workspacePath,
	}
	if cfg.ErrWriter == nil {
		resolver.config.ErrWriter = os.Stderr
	}
	return resolver
}

func (r *Resolver) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
	if r.config.ErrWriter != nil {
		fmt.Fprintf(r.config.ErrWriter, "Warning: %s\n", msg)
	}
}

// Resolved holds the final merged configuration.
type Resolved struct {
	values  map[string]string
	sources map[string]Source
}

// Get returns the value for a key, or empty string if not set.
func (c *Resolved) Get(key string) string {
	return c.values[key]
}

// Source returns the source of a key's value.
func (c *Resolved) Source(key string) Source {
	return c.sources[key]
}

// GetWithSource returns both the value and its source.
func (c *Resolved) GetWithSource(key string) (string, Source) {
	return c.values[key], c.sources[key]
}

// All returns a copy of all key-value pairs.
func (c *Resolved) All() map[string]string {
	result := make(map[string]string, len(c.values))
	for k, v := range c.values {
		result[k] = v
	}
	return result
}

// Resolve builds the final config by merging all layers.
// Priority (highest to lowest): env > workspace > global > defaults.
func (r *Resolver) Resolve() *Resolved {
	cfg := &Resolved{
		values:  make(map[string]string),
		sources: make(map[string]Source),
	}

	r.applyDefaults(cfg)
	r.applyFile(cfg, r.globalPath, SourceGlobal)
	r.applyFile(cfg, r.workspacePath, SourceWorkspace)
	r.applyEnv(cfg)

	return cfg
}

// ResolveWithOverrides resolves config and applies explicit overrides
// on top.
func (r *Resolver) ResolveWithOverrides(overrides map[string]string) *Resolved {
	cfg := r.Resolve()
	for key, value := range overrides {
		if value != "" {
			cfg.values[key] = value
			cfg.sources[key] = SourceOverride
		}
	}
	return cfg
}

func (r *Resolver) applyDefaults(cfg *Resolved) {
	for key, value := range r.config.Defaults {
		cfg.values[key] = value
		cfg.sources[key] = SourceDefault
	}
}

func (r *Resolver) applyFile(cfg *Resolved, path string, source Source) {
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return // File doesn't exist - not an error
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		r.warn(fmt.Sprintf("could not parse %s: %v", path, err))
		return
	}

	for key, value := range parsed {
		if len(r.config.ValidKeys) > 0 && !slices.Contains(r.config.ValidKeys, key) {
			r.warn(fmt.Sprintf("unknown key %q in %s", key, path))
			continue
		}
		if strVal := toString(value); strVal != "" {
			cfg.values[key] = strVal
			cfg.sources[key] = source
		}
	}
}

func (r *Resolver) applyEnv(cfg *Resolved) {
	allKeys := make(map[string]bool)
	for k := range r.config.Defaults {
		allKeys[k] = true
	}
	for k := range cfg.values {
		allKeys[k] = true
	}

	for key := range allKeys {
		envKey := EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		if value := os.Getenv(envKey); value != "" {
			cfg.values[key] = value
			cfg.sources[key] = SourceEnv
		}
	}
}

// WorkspaceRoot returns the detected workspace root directory.
func (r *Resolver) WorkspaceRoot() string {
	return r.workspaceRoot
}

// GlobalPath returns the path to the global config file.
func (r *Resolver) GlobalPath() string {
	return r.globalPath
}

// WorkspacePath returns the path to the workspace config file.
func (r *Resolver) WorkspacePath() string {
	return r.workspacePath
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int, int64, float64:
		return fmt.Sprintf("%v", val)
	default:
		return ""
	}
}

// findWorkspaceRoot walks up from startDir looking for a .slrflow.yaml
// config file or a .slrflow data directory.
func findWorkspaceRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, WorkspaceConfigName)); err == nil {
			return dir
		}
		if info, err := os.Stat(filepath.Join(dir, ".slrflow")); err == nil && info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
