package config

// Source indicates where a configuration value came from.
type Source string

// Configuration source constants.
const (
	// SourceDefault indicates the value is a built-in default.
	SourceDefault Source = "default"

	// SourceGlobal indicates the value came from
	// ~/.config/slrflow/config.yaml.
	SourceGlobal Source = "global"

	// SourceWorkspace indicates the value came from .slrflow.yaml in
	// the workspace root.
	SourceWorkspace Source = "workspace"

	// SourceEnv indicates the value came from an environment variable.
	SourceEnv Source = "env"

	// SourceOverride indicates the value was set programmatically.
	SourceOverride Source = "override"
)
