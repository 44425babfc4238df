// Package config provides layered configuration for review pipelines.
//
// Values are resolved with clear precedence:
//  1. Explicit overrides (highest priority)
//  2. Environment variables (SLRFLOW_*)
//  3. Workspace config (.slrflow.yaml in the workspace root)
//  4. Global config (~/.config/slrflow/config.yaml)
//  5. Built-in defaults (lowest priority)
//
// Each resolved value remembers which layer supplied it, so tooling can
// explain where a setting came from.
//
// Typed access goes through Settings:
//
//	resolver := config.NewResolver(config.DefaultResolverConfig())
//	settings := config.SettingsFrom(resolver.Resolve())
//	fmt.Println(settings.DataDir, settings.MaxResults)
package config
