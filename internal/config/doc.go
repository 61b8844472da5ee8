// Package config loads runtime configuration from multiple sources (YAML files,
// environment variables, CLI flags) with precedence: CLI flags > YAML config >
// Environment variables > Defaults. Per-environment deployment settings live
// in package deployment; this package only covers how the tool itself runs.
package config
