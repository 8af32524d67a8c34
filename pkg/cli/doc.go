// Package cli provides common CLI utilities for the jsonattach command.
//
// This package includes:
//   - Configuration management (contexts naming a store and a collection)
//   - Output formatting (JSON, YAML, raw, table)
//   - Document field loading (YAML/JSON)
//   - JSONATTACH_* environment overrides
//
// Configuration is stored in <user config dir>/<app>/config.yaml, or in
// $JSONATTACH_CONFIG_DIR when set, supporting multiple contexts similar to
// kubectl.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig("jsonattach")
//	ctx, err := cfg.ResolveContext("")
//
//	cli.Output(doc, cli.OutputOptions{Format: cli.FormatYAML})
package cli
