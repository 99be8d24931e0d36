// Package configs provides embedded configuration templates for dropignore.
//
// Templates are embedded at build time so `dropignore config init` works
// from any distribution.
//
// Configuration Hierarchy (see internal/config/config.go Load()):
//  1. Hardcoded defaults (internal/config NewConfig())
//  2. User config (~/.config/dropignore/config.yaml)
//  3. Project config (.dropignore.yaml in the watched root)
//  4. --config file
//  5. Environment variables (DROPIGNORE_*)
package configs

import _ "embed"

// UserConfigTemplate is written by `dropignore config init` at
// ~/.config/dropignore/config.yaml. It holds machine-level settings such as
// the flag store backend.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is written by `dropignore config init --project` at
// .dropignore.yaml in the current directory.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
