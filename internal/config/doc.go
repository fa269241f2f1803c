// Package config loads dragdo settings.
//
// Sources are applied in priority order, each overriding the previous:
// 1. Built-in defaults
// 2. User config file (~/.dragdo/config.toml, else $XDG_CONFIG_HOME/dragdo/config.toml)
// 3. Project config file (./dragdo.toml or ./.dragdo.toml)
// 4. Environment variables (DRAGDO_*)
// 5. CLI flags (applied by the caller through Overrides)
//
// An explicit --config path replaces steps 2 and 3.
package config
