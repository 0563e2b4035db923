// Package config loads, normalizes, and validates convroute configuration.
//
// A single TOML file carries the search settings, cost rule overrides and
// the static capability registry: every [[handler]] table lists the
// formats one conversion tool can read and write. Handlers are registered
// in file order, which is also their priority in the cost model.
//
// When no file is given the CLI falls back to [Builtin], a registry of
// common tools embedded in the binary.
package config
