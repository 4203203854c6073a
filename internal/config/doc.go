// Package config loads and validates the drivesort configuration file.
//
// Configuration is TOML, defaulting to ~/.config/drivesort/config.toml, with
// repository defaults applied first so a partial file is enough. Load expands
// and normalizes every path field; Validate rejects configurations the
// pipeline cannot run with (bad date field, uncompilable category patterns,
// duplicate rule names) before any remote call is made.
package config
