// Package cmd implements the wmconf subcommands. Each command reads its
// shared settings from the context with [WithOptions] and parses the
// configuration sources with package cfg.
package cmd

import "github.com/ardnew/wmconf/pkg"

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file that holds default flag values.
	ConfigIdentifier = "config"

	// Section is the name of the section in the configuration file that holds
	// default flag values.
	Section = pkg.Name
)
