package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/wmconf/cfg"
	"github.com/ardnew/wmconf/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads flag defaults from
// the section named section of a file written in the configuration language.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx, "wmconf"), "/path/to/config")
//
// Every plain entry of the section supplies the flag of the same name. Flag
// names with hyphens (e.g., "log-level") may be written with underscores
// (e.g., "log_level"). List flags take comma-separated values and map flags
// take KEY=VALUE pairs separated by semicolons. Variables, comments, and
// INCLUDE and COMMAND directives work as they do anywhere else; when r is a
// named file, a relative INCLUDE is also tried next to it:
//
//	$LEVEL = "debug"
//	wmconf {
//	  log_level = "$LEVEL"
//	  log_pretty = "false"
//	  source = "$_HOME/.pekwm/config,$_HOME/.pekwm/keys"
//	}
//
// Command-line flags override config file values.
func resolve(ctx context.Context, section string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		d, err := descriptor(section, r)
		if err != nil {
			return config{}, err
		}

		p := cfg.NewParser(cfg.WithLogger(log.Default()))

		root, err := p.Parse(ctx, d)
		if err != nil {
			return config{}, nil
		}

		e, ok := root.FindSection(section)
		if !ok {
			return config{}, nil
		}

		sec, _ := e.Section()

		return sectionToMap(sec), nil
	}
}

// descriptor returns a file source for readers that name a file, such as the
// *os.File kong opens, and the text of any other reader.
func descriptor(section string, r io.Reader) (cfg.Descriptor, error) {
	if f, ok := r.(interface{ Name() string }); ok && f.Name() != "" {
		if _, err := os.Stat(f.Name()); err == nil {
			return cfg.File(f.Name()), nil
		}
	}

	text, err := io.ReadAll(r)
	if err != nil {
		return cfg.Descriptor{}, err
	}

	return cfg.String(section, string(text)), nil
}

// config implements [kong.Resolver] for configuration-language sections.
type config map[string]string

// Validate implements [kong.Resolver]. Entries that name no flag are logged
// and otherwise ignored.
func (r config) Validate(app *kong.Application) error {
	known := make(map[string]bool)

	for _, flags := range app.AllFlags(false) {
		for _, flag := range flags {
			known[flag.Name] = true
		}
	}

	for name := range r {
		if !known[name] && !known[strings.ReplaceAll(name, "_", "-")] {
			log.Warn("unknown configuration key", slog.String("key", name))
		}
	}

	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	// Not found - return nil to let kong use defaults
	return nil, nil
}

// sectionToMap returns the plain entries of s by name. The first entry of
// each name wins, as it does for key lookups.
func sectionToMap(s cfg.Section) config {
	result := make(config)

	for e := range s.All() {
		if e.HasSection() {
			continue
		}

		if _, ok := result[e.Name()]; !ok {
			result[e.Name()] = e.Value()
		}
	}

	return result
}
