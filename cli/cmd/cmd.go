package cmd

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

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// commandPrefix marks a source that is run as a shell command.
const commandPrefix = "!"

// Options holds the settings shared by every command that parses
// configuration sources.
type Options struct {
	// Sources are parsed in order into one tree. "-" reads standard input and
	// a leading "!" runs the rest as a shell command.
	Sources []string
	Shell   string
	Stdin   io.Reader
	Stdout  io.Writer
}

type optionsKey struct{}

// WithOptions returns a new context.Context carrying opts.
func WithOptions(ctx context.Context, opts Options) context.Context {
	return context.WithValue(ctx, optionsKey{}, opts)
}

// optionsFrom returns the options stored by [WithOptions] with unset fields
// filled in.
func optionsFrom(ctx context.Context) Options {
	opts, _ := ctx.Value(optionsKey{}).(Options)

	if opts.Shell == "" {
		opts.Shell = cfg.DefaultShell
	}

	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}

	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	return opts
}

// descriptor maps a command-line source argument to a parser source.
func (o Options) descriptor(src string) (cfg.Descriptor, error) {
	switch {
	case src == stdinSource:
		text, err := io.ReadAll(o.Stdin)
		if err != nil {
			return cfg.Descriptor{}, ErrReadStdin.Wrap(err)
		}

		return cfg.String("stdin", string(text)), nil

	case strings.HasPrefix(src, commandPrefix):
		return cfg.Command(strings.TrimPrefix(src, commandPrefix)), nil

	default:
		return cfg.File(src), nil
	}
}

// load parses every source into a new parser. Sources that cannot be opened
// fail the load; every other problem is logged by the parser.
func load(ctx context.Context, opts Options) (*cfg.Parser, cfg.Section, error) {
	p := cfg.NewParser(
		cfg.WithLogger(log.Default()),
		cfg.WithShell(opts.Shell),
	)

	if len(opts.Sources) == 0 {
		return p, p.Root(), ErrNoSource
	}

	for _, src := range opts.Sources {
		d, err := opts.descriptor(src)
		if err != nil {
			return p, p.Root(), err
		}

		if _, err := p.Parse(ctx, d); err != nil {
			return p, p.Root(), ErrLoad.With(slog.String("source", src)).Wrap(err)
		}
	}

	log.DebugContext(ctx, "configuration loaded",
		slog.Int("sources", len(opts.Sources)),
		slog.Int("files", len(p.Files())),
		slog.Int("entries", p.Tree().Len()),
	)

	return p, p.Root(), nil
}

// splitPath splits a slash-separated section path, ignoring empty elements.
func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}
