package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/wmconf/cfg"
	"github.com/ardnew/wmconf/log"
)

// maxSuggestions bounds the names offered for a path that was not found.
const maxSuggestions = 3

// Get prints the values of entries addressed by slash-separated paths.
type Get struct {
	Path []string `arg:"" help:"Entry path, e.g. Screen/Workspaces"`

	Long bool `help:"Print source, line, and name with each value" short:"l"`
}

// Run executes the get command. Every path is looked up even if an earlier
// one is missing.
func (g *Get) Run(ctx context.Context) error {
	opts := optionsFrom(ctx)

	_, root, err := load(ctx, opts)
	if err != nil {
		return err
	}

	var missing []string

	for _, path := range g.Path {
		e, ok := root.Lookup(splitPath(path)...)
		if !ok {
			missing = append(missing, path)
			log.WarnContext(ctx, "entry not found",
				slog.String("path", path),
				slog.Any("suggest", suggest(root, splitPath(path))))

			continue
		}

		line := e.Value()
		if g.Long {
			line = e.String()
		}

		if _, err := fmt.Fprintln(opts.Stdout, line); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	if len(missing) > 0 {
		return ErrNotFound.With(slog.String("path", strings.Join(missing, ",")))
	}

	return nil
}

// suggest returns the closest names to the first element of path that could
// not be resolved, as full paths.
func suggest(root cfg.Section, path []string) []string {
	cur := root

	for i, name := range path {
		if i < len(path)-1 {
			if e, ok := cur.FindSection(name); ok {
				cur, _ = e.Section()

				continue
			}
		} else if _, ok := cur.Lookup(name); ok {
			return nil
		}

		var out []string

		for _, m := range fuzzy.Find(name, cur.Names()) {
			if len(out) == maxSuggestions {
				break
			}

			out = append(out, strings.Join(append(path[:i:i], m.Str), "/"))
		}

		return out
	}

	return nil
}
