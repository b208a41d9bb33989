package cmd

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/ardnew/wmconf/cfg"
)

// Output formats accepted by --format.
const (
	FormatNative = "native"
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatTree   = "tree"
)

// Output selects how a parsed tree is written.
type Output struct {
	Format    string `default:"native" enum:"native,json,yaml,tree" help:"Output format"                               short:"f"`
	Indent    int    `default:"2"                                  help:"Spaces per indent level (0 for compact)" short:"i"`
	Positions bool   `                                             help:"Include source and line of each entry in json and yaml"`
}

var (
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	posStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	branchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// write writes root to w in the selected format.
func (o Output) write(ctx context.Context, w io.Writer, root cfg.Section) error {
	var err error

	switch o.Format {
	case FormatNative, "":
		err = root.Format(ctx, w, o.Indent)
	case FormatJSON:
		err = root.FormatJSON(ctx, w, o.Indent, o.Positions)
	case FormatYAML:
		err = root.FormatYAML(ctx, w, o.Indent, o.Positions)
	case FormatTree:
		_, err = io.WriteString(w, o.tree(root).String()+"\n")
	default:
		return ErrInvalidFormat.With(
			slog.String("format", o.Format),
			slog.String("valid", strings.Join(
				[]string{FormatNative, FormatJSON, FormatYAML, FormatTree}, ",")),
		)
	}

	if err != nil {
		return ErrWriteOutput.With(slog.String("format", o.Format)).Wrap(err)
	}

	return nil
}

// tree renders s as a lipgloss tree, one node per entry.
func (o Output) tree(s cfg.Section) *tree.Tree {
	t := tree.New().
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(branchStyle)

	for e := range s.All() {
		label := nameStyle.Render(e.Name())
		if e.Value() != "" {
			label += " = " + valueStyle.Render(cfg.Quote(e.Value()))
		}

		if o.Positions {
			label += " " + posStyle.Render(e.Source()+"@"+strconv.Itoa(e.Line()))
		}

		sub, ok := e.Section()
		if !ok {
			t.Child(label)

			continue
		}

		t.Child(o.tree(sub).Root(label))
	}

	return t
}

// Dump parses the configuration and writes the resulting tree.
type Dump struct {
	Output `embed:""`
}

// Run executes the dump command.
func (d *Dump) Run(ctx context.Context) error {
	opts := optionsFrom(ctx)

	_, root, err := load(ctx, opts)
	if err != nil {
		return err
	}

	return d.write(ctx, opts.Stdout, root)
}
