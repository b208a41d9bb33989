package cfg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes s in the configuration language. With indent > 0 every
// statement gets its own line; otherwise the output is a single line.
//
// Values are written already expanded, so a value that still contains a
// variable reference is expanded again when the output is parsed.
func (s Section) Format(_ context.Context, w io.Writer, indent int) error {
	if err := formatSection(w, s, indent, 0); err != nil {
		return err
	}

	_, err := fmt.Fprintln(w)

	return err
}

func formatSection(w io.Writer, s Section, indent, depth int) error {
	pad := strings.Repeat(" ", depth*indent)
	n := 0

	for e := range s.All() {
		if n > 0 {
			sep := " "
			if indent > 0 {
				sep = "\n"
			}

			if _, err := fmt.Fprint(w, sep); err != nil {
				return err
			}
		}

		n++

		if _, err := fmt.Fprint(w, pad, e.Name()); err != nil {
			return err
		}

		if e.Value() != "" || !e.HasSection() {
			if _, err := fmt.Fprint(w, " = ", Quote(e.Value())); err != nil {
				return err
			}
		}

		sub, ok := e.Section()
		if !ok {
			if _, err := fmt.Fprint(w, ";"); err != nil {
				return err
			}

			continue
		}

		if err := formatBlock(w, sub, pad, indent, depth); err != nil {
			return err
		}
	}

	return nil
}

func formatBlock(w io.Writer, s Section, pad string, indent, depth int) error {
	if s.Len() == 0 {
		_, err := fmt.Fprint(w, " {}")

		return err
	}

	open, closing := " { ", " }"
	if indent > 0 {
		open, closing = " {\n", "\n"+pad+"}"
	}

	if _, err := fmt.Fprint(w, open); err != nil {
		return err
	}

	if err := formatSection(w, s, indent, depth+1); err != nil {
		return err
	}

	_, err := fmt.Fprint(w, closing)

	return err
}

// Quote returns v as a double-quoted value with backslashes and double
// quotes escaped.
func Quote(v string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v) + `"`
}

// ToList converts s to a list with one map per entry holding "name",
// "value", and for section headers "section". With positions set each map
// also holds "source" and "line".
func (s Section) ToList(positions bool) []any {
	list := make([]any, 0)

	for e := range s.All() {
		m := map[string]any{"name": e.Name(), "value": e.Value()}

		if positions {
			m["source"] = e.Source()
			m["line"] = e.Line()
		}

		if sub, ok := e.Section(); ok {
			m["section"] = sub.ToList(positions)
		}

		list = append(list, m)
	}

	return list
}

// MarshalJSON implements json.Marshaler.
func (s Section) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToList(false))
}

// FormatJSON writes s as JSON.
func (s Section) FormatJSON(_ context.Context, w io.Writer, indent int, positions bool) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(s.ToList(positions), "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(s.ToList(positions))
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes s as YAML.
func (s Section) FormatYAML(ctx context.Context, w io.Writer, indent int, positions bool) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, s.ToList(positions), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}
