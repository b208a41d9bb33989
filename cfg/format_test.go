package cfg

import (
	"bytes"
	"context"
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

const formatInput = `
Files { Keys = "~/.pekwm/keys"; Quote = "say \"hi\" \\o/" }
ColorMap = "Light" { Map = "#aaaaaa" { To = "#eeeeee" } }
Empty {}
Last = "1"
`

func flatten(s Section, prefix string) []string {
	var out []string

	for e := range s.All() {
		out = append(out, prefix+e.Name()+"="+e.Value())
		if sub, ok := e.Section(); ok {
			out = append(out, flatten(sub, prefix+e.Name()+"/")...)
		}
	}

	return out
}

func TestSection_FormatRoundTrip(t *testing.T) {
	root, _ := parseString(t, formatInput)
	want := flatten(root, "")

	for _, indent := range []int{0, 2} {
		var buf bytes.Buffer
		if err := root.Format(context.Background(), &buf, indent); err != nil {
			t.Fatalf("Format(%d) error = %v", indent, err)
		}

		again, rec := parseString(t, buf.String())
		if got := flatten(again, ""); !slices.Equal(got, want) {
			t.Errorf("indent %d: reparsed %v, want %v\n%s", indent, got, want, buf.String())
		}

		if msgs := rec.messages(t); len(msgs) != 0 {
			t.Errorf("indent %d: warnings %v", indent, msgs)
		}
	}
}

func TestSection_FormatIndented(t *testing.T) {
	root, _ := parseString(t, `A = "a" { B = "b" }`+"\nC = \"c\"")

	var buf bytes.Buffer
	if err := root.Format(context.Background(), &buf, 2); err != nil {
		t.Fatal(err)
	}

	want := "A = \"a\" {\n  B = \"b\";\n}\nC = \"c\";\n"
	if buf.String() != want {
		t.Errorf("Format() = %q, want %q", buf.String(), want)
	}
}

func TestSection_FormatJSON(t *testing.T) {
	root, _ := parseString(t, formatInput)

	var buf bytes.Buffer
	if err := root.FormatJSON(context.Background(), &buf, 2, true); err != nil {
		t.Fatal(err)
	}

	var result []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	if len(result) != 4 {
		t.Fatalf("got %d entries, want 4", len(result))
	}

	files := result[0]
	if files["name"] != "Files" || files["source"] != "test" || files["line"] != float64(2) {
		t.Errorf("Files = %v", files)
	}

	children, ok := files["section"].([]any)
	if !ok || len(children) != 2 {
		t.Fatalf("Files section = %v", files["section"])
	}

	if q := children[1].(map[string]any)["value"]; q != `say "hi" \o/` {
		t.Errorf("Quote = %q", q)
	}

	if empty, ok := result[2]["section"].([]any); !ok || len(empty) != 0 {
		t.Errorf("Empty section = %v", result[2]["section"])
	}

	if _, ok := result[3]["section"]; ok {
		t.Error("plain entry has a section")
	}

	compact, err := json.Marshal(root)
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(string(compact), `"line"`) {
		t.Errorf("MarshalJSON includes positions: %s", compact)
	}
}

func TestSection_FormatYAML(t *testing.T) {
	root, _ := parseString(t, formatInput)

	for _, indent := range []int{0, 2} {
		var buf bytes.Buffer
		if err := root.FormatYAML(context.Background(), &buf, indent, false); err != nil {
			t.Fatalf("FormatYAML(%d) error = %v", indent, err)
		}

		var result []map[string]any
		if err := yaml.Unmarshal(buf.Bytes(), &result); err != nil {
			t.Fatalf("invalid YAML: %v\n%s", err, buf.String())
		}

		if len(result) != 4 || result[1]["value"] != "Light" {
			t.Errorf("indent %d: result = %v", indent, result)
		}
	}
}
