package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/wmconf/cfg"
)

const testConfig = `# test configuration
$THEME = "default"
Files {
	Theme = "/usr/share/pekwm/themes/$THEME";
}
Screen {
	Workspaces = "4"
	ShowFrameList = "true"
	Placement {
		Model = "Smart MouseCentered"
	}
}
`

func writeConfig(t *testing.T, text string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

// run returns a context carrying options for sources that write to out.
func run(t *testing.T, out *bytes.Buffer, sources ...string) context.Context {
	t.Helper()

	return WithOptions(t.Context(), Options{Sources: sources, Stdout: out})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, testConfig)

	p, root, err := load(t.Context(), optionsFrom(run(t, nil, path)))
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	if got := root.Names(); !slices.Equal(got, []string{"Files", "Screen"}) {
		t.Errorf("root names = %v", got)
	}

	if got := p.Files(); !slices.Equal(got, []string{path}) {
		t.Errorf("Files() = %v, want [%s]", got, path)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	t.Run("no_source", func(t *testing.T) {
		t.Parallel()

		_, _, err := load(t.Context(), optionsFrom(run(t, nil)))
		if !errors.Is(err, ErrNoSource) {
			t.Errorf("load() error = %v, want ErrNoSource", err)
		}
	})

	t.Run("missing_file", func(t *testing.T) {
		t.Parallel()

		missing := filepath.Join(t.TempDir(), "missing")

		_, _, err := load(t.Context(), optionsFrom(run(t, nil, missing)))
		if !errors.Is(err, ErrLoad) {
			t.Errorf("load() error = %v, want ErrLoad", err)
		}

		if !errors.Is(err, cfg.ErrOpenSource) {
			t.Errorf("load() error = %v, want cause ErrOpenSource", err)
		}
	})
}

func TestLoad_MultipleSources(t *testing.T) {
	t.Parallel()

	first := writeConfig(t, `$X = "1"`)
	second := writeConfig(t, `Value = "$X"`)

	_, root, err := load(t.Context(), optionsFrom(run(t, nil, first, second)))
	if err != nil {
		t.Fatal(err)
	}

	e, ok := root.FindEntry("Value")
	if !ok || e.Value() != "1" {
		t.Errorf("Value = %q, %v; want variables shared across sources", e.Value(), ok)
	}
}

func TestOptions_Descriptor(t *testing.T) {
	t.Parallel()

	opts := Options{Stdin: strings.NewReader(`A = "b"`)}

	tests := []struct {
		src  string
		kind cfg.Kind
		name string
	}{
		{src: "-", kind: cfg.KindString, name: "stdin"},
		{src: "!echo hi", kind: cfg.KindCommand, name: "echo hi"},
		{src: "/etc/pekwm/config", kind: cfg.KindFile, name: "/etc/pekwm/config"},
	}

	for _, tt := range tests {
		d, err := opts.descriptor(tt.src)
		if err != nil {
			t.Fatalf("descriptor(%q) error = %v", tt.src, err)
		}

		if d.Kind != tt.kind || d.Name != tt.name {
			t.Errorf("descriptor(%q) = %v %q, want %v %q",
				tt.src, d.Kind, d.Name, tt.kind, tt.name)
		}
	}
}

func TestOptionsFrom_Defaults(t *testing.T) {
	t.Parallel()

	opts := optionsFrom(context.Background())

	if opts.Shell != cfg.DefaultShell {
		t.Errorf("Shell = %q", opts.Shell)
	}

	if opts.Stdin == nil || opts.Stdout == nil {
		t.Error("expected standard streams as defaults")
	}
}

func TestSplitPath(t *testing.T) {
	t.Parallel()

	tests := map[string][]string{
		"":                nil,
		"/":               nil,
		"Screen":          {"Screen"},
		"Screen/Placement": {"Screen", "Placement"},
		"/Screen//Model/": {"Screen", "Model"},
	}

	for in, want := range tests {
		if got := splitPath(in); !slices.Equal(got, want) {
			t.Errorf("splitPath(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestError_Is(t *testing.T) {
	t.Parallel()

	err := ErrNotFound.With().Wrap(os.ErrNotExist)

	if !errors.Is(err, ErrNotFound) {
		t.Error("expected derived error to match sentinel")
	}

	if !errors.Is(err, os.ErrNotExist) {
		t.Error("expected derived error to match cause")
	}

	if errors.Is(err, ErrLoad) {
		t.Error("unexpected match against another sentinel")
	}

	if got := err.Error(); got != "entry not found: "+os.ErrNotExist.Error() {
		t.Errorf("Error() = %q", got)
	}
}

func requireShell(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(cfg.DefaultShell); err != nil {
		t.Skip("no shell available")
	}
}
