package cmd

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func TestWatch_Reload(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `Name = "before"`)

	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(run(t, &out, path), 2*time.Second)
	defer cancel()

	go func() {
		time.Sleep(300 * time.Millisecond)

		_ = os.WriteFile(path, []byte(`Name = "after"`), 0o644)
	}()

	w := &Watch{Output: Output{Format: FormatNative}, Delay: 50 * time.Millisecond}
	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := out.String()

	before := strings.Index(got, `Name = "before";`)
	after := strings.Index(got, `Name = "after";`)

	if before < 0 || after < 0 || after < before {
		t.Errorf("expected a dump before and after the change, got:\n%s", got)
	}
}

func TestWatch_MissingSource(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(run(t, &out, "/nonexistent/wmconf/config"), 100*time.Millisecond)
	defer cancel()

	w := &Watch{Output: Output{Format: FormatNative}, Delay: 10 * time.Millisecond}
	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}
