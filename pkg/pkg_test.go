package pkg

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	expected := "wmconf"
	if Name != expected {
		t.Errorf("Expected Name to be %q, got %q", expected, Name)
	}
}

func TestDescription(t *testing.T) {
	if Description == "" {
		t.Error("Expected Description to be non-empty")
	}
}

func TestVersion(t *testing.T) {
	// Version is embedded from the VERSION file next to this test.
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("Failed to read VERSION file: %v", err)
	}

	if content := strings.TrimSpace(string(buf)); Version != content {
		t.Errorf("Expected Version to be %q, got %q", content, Version)
	}
}

func TestAuthor(t *testing.T) {
	if len(Author) == 0 {
		t.Fatal("Expected Author to have at least one entry")
	}

	if !slices.ContainsFunc(Author, func(a AuthorInfo) bool {
		return a.Name == "ardnew" && a.Email == "andrew@ardnew.com"
	}) {
		t.Errorf("Expected Author to contain ardnew")
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestError(t *testing.T) {
	cause := os.ErrPermission
	err := ErrConfigDir.Wrap(cause)

	if got, want := err.Error(), "failed to create runtime directory: "+cause.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if !errors.Is(err, ErrConfigDir) {
		t.Error("expected chain to match its sentinel")
	}

	if !errors.Is(err, os.ErrPermission) {
		t.Error("expected chain to match its cause")
	}

	if errors.Is(err, ErrSetEnv) {
		t.Error("unexpected match against an unrelated sentinel")
	}

	if len(ErrConfigDir) != 1 {
		t.Errorf("Wrap modified the sentinel: %v", ErrConfigDir)
	}
}

func TestMakeError(t *testing.T) {
	if MakeError() != nil {
		t.Error("expected nil for no errors")
	}

	if MakeError(nil, nil) != nil {
		t.Error("expected nil for nil errors")
	}

	inner := errors.New("inner")
	chain := MakeError(inner, ErrConfigDir)

	if len(chain) == 0 || chain[0] != inner {
		t.Errorf("unexpected chain %v", chain)
	}

	if !errors.Is(chain, ErrConfigDir) {
		t.Error("expected chain to match ErrConfigDir")
	}

	if got := UnwrapErrors(nil); got != nil {
		t.Errorf("UnwrapErrors(nil) = %v", got)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if filepath.Base(dir) != Prefix() {
		t.Errorf("ConfigDir() = %q, want base %q", dir, Prefix())
	}
}

func TestUserDir(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	failing := func() (string, error) { return "", os.ErrNotExist }

	if got, want := userDir(failing, ".cache"), filepath.Join("/home/tester", ".cache", Prefix()); got != want {
		t.Errorf("userDir() = %q, want %q", got, want)
	}

	working := func() (string, error) { return "/xdg", nil }

	if got, want := userDir(working, ".cache"), filepath.Join("/xdg", Prefix()); got != want {
		t.Errorf("userDir() = %q, want %q", got, want)
	}
}
