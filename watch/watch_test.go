package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ardnew/wmconf/log"
)

func TestRun_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	other := filepath.Join(dir, "unrelated")

	if err := os.WriteFile(path, []byte("a"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loads := make(chan int, 16)

	var n atomic.Int32

	load := func(context.Context) ([]string, error) {
		loads <- int(n.Add(1))

		return []string{path}, nil
	}

	done := make(chan error, 1)

	go func() {
		done <- Run(ctx, load, WithDelay(100*time.Millisecond), WithLogger(log.Discard()))
	}()

	waitLoad(t, loads, 1)

	if err := os.WriteFile(other, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	for range 3 {
		if err := os.WriteFile(path, []byte("b"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	waitLoad(t, loads, 2)

	select {
	case got := <-loads:
		t.Errorf("unexpected reload %d", got)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()

	if err := <-done; err != nil {
		t.Errorf("Run() = %v", err)
	}
}

func TestRun_FailedLoadKeepsRunning(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := Run(ctx, func(context.Context) ([]string, error) {
		return nil, errors.New("broken")
	}, WithLogger(log.Discard()))
	if err != nil {
		t.Errorf("Run() = %v", err)
	}
}

func waitLoad(t *testing.T, loads <-chan int, want int) {
	t.Helper()

	select {
	case got := <-loads:
		if got != want {
			t.Fatalf("load %d, want %d", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for load %d", want)
	}
}
