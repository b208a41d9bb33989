package cfg

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// commandWaitDelay bounds how long closing a command waits for its output
// pipes once the process is gone or killed.
const commandWaitDelay = time.Second

// Kind identifies where a source reads its characters from.
type Kind int

const (
	// KindFile reads a file.
	KindFile Kind = iota
	// KindCommand reads the standard output of a shell command.
	KindCommand
	// KindString reads an in-memory string.
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindCommand:
		return "command"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Descriptor names a source to be parsed.
type Descriptor struct {
	Kind Kind
	// Name is the file path or the command line. For string sources it only
	// labels entries and diagnostics.
	Name string
	// Text is the content of a string source.
	Text string
}

// File describes the file at path.
func File(path string) Descriptor {
	return Descriptor{Kind: KindFile, Name: path}
}

// Command describes the standard output of cmdline run by the shell.
func Command(cmdline string) Descriptor {
	return Descriptor{Kind: KindCommand, Name: cmdline}
}

// String describes in-memory text labeled name.
func String(name, text string) Descriptor {
	return Descriptor{Kind: KindString, Name: name, Text: text}
}

// source is one open input on the parser's stack.
type source struct {
	kind Kind
	name string
	line int

	r      *bufio.Reader
	closer io.Closer
	cmd    *exec.Cmd

	back    byte
	hasBack bool
}

// openSource opens d. Commands are started with shell in their own process
// group and inherit the current process environment. Cancelling ctx kills the
// whole group.
func openSource(
	ctx context.Context,
	d Descriptor,
	shell string,
	stderr io.Writer,
) (*source, error) {
	s := &source{kind: d.Kind, name: d.Name, line: 1}

	switch d.Kind {
	case KindFile:
		f, err := os.Open(d.Name)
		if err != nil {
			return nil, ErrOpenSource.Wrap(err).With(slog.String("file", d.Name))
		}

		s.r, s.closer = bufio.NewReader(f), f

	case KindCommand:
		cmd := exec.CommandContext(ctx, shell, "-c", d.Name)
		cmd.Stderr = stderr
		cmd.WaitDelay = commandWaitDelay
		cmd.Cancel = func() error { return killProcessGroup(cmd) }
		setProcessGroup(cmd)

		out, err := cmd.StdoutPipe()
		if err != nil {
			return nil, ErrStartCommand.Wrap(err).With(slog.String("command", d.Name))
		}

		if err := cmd.Start(); err != nil {
			return nil, ErrStartCommand.Wrap(err).With(slog.String("command", d.Name))
		}

		s.r, s.cmd = bufio.NewReader(out), cmd

	case KindString:
		s.r = bufio.NewReader(strings.NewReader(d.Text))

	default:
		return nil, ErrOpenSource.With(slog.String("kind", d.Kind.String()))
	}

	return s, nil
}

// getc returns the next byte, or false at end of input.
func (s *source) getc() (byte, bool) {
	var c byte

	if s.hasBack {
		c, s.hasBack = s.back, false
	} else {
		b, err := s.r.ReadByte()
		if err != nil {
			return 0, false
		}

		c = b
	}

	if c == '\n' {
		s.line++
	}

	return c, true
}

// ungetc pushes c back for the next getc. Only one byte is held.
func (s *source) ungetc(c byte) {
	if c == '\n' {
		s.line--
	}

	s.back, s.hasBack = c, true
}

// close releases the source. For commands it waits for the process to exit;
// with kill set its process group is killed first, since nobody drains its
// output.
func (s *source) close(kill bool) error {
	switch {
	case s.cmd != nil:
		if kill {
			_ = killProcessGroup(s.cmd)
		}

		if err := s.cmd.Wait(); err != nil && !kill {
			return ErrCommandExit.Wrap(err).With(slog.String("command", s.name))
		}

	case s.closer != nil:
		return s.closer.Close()
	}

	return nil
}

func (s *source) attrs() []slog.Attr {
	return []slog.Attr{slog.String("source", s.name), slog.Int("line", s.line)}
}
