package cfg

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ardnew/wmconf/log"
)

// DefaultShell runs COMMAND directives.
const DefaultShell = "/bin/sh"

const (
	keywordInclude = "INCLUDE"
	keywordCommand = "COMMAND"
)

// blanks separate a statement name from anything following it.
const blanks = " \t\r\n"

// Parser reads configuration sources into a [Tree].
//
// The tree and the variables persist across calls to [Parser.Parse], so
// several roots may be parsed into one tree, until [Parser.Reset]. A Parser
// is not safe for concurrent use.
type Parser struct {
	logger log.Logger
	shell  string
	stderr io.Writer

	ctx   context.Context
	tree  *Tree
	vars  *Vars
	stack []*source
	src   *source // most recently active source
	files []string

	scope int
	saved []int

	name     []byte
	value    []byte
	nameSrc  string
	nameLine int
}

// Option configures a [Parser].
type Option func(*Parser)

// WithLogger sets the logger that receives parse diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// WithShell sets the shell that runs COMMAND directives as "shell -c cmd".
func WithShell(shell string) Option {
	return func(p *Parser) { p.shell = shell }
}

// WithStderr directs the standard error of COMMAND directives to w.
func WithStderr(w io.Writer) Option {
	return func(p *Parser) { p.stderr = w }
}

// NewParser returns a Parser with an empty tree.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		logger: log.Default(),
		shell:  DefaultShell,
		stderr: os.Stderr,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.Reset()

	return p
}

// Reset discards the tree, the variables, and the list of files read.
func (p *Parser) Reset() {
	p.tree = newTree(p.logger)
	p.vars = newVars(p.logger)
	p.files = nil
	p.clear()
}

// Root returns the top-level section of the tree.
func (p *Parser) Root() Section { return p.tree.Root() }

// Tree returns the tree built so far.
func (p *Parser) Tree() *Tree { return p.tree }

// Vars returns the variable store.
func (p *Parser) Vars() *Vars { return p.vars }

// Files returns the path of every file opened so far, in the order opened.
func (p *Parser) Files() []string { return slices.Clone(p.files) }

// Parse reads d and every source it includes into the tree and returns the
// root section. The only error is [ErrOpenSource] or [ErrStartCommand] when
// d itself cannot be opened; every other problem is logged and skipped.
//
// ctx bounds the lifetime of command subprocesses.
func (p *Parser) Parse(ctx context.Context, d Descriptor) (Section, error) {
	p.ctx = ctx
	p.scope, p.saved = 0, p.saved[:0]
	p.clear()

	defer func() { p.ctx = nil }()

	s, err := p.open(d)
	if err != nil {
		return p.tree.Root(), err
	}

	p.stack = append(p.stack, s)

	defer p.unwind()

	p.run()

	if len(p.saved) > 0 {
		p.logger.WarnContext(ctx, "missing closing brace",
			slog.String("source", d.Name),
			slog.Int("open", len(p.saved)))
	}

	p.logger.DebugContext(ctx, "parse complete",
		slog.String("source", d.Name),
		slog.Int("entries", p.tree.Len()))

	return p.tree.Root(), nil
}

// run reads the top of the stack until it is exhausted, then pops it, until
// the stack is empty. A statement left pending at the very end is finished,
// which may push another source.
func (p *Parser) run() {
	for {
		for len(p.stack) > 0 {
			s := p.stack[len(p.stack)-1]
			p.src = s

			if p.scan(s) {
				p.pop()
			}
		}

		if len(p.name) == 0 {
			return
		}

		p.finishEntry()

		if len(p.stack) == 0 {
			return
		}
	}
}

// scan dispatches characters from s. It returns true when s is exhausted and
// false when a directive pushed a new source on top of it.
func (p *Parser) scan(s *source) bool {
	for {
		c, ok := s.getc()
		if !ok {
			return true
		}

		switch c {
		case '\n':
			if next, ok := p.skipBlank(s); !ok || next != '{' {
				p.finishEntry()
			}

		case ';':
			p.finishEntry()

		case '{':
			p.finishSection()

		case '}':
			p.closeSection()

		case '=':
			p.value = p.value[:0]
			p.parseValue(s)

		case '#':
			p.skipLine(s)

		case '/':
			next, ok := s.getc()

			switch {
			case ok && next == '/':
				p.skipLine(s)
			case ok && next == '*':
				p.skipBlock(s)
			default:
				p.appendName('/')

				if ok {
					s.ungetc(next)
				}
			}

		default:
			p.appendName(c)
		}

		if p.stack[len(p.stack)-1] != s {
			return false
		}
	}
}

func (p *Parser) appendName(c byte) {
	if p.nameLine == 0 && strings.IndexByte(blanks, c) < 0 {
		p.nameSrc, p.nameLine = p.src.name, p.src.line
	}

	p.name = append(p.name, c)
}

// parseValue reads a quoted value following '='.
func (p *Parser) parseValue(s *source) {
	garbage := false

	for {
		c, ok := s.getc()
		if !ok {
			p.logger.Warn("end of input before opening quote", s.attrs()...)
			p.clear()

			return
		}

		if c == '"' {
			break
		}

		if !isSpace(c) {
			garbage = true
		}
	}

	if garbage {
		p.logger.Warn("garbage before opening quote", s.attrs()...)
	}

	for {
		c, ok := s.getc()
		if !ok {
			p.logger.Warn("end of input before closing quote", s.attrs()...)

			return
		}

		switch c {
		case '\\':
			next, ok := s.getc()
			if !ok {
				p.logger.Warn("end of input before closing quote", s.attrs()...)

				return
			}

			if next != '\n' {
				p.value = append(p.value, next)
			}

		case '"':
			return

		default:
			p.value = append(p.value, c)
		}
	}
}

// finishEntry completes the pending statement. Without a value the name is
// silently discarded.
func (p *Parser) finishEntry() {
	defer p.clear()

	if len(p.value) == 0 {
		return
	}

	attrs := p.pendingAttrs()

	name, ok := parseName(p.name)
	if !ok {
		p.logger.Warn("dropping entry with empty name", attrs...)

		return
	}

	value := string(p.value)

	if name[0] == varMarker {
		p.vars.define(name, value, attrs...)

		return
	}

	value = p.vars.expand(value, attrs...)

	switch name {
	case keywordInclude:
		p.include(File(value), attrs)
	case keywordCommand:
		p.include(Command(value), attrs)
	default:
		p.tree.add(p.scope, name, value, p.nameSrc, p.nameLine)
	}
}

// finishSection handles '{'. A section without a name is not added, but its
// scope is still tracked so that the matching '}' does not close the
// enclosing section.
func (p *Parser) finishSection() {
	defer p.clear()

	p.saved = append(p.saved, p.scope)

	name, ok := parseName(p.name)
	if !ok {
		p.logger.Warn("ignoring section with empty name", p.pendingAttrs()...)

		return
	}

	idx := p.tree.add(p.scope, name, string(p.value), p.nameSrc, p.nameLine)
	p.scope = p.tree.open(idx)
}

// closeSection handles '}'.
func (p *Parser) closeSection() {
	if len(p.saved) == 0 {
		p.logger.Warn("extra closing brace", p.src.attrs()...)

		return
	}

	p.finishEntry()

	p.scope = p.saved[len(p.saved)-1]
	p.saved = p.saved[:len(p.saved)-1]
}

// include opens a directive source and pushes it on the stack.
func (p *Parser) include(d Descriptor, attrs []slog.Attr) {
	s, err := p.open(d)
	if err != nil {
		p.logger.Warn("skipping "+strings.ToLower(keyword(d.Kind)),
			append(attrs, slog.Any("error", err))...)

		return
	}

	p.stack = append(p.stack, s)
}

// open opens d. A file that cannot be opened by its own name is retried
// relative to the directory of the file currently being read.
func (p *Parser) open(d Descriptor) (*source, error) {
	ctx := p.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := openSource(ctx, d, p.shell, p.stderr)
	if err != nil && d.Kind == KindFile && !filepath.IsAbs(d.Name) &&
		len(p.stack) > 0 && p.stack[len(p.stack)-1].kind == KindFile {
		alt := filepath.Join(filepath.Dir(p.stack[len(p.stack)-1].name), d.Name)

		p.logger.Debug("retrying relative to including file",
			slog.String("file", d.Name), slog.String("path", alt))

		d.Name = alt
		s, err = openSource(ctx, d, p.shell, p.stderr)
	}

	if err != nil {
		return nil, err
	}

	if d.Kind == KindFile {
		p.files = append(p.files, d.Name)
	}

	return s, nil
}

// pop closes and removes the top of the stack.
func (p *Parser) pop() {
	s := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]

	if err := s.close(false); err != nil {
		p.logger.Warn("closing source", slog.String("source", s.name),
			slog.Any("error", err))
	}
}

// unwind closes every source left open, newest first.
func (p *Parser) unwind() {
	for i := len(p.stack) - 1; i >= 0; i-- {
		_ = p.stack[i].close(true)
	}

	p.stack = p.stack[:0]
}

// skipBlank consumes white space and returns the first other byte, which is
// pushed back.
func (p *Parser) skipBlank(s *source) (byte, bool) {
	for {
		c, ok := s.getc()
		if !ok {
			return 0, false
		}

		if !isSpace(c) {
			s.ungetc(c)

			return c, true
		}
	}
}

// skipLine discards through the end of the line, leaving the newline to end
// the pending statement.
func (p *Parser) skipLine(s *source) {
	for {
		c, ok := s.getc()
		if !ok {
			return
		}

		if c == '\n' {
			s.ungetc(c)

			return
		}
	}
}

// skipBlock discards through "*/".
func (p *Parser) skipBlock(s *source) {
	star := false

	for {
		c, ok := s.getc()
		if !ok {
			p.logger.Warn("end of input before closing comment", s.attrs()...)

			return
		}

		if star && c == '/' {
			return
		}

		star = c == '*'
	}
}

func (p *Parser) clear() {
	p.name = p.name[:0]
	p.value = p.value[:0]
	p.nameSrc, p.nameLine = "", 0
}

// pendingAttrs locates the pending statement for diagnostics.
func (p *Parser) pendingAttrs() []slog.Attr {
	if p.nameLine == 0 {
		if p.src == nil {
			return nil
		}

		p.nameSrc, p.nameLine = p.src.name, p.src.line
	}

	return []slog.Attr{slog.String("source", p.nameSrc), slog.Int("line", p.nameLine)}
}

// parseName returns the first word of buf.
func parseName(buf []byte) (string, bool) {
	s := strings.TrimLeft(string(buf), blanks)
	if s == "" {
		return "", false
	}

	if i := strings.IndexAny(s, blanks); i >= 0 {
		s = s[:i]
	}

	return s, true
}

func keyword(k Kind) string {
	if k == KindCommand {
		return keywordCommand
	}

	return keywordInclude
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
