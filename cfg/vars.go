package cfg

import (
	"log/slog"
	"maps"
	"os"
	"strings"

	"github.com/ardnew/wmconf/log"
)

const (
	varMarker = '$'
	envMarker = '_'
)

// Vars maps variable names, marker included, to their raw values.
type Vars struct {
	values map[string]string
	logger log.Logger
}

func newVars(logger log.Logger) *Vars {
	return &Vars{
		values: make(map[string]string),
		logger: logger,
	}
}

// Define stores value under name. A name of the form $_NAME also sets the
// environment variable NAME.
func (v *Vars) Define(name, value string) {
	v.define(name, value)
}

func (v *Vars) define(name, value string, attrs ...slog.Attr) {
	v.values[name] = value

	if env, ok := envName(name); ok {
		if err := os.Setenv(env, value); err != nil {
			v.logger.Warn("cannot export variable",
				append(attrs, slog.String("variable", name),
					slog.Any("error", ErrSetEnv.Wrap(err)))...)
		}
	}
}

// Lookup returns the raw value of name.
func (v *Vars) Lookup(name string) (string, bool) {
	value, ok := v.values[name]

	return value, ok
}

// All returns a copy of every defined variable.
func (v *Vars) All() map[string]string {
	return maps.Clone(v.values)
}

// Expand substitutes every $NAME and $_NAME reference in text.
//
// A marker preceded by a backslash is left alone. A reference that cannot be
// resolved is kept verbatim and logged. Resolved values are inserted as they
// are and scanning resumes after them, so a value holding a reference is
// never expanded a second time.
func (v *Vars) Expand(text string) string {
	return v.expand(text)
}

func (v *Vars) expand(text string, attrs ...slog.Attr) string {
	if strings.IndexByte(text, varMarker) < 0 {
		return text
	}

	var b strings.Builder

	b.Grow(len(text))

	for i := 0; i < len(text); {
		// The backslash test looks at the output so far, which may end with a
		// spliced value.
		c := text[i]
		if c != varMarker || strings.HasSuffix(b.String(), `\`) {
			b.WriteByte(c)
			i++

			continue
		}

		j := i + 1
		for j < len(text) && isNameByte(text[j]) {
			j++
		}

		ref := text[i:j]
		i = j

		if len(ref) == 1 {
			b.WriteByte(varMarker)

			continue
		}

		if value, ok := v.resolve(ref, attrs); ok {
			b.WriteString(value)
		} else {
			b.WriteString(ref)
		}
	}

	return b.String()
}

func (v *Vars) resolve(ref string, attrs []slog.Attr) (string, bool) {
	if env, ok := envName(ref); ok {
		value, ok := os.LookupEnv(env)
		if !ok {
			v.logger.Warn("undefined environment variable",
				append(attrs, slog.String("variable", ref))...)
		}

		return value, ok
	}

	value, ok := v.values[ref]
	if !ok {
		v.logger.Warn("undefined variable",
			append(attrs, slog.String("variable", ref))...)
	}

	return value, ok
}

// envName returns NAME for a reference of the form $_NAME.
func envName(ref string) (string, bool) {
	if len(ref) > 2 && ref[0] == varMarker && ref[1] == envMarker {
		return ref[2:], true
	}

	return "", false
}

func isNameByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
