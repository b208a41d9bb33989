package cfg

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/go-playground/validator/v10"
)

// Key extracts one typed value from a section. Build keys with [StringKey],
// [BoolKey], [IntKey], [FloatKey], [DurationKey], and [EnumKey].
type Key struct {
	name  string
	apply func(raw string) error
}

// Name returns the entry name the key matches.
func (k Key) Name() string { return k.name }

// Apply parses raw and, if it passes every check, stores the result in the
// key's target.
func (k Key) Apply(raw string) error { return k.apply(raw) }

// Modifier adds a check to a [Key].
type Modifier func(*checks)

type checks struct {
	bounded  bool
	min, max float64
	tags     []string
	where    []string
}

// Range rejects values outside [lo, hi]. Numbers are compared directly,
// durations in seconds, and strings by length.
func Range(lo, hi float64) Modifier {
	return func(c *checks) { c.bounded, c.min, c.max = true, lo, hi }
}

// Tag validates the raw value with a validator tag such as "hexcolor" or
// "oneof=Left Right".
func Tag(tag string) Modifier {
	return func(c *checks) { c.tags = append(c.tags, tag) }
}

// Where rejects values for which the boolean expression is false. The
// expression sees the parsed value as "value", the raw text as "raw", and
// the key name as "name".
func Where(expression string) Modifier {
	return func(c *checks) { c.where = append(c.where, expression) }
}

var validate = validator.New()

// StringKey stores the value unchanged.
func StringKey(name string, dst *string, mods ...Modifier) Key {
	return makeKey(name, dst, func(raw string) (string, error) { return raw, nil }, mods)
}

// BoolKey accepts true, yes, on, and 1 as true and false, no, off, and 0 as
// false, ignoring case.
func BoolKey(name string, dst *bool, mods ...Modifier) Key {
	return makeKey(name, dst, parseBool, mods)
}

// IntKey parses a decimal, hexadecimal (0x), or octal (0o) integer.
func IntKey(name string, dst *int, mods ...Modifier) Key {
	return makeKey(name, dst, func(raw string) (int, error) {
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 0, 0)

		return int(n), err
	}, mods)
}

// FloatKey parses a floating point number.
func FloatKey(name string, dst *float64, mods ...Modifier) Key {
	return makeKey(name, dst, func(raw string) (float64, error) {
		return strconv.ParseFloat(strings.TrimSpace(raw), 64)
	}, mods)
}

// DurationKey parses a duration such as "250ms" or "1m30s".
func DurationKey(name string, dst *time.Duration, mods ...Modifier) Key {
	return makeKey(name, dst, func(raw string) (time.Duration, error) {
		return time.ParseDuration(strings.TrimSpace(raw))
	}, mods)
}

// EnumKey accepts one of choices, ignoring case, and stores the choice as
// spelled in choices.
func EnumKey(name string, dst *string, choices []string, mods ...Modifier) Key {
	return makeKey(name, dst, func(raw string) (string, error) {
		for _, c := range choices {
			if strings.EqualFold(strings.TrimSpace(raw), c) {
				return c, nil
			}
		}

		return "", fmt.Errorf("want one of %s", strings.Join(choices, ", "))
	}, mods)
}

func makeKey[T any](
	name string,
	dst *T,
	parse func(string) (T, error),
	mods []Modifier,
) Key {
	var c checks

	for _, mod := range mods {
		mod(&c)
	}

	var zero T

	env := map[string]any{"value": zero, "raw": "", "name": name}
	programs := make([]*vm.Program, 0, len(c.where))

	var compileErr error

	for _, src := range c.where {
		prog, err := expr.Compile(src, expr.Env(env), expr.AsBool())
		if err != nil {
			compileErr = errors.Join(compileErr,
				ErrConstraint.Wrap(err).With(slog.String("expr", src)))

			continue
		}

		programs = append(programs, prog)
	}

	return Key{name: name, apply: func(raw string) error {
		if compileErr != nil {
			return compileErr
		}

		v, err := parse(raw)
		if err != nil {
			return ErrInvalidValue.Wrap(err)
		}

		for _, tag := range c.tags {
			if err := validate.Var(raw, tag); err != nil {
				return ErrValidation.Wrap(err).With(slog.String("tag", tag))
			}
		}

		if c.bounded {
			if f, ok := measure(v); ok && (f < c.min || f > c.max) {
				return ErrOutOfRange.With(
					slog.Float64("min", c.min), slog.Float64("max", c.max))
			}
		}

		env := map[string]any{"value": v, "raw": raw, "name": name}

		for i, prog := range programs {
			out, err := expr.Run(prog, env)
			if err != nil {
				return ErrConstraint.Wrap(err).With(slog.String("expr", c.where[i]))
			}

			if ok, _ := out.(bool); !ok {
				return ErrConstraint.With(slog.String("expr", c.where[i]))
			}
		}

		*dst = v

		return nil
	}}
}

func measure(v any) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case float64:
		return v, true
	case time.Duration:
		return v.Seconds(), true
	case string:
		return float64(len(v)), true
	default:
		return 0, false
	}
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", raw)
	}
}

// ParseKeys applies each key to the first direct child without a section
// that has the key's name. Keys without a matching entry are skipped. A
// value that fails to parse or validate is logged and leaves the key's
// target untouched; the returned error joins every such failure.
func (s Section) ParseKeys(keys ...Key) error {
	var errs []error

	for _, k := range keys {
		e, ok := s.FindEntry(k.name)
		if !ok {
			continue
		}

		if err := k.apply(e.Value()); err != nil {
			s.tree.logger.Warn("invalid value",
				slog.String("source", e.Source()),
				slog.Int("line", e.Line()),
				slog.String("key", k.name),
				slog.String("value", e.Value()),
				slog.Any("error", err))

			errs = append(errs, WrapError(err).With(
				slog.String("key", k.name),
				slog.String("source", e.Source()),
				slog.Int("line", e.Line())))
		}
	}

	return errors.Join(errs...)
}
