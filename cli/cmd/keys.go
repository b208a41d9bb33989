package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ardnew/wmconf/cfg"
)

// Keys extracts typed values from one section with rules given on the
// command line, and prints every value in the configuration language.
type Keys struct {
	Section string   `arg:"" help:"Section path, '/' for the top level"`
	Rule    []string `arg:"" help:"Rule NAME=TYPE[:TAG], TYPE one of string, bool, int, float, duration, enum(A|B|...)"`

	Where map[string]string `help:"Expression NAME=EXPR that the value must satisfy" placeholder:"NAME=EXPR"`
	Range map[string]string `help:"Bounds NAME=LO:HI for numbers, durations (seconds), or string length" placeholder:"NAME=LO:HI"`
}

// binding is one parsed rule with the variable its key writes to.
type binding struct {
	name  string
	key   cfg.Key
	value func() any
}

// Run executes the keys command. Values that fail to parse keep their zero
// value and the command reports an error after printing.
func (k *Keys) Run(ctx context.Context) error {
	opts := optionsFrom(ctx)

	bindings := make([]binding, 0, len(k.Rule))

	for _, rule := range k.Rule {
		b, err := k.bind(rule)
		if err != nil {
			return err
		}

		bindings = append(bindings, b)
	}

	_, root, err := load(ctx, opts)
	if err != nil {
		return err
	}

	sec := root

	if path := splitPath(k.Section); len(path) > 0 {
		e, ok := root.Lookup(path...)
		if !ok || !e.HasSection() {
			return ErrNotFound.With(slog.String("section", k.Section))
		}

		sec, _ = e.Section()
	}

	keys := make([]cfg.Key, len(bindings))
	for i, b := range bindings {
		keys[i] = b.key
	}

	parseErr := sec.ParseKeys(keys...)

	for _, b := range bindings {
		_, err := fmt.Fprintf(opts.Stdout, "%s = %s;\n",
			b.name, cfg.Quote(fmt.Sprint(b.value())))
		if err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	if parseErr != nil {
		return ErrInvalidKeys.With(slog.String("section", k.Section)).Wrap(parseErr)
	}

	return nil
}

// bind parses one NAME=TYPE[:TAG] rule.
func (k *Keys) bind(rule string) (binding, error) {
	name, kind, ok := strings.Cut(rule, "=")
	if !ok || name == "" || kind == "" {
		return binding{}, ErrInvalidRule.With(slog.String("rule", rule))
	}

	raw, tag, _ := strings.Cut(kind, ":")
	typ := strings.ToLower(raw)

	mods, err := k.modifiers(name, tag)
	if err != nil {
		return binding{}, ErrInvalidRule.With(slog.String("rule", rule)).Wrap(err)
	}

	switch {
	case typ == "string":
		var v string

		return binding{name, cfg.StringKey(name, &v, mods...), func() any { return v }}, nil

	case typ == "bool":
		var v bool

		return binding{name, cfg.BoolKey(name, &v, mods...), func() any { return v }}, nil

	case typ == "int":
		var v int

		return binding{name, cfg.IntKey(name, &v, mods...), func() any { return v }}, nil

	case typ == "float":
		var v float64

		return binding{name, cfg.FloatKey(name, &v, mods...), func() any { return v }}, nil

	case typ == "duration":
		var v time.Duration

		return binding{name, cfg.DurationKey(name, &v, mods...), func() any { return v }}, nil

	case strings.HasPrefix(typ, "enum(") && strings.HasSuffix(typ, ")"):
		choices := strings.Split(raw[len("enum("):len(raw)-1], "|")

		var v string

		return binding{name, cfg.EnumKey(name, &v, choices, mods...), func() any { return v }}, nil

	default:
		return binding{}, ErrInvalidRule.With(
			slog.String("rule", rule),
			slog.String("type", typ),
		)
	}
}

func (k *Keys) modifiers(name, tag string) ([]cfg.Modifier, error) {
	var mods []cfg.Modifier

	if tag != "" {
		mods = append(mods, cfg.Tag(tag))
	}

	if src, ok := k.Where[name]; ok {
		mods = append(mods, cfg.Where(src))
	}

	if bounds, ok := k.Range[name]; ok {
		los, his, ok := strings.Cut(bounds, ":")
		if !ok {
			return nil, fmt.Errorf("range %q: want LO:HI", bounds)
		}

		lo, err := strconv.ParseFloat(strings.TrimSpace(los), 64)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", bounds, err)
		}

		hi, err := strconv.ParseFloat(strings.TrimSpace(his), 64)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", bounds, err)
		}

		mods = append(mods, cfg.Range(lo, hi))
	}

	return mods, nil
}
