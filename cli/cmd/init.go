package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/wmconf/cfg"
	"github.com/ardnew/wmconf/log"
	"github.com/ardnew/wmconf/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a configuration file holding the current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	// Round-trip through the parser so the file is written in canonical form.
	p := cfg.NewParser(cfg.WithLogger(log.Default()))

	root, err := p.Parse(ctx, cfg.String(confPath, i.render(ctx)))
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	err = root.Format(ctx, file, defaultConfigIndent)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// render returns a configuration section named [Section] holding one entry
// per visible flag that has a value.
func (i *Init) render(ctx context.Context) string {
	ktx := kongContextFrom(ctx)

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s {\n", Section)

	prefixIgnore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		val, ok := flagValue(ktx, flag)
		if !ok {
			continue
		}

		fmt.Fprintf(&sb, "%s = %s;\n",
			strings.ReplaceAll(flag.Name, "-", "_"), cfg.Quote(val))
	}

	sb.WriteString("}\n")

	return sb.String()
}

// flagValue returns the text of a flag value as the resolver reads it back,
// or false if the flag is unset or empty.
func flagValue(ktx *kong.Context, flag *kong.Flag) (string, bool) {
	val := ktx.FlagValue(flag)
	if val == nil {
		return "", false
	}

	var s string

	switch v := val.(type) {
	case bool:
		s = strconv.FormatBool(v)

	case string:
		s = v

	case []string:
		s = strings.Join(v, ",")

	case map[string]string:
		keys := slices.Sorted(maps.Keys(v))

		pairs := make([]string, len(keys))
		for j, k := range keys {
			pairs[j] = k + "=" + v[k]
		}

		s = strings.Join(pairs, ";")

	default:
		s = fmt.Sprint(v)
	}

	return s, s != ""
}
