package cli

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"slices"

	"github.com/alecthomas/kong"

	"github.com/ardnew/wmconf/cfg"
	"github.com/ardnew/wmconf/cli/cmd"
	"github.com/ardnew/wmconf/log"
	"github.com/ardnew/wmconf/pkg"
)

// CLI is the top-level command-line interface for wmconf.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Source []string          `default:"${wmConfig}" help:"Configuration source file(s), '-' for stdin, or '!command'" name:"source" short:"s"`
	Shell  string            `default:"${shell}"    help:"Shell that runs COMMAND directives"`
	Set    map[string]string `help:"Export environment variables before parsing" placeholder:"KEY=VALUE"`

	Version kong.VersionFlag `help:"Print version and exit"`

	Init  cmd.Init  `cmd:"" help:"Initialize configuration file"`
	Dump  cmd.Dump  `cmd:"" default:"withargs" help:"Print the parsed configuration"`
	Get   cmd.Get   `cmd:"" help:"Print entry values by path"`
	Keys  cmd.Keys  `cmd:"" help:"Extract typed values from a section"`
	Watch cmd.Watch `cmd:"" help:"Print the configuration again whenever a file it reads changes"`
}

// Run executes the wmconf CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
		"wmConfig":           wmConfigPath(),
		"shell":              cfg.DefaultShell,
		"version":            pkg.Version,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(ctx, cmd.Section), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	if err := export(ctx, cli.Set); err != nil {
		return err
	}

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithOptions(ctx, cmd.Options{
		Sources: cli.Source,
		Shell:   cli.Shell,
	})

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	// Execute the selected command
	return ktx.Run(ctx, &cli)
}

// export sets each variable in the process environment, where the parser
// resolves $_NAME references and commands inherit it.
func export(ctx context.Context, set map[string]string) error {
	for _, key := range slices.Sorted(maps.Keys(set)) {
		if key == "" {
			return pkg.ErrSetEnv.Wrapf("empty name")
		}

		if err := os.Setenv(key, set[key]); err != nil {
			return pkg.ErrSetEnv.Wrap(err)
		}

		log.DebugContext(ctx, "exported", slog.String("name", key))
	}

	return nil
}
