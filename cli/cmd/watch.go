package cmd

import (
	"context"
	"time"

	"github.com/ardnew/wmconf/log"
	"github.com/ardnew/wmconf/watch"
)

// Watch dumps the configuration, then dumps it again each time a file it was
// read from changes.
type Watch struct {
	Output `embed:""`

	Delay time.Duration `default:"500ms" help:"Quiet period before reloading after a change"`
}

// Run executes the watch command until ctx is done.
func (w *Watch) Run(ctx context.Context) error {
	opts := optionsFrom(ctx)

	reload := func(ctx context.Context) ([]string, error) {
		p, root, err := load(ctx, opts)
		if err != nil {
			return p.Files(), err
		}

		return p.Files(), w.write(ctx, opts.Stdout, root)
	}

	return watch.Run(ctx, reload,
		watch.WithLogger(log.Default()),
		watch.WithDelay(w.Delay),
	)
}
