package profile

// Stopper ends a profile and flushes it to disk.
type Stopper interface{ Stop() }

// Config selects a profiling mode and output directory.
type Config struct {
	Mode  string
	Dir   string
	Quiet bool
}

// Option modifies a [Config].
type Option func(Config) Config

// WithMode sets the profiling mode, one of [Modes].
func WithMode(mode string) Option {
	return func(c Config) Config {
		c.Mode = mode

		return c
	}
}

// WithDir sets the directory profiles are written to.
func WithDir(dir string) Option {
	return func(c Config) Config {
		c.Dir = dir

		return c
	}
}

// WithQuiet suppresses the profiler's own log output.
func WithQuiet(quiet bool) Option {
	return func(c Config) Config {
		c.Quiet = quiet

		return c
	}
}

// New returns a Config with opts applied.
func New(opts ...Option) Config {
	var c Config

	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// Start starts the profiler. Without the pprof build tag, or with an empty
// or unknown mode, it returns a no-op. Both Start and Stop are always safely
// callable.
func (c Config) Start() Stopper {
	if c.Mode == "" {
		return ignore{}
	}

	return start(c)
}

type ignore struct{}

func (ignore) Stop() {}
