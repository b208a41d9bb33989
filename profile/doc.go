// Package profile runs an optional [github.com/pkg/profile] profiler around
// a wmconf command.
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//	wmconf --pprof-mode cpu dump
//	wmconf --pprof-mode heap --pprof-dir ./profiles get Screen/Workspaces
//
// Without the tag [Modes] is empty and [Config.Start] returns a no-op
// [Stopper], so callers need no build constraints of their own.
//
// Profiles are written to the configured directory, by default the pprof
// directory under the user cache directory, with names matching the mode
// (cpu.pprof, mem.pprof, ...). Inspect them with:
//
//	go tool pprof -http=: ./profiles/cpu.pprof
//
// The tagged build also registers the [net/http/pprof] handlers on
// [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
