// Package cli contains the command line interface for wmconf.
//
// # Usage
//
//	wmconf [flags] [dump] [--format native|json|yaml|tree]
//	wmconf [flags] get Screen/Workspaces Files/Theme
//	wmconf [flags] keys Screen Workspaces=int ShowFrameList=bool
//	wmconf [flags] watch
//	wmconf [flags] init
//
// The window manager configuration is read from the --source flags, which
// default to $PEKWM_CONFIG_FILE or ~/.pekwm/config. A source of "-" reads
// standard input and a source starting with "!" runs a shell command.
//
// # Configuration
//
// Flag defaults are read from two files in the user configuration directory,
// both optional:
//
//   - config.json: a JSON object keyed by flag name
//   - config: the "wmconf" section of a file in the configuration language,
//     as written by the init command
//
// Command-line flags override both.
package cli
