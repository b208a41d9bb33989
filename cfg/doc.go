// Package cfg parses the window manager configuration language into a tree of
// entries.
//
// # Language
//
// A document is a sequence of statements. Each statement assigns a quoted
// value to a name and may open a section of nested statements:
//
//	# line comment
//	// also a line comment
//	/* block
//	   comment */
//	Files {
//	  Keys = "~/.pekwm/keys"
//	  Theme = "$THEMES/default"; Menu = "~/.pekwm/menu"
//	}
//	ColorMap = "Light" {
//	  Map = "#aaaaaa" { To = "#eeeeee" }
//	}
//
// A statement ends at a semicolon, at a closing brace, or at a newline that is
// not followed by an opening brace. Inside a quoted value a backslash escapes
// the next character and a backslash before a newline joins the two lines.
//
// # Variables
//
// A statement whose name starts with '$' defines a variable instead of an
// entry. Later values may reference it as $NAME. Names starting with "$_"
// refer to the process environment: defining $_FOO also exports FOO, and
// $_HOME in a value expands to the environment variable HOME.
//
//	$THEMES = "/usr/share/pekwm/themes"
//	$_LANG = "C"
//
// # Directives
//
// Two reserved names splice another source into the parse at the point of the
// statement:
//
//	INCLUDE = "keys"                 # a file
//	COMMAND = "~/bin/gen-menu.sh"    # standard output of a shell command
//
// A relative INCLUDE that cannot be opened is retried relative to the
// directory of the including file.
//
// # Errors
//
// Parsing never stops on malformed input. Problems such as an extra closing
// brace, an unterminated quote, or an unresolved variable are logged as
// warnings carrying the source name and line, and the offending statement is
// dropped or kept partially. [Parser.Parse] only fails when the root source
// cannot be opened.
//
// # Queries
//
// The result is a [Section] whose direct children are visited with
// [Section.All], [Section.FindEntry], and [Section.FindSection]. Typed values
// are extracted with [Section.ParseKeys].
package cfg
