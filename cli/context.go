// Package cli implements the parseit command line tool: small commands that
// run the bundled demonstration grammars over files or stdin and print the
// parsed result.
package cli

// Context carries the global options every command receives.
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool
}
