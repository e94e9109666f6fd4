package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/parseit/parseit/cli"
)

// CLI represents the command-line interface
var CLI struct {
	Config  string      `help:"Configuration file path" default:"parseit.yaml"`
	Verbose bool        `help:"Enable verbose output" short:"v"`
	Quiet   bool        `help:"Suppress output" short:"q"`
	NoColor bool        `help:"Disable colored output"`
	JSON    cli.JSONCmd `cmd:"" name:"json" help:"Parse a JSON document with the demonstration grammar"`
	Conf    cli.ConfCmd `cmd:"" help:"Parse an indented configuration document"`
	Version VersionCmd  `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run() error {
	fmt.Println("parseit v0.1.0")
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("parseit"),
		kong.Description("Parser combinator playground: run the bundled grammars over real input."),
	)

	if CLI.NoColor {
		color.NoColor = true
	}

	appCtx := &cli.Context{
		Config:  CLI.Config,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
