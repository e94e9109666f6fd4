package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/parseit/parseit"
	"github.com/parseit/parseit/confparser"
)

// ConfCmd parses an indented configuration document and re-emits it in the
// configured output format.
type ConfCmd struct {
	Input string `arg:"" optional:"" help:"Input file (default: stdin)" type:"path"`
}

// Run executes the conf command
func (cmd *ConfCmd) Run(ctx *Context) error {
	config, err := LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	color.NoColor = color.NoColor || !config.Color

	input, name, err := readInput(cmd.Input)
	if err != nil {
		return err
	}

	if ctx.Verbose {
		color.Blue("Parsing %s as configuration", name)
	}

	value, err := confparser.ParseWith(input, parseit.Options{MaxDepth: config.MaxDepth})
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	if ctx.Verbose {
		color.Green("Parsed %s: %d top-level entries", name, len(value))
	}

	if ctx.Quiet {
		return nil
	}

	return Render(os.Stdout, value, config.Format)
}
