package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/parseit/parseit"
	"github.com/parseit/parseit/compile"
	"github.com/parseit/parseit/jsonparser"
)

// JSONCmd parses a document with the bundled JSON grammar and re-emits it in
// the configured output format.
type JSONCmd struct {
	Input       string `arg:"" optional:"" help:"Input file (default: stdin)" type:"path"`
	Compiled    bool   `help:"Run the grammar as a compiled instruction program"`
	Disassemble bool   `short:"d" help:"Print the compiled instruction listing instead of parsing"`
}

// Run executes the json command
func (cmd *JSONCmd) Run(ctx *Context) error {
	config, err := LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	color.NoColor = color.NoColor || !config.Color

	if cmd.Disassemble {
		prog, err := compile.Compile(jsonparser.Value)
		if err != nil {
			return fmt.Errorf("failed to compile grammar: %w", err)
		}

		fmt.Print(prog.Disassemble())

		return nil
	}

	input, name, err := readInput(cmd.Input)
	if err != nil {
		return err
	}

	if ctx.Verbose {
		color.Blue("Parsing %s as JSON", name)
	}

	var value any

	if cmd.Compiled {
		prog, err := compile.Compile(jsonparser.Value)
		if err != nil {
			return fmt.Errorf("failed to compile grammar: %w", err)
		}

		value, err = prog.Run(input)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	} else {
		value, err = jsonparser.LoadsWith(input, parseit.Options{MaxDepth: config.MaxDepth})
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if ctx.Verbose {
		color.Green("Parsed %s", name)
	}

	if ctx.Quiet {
		return nil
	}

	return Render(os.Stdout, value, config.Format)
}
