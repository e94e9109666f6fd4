package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/shopspring/decimal"
)

// Render writes a parsed value to w in the configured format.
func Render(w io.Writer, value any, format string) error {
	value = normalize(value)

	switch format {
	case "yaml":
		data, err := yaml.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}

		_, err = w.Write(data)

		return err
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(value); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}

		return nil
	}
}

// normalize rewrites parser values into what the encoders handle natively:
// exact decimals become int64 or float64, and containers are walked
// recursively.
func normalize(value any) any {
	switch t := value.(type) {
	case decimal.Decimal:
		if t.IsInteger() {
			return t.IntPart()
		}

		return t.InexactFloat64()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = normalize(v)
		}

		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = normalize(v)
		}

		return out
	default:
		return value
	}
}

// readInput reads the named file, or stdin when path is empty.
func readInput(path string) (string, string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}

		return string(data), "<stdin>", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read input: %w", err)
	}

	return string(data), path, nil
}
