package common

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// Render writes v in the --format requested. Text output is delegated to
// the command's own printer.
func Render(c *cli.Context, v interface{}, text func(w io.Writer) error) error {
	w := c.App.Writer

	var outputData []byte
	var marshalErr error

	switch strings.ToLower(c.String("format")) {
	case "", "text":
		return text(w)
	case "json":
		outputData, marshalErr = json.MarshalIndent(v, "", "  ")
	case "yaml":
		outputData, marshalErr = yaml.Marshal(v)
	default:
		return fmt.Errorf("unknown output format: %q", c.String("format"))
	}
	if marshalErr != nil {
		return fmt.Errorf("failed to marshal output: %w", marshalErr)
	}

	if _, err := w.Write(outputData); err != nil {
		return err
	}
	if !strings.HasSuffix(string(outputData), "\n") {
		fmt.Fprintln(w)
	}
	return nil
}

// Count formats n with thousands separators.
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Rule prints a horizontal separator of the given width.
func Rule(w io.Writer, width int) {
	fmt.Fprintln(w, strings.Repeat("-", width))
}

// Truncate shortens s to width runes, marking the cut with "...".
func Truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
