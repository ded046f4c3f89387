package cmd

import (
	"fmt"
	"io"
	"os"

	"dojo/internal/config"
	"dojo/internal/formatting"
	"dojo/pkg/logging"

	"golang.org/x/term"
)

// unsupportedFormatError is returned for an unknown --output value.
type unsupportedFormatError struct {
	format string
}

func (e *unsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported output format %q (use table, json or yaml)", e.format)
}

// loadConfig loads the configuration for commands that do not start the
// server. Their own output goes to stdout, so logging is kept to warnings
// on stderr.
func loadConfig() (config.DojoConfig, error) {
	logging.InitForCLI(logging.LevelWarn, os.Stderr)

	path := configPath
	if path == "" {
		path = config.GetDefaultConfigPath()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return config.DojoConfig{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newFormatter builds the formatter for an --output flag value writing to out.
func newFormatter(out io.Writer, output string, quiet bool) (formatting.Formatter, error) {
	format, ok := formatting.ParseFormat(output)
	if !ok {
		return nil, &unsupportedFormatError{format: output}
	}
	return formatting.NewFormatter(formatting.Options{
		Format: format,
		Quiet:  quiet,
		Color:  isTerminal(out),
		Output: out,
	}), nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
