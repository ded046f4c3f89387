package formatting

import (
	"fmt"

	"dojo/internal/containerizer"
	"dojo/internal/scenario"
)

// JSONFormatter provides structured JSON output formatting
type JSONFormatter struct {
	options Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(options Options) Formatter {
	return &JSONFormatter{
		options: options,
	}
}

// FormatScenarios writes the catalog as JSON.
func (f *JSONFormatter) FormatScenarios(catalog *scenario.Catalog) error {
	_, err := fmt.Fprintln(f.options.Output, PrettyJSON(newCatalogView(catalog)))
	return err
}

// FormatCheck writes the check report as JSON.
func (f *JSONFormatter) FormatCheck(report containerizer.Report, _ *scenario.Catalog) error {
	_, err := fmt.Fprintln(f.options.Output, PrettyJSON(checkView{Report: report, Healthy: report.Healthy()}))
	return err
}

// SetOptions updates the formatter options
func (f *JSONFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *JSONFormatter) GetOptions() Options {
	return f.options
}
