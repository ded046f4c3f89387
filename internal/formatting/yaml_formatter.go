package formatting

import (
	"dojo/internal/containerizer"
	"dojo/internal/scenario"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter provides YAML output formatting
type YAMLFormatter struct {
	options Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(options Options) Formatter {
	return &YAMLFormatter{
		options: options,
	}
}

// FormatScenarios writes the catalog as YAML.
func (f *YAMLFormatter) FormatScenarios(catalog *scenario.Catalog) error {
	return f.encode(newCatalogView(catalog))
}

// FormatCheck writes the check report as YAML.
func (f *YAMLFormatter) FormatCheck(report containerizer.Report, _ *scenario.Catalog) error {
	return f.encode(checkView{Report: report, Healthy: report.Healthy()})
}

func (f *YAMLFormatter) encode(v interface{}) error {
	enc := yaml.NewEncoder(f.options.Output)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// SetOptions updates the formatter options
func (f *YAMLFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *YAMLFormatter) GetOptions() Options {
	return f.options
}
