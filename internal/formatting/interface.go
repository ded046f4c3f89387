// Package formatting renders dojo CLI output as tables, JSON or YAML.
package formatting

import (
	"io"
	"os"

	"dojo/internal/containerizer"
	"dojo/internal/scenario"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
	FormatTable OutputFormat = "table" // Rich table output
)

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Quiet  bool      // Suppress decorative elements
	Color  bool      // Enable colored output
	Output io.Writer // Defaults to os.Stdout
}

// Formatter renders the results of the dojo CLI commands.
type Formatter interface {
	// FormatScenarios renders the scenario catalog.
	FormatScenarios(catalog *scenario.Catalog) error
	// FormatCheck renders an engine check against the catalog.
	FormatCheck(report containerizer.Report, catalog *scenario.Catalog) error

	SetOptions(options Options)
	GetOptions() Options
}

// NewFormatter creates the formatter for options.Format. Unknown formats
// fall back to tables.
func NewFormatter(options Options) Formatter {
	if options.Output == nil {
		options.Output = os.Stdout
	}
	switch options.Format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	default:
		return NewTableFormatter(options)
	}
}

// ParseFormat validates a --output flag value.
func ParseFormat(s string) (OutputFormat, bool) {
	switch OutputFormat(s) {
	case FormatTable, FormatJSON, FormatYAML:
		return OutputFormat(s), true
	default:
		return FormatTable, false
	}
}

// scenarioView is the serialized form of a catalog entry.
type scenarioView struct {
	ScenarioID string `json:"scenarioId" yaml:"scenarioId"`
	Image      string `json:"image" yaml:"image"`
	Privileged bool   `json:"privileged" yaml:"privileged"`
}

type catalogView struct {
	DefaultImage string         `json:"defaultImage" yaml:"defaultImage"`
	Scenarios    []scenarioView `json:"scenarios" yaml:"scenarios"`
}

type checkView struct {
	containerizer.Report `yaml:",inline"`
	Healthy              bool `json:"healthy" yaml:"healthy"`
}

func newCatalogView(catalog *scenario.Catalog) catalogView {
	view := catalogView{DefaultImage: catalog.DefaultImage(), Scenarios: []scenarioView{}}
	for _, e := range catalog.Entries() {
		view.Scenarios = append(view.Scenarios, scenarioView{ScenarioID: e.ScenarioID, Image: e.Image, Privileged: e.Privileged})
	}
	return view
}
