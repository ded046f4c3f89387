package formatting

import (
	"fmt"
	"strings"

	"dojo/internal/containerizer"
	"dojo/internal/scenario"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// detailWidth wraps long engine error messages.
const detailWidth = 72

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) Formatter {
	return &TableFormatter{
		options: options,
	}
}

// FormatScenarios renders one row per scenario plus the fallback image.
func (f *TableFormatter) FormatScenarios(catalog *scenario.Catalog) error {
	entries := catalog.Entries()

	t := f.createTable()
	t.AppendHeader(f.header("SCENARIO", "IMAGE", "PRIVILEGED"))
	for _, e := range entries {
		t.AppendRow(table.Row{e.ScenarioID, e.Image, f.yesNo(e.Privileged, text.FgYellow)})
	}
	t.AppendFooter(table.Row{"(any other)", catalog.DefaultImage(), ""})
	t.Render()

	if !f.options.Quiet {
		f.printf("\n%s %s %s\n",
			f.paint(text.FgHiBlue, "Total:"),
			f.paint(text.FgHiWhite, fmt.Sprint(len(entries))),
			f.paint(text.FgHiBlue, "scenarios"))
	}
	return nil
}

// FormatCheck renders the engine summary and, when the engine answered,
// one row per image with the scenarios that use it.
func (f *TableFormatter) FormatCheck(report containerizer.Report, catalog *scenario.Catalog) error {
	summary := f.createTable()
	summary.AppendHeader(f.header("CHECK", "STATUS", "DETAIL"))
	summary.SetColumnConfigs([]table.ColumnConfig{{Number: 3, WidthMax: detailWidth, WidthMaxEnforcer: text.WrapSoft}})

	engineDetail := report.Version
	if !report.Available {
		engineDetail = report.Error
	}
	summary.AppendRow(table.Row{"engine (" + report.Binary + ")", f.status(report.Available, "unreachable"), engineDetail})

	if report.Available {
		networkDetail := report.Network.Name
		if report.Network.Error != "" {
			networkDetail = report.Network.Error
		} else if !report.Network.Exists {
			networkDetail += " (created on serve)"
		}
		summary.AppendRow(table.Row{"network", f.status(report.Network.Exists, "missing"), networkDetail})
	}
	summary.Render()

	if !report.Available {
		return nil
	}

	users := scenariosByImage(catalog)
	images := f.createTable()
	images.AppendHeader(f.header("IMAGE", "PRESENT", "SCENARIOS"))
	images.SetColumnConfigs([]table.ColumnConfig{{Number: 3, WidthMax: detailWidth, WidthMaxEnforcer: text.WrapSoft}})
	for _, img := range report.Images {
		row := table.Row{img.Image, f.status(img.Present, "missing"), strings.Join(users[img.Image], ", ")}
		if img.Error != "" {
			row[2] = img.Error
		}
		images.AppendRow(row)
	}
	f.printf("\n")
	images.Render()

	if !f.options.Quiet {
		if missing := report.MissingImages(); len(missing) > 0 {
			f.printf("\n%s %d image(s) missing. Build them with 'make scenario-build'.\n",
				f.paint(text.FgRed, "✗"), len(missing))
		} else {
			f.printf("\n%s All scenario images are present.\n", f.paint(text.FgGreen, "✓"))
		}
	}
	return nil
}

// SetOptions updates the formatter options
func (f *TableFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *TableFormatter) GetOptions() Options {
	return f.options
}

// Helper methods

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.options.Output)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	return t
}

func (f *TableFormatter) header(names ...string) table.Row {
	row := make(table.Row, len(names))
	for i, n := range names {
		row[i] = f.paint(text.FgHiCyan, n)
	}
	return row
}

func (f *TableFormatter) status(ok bool, failLabel string) string {
	if ok {
		return f.paint(text.FgGreen, "ok")
	}
	return f.paint(text.FgRed, failLabel)
}

func (f *TableFormatter) yesNo(v bool, color text.Color) string {
	if v {
		return f.paint(color, "yes")
	}
	return "no"
}

func (f *TableFormatter) paint(color text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return color.Sprint(s)
}

func (f *TableFormatter) printf(format string, args ...interface{}) {
	fmt.Fprintf(f.options.Output, format, args...)
}

func scenariosByImage(catalog *scenario.Catalog) map[string][]string {
	users := make(map[string][]string)
	for _, e := range catalog.Entries() {
		users[e.Image] = append(users[e.Image], e.ScenarioID)
	}
	users[catalog.DefaultImage()] = append(users[catalog.DefaultImage()], "(default)")
	return users
}
