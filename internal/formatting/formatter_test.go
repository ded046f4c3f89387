package formatting

import (
	"bytes"
	"encoding/json"
	"testing"

	"dojo/internal/containerizer"
	"dojo/internal/scenario"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testCatalog() *scenario.Catalog {
	return scenario.NewCatalog("devopslearn/scenario-base",
		map[string]string{"tf-drift": "devopslearn/scenario-terraform-drift"},
		[]string{"k8s-dns"})
}

func healthyReport() containerizer.Report {
	return containerizer.Report{
		Binary:    "docker",
		Available: true,
		Version:   "27.1.1",
		Network:   containerizer.NetworkStatus{Name: "devops-dojo-net", Exists: false},
		Images: []containerizer.ImageStatus{
			{Image: "devopslearn/scenario-base", Present: true},
			{Image: "devopslearn/scenario-terraform-drift", Present: true},
		},
	}
}

func TestNewFormatter(t *testing.T) {
	assert.IsType(t, &TableFormatter{}, NewFormatter(Options{}))
	assert.IsType(t, &JSONFormatter{}, NewFormatter(Options{Format: FormatJSON}))
	assert.IsType(t, &YAMLFormatter{}, NewFormatter(Options{Format: FormatYAML}))
	assert.NotNil(t, NewFormatter(Options{}).GetOptions().Output)
}

func TestParseFormat(t *testing.T) {
	f, ok := ParseFormat("yaml")
	assert.True(t, ok)
	assert.Equal(t, FormatYAML, f)

	f, ok = ParseFormat("xml")
	assert.False(t, ok)
	assert.Equal(t, FormatTable, f)
}

func TestTableFormatter_Scenarios(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(Options{Format: FormatTable, Output: &buf})

	require.NoError(t, f.FormatScenarios(testCatalog()))

	out := buf.String()
	assert.Contains(t, out, "SCENARIO")
	assert.Contains(t, out, "tf-drift")
	assert.Contains(t, out, "devopslearn/scenario-terraform-drift")
	assert.Contains(t, out, "k8s-dns")
	assert.Contains(t, out, "(any other)")
	assert.Contains(t, out, "Total: 2 scenarios")
}

func TestTableFormatter_Check(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		var buf bytes.Buffer
		f := NewFormatter(Options{Format: FormatTable, Output: &buf})

		require.NoError(t, f.FormatCheck(healthyReport(), testCatalog()))

		out := buf.String()
		assert.Contains(t, out, "engine (docker)")
		assert.Contains(t, out, "27.1.1")
		assert.Contains(t, out, "devops-dojo-net (created on serve)")
		assert.Contains(t, out, "All scenario images are present.")
	})

	t.Run("missing image", func(t *testing.T) {
		report := healthyReport()
		report.Images[1].Present = false

		var buf bytes.Buffer
		f := NewFormatter(Options{Format: FormatTable, Output: &buf})
		require.NoError(t, f.FormatCheck(report, testCatalog()))

		assert.Contains(t, buf.String(), "1 image(s) missing")
	})

	t.Run("engine down", func(t *testing.T) {
		report := containerizer.Report{Binary: "podman", Error: "connection refused"}

		var buf bytes.Buffer
		f := NewFormatter(Options{Format: FormatTable, Output: &buf, Quiet: true})
		require.NoError(t, f.FormatCheck(report, testCatalog()))

		out := buf.String()
		assert.Contains(t, out, "unreachable")
		assert.Contains(t, out, "connection refused")
		assert.NotContains(t, out, "IMAGE")
	})
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(Options{Format: FormatJSON, Output: &buf})

	require.NoError(t, f.FormatCheck(healthyReport(), testCatalog()))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, true, decoded["healthy"])
	assert.Equal(t, "docker", decoded["binary"])

	buf.Reset()
	require.NoError(t, f.FormatScenarios(testCatalog()))
	var catalog catalogView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &catalog))
	assert.Equal(t, "devopslearn/scenario-base", catalog.DefaultImage)
	assert.Len(t, catalog.Scenarios, 2)
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(Options{Format: FormatYAML, Output: &buf})

	require.NoError(t, f.FormatScenarios(testCatalog()))

	var catalog catalogView
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &catalog))
	assert.Equal(t, "devopslearn/scenario-base", catalog.DefaultImage)

	buf.Reset()
	report := healthyReport()
	report.Available = false
	require.NoError(t, f.FormatCheck(report, testCatalog()))
	assert.Contains(t, buf.String(), "healthy: false")
	assert.Contains(t, buf.String(), "binary: docker")
}
