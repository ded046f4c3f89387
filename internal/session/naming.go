package session

import (
	"bytes"
	"fmt"
	"regexp"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// containerNamePattern is the engine's accepted container name syntax.
var containerNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]+$`)

// NameData is the template input for container names.
type NameData struct {
	ConnectionID string
	ScenarioID   string
}

// Namer renders container names from connection identities. The same input
// always yields the same name, so container identity stays 1:1 with
// connection identity.
type Namer struct {
	tmpl *template.Template
}

// NewNamer parses a text/template with sprig functions available.
func NewNamer(text string) (*Namer, error) {
	tmpl, err := template.New("containerName").
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid container name template: %w", err)
	}
	return &Namer{tmpl: tmpl}, nil
}

// Render produces the container name for a connection.
func (n *Namer) Render(connectionID, scenarioID string) (string, error) {
	var buf bytes.Buffer
	if err := n.tmpl.Execute(&buf, NameData{ConnectionID: connectionID, ScenarioID: scenarioID}); err != nil {
		return "", fmt.Errorf("failed to render container name: %w", err)
	}
	name := buf.String()
	if !containerNamePattern.MatchString(name) {
		return "", fmt.Errorf("rendered container name %q is not a valid container name", name)
	}
	return name, nil
}
