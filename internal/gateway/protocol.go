package gateway

import (
	"encoding/json"
	"fmt"
)

// Control message types carried in text frames.
const (
	TypeScenarioReady = "scenario-ready"
	TypeInput         = "input"
	TypeResize        = "resize"
)

// ControlMessage is the JSON envelope of a text frame. Terminal output never
// uses it: output travels as raw binary frames.
type ControlMessage struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
	Cols int    `json:"cols,omitempty"`
	Rows int    `json:"rows,omitempty"`
}

var readyPayload = mustMarshal(ControlMessage{Type: TypeScenarioReady})

// DecodeControl parses a text frame.
func DecodeControl(p []byte) (ControlMessage, error) {
	var msg ControlMessage
	if err := json.Unmarshal(p, &msg); err != nil {
		return ControlMessage{}, fmt.Errorf("decoding control message: %w", err)
	}
	if msg.Type == "" {
		return ControlMessage{}, fmt.Errorf("control message has no type")
	}
	return msg, nil
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
