package formatting

import (
	"encoding/json"
	"fmt"
)

// PrettyJSON renders v as JSON indented by two spaces, the form `dojo check -o json`
// and `dojo scenarios -o json` print. Values that cannot be marshaled fall
// back to their %v form so a listing never comes out empty.
//
//	fmt.Println(formatting.PrettyJSON(containerizer.ImageStatus{Image: "devopslearn/scenario-base", Present: true}))
//	// {
//	//   "image": "devopslearn/scenario-base",
//	//   "present": true
//	// }
func PrettyJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
