package llm

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// SchemaFor returns the indented JSON schema of v's type, with every
// definition inlined so it can be pasted into a prompt.
func SchemaFor(v any) (string, error) {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: false,
	}
	s := r.Reflect(v)
	s.Version = ""

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
