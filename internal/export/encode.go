package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"casegen/pkg/schema"
)

// EncodeYAML serializes suite as YAML.
func EncodeYAML(suite *schema.TestSuite) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(suite); err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJSON serializes suite as indented JSON.
func EncodeJSON(suite *schema.TestSuite) ([]byte, error) {
	data, err := json.MarshalIndent(suite, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeSuite parses a suite previously written by EncodeYAML or EncodeJSON.
// The format is chosen by the file extension of name; JSON payloads may label
// cases with "description" instead of "title".
func DecodeSuite(name string, data []byte) (*schema.TestSuite, error) {
	var suite schema.TestSuite

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".json":
		if err := json.Unmarshal(data, &suite); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &suite); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("parse %s: unsupported suite format %q", name, ext)
	}

	return &suite, nil
}
