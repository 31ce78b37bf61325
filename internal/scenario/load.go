package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode parses a description from JSON or YAML bytes. Unknown fields are
// rejected so typos in hand-written files surface early.
func Decode(data []byte) (*Description, error) {
	var d Description
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	return &d, nil
}

// Load reads a description file.
func Load(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	d, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Write stores d at path, as JSON when the extension is .json and YAML
// otherwise.
func Write(path string, d *Description) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(d, "", "  ")
	} else {
		data, err = yaml.Marshal(d)
	}
	if err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
