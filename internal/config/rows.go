package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRows reads a local row collection: a JSON or YAML array of records.
// JSON numbers are kept as json.Number so large ids survive unchanged.
func LoadRows(path string) ([]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	var rows []any
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("parse rows: %w", err)
		}
		return rows, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("parse rows: %w", err)
	}
	return rows, nil
}
