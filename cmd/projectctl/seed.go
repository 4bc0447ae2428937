package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lovestory/lovestory/backend/go-services/internal/content"
)

// loadSeed reads a seed document. YAML files are converted to JSON; anything
// else must already be JSON.
func loadSeed(path string) (json.RawMessage, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlToJSON(b)
	}
	if !json.Valid(b) {
		return nil, fmt.Errorf("seed %s is not valid JSON", path)
	}
	return b, nil
}

func yamlToJSON(b []byte) (json.RawMessage, error) {
	var v map[string]any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if v == nil {
		v = map[string]any{}
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("seed is not representable as JSON: %w", err)
	}
	return out, nil
}

// writeSeedYAML writes doc with the same keys the JSON form uses.
func writeSeedYAML(w io.Writer, doc content.Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var generic map[string]any
	if err := json.Unmarshal(b, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(generic)
}
