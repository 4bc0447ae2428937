package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/lovestory/lovestory/backend/go-services/internal/apperr"
)

// MergeDefaults deep-merges a stored JSON document over Defaults().
//
// Objects merge key by key. Arrays keep the seed's length and each element is
// merged over the default element at the same index (elements past the end of
// the defaults are merged over a zero element of the same shape). Missing,
// null and kind-mismatched seed values fall back to the default, so the
// result always carries every default-defined field. Optional fields the
// defaults leave empty are checked the same way, so one bad field never
// discards the rest of the seed.
//
// An empty seed yields the defaults. A seed that is not a JSON object yields
// the defaults together with an ErrValidation error.
func MergeDefaults(seed []byte) (Document, error) {
	seed = bytes.TrimSpace(seed)
	if len(seed) == 0 || bytes.Equal(seed, []byte("null")) {
		return Defaults(), nil
	}
	var s any
	if err := json.Unmarshal(seed, &s); err != nil {
		return Defaults(), fmt.Errorf("%w: seed document: %v", apperr.ErrValidation, err)
	}
	if _, ok := s.(map[string]any); !ok {
		return Defaults(), fmt.Errorf("%w: seed document is not an object", apperr.ErrValidation)
	}
	def, err := toGeneric(Defaults())
	if err != nil {
		return Defaults(), err
	}
	merged, err := json.Marshal(mergeValue(def, s, documentType))
	if err != nil {
		return Defaults(), fmt.Errorf("encode merged document: %w", err)
	}
	var out Document
	if err := json.Unmarshal(merged, &out); err != nil {
		return Defaults(), fmt.Errorf("%w: seed document: %v", apperr.ErrValidation, err)
	}
	return out, nil
}

var documentType = reflect.TypeOf(Document{})

// toGeneric returns d as decoded JSON, with every field the Document type
// declares present, including optional ones its encoding omits.
func toGeneric(d Document) (any, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return complete(v, documentType), nil
}

// mergeValue merges seed over def. Keys the type does not declare are
// dropped so every value reaching the decoder has the field's kind.
func mergeValue(def, seed any, t reflect.Type) any {
	if seed == nil {
		return def
	}
	switch d := def.(type) {
	case map[string]any:
		s, ok := seed.(map[string]any)
		if !ok {
			return def
		}
		out := make(map[string]any, len(d))
		for _, f := range jsonFields(t) {
			out[f.name] = mergeValue(d[f.name], s[f.name], f.typ)
		}
		return out
	case []any:
		s, ok := seed.([]any)
		if !ok {
			return def
		}
		out := make([]any, len(s))
		for i, sv := range s {
			if i < len(d) {
				out[i] = mergeValue(d[i], sv, t.Elem())
			} else {
				out[i] = mergeValue(zeroShape(t.Elem()), sv, t.Elem())
			}
		}
		return out
	case string:
		if s, ok := seed.(string); ok {
			return s
		}
		return def
	case float64:
		if s, ok := seed.(float64); ok {
			return s
		}
		return def
	case bool:
		if s, ok := seed.(bool); ok {
			return s
		}
		return def
	}
	return def
}

type jsonField struct {
	name string
	typ  reflect.Type
}

// jsonFields lists the exported fields of struct type t by their JSON name.
func jsonFields(t reflect.Type) []jsonField {
	out := make([]jsonField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		out = append(out, jsonField{name: name, typ: f.Type})
	}
	return out
}

// complete fills in every field of t that v lacks with its zero shape.
func complete(v any, t reflect.Type) any {
	switch t.Kind() {
	case reflect.Struct:
		m, ok := v.(map[string]any)
		if !ok {
			return zeroShape(t)
		}
		for _, f := range jsonFields(t) {
			if fv, ok := m[f.name]; ok {
				m[f.name] = complete(fv, f.typ)
			} else {
				m[f.name] = zeroShape(f.typ)
			}
		}
		return m
	case reflect.Slice:
		s, ok := v.([]any)
		if !ok {
			return []any{}
		}
		for i := range s {
			s[i] = complete(s[i], t.Elem())
		}
		return s
	}
	if v == nil {
		return zeroShape(t)
	}
	return v
}

// zeroShape returns the decoded-JSON zero value of type t.
func zeroShape(t reflect.Type) any {
	switch t.Kind() {
	case reflect.Struct:
		out := make(map[string]any, t.NumField())
		for _, f := range jsonFields(t) {
			out[f.name] = zeroShape(f.typ)
		}
		return out
	case reflect.Slice:
		return []any{}
	case reflect.String:
		return ""
	case reflect.Bool:
		return false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return float64(0)
	}
	return nil
}
