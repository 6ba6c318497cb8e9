package workspace

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/text/unicode/norm"
)

// maxParseDepth bounds recursive decoding of nested property values
// (formula results, rollup-of-rollup). The remote schema could in
// principle nest arbitrarily.
const maxParseDepth = 8

// Value is a typed property value as returned by the workspace API.
// The payload for the declared type is kept raw and decoded on demand.
type Value struct {
	Type string
	raw  map[string]json.RawMessage
}

// UnmarshalJSON keeps the full object so unknown types can be returned
// unchanged by Parse.
func (v *Value) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode property value: %w", err)
	}
	v.raw = m
	if t, ok := m["type"]; ok {
		if err := json.Unmarshal(t, &v.Type); err != nil {
			return fmt.Errorf("decode property type: %w", err)
		}
	}
	return nil
}

// MarshalJSON round-trips the raw object.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.raw == nil {
		return []byte("null"), nil
	}
	return json.Marshal(v.raw)
}

type textRun struct {
	PlainText string `json:"plain_text"`
}

type choiceValue struct {
	Name string `json:"name"`
}

type userValue struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

type relationValue struct {
	ID string `json:"id"`
}

type fileValue struct {
	Name string `json:"name"`
}

type uniqueIDValue struct {
	Prefix string `json:"prefix"`
	Number int64  `json:"number"`
}

// Parse decodes the value into a plain Go representation: string,
// float64, bool, []string, []any, or nil. Values of an unrecognized
// type come back as the raw nested payload unchanged; malformed shapes
// are logged and degrade to a zero value rather than failing.
func (v Value) Parse() any {
	return v.parse(0)
}

func (v Value) parse(depth int) any {
	if depth > maxParseDepth {
		slog.Warn("property value nesting exceeds depth bound", "type", v.Type, "depth", depth)
		return nil
	}
	if v.Type == "" {
		slog.Warn("property value object missing type, returning raw object")
		return rawAny(jsonObject(v.raw))
	}

	payload, ok := v.raw[v.Type]
	if !ok || string(payload) == "null" {
		return nil
	}

	switch v.Type {
	case "title", "rich_text":
		var runs []textRun
		if err := json.Unmarshal(payload, &runs); err != nil {
			slog.Warn("unexpected text payload", "type", v.Type, "error", err)
			return ""
		}
		var s string
		for _, r := range runs {
			s += r.PlainText
		}
		return norm.NFC.String(s)

	case "number":
		var n float64
		if err := json.Unmarshal(payload, &n); err != nil {
			slog.Warn("unexpected number payload", "error", err)
			return nil
		}
		return n

	case "checkbox":
		var b bool
		if err := json.Unmarshal(payload, &b); err != nil {
			slog.Warn("unexpected checkbox payload", "error", err)
			return nil
		}
		return b

	case "created_time", "last_edited_time", "url", "email", "phone_number":
		var s string
		if err := json.Unmarshal(payload, &s); err != nil {
			slog.Warn("unexpected string payload", "type", v.Type, "error", err)
			return nil
		}
		return s

	case "created_by", "last_edited_by", "people":
		var users []userValue
		if err := json.Unmarshal(payload, &users); err != nil {
			// The API sometimes returns a single user object.
			var u userValue
			if err := json.Unmarshal(payload, &u); err != nil {
				slog.Warn("unexpected user payload", "type", v.Type, "error", err)
				return []string{}
			}
			users = []userValue{u}
		}
		names := make([]string, 0, len(users))
		for _, u := range users {
			names = append(names, u.Name)
		}
		return names

	case "select", "status":
		var c choiceValue
		if err := json.Unmarshal(payload, &c); err != nil {
			slog.Warn("unexpected choice payload", "type", v.Type, "error", err)
			return nil
		}
		if c.Name == "" {
			return nil
		}
		return norm.NFC.String(c.Name)

	case "multi_select":
		var cs []choiceValue
		if err := json.Unmarshal(payload, &cs); err != nil {
			slog.Warn("unexpected multi-choice payload", "error", err)
			return []string{}
		}
		names := make([]string, 0, len(cs))
		for _, c := range cs {
			names = append(names, norm.NFC.String(c.Name))
		}
		return names

	case "date":
		var d dateValue
		if err := json.Unmarshal(payload, &d); err != nil {
			slog.Warn("unexpected date payload", "error", err)
			return nil
		}
		if d.Start == "" {
			return nil
		}
		return d.Start

	case "files":
		var fs []fileValue
		if err := json.Unmarshal(payload, &fs); err != nil {
			slog.Warn("unexpected files payload", "error", err)
			return []string{}
		}
		names := make([]string, 0, len(fs))
		for _, f := range fs {
			names = append(names, f.Name)
		}
		return names

	case "relation":
		var rels []relationValue
		if err := json.Unmarshal(payload, &rels); err != nil {
			slog.Warn("unexpected relation payload", "error", err)
			return []string{}
		}
		ids := make([]string, 0, len(rels))
		for _, r := range rels {
			ids = append(ids, r.ID)
		}
		return ids

	case "formula":
		// The formula result is itself a typed value object.
		var inner Value
		if err := json.Unmarshal(payload, &inner); err != nil {
			slog.Warn("unexpected formula payload", "error", err)
			return rawAny(payload)
		}
		return inner.parse(depth + 1)

	case "rollup":
		return parseRollup(payload, depth)

	case "unique_id":
		var u uniqueIDValue
		if err := json.Unmarshal(payload, &u); err != nil {
			slog.Warn("unexpected unique_id payload", "error", err)
			return nil
		}
		if u.Prefix == "" {
			return fmt.Sprintf("%d", u.Number)
		}
		return fmt.Sprintf("%s-%d", u.Prefix, u.Number)

	default:
		slog.Info("no parser for property type, returning raw payload", "type", v.Type)
		return rawAny(payload)
	}
}

// parseRollup handles rollup results. Array rollups contain nested
// value objects and are parsed element by element.
func parseRollup(payload json.RawMessage, depth int) any {
	var r struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &r); err != nil {
		slog.Warn("unexpected rollup payload", "error", err)
		return rawAny(payload)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return rawAny(payload)
	}
	inner, ok := fields[r.Type]
	if !ok || string(inner) == "null" {
		return nil
	}

	switch r.Type {
	case "array":
		var elems []Value
		if err := json.Unmarshal(inner, &elems); err != nil {
			slog.Warn("unexpected rollup array", "error", err)
			return []any{}
		}
		parsed := make([]any, 0, len(elems))
		for _, e := range elems {
			parsed = append(parsed, e.parse(depth+1))
		}
		return parsed
	case "number":
		var n float64
		if err := json.Unmarshal(inner, &n); err != nil {
			return nil
		}
		return n
	case "string", "date":
		var s string
		if err := json.Unmarshal(inner, &s); err != nil {
			return rawAny(inner)
		}
		return s
	case "boolean":
		var b bool
		if err := json.Unmarshal(inner, &b); err != nil {
			return nil
		}
		return b
	default:
		slog.Info("unhandled rollup type, returning raw value", "rollup_type", r.Type)
		return rawAny(inner)
	}
}

func rawAny(payload json.RawMessage) any {
	var out any
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil
	}
	return out
}

func jsonObject(m map[string]json.RawMessage) json.RawMessage {
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return b
}

// AsString coerces a parsed value to a string.
func AsString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// AsStringSlice coerces a parsed value to a string slice. Mixed []any
// slices keep only their string elements.
func AsStringSlice(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}

// AsNumber coerces a parsed value to a float64.
func AsNumber(v any) (float64, bool) {
	n, ok := v.(float64)
	return n, ok
}
