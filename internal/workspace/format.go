package workspace

import (
	"log/slog"
	"strconv"
	"strings"
)

// readOnlyTypes cannot be written through the API; formatting them is a
// no-op with a log line.
var readOnlyTypes = map[string]bool{
	"created_time":     true,
	"last_edited_time": true,
	"created_by":       true,
	"last_edited_by":   true,
	"formula":          true,
	"rollup":           true,
	"files":            true,
}

// FormatForCreate turns a plain string input into the payload for the
// property's type when creating a record, using the schema to validate
// choice values. A nil result with ok=false means the property should
// be omitted from the create payload.
func FormatForCreate(schema PropertySchema, input string) (any, bool) {
	return format(schema, input, false)
}

// FormatForUpdate is the update-time counterpart of FormatForCreate.
// Choice-like properties may be cleared with an empty input; relation
// and people updates are not supported and are skipped.
func FormatForUpdate(schema PropertySchema, input string) (any, bool) {
	return format(schema, input, true)
}

// BuildProperty wraps the formatted payload in the type-keyed object
// expected by create/update requests, e.g. {"date": {"start": ...}}.
func BuildProperty(schema PropertySchema, input string, forUpdate bool) (map[string]any, bool) {
	var payload any
	var ok bool
	if forUpdate {
		payload, ok = FormatForUpdate(schema, input)
	} else {
		payload, ok = FormatForCreate(schema, input)
	}
	if !ok {
		return nil, false
	}
	return map[string]any{schema.Type: payload}, true
}

func format(schema PropertySchema, input string, forUpdate bool) (any, bool) {
	switch schema.Type {
	case "title", "rich_text":
		return []map[string]any{{"text": map[string]any{"content": input}}}, true

	case "number":
		n, err := strconv.ParseFloat(input, 64)
		if err != nil {
			slog.Error("cannot convert input to number", "property", schema.Name, "input", input, "error", err)
			return nil, false
		}
		return n, true

	case "checkbox":
		switch strings.ToLower(input) {
		case "true", "1", "yes", "on":
			return true, true
		default:
			return false, true
		}

	case "url", "email", "phone_number":
		if input == "" {
			return nil, false
		}
		return input, true

	case "date":
		if input == "" {
			return nil, false
		}
		return map[string]any{"start": input}, true

	case "select", "status":
		return formatChoice(schema, input)

	case "multi_select":
		return formatMultiChoice(schema, input)

	case "relation":
		if forUpdate {
			slog.Info("relation update not supported, skipping", "property", schema.Name)
			return nil, false
		}
		if input == "" {
			return []map[string]any{}, true
		}
		ids := splitTrim(input)
		rels := make([]map[string]any, 0, len(ids))
		for _, id := range ids {
			rels = append(rels, map[string]any{"id": id})
		}
		return rels, true

	case "people":
		slog.Info("people formatting not supported, skipping", "property", schema.Name)
		return nil, false
	}

	if readOnlyTypes[schema.Type] {
		slog.Info("read-only property type, skipping", "property", schema.Name, "type", schema.Type)
		return nil, false
	}

	slog.Info("unknown property type, passing input through", "property", schema.Name, "type", schema.Type)
	return input, true
}

func formatChoice(schema PropertySchema, input string) (any, bool) {
	if input == "" {
		return nil, false
	}
	options := schema.optionNames()
	for _, name := range options {
		if name == input {
			return map[string]any{"name": input}, true
		}
	}
	slog.Warn("input is not a configured option, skipping",
		"property", schema.Name, "type", schema.Type, "input", input, "options", options)
	return nil, false
}

func formatMultiChoice(schema PropertySchema, input string) (any, bool) {
	if input == "" {
		return []map[string]any{}, true
	}
	options := schema.optionNames()
	valid := make(map[string]bool, len(options))
	for _, name := range options {
		valid[name] = true
	}

	inputs := splitTrim(input)
	out := make([]map[string]any, 0, len(inputs))
	var invalid []string
	for _, name := range inputs {
		if valid[name] {
			out = append(out, map[string]any{"name": name})
		} else {
			invalid = append(invalid, name)
		}
	}
	if len(invalid) > 0 {
		slog.Warn("some inputs are not configured options",
			"property", schema.Name, "invalid", invalid, "options", options)
	}
	return out, true
}

func splitTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
