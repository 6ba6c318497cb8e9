package workspace

import (
	"encoding/json"

	"golang.org/x/text/unicode/norm"
)

// Record is a single row of a collection, with its typed property
// values.
type Record struct {
	ID          string           `json:"id"`
	CreatedTime string           `json:"created_time,omitempty"`
	URL         string           `json:"url,omitempty"`
	Properties  map[string]Value `json:"properties"`
}

// Page is a record together with its child block content, as returned
// by GetRecord.
type Page struct {
	Record Record
	Blocks []json.RawMessage
}

// Collection describes a collection's schema: its title and the
// definitions of its typed properties.
type Collection struct {
	ID         string                    `json:"id"`
	Title      []textRun                 `json:"title"`
	Properties map[string]PropertySchema `json:"properties"`
}

// PlainTitle concatenates the title text runs.
func (c *Collection) PlainTitle() string {
	var s string
	for _, r := range c.Title {
		s += r.PlainText
	}
	if s == "" {
		return "Untitled"
	}
	return norm.NFC.String(s)
}

// PropertySchema describes one property definition. Choice-like
// properties carry their configured options.
type PropertySchema struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Select      *ChoiceOptions `json:"select,omitempty"`
	MultiSelect *ChoiceOptions `json:"multi_select,omitempty"`
	Status      *ChoiceOptions `json:"status,omitempty"`
}

// ChoiceOptions holds the configured options of a choice-like property.
type ChoiceOptions struct {
	Options []ChoiceOption `json:"options"`
}

// ChoiceOption is a single configured option.
type ChoiceOption struct {
	Name string `json:"name"`
}

// optionNames returns the configured option names for a choice-like
// schema, or nil for other types.
func (s PropertySchema) optionNames() []string {
	var opts *ChoiceOptions
	switch s.Type {
	case "select":
		opts = s.Select
	case "multi_select":
		opts = s.MultiSelect
	case "status":
		opts = s.Status
	}
	if opts == nil {
		return nil
	}
	names := make([]string, 0, len(opts.Options))
	for _, o := range opts.Options {
		names = append(names, o.Name)
	}
	return names
}
