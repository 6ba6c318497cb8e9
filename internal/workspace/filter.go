package workspace

// Filter is a query filter over typed properties. Exactly one condition
// field should be set; And combines sub-filters.
type Filter struct {
	Property string           `json:"property,omitempty"`
	Date     *DateCondition   `json:"date,omitempty"`
	Select   *SelectCondition `json:"select,omitempty"`
	And      []Filter         `json:"and,omitempty"`
}

// DateCondition matches date properties. Dates are ISO YYYY-MM-DD
// strings.
type DateCondition struct {
	Equals     string `json:"equals,omitempty"`
	OnOrAfter  string `json:"on_or_after,omitempty"`
	OnOrBefore string `json:"on_or_before,omitempty"`
}

// SelectCondition matches single-choice properties.
type SelectCondition struct {
	Equals     string `json:"equals,omitempty"`
	IsEmpty    bool   `json:"is_empty,omitempty"`
	IsNotEmpty bool   `json:"is_not_empty,omitempty"`
}

// DateRangeFilter matches records whose date property falls within
// [from, to] inclusive.
func DateRangeFilter(property, from, to string) *Filter {
	return &Filter{
		Property: property,
		Date:     &DateCondition{OnOrAfter: from, OnOrBefore: to},
	}
}

// DateEqualsFilter matches records whose date property equals the given
// day exactly.
func DateEqualsFilter(property, date string) *Filter {
	return &Filter{
		Property: property,
		Date:     &DateCondition{Equals: date},
	}
}

// Sort orders query results by a property or a record timestamp.
type Sort struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Direction string `json:"direction"`
}
