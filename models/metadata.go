package models

// Metadata maps extracted field names to values. Values are strings,
// float64, int, or one of the typed slices below.
type Metadata map[string]any

// Breadcrumb is one entry of a breadcrumb trail.
type Breadcrumb struct {
	Position int    `json:"position" yaml:"position"`
	Name     string `json:"name" yaml:"name"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
}

// ListingItem is one entry of an ordered item list.
type ListingItem struct {
	Position int      `json:"position" yaml:"position"`
	Name     string   `json:"name" yaml:"name"`
	URL      string   `json:"url,omitempty" yaml:"url,omitempty"`
	Price    *float64 `json:"price,omitempty" yaml:"price,omitempty"`
	Currency string   `json:"currency,omitempty" yaml:"currency,omitempty"`
	Image    string   `json:"image,omitempty" yaml:"image,omitempty"`
}

// FAQEntry is one question/answer pair.
type FAQEntry struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer,omitempty" yaml:"answer,omitempty"`
}

// Has reports whether a field is present.
func (m Metadata) Has(field string) bool {
	_, ok := m[field]
	return ok
}

// String returns a string field, or "" when absent or not a string.
func (m Metadata) String(field string) string {
	s, _ := m[field].(string)
	return s
}

// SetIfAbsent stores v under field only when the field is not yet set.
// It implements first-source-wins merging.
func (m Metadata) SetIfAbsent(field string, v any) {
	if _, ok := m[field]; ok {
		return
	}
	m[field] = v
}

// Merge copies every field of other that m does not already have.
func (m Metadata) Merge(other Metadata) {
	for k, v := range other {
		m.SetIfAbsent(k, v)
	}
}
