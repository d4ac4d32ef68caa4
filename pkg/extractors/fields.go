package extractors

import (
	"github.com/dtnitsch/llm-web-pruner/models"
	"github.com/dtnitsch/llm-web-pruner/pkg/sanitize"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldFloat
	fieldInt
	fieldImage
	fieldDate
)

// fieldKinds selects the coercion applied to a field on every source.
var fieldKinds = map[string]fieldKind{
	"price":          fieldFloat,
	"price_high":     fieldFloat,
	"rating":         fieldFloat,
	"latitude":       fieldFloat,
	"longitude":      fieldFloat,
	"review_count":   fieldInt,
	"word_count":     fieldInt,
	"question_count": fieldInt,
	"image":          fieldImage,
	"date_published": fieldDate,
	"date_modified":  fieldDate,
	"start_date":     fieldDate,
	"end_date":       fieldDate,
}

// coerce converts a raw source value into the field's stored form.
func coerce(field string, v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	switch fieldKinds[field] {
	case fieldFloat:
		return ParseFloat(v)
	case fieldInt:
		return ParseInt(v)
	case fieldImage:
		return imageURL(v)
	case fieldDate:
		s := sanitize.Field(field, NormalizeDate(text(v)))
		return s, s != ""
	}
	s := sanitize.Field(field, text(v))
	return s, s != ""
}

// put stores v under field unless the field is already set, keeping the
// first source to provide a value.
func put(m models.Metadata, field string, v any) {
	if m.Has(field) {
		return
	}
	if val, ok := coerce(field, v); ok {
		m[field] = val
	}
}

// imageURL accepts a URL string, a list (first valid entry wins) or an
// image object, preferring url over contentUrl.
func imageURL(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return sanitize.ImageURL(t)
	case []any:
		for _, item := range t {
			if u, ok := imageURL(item); ok {
				return u, true
			}
		}
	case map[string]any:
		for _, key := range []string{"url", "contentUrl"} {
			if s, ok := t[key].(string); ok {
				if u, ok := sanitize.ImageURL(s); ok {
					return u, true
				}
			}
		}
	}
	return "", false
}
