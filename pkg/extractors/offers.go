package extractors

import "github.com/dtnitsch/llm-web-pruner/models"

var aggregateOfferType = map[string]bool{"aggregateoffer": true}

// offer is the resolved price information of an offers value.
type offer struct {
	price    float64
	hasPrice bool
	high     float64
	hasHigh  bool

	currency     string
	availability string
	condition    string
	seller       string
}

// resolveOffer reads the three offer shapes: an aggregate offer (low/high
// price with an optional nested offer list), a list of offers (first
// priced entry wins) and a single offer. An explicit zero price counts as
// present; only an absent price falls through.
func resolveOffer(v any, depth int) (offer, bool) {
	if depth > MaxTypeDepth {
		return offer{}, false
	}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if o, ok := resolveOffer(item, depth+1); ok {
				return o, true
			}
		}
	case map[string]any:
		o := offer{
			currency:     text(t["priceCurrency"]),
			availability: enumValue(t["availability"]),
			condition:    enumValue(t["itemCondition"]),
			seller:       text(t["seller"]),
		}

		if _, hasLow := t["lowPrice"]; hasLow || typeMatches(t["@type"], aggregateOfferType) {
			o.price, o.hasPrice = ParseFloat(t["lowPrice"])
			o.high, o.hasHigh = ParseFloat(t["highPrice"])
			if !o.hasPrice {
				if nested, ok := resolveOffer(t["offers"], depth+1); ok {
					o.price, o.hasPrice = nested.price, true
					if o.currency == "" {
						o.currency = nested.currency
					}
					if o.availability == "" {
						o.availability = nested.availability
					}
				}
			}
			if !o.hasPrice {
				o.price, o.hasPrice = ParseFloat(t["price"])
			}
			return o, o.hasPrice
		}

		if p, ok := ParseFloat(t["price"]); ok {
			o.price, o.hasPrice = p, true
			return o, true
		}
		if spec := object(t["priceSpecification"]); spec != nil {
			if p, ok := ParseFloat(spec["price"]); ok {
				o.price, o.hasPrice = p, true
				if o.currency == "" {
					o.currency = text(spec["priceCurrency"])
				}
				return o, true
			}
		}
	}
	return offer{}, false
}

// putOffer copies the resolved offer of obj into m. It reports whether an
// offer price was found, so callers only fall back to a top-level price
// when the offers carried none.
func putOffer(m models.Metadata, obj map[string]any) bool {
	o, ok := resolveOffer(obj["offers"], 0)
	if !ok {
		return false
	}
	put(m, "price", o.price)
	if o.hasHigh {
		put(m, "price_high", o.high)
	}
	put(m, "currency", o.currency)
	put(m, "availability", o.availability)
	put(m, "condition", o.condition)
	put(m, "seller", o.seller)
	return true
}
