package query

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strconv"
)

var numericPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// IsNumeric reports whether s is a plain decimal number with an optional
// sign and exponent. The empty string is not numeric.
func IsNumeric(s string) bool {
	return numericPattern.MatchString(s)
}

// Values is a loosely typed parameter set: each value is either a float64
// or a string, exactly as it will be sent and cached.
type Values map[string]any

// Normalize coerces numeric strings to float64 and drops the "all" category
// so that "all" and an absent category produce the same request and key.
func Normalize(raw map[string]string) Values {
	out := make(Values, len(raw))
	for k, s := range raw {
		if IsNumeric(s) {
			f, err := strconv.ParseFloat(s, 64)
			if err == nil {
				out[k] = f
				continue
			}
		}
		out[k] = s
	}
	return out.WithoutAllCategory()
}

// FromURL normalizes the first value of every key in q.
func FromURL(q url.Values) Values {
	raw := make(map[string]string, len(q))
	for k := range q {
		raw[k] = q.Get(k)
	}
	return Normalize(raw)
}

// DefaultValues is the initial parameter state of a fresh client.
func DefaultValues() Values {
	return Values{
		KeyPage:     float64(DefaultPage),
		KeyLimit:    float64(DefaultLimit),
		KeyMinPrice: float64(0),
		KeyMaxPrice: float64(1000),
	}
}

// WithoutAllCategory returns a copy without the "all" category sentinel.
func (v Values) WithoutAllCategory() Values {
	out := v.Clone()
	if c, ok := out[KeyCategory].(string); ok && c == CategoryAll {
		delete(out, KeyCategory)
	}
	return out
}

// Merge returns a copy of v overlaid with other.
func (v Values) Merge(other Values) Values {
	out := v.Clone()
	for k, val := range other {
		out[k] = val
	}
	return out
}

// Clone returns a shallow copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Key is the canonical serialization used for cache lookups. encoding/json
// writes map keys in sorted order, so equal parameter sets share a key.
func (v Values) Key() string {
	b, err := json.Marshal(map[string]any(v))
	if err != nil {
		// Values only ever holds strings and finite numbers.
		return ""
	}
	return string(b)
}

// Encode renders v as URL query values. Numbers are written in their
// shortest form ("10", not "10.000000").
func (v Values) Encode() url.Values {
	q := url.Values{}
	for k := range v {
		q.Set(k, v.text(k))
	}
	return q
}
