// Package matching implements the criteria match rules used by the store.
package matching

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/alexdesignworks/site-test-rest/pkg/record"
)

// Matches reports whether the stored criteria satisfies every field of the
// query. Matching is AND across all queried fields: the stored criteria must
// contain each queried field and each stored value must match the queried
// value. Fields present in the stored criteria but absent from the query are
// ignored, so a query may narrow on a subset of the stored fields.
func Matches(stored, query record.Criteria) bool {
	for field, want := range query {
		have, ok := stored[field]
		if !ok {
			return false
		}
		if !ValueMatches(have, want) {
			return false
		}
	}
	return true
}

// ValueMatches compares one stored criteria value against one queried value.
// A stored string of the form "/pattern/flags" is treated as a regular
// expression applied to the queried value; anything else is strict equality,
// sensitive to both kind and value (stored "5" does not match queried 5).
// Numbers compare by value regardless of Go type, since the persistence
// boundary turns every number into float64.
func ValueMatches(stored, query interface{}) bool {
	if pattern, ok := stored.(string); ok {
		if re, isPattern := compileDelimited(pattern); isPattern {
			if re == nil {
				// Looked like a pattern but did not compile. Best effort:
				// treat as a failed match instead of erroring out.
				return false
			}
			text, ok := query.(string)
			if !ok {
				return false
			}
			return re.MatchString(text)
		}
	}
	return reflect.DeepEqual(canonical(stored), canonical(query))
}

// canonical maps every numeric type onto float64 so a value compares equal
// to its persisted form. Maps and slices are normalized recursively.
func canonical(v interface{}) interface{} {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for key, value := range x {
			out[key] = canonical(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, value := range x {
			out[i] = canonical(value)
		}
		return out
	default:
		return v
	}
}

// delimitedPattern recognizes "/.../" with optional trailing flag letters.
var delimitedPattern = regexp.MustCompile(`^/(.*)/([imsU]*)$`)

// compileDelimited parses a delimited regex value. The second return value
// reports whether the input has the pattern form at all; the compiled regexp
// is nil when the form is present but the pattern is invalid.
func compileDelimited(value string) (*regexp.Regexp, bool) {
	if len(value) < 2 || !strings.HasPrefix(value, "/") {
		return nil, false
	}
	parts := delimitedPattern.FindStringSubmatch(value)
	if parts == nil {
		return nil, false
	}
	pattern, flags := parts[1], parts[2]
	if flags != "" {
		pattern = "(?" + flags + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, true
	}
	return re, true
}
