package matching

import (
	"testing"

	"github.com/alexdesignworks/site-test-rest/pkg/record"
)

func TestValueMatches_Literal(t *testing.T) {
	if !ValueMatches("abc", "abc") {
		t.Fatal("expected equal strings to match")
	}
	if ValueMatches("abc", "abd") {
		t.Fatal("expected different strings not to match")
	}
	if ValueMatches("5", 5) {
		t.Fatal("expected string \"5\" not to match number 5")
	}
	if !ValueMatches(float64(5), float64(5)) {
		t.Fatal("expected equal numbers to match")
	}
	if ValueMatches(float64(5), float64(6)) {
		t.Fatal("expected different numbers not to match")
	}
}

func TestValueMatches_NumericTypesCompareByValue(t *testing.T) {
	// A number read back from the store arrives as float64; it must still
	// match the Go int it was registered and queried with.
	if !ValueMatches(float64(8080), 8080) {
		t.Fatal("expected persisted float64 to match queried int")
	}
	if !ValueMatches(8080, int64(8080)) {
		t.Fatal("expected numeric types to compare by value")
	}
	if ValueMatches(float64(8080), 8081) {
		t.Fatal("expected different numbers not to match")
	}
	if !ValueMatches(
		map[string]interface{}{"port": float64(8080)},
		map[string]interface{}{"port": 8080},
	) {
		t.Fatal("expected nested numeric values to compare by value")
	}
}

func TestValueMatches_Regex(t *testing.T) {
	if !ValueMatches(`/^\/api\/.*$/`, "/api/users") {
		t.Fatal("expected pattern to match /api/users")
	}
	if ValueMatches(`/^\/api\/.*$/`, "/other") {
		t.Fatal("expected pattern not to match /other")
	}
	if !ValueMatches("/^users/", "users/1") {
		t.Fatal("expected prefix pattern to match")
	}
	if ValueMatches("/^users$/", "users/1") {
		t.Fatal("expected anchored pattern not to match longer value")
	}
}

func TestValueMatches_RegexFlags(t *testing.T) {
	if !ValueMatches("/^foo.*bar$/i", "FOO something BAR") {
		t.Fatal("expected case-insensitive flag to apply")
	}
	if ValueMatches("/^foo.*bar$/", "FOO something BAR") {
		t.Fatal("expected case-sensitive pattern not to match upper case")
	}
}

func TestValueMatches_InvalidRegex(t *testing.T) {
	// Pattern form but broken pattern: best effort means a failed match,
	// not a panic.
	if ValueMatches("/([/", "anything") {
		t.Fatal("expected invalid pattern to fail the match")
	}
}

func TestValueMatches_RegexAgainstNonString(t *testing.T) {
	if ValueMatches("/^5$/", 5) {
		t.Fatal("expected regex criteria not to match a non-string value")
	}
}

func TestValueMatches_PlainStringsWithSlashes(t *testing.T) {
	// Starts with "/" but does not end with delimiter+flags: literal.
	if !ValueMatches("/api/users", "/api/users") {
		t.Fatal("expected plain path to compare literally")
	}
	if ValueMatches("/api/users", "/api/other") {
		t.Fatal("expected plain path mismatch")
	}
}

func TestMatches_AllFieldsRequired(t *testing.T) {
	stored := record.Criteria{"method": "GET", "url": "/a", "extra": "foo"}

	if !Matches(stored, record.Criteria{"method": "GET", "url": "/a"}) {
		t.Fatal("expected subset query to match")
	}
	if Matches(stored, record.Criteria{"method": "GET", "url": "/b"}) {
		t.Fatal("expected mismatching field to reject the record")
	}
	if Matches(stored, record.Criteria{"method": "GET", "url": "/a", "other": "bar"}) {
		t.Fatal("expected query field missing from stored criteria to reject")
	}
}

func TestMatches_EmptyQuery(t *testing.T) {
	stored := record.Criteria{"method": "GET"}
	if !Matches(stored, record.Criteria{}) {
		t.Fatal("expected empty query to match any record")
	}
}
