package record

import (
	"encoding/json"
	"fmt"
)

// criteriaKey is the reserved top-level key holding the match criteria of a
// stored record. Every other top-level key belongs to the payload.
const criteriaKey = "criteria"

// Criteria maps request field names to expected values. A string value of the
// form "/pattern/flags" is treated as a regular expression by the matcher;
// anything else is compared with strict equality.
type Criteria map[string]interface{}

// Record is one stored (criteria, payload) pair. Its serialized form is a
// single JSON object whose "criteria" key holds the criteria object and whose
// remaining keys are the payload, e.g.:
//
//	{
//	  "criteria": {"method": "GET", "url": "users/1"},
//	  "code": 200,
//	  "data": "{\"id\":1}"
//	}
type Record struct {
	Criteria Criteria
	Payload  map[string]interface{}
}

// New builds a record from a request criteria and a response payload. Both
// maps are copied so later mutation by the caller does not leak into the
// stored record, and their values are canonicalized to JSON value types
// (numbers become float64) so a record compares equal to itself after a
// persistence round trip. A "criteria" key inside the payload is ignored.
func New(criteria Criteria, payload map[string]interface{}) *Record {
	rec := &Record{
		Criteria: Criteria(canonicalMap(criteria)),
		Payload:  canonicalMap(payload),
	}
	delete(rec.Payload, criteriaKey)
	return rec
}

// canonicalMap copies a map through the JSON codec, producing the same value
// types a read from the store would. Input the codec cannot encode falls
// back to a plain copy.
func canonicalMap(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	if data, err := json.Marshal(in); err == nil {
		if err := json.Unmarshal(data, &out); err == nil {
			return out
		}
	}
	for key, value := range in {
		out[key] = value
	}
	return out
}

// MarshalJSON flattens the record into one object with the payload at the top
// level and the criteria under the reserved key.
func (r *Record) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(r.Payload)+1)
	for key, value := range r.Payload {
		if key == criteriaKey {
			continue
		}
		flat[key] = value
	}
	flat[criteriaKey] = r.Criteria
	return json.Marshal(flat)
}

// UnmarshalJSON splits a flat stored object back into criteria and payload.
// A record without a criteria object is preserved with empty criteria rather
// than rejected, so one malformed entry cannot poison the whole store.
func (r *Record) UnmarshalJSON(data []byte) error {
	var flat map[string]interface{}
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	r.Criteria = Criteria{}
	r.Payload = make(map[string]interface{}, len(flat))
	for key, value := range flat {
		if key == criteriaKey {
			if obj, ok := value.(map[string]interface{}); ok {
				r.Criteria = Criteria(obj)
			}
			continue
		}
		r.Payload[key] = value
	}
	return nil
}

// Clone returns a shallow copy of the record with fresh top-level maps.
func (r *Record) Clone() *Record {
	clone := &Record{
		Criteria: make(Criteria, len(r.Criteria)),
		Payload:  make(map[string]interface{}, len(r.Payload)),
	}
	for key, value := range r.Criteria {
		clone.Criteria[key] = value
	}
	for key, value := range r.Payload {
		clone.Payload[key] = value
	}
	return clone
}

// String renders a short diagnostic form used in logs.
func (r *Record) String() string {
	return fmt.Sprintf("record(criteria=%v, payload_fields=%d)", r.Criteria, len(r.Payload))
}
