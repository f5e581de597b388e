package model

import (
	"database/sql"
	"encoding/json"
)

// JsonNullString is an alias type for sql.NullString that marshals
// to a string value or null in JSON.
type JsonNullString struct {
	sql.NullString
}

// MarshalJSON implements the json.Marshaler interface.
func (v JsonNullString) MarshalJSON() ([]byte, error) {
	if v.Valid {
		return json.Marshal(v.String)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (v *JsonNullString) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s != nil {
		v.Valid = true
		v.String = *s
	} else {
		v.Valid = false
		v.String = ""
	}
	return nil
}

// JsonNullFloat64 is an alias type for sql.NullFloat64 that marshals
// to a numeric value or null in JSON.
type JsonNullFloat64 struct {
	sql.NullFloat64
}

// MarshalJSON implements the json.Marshaler interface.
func (v JsonNullFloat64) MarshalJSON() ([]byte, error) {
	if v.Valid {
		return json.Marshal(v.Float64)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (v *JsonNullFloat64) UnmarshalJSON(data []byte) error {
	var f *float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if f != nil {
		v.Valid = true
		v.Float64 = *f
	} else {
		v.Valid = false
		v.Float64 = 0
	}
	return nil
}

// NullStringFrom builds a valid JsonNullString, or an invalid one for "".
func NullStringFrom(s string) JsonNullString {
	return JsonNullString{sql.NullString{String: s, Valid: s != ""}}
}

// NullFloatFrom builds a JsonNullFloat64 from an optional value.
func NullFloatFrom(f *float64) JsonNullFloat64 {
	if f == nil {
		return JsonNullFloat64{}
	}
	return JsonNullFloat64{sql.NullFloat64{Float64: *f, Valid: true}}
}
