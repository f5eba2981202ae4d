package weather

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexInt is an integer the API encodes either as a JSON number or as a JSON
// string ("cod": "200" on forecasts, "cod": 200 on current weather).
type FlexInt int

// UnmarshalJSON accepts 2643743, "2643743" and null. Anything else is a
// *FieldError.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return &FieldError{Value: raw, Err: err}
		}
		raw = s
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return &FieldError{Value: raw, Err: err}
	}
	*f = FlexInt(n)
	return nil
}

// MarshalJSON always writes a number.
func (f FlexInt) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(f))), nil
}

// Int returns the value as int.
func (f FlexInt) Int() int {
	return int(f)
}
