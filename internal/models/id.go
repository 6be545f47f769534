package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ID is a backend-assigned integer identifier. Zero means unset.
//
// The backend is not consistent about how it serializes ids, so decoding
// accepts a JSON number, a numeric string, or null. Anything else decodes to
// zero rather than failing the surrounding document.
type ID int64

// Valid reports whether the id refers to a persisted record.
func (id ID) Valid() bool {
	return id > 0
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID parses a path or form value into an ID.
func ParseID(s string) (ID, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return ID(n), true
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, _ := ParseID(s)
		*id = parsed
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*id = 0
		return nil
	}
	if f <= 0 || f != float64(int64(f)) {
		*id = 0
		return nil
	}
	*id = ID(int64(f))
	return nil
}
