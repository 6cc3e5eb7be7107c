package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Setting is a key/value configuration entry. Key is unique.
type Setting struct {
	ID        int64        `json:"id"`
	Key       string       `json:"key"`
	Value     SettingValue `json:"value"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Validate checks field constraints.
func (s *Setting) Validate() error {
	return firstError(
		required("key", s.Key),
		maxLen("key", s.Key, 255),
	)
}

// SettingValue is stored as text. Non-string JSON values (numbers, booleans,
// objects) are kept as their raw JSON text.
type SettingValue string

// UnmarshalJSON implements json.Unmarshaler.
func (v *SettingValue) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = SettingValue(s)
		return nil
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return err
	}
	*v = SettingValue(compact.String())
	return nil
}
