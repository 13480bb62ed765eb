// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package model holds the inert payload types exchanged with the catalog,
// EPG and DVR services.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Key is an identifier that upstream may encode as a JSON string or number.
// The zero value means "absent".
type Key string

// KeyOf formats an integer id as a Key.
func KeyOf(id int64) Key {
	return Key(strconv.FormatInt(id, 10))
}

// IsZero reports whether the key is absent.
func (k Key) IsZero() bool { return k == "" }

func (k Key) String() string { return string(k) }

// UnmarshalJSON accepts strings, numbers, booleans and null.
func (k *Key) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*k = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*k = Key(s)
		return nil
	case 't', 'f':
		*k = Key(data)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("model: key must be string or number: %w", err)
	}
	*k = Key(n.String())
	return nil
}
