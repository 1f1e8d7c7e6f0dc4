package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/unburdy/scheduler-module/internal/apperr"
)

// metadataMaxKeys and metadataMaxValueLen bound the opaque metadata map
// (§3) so it stays usable as a `key+value` index lookup (§9).
const (
	metadataMaxKeys     = 50
	metadataMaxValueLen = 500
)

// Metadata is the bounded string->string map attached to most entities.
type Metadata map[string]string

// NewMetadata validates m against the bounds and returns it, or a
// BadInput error.
func NewMetadata(m map[string]string) (Metadata, error) {
	if len(m) > metadataMaxKeys {
		return nil, apperr.NewBadInput("metadata has %d keys, limit is %d", len(m), metadataMaxKeys)
	}
	for k, v := range m {
		if len(v) > metadataMaxValueLen {
			return nil, apperr.NewBadInput("metadata value for key %q exceeds %d characters", k, metadataMaxValueLen)
		}
	}
	return Metadata(m), nil
}

// Value implements driver.Valuer, storing metadata as a JSON object.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]string(m))
	return string(b), err
}

// Scan implements sql.Scanner.
func (m *Metadata) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*m = Metadata{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into domain.Metadata", src)
	}
	if len(raw) == 0 {
		*m = Metadata{}
		return nil
	}
	var out map[string]string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*m = Metadata(out)
	return nil
}
