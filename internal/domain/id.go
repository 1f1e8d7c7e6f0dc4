package domain

import (
	"database/sql/driver"
	"fmt"

	"github.com/rs/xid"
)

// ID is an opaque, globally-unique, lexicographically sortable,
// string-encodable identifier (§3, §9). It is backed by xid's 12-byte
// (96-bit) value, the same size the original source's object IDs used,
// instead of a 128-bit UUID.
type ID string

// NewID generates a fresh ID.
func NewID() ID {
	return ID(xid.New().String())
}

// ParseID validates s as a well-formed ID.
func ParseID(s string) (ID, error) {
	if _, err := xid.FromString(s); err != nil {
		return "", fmt.Errorf("malformed id %q: %w", s, err)
	}
	return ID(s), nil
}

func (id ID) String() string { return string(id) }

// IsZero reports whether id is the empty value.
func (id ID) IsZero() bool { return id == "" }

// Value implements driver.Valuer so gorm stores ID as its string form.
func (id ID) Value() (driver.Value, error) {
	return string(id), nil
}

// Scan implements sql.Scanner.
func (id *ID) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*id = ID(v)
	case []byte:
		*id = ID(v)
	case nil:
		*id = ""
	default:
		return fmt.Errorf("cannot scan %T into domain.ID", src)
	}
	return nil
}

// Timestamp is milliseconds since the Unix epoch, UTC (§3).
type Timestamp = int64

// TimeSpan is a half-open UTC window [Start, End).
type TimeSpan struct {
	Start Timestamp
	End   Timestamp
}

// Duration returns the span length in milliseconds.
func (s TimeSpan) Duration() int64 { return s.End - s.Start }

// Overlaps reports whether s and o share any instant.
func (s TimeSpan) Overlaps(o TimeSpan) bool {
	return s.Start < o.End && o.Start < s.End
}

// Contains reports whether t lies in [Start, End).
func (s TimeSpan) Contains(t TimeSpan) bool {
	return s.Start <= t.Start && t.End <= s.End
}
