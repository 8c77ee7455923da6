// ABOUTME: Scanner for SQLite timestamp columns
// ABOUTME: Accepts the text layouts and time.Time values both drivers may return

package store

import (
	"fmt"
	"time"
)

// timestampLayout matches SQLite's CURRENT_TIMESTAMP output.
const timestampLayout = "2006-01-02 15:04:05"

var timestampLayouts = []string{
	timestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// dbTime scans a created_at column. NULL scans to the zero time.
type dbTime struct {
	time.Time
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (t *dbTime) parse(s string) error {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}
