package orders

import (
	"fmt"
	"time"
)

// The API emits RFC 3339 timestamps; older endpoints still use the plain
// "Y-m-d H:i:s" form.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
