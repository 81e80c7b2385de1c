package ids

import "github.com/segmentio/ksuid"

// New returns a time-sortable identifier for persisted rows.
func New() string {
	return ksuid.New().String()
}
