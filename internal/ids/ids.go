package ids

import "github.com/segmentio/ksuid"

// New returns a sortable row id.
func New() string {
	return ksuid.New().String()
}
