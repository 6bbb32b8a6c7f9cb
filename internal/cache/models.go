package cache

import "time"

type QueryOpts struct {
	Category string
	Search   string
	Limit    int
}

// Stats describes the snapshot file.
type Stats struct {
	Notes    int
	Size     int64
	LastSync time.Time
}
