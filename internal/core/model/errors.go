package model

import "fmt"

// CapacityError aborts a run when the edge input exceeds the configured
// row cap. Truncating instead would silently skew orphan and degree
// statistics, so the whole run fails with the counts seen so far.
type CapacityError struct {
	Limit int
	Seen  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("edge input exceeds row cap: %d rows seen, limit %d", e.Seen, e.Limit)
}
