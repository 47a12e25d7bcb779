package seedgen

import (
	"fmt"

	"github.com/udisondev/gtfoseed/internal/alloc"
)

// SpawnRequest is a placement postponed until the zones of the current pass
// have been generated.
type SpawnRequest struct {
	Name     string
	Zone     alloc.ZoneID
	Weights  alloc.Weights
	Category alloc.Category
	// SkipBefore and SkipAfter are decision draws burned around the
	// allocation.
	SkipBefore int
	SkipAfter  int
}

// String formats the request for logs.
func (r SpawnRequest) String() string {
	return fmt.Sprintf("%s(%s in %s)", r.Name, r.Category, r.Zone)
}

// requests holds the deferred work of one pass. Cells run before objective
// items.
type requests struct {
	cells []SpawnRequest
	items []SpawnRequest
}

func (q *requests) drain() []SpawnRequest {
	out := make([]SpawnRequest, 0, len(q.cells)+len(q.items))
	out = append(out, q.cells...)
	out = append(out, q.items...)
	q.cells = q.cells[:0]
	q.items = q.items[:0]
	return out
}
