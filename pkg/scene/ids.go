package scene

import (
	"strconv"
	"time"
)

// DefaultIDPrefix prefixes every generated identifier.
const DefaultIDPrefix = "@id:nodeID_"

// IDAssigner hands out identifiers of the form <prefix><n>, where n starts at
// the assigner's creation time in Unix milliseconds and grows by one per id.
//
// An IDAssigner is not safe for concurrent use. Create one per tree.
type IDAssigner struct {
	prefix string
	next   int64
}

// NewIDAssigner returns an assigner whose counter starts at start.UnixMilli().
func NewIDAssigner(start time.Time) *IDAssigner {
	return &IDAssigner{prefix: DefaultIDPrefix, next: start.UnixMilli()}
}

// NewID returns the next identifier.
func (a *IDAssigner) NewID() string {
	id := a.prefix + strconv.FormatInt(a.next, 10)
	a.next++
	return id
}

// Assign gives every node without an identifier a fresh one, parents before
// children, edges included. It returns the number of identifiers generated.
func (a *IDAssigner) Assign(root *Node) int {
	if root == nil {
		return 0
	}
	count := 0
	if root.ID == "" {
		root.ID = a.NewID()
		count++
	}
	for _, c := range root.Children {
		count += a.Assign(c)
	}
	return count
}
