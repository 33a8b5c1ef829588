package translate

import (
	"strings"

	"github.com/minios-linux/bg3loc/locafile"
)

// Status is the lifecycle state of a Unit.
type Status int

const (
	StatusPending Status = iota
	StatusDispatched
	StatusCompleted
	StatusFailed
	StatusReconciled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusDispatched:
		return "dispatched"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusReconciled:
		return "reconciled"
	}
	return "unknown"
}

// Unit is one translatable <content> entry. Every Unit owns a distinct
// node, so units may be written back without locking.
type Unit struct {
	// ID is the contentuid attribute. It is not guaranteed to be unique.
	ID string
	// Original is the text at extraction time.
	Original string
	Status   Status
	Result   Result

	node *locafile.Node
}

// Extract returns a Unit for every <content> element below the root whose
// text is not blank, in document order. The document is not modified.
func Extract(doc *locafile.File) []*Unit {
	var units []*Unit
	for _, n := range doc.Contents() {
		text := n.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		id, _ := n.AttrValue(locafile.UIDAttr)
		units = append(units, &Unit{ID: id, Original: text, node: n})
	}
	return units
}
