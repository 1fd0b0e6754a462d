package dom

import (
	"sync"

	"golang.org/x/net/html"
)

// MutationType identifies the kind of change a MutationRecord describes.
type MutationType int

const (
	// ChildList is a structural change: children added or removed.
	ChildList MutationType = iota
	// CharacterData is a change to a text node's data.
	CharacterData
)

// String returns the DOM name of the mutation type.
func (t MutationType) String() string {
	switch t {
	case ChildList:
		return "childList"
	case CharacterData:
		return "characterData"
	default:
		return "unknown"
	}
}

// MutationRecord describes one change to the document.
type MutationRecord struct {
	Type     MutationType
	Target   *html.Node
	Added    []*html.Node
	Removed  []*html.Node
	OldValue string
}

// Observer collects mutation records for a subtree of a document.
type Observer struct {
	doc    *Document
	root   *html.Node
	signal chan struct{}

	mu      sync.Mutex
	records []MutationRecord
}

// Observe registers an observer for mutations anywhere under root,
// covering both structural and text changes. A nil root observes the whole
// document.
func (d *Document) Observe(root *html.Node) *Observer {
	if root == nil {
		root = d.root
	}
	o := &Observer{
		doc:    d,
		root:   root,
		signal: make(chan struct{}, 1),
	}
	d.observers = append(d.observers, o)
	return o
}

// C is signalled when new records are queued. Several mutations may
// collapse into a single signal; drain them with TakeRecords.
func (o *Observer) C() <-chan struct{} {
	return o.signal
}

// TakeRecords returns and clears the queued records.
func (o *Observer) TakeRecords() []MutationRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	records := o.records
	o.records = nil
	return records
}

// Disconnect stops the observer from receiving further records.
func (o *Observer) Disconnect() {
	d := o.doc
	for i, obs := range d.observers {
		if obs == o {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			break
		}
	}
	o.TakeRecords()
}

func (o *Observer) covers(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == o.root {
			return true
		}
	}
	return false
}

func (o *Observer) enqueue(r MutationRecord) {
	o.mu.Lock()
	o.records = append(o.records, r)
	o.mu.Unlock()

	select {
	case o.signal <- struct{}{}:
	default:
	}
}

func (d *Document) record(r MutationRecord) {
	for _, o := range d.observers {
		if o.covers(r.Target) {
			o.enqueue(r)
		}
	}
}
