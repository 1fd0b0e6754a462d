package dom

import "errors"

var (
	// ErrDetached is returned when a node passed to a mutation method is no
	// longer attached to the document tree.
	ErrDetached = errors.New("node is not attached to the document")

	// ErrNoBody is returned by operations that need a <body> element when
	// the document does not have one yet.
	ErrNoBody = errors.New("document has no body")
)
