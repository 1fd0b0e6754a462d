// Package dom holds a live HTML document and reports its mutations.
//
// A Document wraps a golang.org/x/net/html node tree. Every change made
// through the Document methods produces a MutationRecord that is queued on
// each Observer whose subtree contains the mutation target, and the observer
// is signalled through a channel. Consumers drain records with TakeRecords,
// mirroring a browser MutationObserver: records are batched and delivered
// after the mutating code has returned control to the event loop.
//
// A Document is not safe for concurrent use. It is owned by the goroutine
// that runs the monitor's event loop; other goroutines hand work to that
// loop instead of touching the tree directly.
package dom
