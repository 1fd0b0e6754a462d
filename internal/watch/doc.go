// Package watch runs the event loop that keeps a document scanned.
//
// A Watcher owns a single goroutine. Everything that touches the document
// (scans, updates posted by page sources) runs on that goroutine, so the
// document, the pending debounce timer and any scan state need no locks.
//
// Two mechanisms trigger scans:
//
//   - Debounce: each batch of mutation records cancels the pending timer
//     and arms a new one for the quiet period. A burst of mutations shorter
//     than the quiet period results in exactly one scan, timed from the last
//     batch.
//   - Fallback: a ticker fires an unconditional scan on a fixed interval.
//     It is independent of the debounce timer and is never reset by it.
package watch
