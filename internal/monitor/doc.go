// Package monitor ties a live document to the keyword scanner.
//
// A Monitor owns one document and runs its whole life on a single event
// loop: the page source hands new content to the loop, the loop observes
// the resulting mutations, debounces them and re-scans, and a fallback
// ticker re-scans unconditionally. Every scan is gated on the stored target
// site and word list, marks new occurrences, plays the notification cue
// and records what it found.
//
// Group runs several independent monitors side by side.
package monitor
