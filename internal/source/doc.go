// Package source provides the live documents a monitor watches.
//
// A Source produces Snapshots: the raw HTML of a page together with the
// location it was loaded from. HTTPSource polls a URL, optionally through
// a SOCKS5 proxy, and FileSource follows a local file with fsnotify. Both
// fingerprint each body with BLAKE2b-256 and only emit a Snapshot when the
// content actually changed, so the first emitted Snapshot doubles as the
// readiness signal of the document.
package source
