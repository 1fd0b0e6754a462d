// Package store provides SQLite-based storage for wordwatch.
//
// The store plays the role of the browser extension's local storage: a
// key-value table holding JSON values for the word list ("words"), the
// site matcher ("targetUrl") and the highlight color ("highlightColor").
// Values are read leniently: a value of the wrong JSON type is treated as
// absent and replaced by a safe default, never reported as an error.
//
// A second table records match events, one row per matched word per scan,
// so the history command can show what appeared and when.
//
// The database is a single file opened through modernc.org/sqlite, a
// CGO-free driver.
package store
