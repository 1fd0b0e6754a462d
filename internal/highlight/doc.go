// Package highlight marks keyword occurrences inside a dom.Document.
//
// A scan has two strictly separated phases. First the eligible text nodes
// are collected into a slice; only then is the tree mutated. Replacing
// nodes while walking would invalidate sibling pointers and skip or repeat
// nodes, so the node list is always fully materialized before the first
// replacement.
//
// Marked text is wrapped in a <span> carrying MarkerClass. Text under such
// an element is never collected again, which makes repeated scans of a
// stable document a no-op.
package highlight
