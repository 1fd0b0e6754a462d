// Package pattern compiles a word list into a single case-insensitive matcher.
//
// Every word is escaped with regexp.QuoteMeta so that metacharacters are
// matched literally, and the escaped words are joined with alternation.
// There is no word-boundary anchoring: "cat" matches inside "concatenate".
//
// # Overlapping words
//
// Go's regexp alternation is leftmost-first. When two words can match at the
// same position (for example "cat" and "category"), the word declared first
// in the list wins. Callers that want the longer word to take precedence
// should list it first.
package pattern
