// Package main provides the entry point for the wordwatch CLI.
//
// wordwatch keeps an HTML page live, marks every occurrence of the
// configured keywords in it and plays a short cue when new matches appear.
//
// Usage:
//
//	wordwatch words add urgent
//	wordwatch target example.com
//	wordwatch watch https://example.com/news
//
// See --help for all available options.
package main

func main() {
	Execute()
}
