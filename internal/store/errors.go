package store

import "errors"

var (
	// ErrEmptyWord is returned when a word is empty after trimming.
	ErrEmptyWord = errors.New("word is empty")

	// ErrDuplicateWord is returned when a word is already in the list.
	ErrDuplicateWord = errors.New("word is already in the list")

	// ErrNoWords is returned by ImportWords when the input holds no words.
	ErrNoWords = errors.New("input contains no words")
)
