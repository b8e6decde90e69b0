package config

const (
	// MaxItemNameLength is the maximum length for item names.
	MaxItemNameLength = 255

	// MaxTagNameLength is the maximum length for tag names.
	MaxTagNameLength = 64

	// MaxURLLength bounds url, path and command fields.
	MaxURLLength = 2048

	// MaxNotesLength bounds description and notes.
	MaxNotesLength = 64 * 1024

	// MaxImportBytes is the largest document accepted by import.
	MaxImportBytes = 20 << 20

	// DefaultListLimit applies to most-accessed and recent lists when no limit is given.
	DefaultListLimit = 10

	// DefaultSearchLimit caps search results.
	DefaultSearchLimit = 200
)
