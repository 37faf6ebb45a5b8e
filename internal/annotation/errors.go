package annotation

import "errors"

// Validation errors returned by the mutation operations. Read paths
// (Project, Summarize, LoadAll) never return these; they skip bad input
// instead so a single corrupt record cannot blank a document view.
var (
	ErrInvalidRange     = errors.New("invalid range")
	ErrInvalidColor     = errors.New("color not in palette")
	ErrEmptyComment     = errors.New("comment text is empty")
	ErrOverlappingRange = errors.New("range overlaps an existing annotation")
	ErrUnknownSection   = errors.New("unknown section")
)
