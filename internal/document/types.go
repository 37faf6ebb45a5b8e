package document

import "time"

// Document is a reviewable text document composed of named sections.
type Document struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	SourcePath string    `json:"source_path,omitempty"`
	Sections   []Section `json:"sections,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Section is one named block of plain text within a document. Annotations
// are scoped to a section and keyed by rune offsets into Content.
type Section struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}
