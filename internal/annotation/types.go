package annotation

// Kind distinguishes the two annotation variants.
type Kind string

const (
	KindHighlight Kind = "highlight"
	KindComment   Kind = "comment"
)

// Range is a half-open interval [Start, End) of rune offsets within a
// section's plain text. Offsets are rune offsets, never byte offsets and
// never DOM positions, so a range stays meaningful across re-renders.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of runes covered by the range.
func (r Range) Len() int { return r.End - r.Start }

// Overlaps reports whether two half-open ranges share at least one rune.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Annotation is a highlight or comment anchored to a range of section text.
// Instances are owned by an Engine; identity is the generated ID, which is
// never derived from the range (ranges can coincide across annotations).
type Annotation struct {
	ID          string `json:"id"`
	SectionID   string `json:"section_id"`
	Kind        Kind   `json:"kind"`
	Range       Range  `json:"range"`
	Color       string `json:"color,omitempty"`        // highlight only
	CommentText string `json:"comment_text,omitempty"` // comment only
	AnchorText  string `json:"anchor_text"`            // recovery key for stale offsets
}

// SegmentType distinguishes plain runs from annotated runs.
type SegmentType string

const (
	SegmentText      SegmentType = "text"
	SegmentAnnotated SegmentType = "annotated"
)

// Segment is one contiguous piece of a section's text as produced by
// Project. Concatenating segment contents in order reconstitutes the
// section text exactly.
type Segment struct {
	Type         SegmentType `json:"type"`
	Content      string      `json:"content"`
	Kind         Kind        `json:"kind,omitempty"`
	Color        string      `json:"color,omitempty"`
	Comment      string      `json:"comment,omitempty"`
	AnnotationID string      `json:"annotation_id,omitempty"`
}

// Record is the persisted wire shape of an annotation. Start/End are
// pointers because stored offsets may be absent or stale; AnchorText is
// the required fallback key used by Resolve when they are.
type Record struct {
	ID          string `json:"id,omitempty"`
	SectionID   string `json:"section_id"`
	Kind        Kind   `json:"kind"`
	Start       *int   `json:"start,omitempty"`
	End         *int   `json:"end,omitempty"`
	AnchorText  string `json:"anchor_text"`
	Color       string `json:"color,omitempty"`
	CommentText string `json:"comment_text,omitempty"`
}

// Selection is a captured user selection reduced to section-local offsets.
type Selection struct {
	SectionID string `json:"section_id"`
	Range     Range  `json:"range"`
	Text      string `json:"text"`
}

// SummaryEntry is one row of the cross-section annotation listing.
type SummaryEntry struct {
	ID          string `json:"id"`
	SectionID   string `json:"section_id"`
	Kind        Kind   `json:"kind"`
	PreviewText string `json:"preview_text"`
	Detail      string `json:"detail"`
	Stale       bool   `json:"stale"`
}

// DefaultPalette is the highlight color allow-list used when the host
// supplies none.
var DefaultPalette = []string{"yellow", "green", "blue", "pink", "orange"}
