package annotation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// SectionTextFunc supplies the current plain text of a section. The second
// return value is false when no such section exists.
type SectionTextFunc func(sectionID string) (string, bool)

// Engine owns all annotations for one document session. It is not safe for
// concurrent use; callers serialize access (one mutation at a time), and
// re-derive Project/Summarize output after every mutation.
type Engine struct {
	textFn  SectionTextFunc
	byID    map[string]*Annotation
	order   []string // insertion order of ids
	palette map[string]bool
	pending *Selection
}

// NewEngine creates an empty engine over the given section text supplier.
// palette may be nil, in which case DefaultPalette applies.
func NewEngine(textFn SectionTextFunc, palette []string) *Engine {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	allowed := make(map[string]bool, len(palette))
	for _, c := range palette {
		allowed[c] = true
	}
	return &Engine{
		textFn:  textFn,
		byID:    make(map[string]*Annotation),
		palette: allowed,
	}
}

// SetPendingSelection records the selection the user most recently made.
// It is consumed (cleared) when converted to a comment.
func (e *Engine) SetPendingSelection(sel Selection) { e.pending = &sel }

// PendingSelection returns the held selection, if any.
func (e *Engine) PendingSelection() (Selection, bool) {
	if e.pending == nil {
		return Selection{}, false
	}
	return *e.pending, true
}

// ClearPendingSelection drops the held selection.
func (e *Engine) ClearPendingSelection() { e.pending = nil }

// sectionText fetches current text or fails the input contract.
func (e *Engine) sectionText(sectionID string) (string, error) {
	text, ok := e.textFn(sectionID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSection, sectionID)
	}
	return text, nil
}

// validateRange checks bounds against the current section text and rejects
// overlap with existing annotations in the same section.
func (e *Engine) validateRange(sectionID string, r Range) (string, error) {
	text, err := e.sectionText(sectionID)
	if err != nil {
		return "", err
	}
	if r.Start < 0 || r.Start >= r.End || r.End > utf8.RuneCountInString(text) {
		return "", fmt.Errorf("%w: [%d,%d) over %d runes", ErrInvalidRange, r.Start, r.End, utf8.RuneCountInString(text))
	}
	for _, id := range e.order {
		a := e.byID[id]
		if a.SectionID == sectionID && a.Range.Overlaps(r) {
			return "", fmt.Errorf("%w: [%d,%d) overlaps %s [%d,%d)", ErrOverlappingRange, r.Start, r.End, a.ID, a.Range.Start, a.Range.End)
		}
	}
	return text, nil
}

// AddHighlight validates and appends a highlight annotation.
func (e *Engine) AddHighlight(sectionID string, r Range, color string) (*Annotation, error) {
	text, err := e.validateRange(sectionID, r)
	if err != nil {
		return nil, err
	}
	if !e.palette[color] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, color)
	}
	a := &Annotation{
		ID:         uuid.New().String(),
		SectionID:  sectionID,
		Kind:       KindHighlight,
		Range:      r,
		Color:      color,
		AnchorText: sliceRunes(text, r),
	}
	e.append(a)
	return a, nil
}

// AddComment validates and appends a comment annotation. The anchor text
// is the selected substring, kept as the recovery key; when the caller
// passes none it is derived from the section text. The pending selection
// is consumed on success.
func (e *Engine) AddComment(sectionID string, r Range, commentText, anchorText string) (*Annotation, error) {
	text, err := e.validateRange(sectionID, r)
	if err != nil {
		return nil, err
	}
	commentText = strings.TrimSpace(commentText)
	if commentText == "" {
		return nil, ErrEmptyComment
	}
	if anchorText == "" {
		anchorText = sliceRunes(text, r)
	}
	a := &Annotation{
		ID:          uuid.New().String(),
		SectionID:   sectionID,
		Kind:        KindComment,
		Range:       r,
		CommentText: commentText,
		AnchorText:  anchorText,
	}
	e.append(a)
	e.pending = nil
	return a, nil
}

// UpdateComment replaces a comment's text. The span is immutable; only
// the free text may change.
func (e *Engine) UpdateComment(id, commentText string) (*Annotation, error) {
	a, ok := e.byID[id]
	if !ok {
		return nil, fmt.Errorf("annotation not found: %s", id)
	}
	if a.Kind != KindComment {
		return nil, fmt.Errorf("annotation %s is not a comment", id)
	}
	commentText = strings.TrimSpace(commentText)
	if commentText == "" {
		return nil, ErrEmptyComment
	}
	a.CommentText = commentText
	return a, nil
}

// Delete removes the annotation with the given id, reporting whether it
// existed. Deleting a missing id is not an error.
func (e *Engine) Delete(id string) bool {
	if _, ok := e.byID[id]; !ok {
		return false
	}
	delete(e.byID, id)
	for i, v := range e.order {
		if v == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the annotation with the given id.
func (e *Engine) Get(id string) (*Annotation, bool) {
	a, ok := e.byID[id]
	return a, ok
}

// ListBySection returns the section's annotations in insertion order.
// Sorting by offset is the projector's concern, not the store's.
func (e *Engine) ListBySection(sectionID string) []*Annotation {
	var out []*Annotation
	for _, id := range e.order {
		if a := e.byID[id]; a.SectionID == sectionID {
			out = append(out, a)
		}
	}
	return out
}

// List returns all annotations in insertion order.
func (e *Engine) List() []*Annotation {
	out := make([]*Annotation, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.byID[id])
	}
	return out
}

// Len returns the number of annotations held.
func (e *Engine) Len() int { return len(e.order) }

// LoadAll bulk-replaces the engine's contents from raw records. Each
// record runs through Resolve against the current section text; records
// that fail resolution or carry an invalid payload are dropped, never
// surfaced as errors (lossy-but-safe). Record ids survive the round trip
// so a later load after text is restored resolves to the same identity;
// when two records share an id, the first one wins.
func (e *Engine) LoadAll(records []Record) {
	e.byID = make(map[string]*Annotation)
	e.order = nil
	for _, rec := range records {
		text, ok := e.textFn(rec.SectionID)
		if !ok {
			continue
		}
		res := Resolve(rec, text)
		if !res.Ok {
			continue
		}
		a := &Annotation{
			ID:         rec.ID,
			SectionID:  rec.SectionID,
			Kind:       rec.Kind,
			Range:      Range{Start: res.Start, End: res.End},
			AnchorText: rec.AnchorText,
		}
		if a.ID == "" {
			a.ID = uuid.New().String()
		} else if _, dup := e.byID[a.ID]; dup {
			// First occurrence of an id wins.
			continue
		}
		switch rec.Kind {
		case KindHighlight:
			if !e.palette[rec.Color] {
				continue
			}
			a.Color = rec.Color
		case KindComment:
			a.CommentText = strings.TrimSpace(rec.CommentText)
			if a.CommentText == "" {
				continue
			}
		default:
			continue
		}
		if a.AnchorText == "" {
			a.AnchorText = sliceRunes(text, a.Range)
		}
		e.append(a)
	}
}

// ExportAll produces the persisted record shape for every annotation, in
// insertion order. Offsets are included; the anchor text rides along as
// the recovery key for a future load against changed text.
func (e *Engine) ExportAll() []Record {
	out := make([]Record, 0, len(e.order))
	for _, id := range e.order {
		a := e.byID[id]
		start, end := a.Range.Start, a.Range.End
		out = append(out, Record{
			ID:          a.ID,
			SectionID:   a.SectionID,
			Kind:        a.Kind,
			Start:       &start,
			End:         &end,
			AnchorText:  a.AnchorText,
			Color:       a.Color,
			CommentText: a.CommentText,
		})
	}
	return out
}

// Project renders one section through the projector using current text.
func (e *Engine) Project(sectionID string) ([]Segment, error) {
	text, err := e.sectionText(sectionID)
	if err != nil {
		return nil, err
	}
	return Project(text, e.ListBySection(sectionID)), nil
}

func (e *Engine) append(a *Annotation) {
	e.byID[a.ID] = a
	e.order = append(e.order, a.ID)
}

// sliceRunes extracts a rune range from s. The range must already be
// validated against the rune length of s.
func sliceRunes(s string, r Range) string {
	runes := []rune(s)
	return string(runes[r.Start:r.End])
}
