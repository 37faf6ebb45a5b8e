package annotation

import (
	"sort"
	"unicode/utf8"
)

// Project flattens a section's annotations onto its text, producing the
// ordered segment sequence the host renders. The pass is deterministic:
// ranges sort by start offset with insertion order breaking ties, and the
// walk emits alternating plain and annotated runs that concatenate back to
// the input text.
//
// Annotations whose range no longer fits the current text are excluded
// from the render (they stay in the store and show up flagged in the
// summary instead). A range that starts before the cursor — overlap, which
// only stored records predating the overlap rejection rule can carry — is
// skipped rather than re-emitting text, preserving the concatenation
// invariant.
func Project(sectionText string, annotations []*Annotation) []Segment {
	runes := []rune(sectionText)
	textLen := len(runes)

	valid := make([]*Annotation, 0, len(annotations))
	for _, a := range annotations {
		if a.Range.Start >= 0 && a.Range.Start < a.Range.End && a.Range.End <= textLen {
			valid = append(valid, a)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Range.Start < valid[j].Range.Start
	})

	var segments []Segment
	lastIndex := 0
	for _, a := range valid {
		if a.Range.Start < lastIndex {
			continue
		}
		if a.Range.Start > lastIndex {
			segments = append(segments, Segment{
				Type:    SegmentText,
				Content: string(runes[lastIndex:a.Range.Start]),
			})
		}
		seg := Segment{
			Type:         SegmentAnnotated,
			Content:      string(runes[a.Range.Start:a.Range.End]),
			Kind:         a.Kind,
			AnnotationID: a.ID,
		}
		switch a.Kind {
		case KindHighlight:
			seg.Color = a.Color
		case KindComment:
			seg.Comment = a.CommentText
		}
		segments = append(segments, seg)
		lastIndex = a.Range.End
	}
	if lastIndex < textLen {
		segments = append(segments, Segment{
			Type:    SegmentText,
			Content: string(runes[lastIndex:]),
		})
	}
	return segments
}

// IsStale reports whether the annotation's range no longer fits the given
// section text.
func (a *Annotation) IsStale(sectionText string) bool {
	textLen := utf8.RuneCountInString(sectionText)
	return a.Range.Start < 0 || a.Range.Start >= a.Range.End || a.Range.End > textLen
}
