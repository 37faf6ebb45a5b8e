package annotation

import (
	"strings"
	"unicode/utf8"
)

// anchorPrefixLen is how many runes of a comment's anchor text are used as
// the relocation search key. Long anchors may have been truncated at
// storage time; a prefix match tolerates that.
const anchorPrefixLen = 20

// Resolution is the tagged outcome of resolving a record against current
// section text. Callers must check Ok before using the offsets.
type Resolution struct {
	Ok    bool
	Start int
	End   int
}

// Resolve locates a persisted record within the current section text.
//
// Fast path: if the record carries in-bounds numeric offsets they are
// trusted as-is. Otherwise the anchor text is searched for in the section
// text and offsets are derived from the match position. The first
// occurrence always wins; when the anchor appears more than once the
// annotation relocates to the earliest match. That is a documented
// limitation of anchor-based recovery, not something to second-guess here.
func Resolve(rec Record, sectionText string) Resolution {
	textLen := utf8.RuneCountInString(sectionText)

	if rec.Start != nil && rec.End != nil {
		start, end := *rec.Start, *rec.End
		if start >= 0 && start < end && end <= textLen {
			return Resolution{Ok: true, Start: start, End: end}
		}
	}

	anchor := rec.AnchorText
	if anchor == "" {
		return Resolution{}
	}

	key := anchor
	if rec.Kind == KindComment {
		key = runePrefix(anchor, anchorPrefixLen)
	}

	byteIdx := strings.Index(sectionText, key)
	if byteIdx < 0 {
		return Resolution{}
	}

	start := utf8.RuneCountInString(sectionText[:byteIdx])
	end := start + utf8.RuneCountInString(anchor)
	if end > textLen {
		// The prefix matched but the full anchor runs past the end of the
		// text. Clamping would silently change what the annotation covers,
		// so treat it as unresolved.
		return Resolution{}
	}
	return Resolution{Ok: true, Start: start, End: end}
}

// runePrefix returns the first n runes of s.
func runePrefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
