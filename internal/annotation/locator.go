package annotation

import (
	"strings"
	"unicode/utf8"
)

// CaptureSelection reduces a user text selection to section-local rune
// offsets. The caller has already resolved which section the selection
// anchor sits in and the rune offset of the selection start within that
// section's rendered text (the DOM-walking half of selection capture lives
// in the host, not here).
//
// Returns false for selections outside any annotatable region (empty
// sectionID), for empty or whitespace-only selections, and when the
// claimed selection does not actually match the section text at the given
// offset.
func CaptureSelection(sectionID, sectionText, selectionText string, startOffset int) (Selection, bool) {
	if sectionID == "" {
		return Selection{}, false
	}
	if strings.TrimSpace(selectionText) == "" {
		return Selection{}, false
	}

	selLen := utf8.RuneCountInString(selectionText)
	end := startOffset + selLen
	if startOffset < 0 || end > utf8.RuneCountInString(sectionText) {
		return Selection{}, false
	}

	r := Range{Start: startOffset, End: end}
	if sliceRunes(sectionText, r) != selectionText {
		return Selection{}, false
	}

	return Selection{SectionID: sectionID, Range: r, Text: selectionText}, true
}
