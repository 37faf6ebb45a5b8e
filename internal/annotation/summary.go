package annotation

// stalePreview is shown when an annotation's range no longer resolves
// against the current section text and it has no anchor to fall back on.
const stalePreview = "(text changed)"

// Summarize derives the cross-section side-panel listing. It is a pure
// projection over the engine's contents and the current section texts:
// entries appear in insertion order, stale annotations are kept but
// flagged with a fallback preview rather than dropped.
func (e *Engine) Summarize() []SummaryEntry {
	entries := make([]SummaryEntry, 0, e.Len())
	for _, a := range e.List() {
		entry := SummaryEntry{
			ID:        a.ID,
			SectionID: a.SectionID,
			Kind:      a.Kind,
		}
		switch a.Kind {
		case KindHighlight:
			entry.Detail = a.Color
		case KindComment:
			entry.Detail = a.CommentText
		}

		text, ok := e.textFn(a.SectionID)
		if !ok || a.IsStale(text) {
			entry.Stale = true
			entry.PreviewText = a.AnchorText
			if entry.PreviewText == "" {
				entry.PreviewText = stalePreview
			}
		} else {
			entry.PreviewText = sliceRunes(text, a.Range)
		}
		entries = append(entries, entry)
	}
	return entries
}
