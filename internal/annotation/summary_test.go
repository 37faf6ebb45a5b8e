package annotation

import "testing"

func TestSummarize(t *testing.T) {
	e := testEngine(map[string]string{"intro": "Hello world", "body": "The quick brown fox"})

	e.AddComment("intro", Range{Start: 6, End: 11}, "nice", "world")
	e.AddHighlight("body", Range{Start: 4, End: 9}, "yellow")

	entries := e.Summarize()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if entries[0].Kind != KindComment || entries[0].PreviewText != "world" || entries[0].Detail != "nice" {
		t.Errorf("unexpected comment entry: %+v", entries[0])
	}
	if entries[1].Kind != KindHighlight || entries[1].PreviewText != "quick" || entries[1].Detail != "yellow" {
		t.Errorf("unexpected highlight entry: %+v", entries[1])
	}
	if entries[0].Stale || entries[1].Stale {
		t.Error("entries over current text must not be stale")
	}
}

func TestSummarizeFlagsStale(t *testing.T) {
	sections := map[string]string{"body": "The quick brown fox jumps"}
	e := testEngine(sections)

	a, err := e.AddHighlight("body", Range{Start: 20, End: 25}, "yellow")
	if err != nil {
		t.Fatalf("AddHighlight: %v", err)
	}

	// Section text shrinks underneath the annotation.
	sections["body"] = "The quick brown fox"

	// Excluded from the render pass...
	segments, err := e.Project("body")
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	for _, s := range segments {
		if s.AnnotationID == a.ID {
			t.Error("stale annotation must not render")
		}
	}

	// ...but still listed, flagged, with the anchor as fallback preview.
	entries := e.Summarize()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !entries[0].Stale {
		t.Error("expected stale flag")
	}
	if entries[0].PreviewText != "jumps" {
		t.Errorf("expected anchor fallback preview, got %q", entries[0].PreviewText)
	}
}

func TestSummarizeMissingSection(t *testing.T) {
	sections := map[string]string{"body": "Hello world"}
	e := testEngine(sections)

	e.AddHighlight("body", Range{Start: 0, End: 5}, "yellow")
	delete(sections, "body")

	entries := e.Summarize()
	if len(entries) != 1 || !entries[0].Stale {
		t.Errorf("annotation over a vanished section should be stale: %+v", entries)
	}
	if entries[0].PreviewText != "Hello" {
		t.Errorf("expected anchor fallback, got %q", entries[0].PreviewText)
	}
}
