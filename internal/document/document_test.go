package document

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/redlinehq/redline/internal/annotation"
	"github.com/redlinehq/redline/internal/db"
	"github.com/redlinehq/redline/internal/progress"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestCreateAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	doc := Document{
		Title: "Internship Report",
		Sections: []Section{
			{ID: "introduction", Title: "Introduction", Content: "Hello world"},
			{ID: "body", Title: "Body", Content: "The quick brown fox"},
		},
	}

	created, err := store.Create(ctx, doc)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Error("expected non-empty ID")
	}

	fetched, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(fetched.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(fetched.Sections))
	}
	if fetched.Sections[0].ID != "introduction" || fetched.Sections[1].Content != "The quick brown fox" {
		t.Errorf("unexpected sections: %+v", fetched.Sections)
	}
}

func TestGetMissing(t *testing.T) {
	store := setupTestStore(t)

	doc, err := store.GetByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if doc != nil {
		t.Error("expected nil for missing document")
	}
}

func TestSectionText(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, _ := store.Create(ctx, Document{
		Title:    "Doc",
		Sections: []Section{{ID: "body", Title: "Body", Content: "Hello world"}},
	})

	text, ok := store.SectionText(ctx, created.ID, "body")
	if !ok || text != "Hello world" {
		t.Errorf("unexpected section text: %q, %v", text, ok)
	}
	if _, ok := store.SectionText(ctx, created.ID, "ghost"); ok {
		t.Error("expected false for missing section")
	}
}

func TestUpdateSection(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, _ := store.Create(ctx, Document{
		Title:    "Doc",
		Sections: []Section{{ID: "body", Title: "Body", Content: "old text"}},
	})

	if err := store.UpdateSection(ctx, created.ID, "body", "new text"); err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}
	text, _ := store.SectionText(ctx, created.ID, "body")
	if text != "new text" {
		t.Errorf("expected updated text, got %q", text)
	}

	if err := store.UpdateSection(ctx, created.ID, "ghost", "x"); err == nil {
		t.Error("expected error for missing section")
	}
}

func TestDeleteCascades(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, _ := store.Create(ctx, Document{
		Title:    "Doc",
		Sections: []Section{{ID: "body", Title: "Body", Content: "text"}},
	})

	existed, err := store.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !existed {
		t.Error("expected delete to report true")
	}
	if _, ok := store.SectionText(ctx, created.ID, "body"); ok {
		t.Error("sections should cascade on document delete")
	}

	existed, _ = store.Delete(ctx, created.ID)
	if existed {
		t.Error("second delete should report false")
	}
}

func TestParseMarkdown(t *testing.T) {
	source := []byte(`# Internship Report

Some opening remarks.

## Background

The company builds widgets.

More background text.

## Evaluation

The intern did well.

### Details

Nested headings stay in the enclosing section.
`)

	doc := ParseMarkdown(source, "")
	if doc.Title != "Internship Report" {
		t.Errorf("unexpected title: %q", doc.Title)
	}
	if len(doc.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d: %+v", len(doc.Sections), doc.Sections)
	}
	if doc.Sections[0].ID != "introduction" || !strings.Contains(doc.Sections[0].Content, "opening remarks") {
		t.Errorf("unexpected intro section: %+v", doc.Sections[0])
	}
	if doc.Sections[1].ID != "background" {
		t.Errorf("unexpected slug: %q", doc.Sections[1].ID)
	}
	if !strings.Contains(doc.Sections[1].Content, "More background text") {
		t.Errorf("paragraphs after the first were dropped: %q", doc.Sections[1].Content)
	}
	if !strings.Contains(doc.Sections[2].Content, "Nested headings") {
		t.Errorf("level-3 heading content should stay in the section: %q", doc.Sections[2].Content)
	}
}

func TestParseMarkdownDuplicateHeadings(t *testing.T) {
	source := []byte("## Notes\n\nfirst\n\n## Notes\n\nsecond\n")

	doc := ParseMarkdown(source, "Doc")
	if len(doc.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(doc.Sections))
	}
	if doc.Sections[0].ID == doc.Sections[1].ID {
		t.Errorf("duplicate headings must get distinct ids: %q", doc.Sections[0].ID)
	}
}

func TestImportDir(t *testing.T) {
	store := setupTestStore(t)

	docs, err := ImportDir(context.Background(), store, "testdata", nil, []string{"**/*.draft.md"}, progress.Silent{})
	if err != nil {
		t.Fatalf("ImportDir: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 imported documents, got %d", len(docs))
	}
	for _, doc := range docs {
		if strings.Contains(doc.SourcePath, "draft") {
			t.Errorf("excluded file was imported: %s", doc.SourcePath)
		}
	}

	all, _ := store.List(context.Background())
	if len(all) != 2 {
		t.Errorf("expected 2 documents in store, got %d", len(all))
	}
}

func TestFilter(t *testing.T) {
	if !MatchesInclude("notes/report.md", nil) {
		t.Error("empty include list should match everything")
	}
	if !MatchesInclude("notes/report.md", []string{"notes/**"}) {
		t.Error("expected ** include match")
	}
	if MatchesExclude("report.md", nil) {
		t.Error("empty exclude list should match nothing")
	}
	if !MatchesExclude("a/b/c.draft.md", []string{"**/*.draft.md"}) {
		t.Error("expected exclude match")
	}
}

func TestSegmentsHTML(t *testing.T) {
	segments := []annotation.Segment{
		{Type: annotation.SegmentText, Content: "Hello <b> "},
		{Type: annotation.SegmentAnnotated, Content: "world", Kind: annotation.KindHighlight, Color: "yellow", AnnotationID: "h1"},
		{Type: annotation.SegmentAnnotated, Content: "again", Kind: annotation.KindComment, Comment: "why?", AnnotationID: "c1"},
	}

	out := SegmentsHTML(segments)
	if !strings.Contains(out, "Hello &lt;b&gt; ") {
		t.Errorf("plain text not escaped: %q", out)
	}
	if !strings.Contains(out, `<mark class="hl-yellow" data-annotation-id="h1">world</mark>`) {
		t.Errorf("missing highlight markup: %q", out)
	}
	if !strings.Contains(out, `title="why?"`) {
		t.Errorf("missing comment title: %q", out)
	}
}

func TestSegmentsHTMLEscapesAttributes(t *testing.T) {
	segments := []annotation.Segment{
		{
			Type:         annotation.SegmentAnnotated,
			Content:      "world",
			Kind:         annotation.KindComment,
			Comment:      `x" autofocus onfocus=alert(1) y="`,
			AnnotationID: `c1"><script>`,
		},
	}

	out := SegmentsHTML(segments)
	want := `<span class="comment" data-annotation-id="c1&#34;&gt;&lt;script&gt;" title="x&#34; autofocus onfocus=alert(1) y=&#34;">world</span>`
	if out != want {
		t.Errorf("SegmentsHTML = %q, want %q", out, want)
	}
}

func TestMarkdownHTML(t *testing.T) {
	out, err := MarkdownHTML([]byte("# Title\n\nsome **bold** text\n"))
	if err != nil {
		t.Fatalf("MarkdownHTML: %v", err)
	}
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("unexpected output: %q", out)
	}
}

// HTTP handler tests

func TestRoute_CreateAndGetDocument(t *testing.T) {
	store := setupTestStore(t)

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	body := `{"title":"Report","sections":[{"id":"body","title":"Body","content":"Hello world"}]}`
	req := httptest.NewRequest("POST", "/api/documents/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var doc Document
	json.Unmarshal(w.Body.Bytes(), &doc)
	if doc.ID == "" {
		t.Fatal("expected non-empty ID")
	}

	req = httptest.NewRequest("GET", "/api/documents/"+doc.ID+"/sections/body", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var section map[string]string
	json.Unmarshal(w.Body.Bytes(), &section)
	if section["content"] != "Hello world" {
		t.Errorf("unexpected content: %q", section["content"])
	}
}

func TestRoute_CreateRejectsEmpty(t *testing.T) {
	store := setupTestStore(t)

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	req := httptest.NewRequest("POST", "/api/documents/", strings.NewReader(`{"title":"No sections"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestRoute_GetNotFound(t *testing.T) {
	store := setupTestStore(t)

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	req := httptest.NewRequest("GET", "/api/documents/nonexistent", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
