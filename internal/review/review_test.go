package review

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/redlinehq/redline/internal/annotation"
	"github.com/redlinehq/redline/internal/db"
	"github.com/redlinehq/redline/internal/document"
)

type fixture struct {
	docs    *document.Store
	records *Store
	svc     *Service
	hub     *Hub
	docID   string
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	docs := document.NewStore(database)
	records := NewStore(database)
	hub := NewHub()
	svc := NewService(docs, records, hub, nil, nil)

	doc, err := docs.Create(context.Background(), document.Document{
		Title: "Internship Report",
		Sections: []document.Section{
			{ID: "introduction", Title: "Introduction", Content: "Hello world"},
			{ID: "body", Title: "Body", Content: "The quick brown fox"},
		},
	})
	if err != nil {
		t.Fatalf("creating document: %v", err)
	}

	return &fixture{docs: docs, records: records, svc: svc, hub: hub, docID: doc.ID}
}

func TestAddHighlightPersists(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	a, err := f.svc.AddHighlight(ctx, f.docID, "body", annotation.Range{Start: 4, End: 9}, "yellow")
	if err != nil {
		t.Fatalf("AddHighlight: %v", err)
	}

	// A fresh service over the same database reloads the annotation.
	fresh := NewService(f.docs, f.records, nil, nil, nil)
	entries, err := fresh.Summary(ctx, f.docID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != a.ID || entries[0].PreviewText != "quick" {
		t.Errorf("unexpected reloaded entries: %+v", entries)
	}
}

func TestAddHighlightValidation(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddHighlight(ctx, f.docID, "body", annotation.Range{Start: 5, End: 5}, "yellow"); !errors.Is(err, annotation.ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := f.svc.AddHighlight(ctx, f.docID, "ghost", annotation.Range{Start: 0, End: 3}, "yellow"); !errors.Is(err, annotation.ErrUnknownSection) {
		t.Errorf("expected ErrUnknownSection, got %v", err)
	}
	if _, err := f.svc.AddHighlight(ctx, "no-such-doc", "body", annotation.Range{Start: 0, End: 3}, "yellow"); err == nil {
		t.Error("expected error for missing document")
	}
}

func TestDeletePersists(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	a, _ := f.svc.AddComment(ctx, f.docID, "introduction", annotation.Range{Start: 6, End: 11}, "nice", "world")

	existed, err := f.svc.Delete(ctx, f.docID, a.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !existed {
		t.Error("expected delete to report true")
	}

	existed, err = f.svc.Delete(ctx, f.docID, a.ID)
	if err != nil || existed {
		t.Errorf("second delete should be a no-op, got existed=%v err=%v", existed, err)
	}

	records, _ := f.records.ListByDocument(ctx, f.docID)
	if len(records) != 0 {
		t.Errorf("record should be gone from storage, got %+v", records)
	}
}

func TestSectionEditMakesAnnotationStale(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	a, _ := f.svc.AddHighlight(ctx, f.docID, "body", annotation.Range{Start: 16, End: 19}, "green") // "fox"

	// Shrink the section underneath the annotation.
	if err := f.docs.UpdateSection(ctx, f.docID, "body", "The quick"); err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}

	segments, err := f.svc.Render(ctx, f.docID, "body")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, s := range segments {
		if s.AnnotationID == a.ID {
			t.Error("stale annotation must not render")
		}
	}

	entries, _ := f.svc.Summary(ctx, f.docID)
	if len(entries) != 1 || !entries[0].Stale || entries[0].PreviewText != "fox" {
		t.Errorf("expected stale entry with anchor preview, got %+v", entries)
	}
}

func TestLoadResolvesThroughAnchor(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	// A record with no offsets at all; only the anchor can place it.
	records := []annotation.Record{
		{SectionID: "body", Kind: annotation.KindComment, AnchorText: "quick", CommentText: "speedy"},
		{SectionID: "body", Kind: annotation.KindComment, AnchorText: "vanished", CommentText: "lost"},
	}

	loaded, err := f.svc.Load(ctx, f.docID, records)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != 1 {
		t.Fatalf("expected 1 loaded, got %d", loaded)
	}

	exported, _ := f.svc.Export(ctx, f.docID)
	if len(exported) != 1 {
		t.Fatalf("expected 1 exported, got %d", len(exported))
	}
	if *exported[0].Start != 4 || *exported[0].End != 9 {
		t.Errorf("expected resolved offsets [4,9), got [%d,%d)", *exported[0].Start, *exported[0].End)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	f.svc.AddHighlight(ctx, f.docID, "introduction", annotation.Range{Start: 0, End: 5}, "yellow")
	c, _ := f.svc.AddComment(ctx, f.docID, "body", annotation.Range{Start: 4, End: 9}, "hm", "quick")

	exported, _ := f.svc.Export(ctx, f.docID)
	if len(exported) != 2 {
		t.Fatalf("expected 2 records, got %d", len(exported))
	}

	loaded, err := f.svc.Load(ctx, f.docID, exported)
	if err != nil || loaded != 2 {
		t.Fatalf("round trip failed: loaded=%d err=%v", loaded, err)
	}

	entries, _ := f.svc.Summary(ctx, f.docID)
	found := false
	for _, e := range entries {
		if e.ID == c.ID && e.Detail == "hm" {
			found = true
		}
	}
	if !found {
		t.Error("comment identity should survive export/load")
	}
}

// HTTP handler tests

func setupRouter(t *testing.T) (*fixture, chi.Router) {
	t.Helper()
	f := setupFixture(t)
	r := chi.NewRouter()
	RegisterRoutes(r, f.svc, f.hub)
	return f, r
}

func TestRoute_AddHighlight(t *testing.T) {
	f, r := setupRouter(t)

	body := `{"section_id":"body","range":{"start":4,"end":9},"color":"yellow"}`
	req := httptest.NewRequest("POST", "/api/documents/"+f.docID+"/annotations/highlights", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var a annotation.Annotation
	json.Unmarshal(w.Body.Bytes(), &a)
	if a.ID == "" || a.AnchorText != "quick" {
		t.Errorf("unexpected annotation: %+v", a)
	}
}

func TestRoute_AddHighlightRejectsBadRange(t *testing.T) {
	f, r := setupRouter(t)

	body := `{"section_id":"body","range":{"start":9,"end":4},"color":"yellow"}`
	req := httptest.NewRequest("POST", "/api/documents/"+f.docID+"/annotations/highlights", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
}

func TestRoute_AddCommentAndSummary(t *testing.T) {
	f, r := setupRouter(t)

	body := `{"section_id":"introduction","range":{"start":6,"end":11},"comment_text":"nice"}`
	req := httptest.NewRequest("POST", "/api/documents/"+f.docID+"/annotations/comments", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/api/documents/"+f.docID+"/annotations", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var entries []annotation.SummaryEntry
	json.Unmarshal(w.Body.Bytes(), &entries)
	if len(entries) != 1 || entries[0].PreviewText != "world" || entries[0].Detail != "nice" {
		t.Errorf("unexpected summary: %+v", entries)
	}
}

func TestRoute_Render(t *testing.T) {
	f, r := setupRouter(t)
	ctx := context.Background()

	f.svc.AddComment(ctx, f.docID, "introduction", annotation.Range{Start: 6, End: 11}, "nice", "")

	req := httptest.NewRequest("GET", "/api/documents/"+f.docID+"/sections/introduction/render", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var segments []annotation.Segment
	json.Unmarshal(w.Body.Bytes(), &segments)
	if len(segments) != 2 || segments[0].Content != "Hello " || segments[1].Comment != "nice" {
		t.Errorf("unexpected segments: %+v", segments)
	}

	// HTML format.
	req = httptest.NewRequest("GET", "/api/documents/"+f.docID+"/sections/introduction/render?format=html", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), `class="comment"`) {
		t.Errorf("expected HTML markup, got %q", w.Body.String())
	}
}

func TestRoute_CaptureSelection(t *testing.T) {
	f, r := setupRouter(t)

	body := `{"section_id":"body","text":"quick","start_offset":4}`
	req := httptest.NewRequest("POST", "/api/documents/"+f.docID+"/selection", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var sel annotation.Selection
	json.Unmarshal(w.Body.Bytes(), &sel)
	if sel.Range.Start != 4 || sel.Range.End != 9 {
		t.Errorf("unexpected selection: %+v", sel)
	}
}

func TestRoute_DeleteIdempotent(t *testing.T) {
	f, r := setupRouter(t)
	ctx := context.Background()

	a, _ := f.svc.AddHighlight(ctx, f.docID, "body", annotation.Range{Start: 0, End: 3}, "blue")

	req := httptest.NewRequest("DELETE", "/api/documents/"+f.docID+"/annotations/"+a.ID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]bool
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp["deleted"] {
		t.Error("expected deleted=true")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/documents/"+f.docID+"/annotations/"+a.ID, nil))
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["deleted"] {
		t.Error("expected deleted=false on second delete")
	}
}

func TestRoute_EventsFeed(t *testing.T) {
	f, r := setupRouter(t)

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/documents/" + f.docID + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	defer conn.Close()

	// Wait for the subscription to register before mutating.
	deadline := time.Now().Add(2 * time.Second)
	for f.hub.Subscribers(f.docID) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	a, err := f.svc.AddHighlight(context.Background(), f.docID, "body", annotation.Range{Start: 0, End: 3}, "yellow")
	if err != nil {
		t.Fatalf("AddHighlight: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event Event
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("reading event: %v", err)
	}
	if event.Type != "added" || event.AnnotationID != a.ID || event.SectionID != "body" {
		t.Errorf("unexpected event: %+v", event)
	}
}
