package review

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/redlinehq/redline/internal/annotation"
	"github.com/redlinehq/redline/internal/document"
)

// CommentIndex receives comment text for semantic search. A nil index
// disables indexing.
type CommentIndex interface {
	IndexComment(ctx context.Context, id, docID, sectionID, text string) error
	RemoveComment(ctx context.Context, id string) error
}

// Service owns one annotation engine per document and keeps the engine,
// the persisted records and the change feed in step. All mutation is
// serialized through a single mutex; the engine itself assumes exclusive
// access during each call.
type Service struct {
	docs    *document.Store
	records *Store
	hub     *Hub
	index   CommentIndex
	palette []string

	mu       sync.Mutex
	sessions map[string]*annotation.Engine
}

// NewService creates a review service. index may be nil; palette may be
// nil to use the default highlight colors.
func NewService(docs *document.Store, records *Store, hub *Hub, index CommentIndex, palette []string) *Service {
	return &Service{
		docs:     docs,
		records:  records,
		hub:      hub,
		index:    index,
		palette:  palette,
		sessions: make(map[string]*annotation.Engine),
	}
}

// engine returns the document's annotation engine, loading persisted
// records through the fallback resolver on first touch.
func (s *Service) engine(ctx context.Context, docID string) (*annotation.Engine, error) {
	if e, ok := s.sessions[docID]; ok {
		return e, nil
	}

	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document not found: %s", docID)
	}

	e := annotation.NewEngine(func(sectionID string) (string, bool) {
		return s.docs.SectionText(context.Background(), docID, sectionID)
	}, s.palette)

	records, err := s.records.ListByDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	e.LoadAll(records)

	s.sessions[docID] = e
	return e, nil
}

// CaptureSelection reduces a selection to offsets and parks it on the
// document's engine as the pending selection.
func (s *Service) CaptureSelection(ctx context.Context, docID, sectionID, selectionText string, startOffset int) (annotation.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.engine(ctx, docID)
	if err != nil {
		return annotation.Selection{}, err
	}
	text, ok := s.docs.SectionText(ctx, docID, sectionID)
	if !ok {
		return annotation.Selection{}, fmt.Errorf("%w: %s", annotation.ErrUnknownSection, sectionID)
	}
	sel, ok := annotation.CaptureSelection(sectionID, text, selectionText, startOffset)
	if !ok {
		return annotation.Selection{}, fmt.Errorf("selection cannot be annotated")
	}
	e.SetPendingSelection(sel)
	return sel, nil
}

// AddHighlight creates a highlight, persists its record and notifies
// subscribers.
func (s *Service) AddHighlight(ctx context.Context, docID, sectionID string, r annotation.Range, color string) (*annotation.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.engine(ctx, docID)
	if err != nil {
		return nil, err
	}
	a, err := e.AddHighlight(sectionID, r, color)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, docID, e, a); err != nil {
		return nil, err
	}
	s.notify(docID, "added", a.ID, sectionID)
	return a, nil
}

// AddComment creates a comment, persists its record, feeds the comment
// index and notifies subscribers.
func (s *Service) AddComment(ctx context.Context, docID, sectionID string, r annotation.Range, commentText, anchorText string) (*annotation.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.engine(ctx, docID)
	if err != nil {
		return nil, err
	}
	a, err := e.AddComment(sectionID, r, commentText, anchorText)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, docID, e, a); err != nil {
		return nil, err
	}
	if s.index != nil {
		if err := s.index.IndexComment(ctx, a.ID, docID, sectionID, a.CommentText); err != nil {
			// Search indexing is best effort; the annotation is already live.
			log.Printf("review: indexing comment %s: %v", a.ID, err)
		}
	}
	s.notify(docID, "added", a.ID, sectionID)
	return a, nil
}

// UpdateComment edits a comment's text in place.
func (s *Service) UpdateComment(ctx context.Context, docID, id, commentText string) (*annotation.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.engine(ctx, docID)
	if err != nil {
		return nil, err
	}
	a, err := e.UpdateComment(id, commentText)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, docID, e, a); err != nil {
		return nil, err
	}
	if s.index != nil {
		_ = s.index.IndexComment(ctx, a.ID, docID, a.SectionID, a.CommentText)
	}
	s.notify(docID, "updated", a.ID, a.SectionID)
	return a, nil
}

// Delete removes an annotation everywhere: engine, records, index.
// Reports whether it existed; deleting a missing id is not an error.
func (s *Service) Delete(ctx context.Context, docID, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.engine(ctx, docID)
	if err != nil {
		return false, err
	}
	a, ok := e.Get(id)
	if !ok {
		return false, nil
	}
	sectionID := a.SectionID
	e.Delete(id)
	if err := s.records.Delete(ctx, id); err != nil {
		return true, err
	}
	if s.index != nil {
		_ = s.index.RemoveComment(ctx, id)
	}
	s.notify(docID, "deleted", id, sectionID)
	return true, nil
}

// Render projects one section's current text and annotations to segments.
func (s *Service) Render(ctx context.Context, docID, sectionID string) ([]annotation.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.engine(ctx, docID)
	if err != nil {
		return nil, err
	}
	return e.Project(sectionID)
}

// Summary derives the cross-section annotation listing for a document.
func (s *Service) Summary(ctx context.Context, docID string) ([]annotation.SummaryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.engine(ctx, docID)
	if err != nil {
		return nil, err
	}
	return e.Summarize(), nil
}

// Export produces the document's raw annotation records.
func (s *Service) Export(ctx context.Context, docID string) ([]annotation.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.engine(ctx, docID)
	if err != nil {
		return nil, err
	}
	return e.ExportAll(), nil
}

// Load bulk-replaces a document's annotations from raw records. Records
// that fail resolution are dropped; the surviving set is persisted.
func (s *Service) Load(ctx context.Context, docID string, records []annotation.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.engine(ctx, docID)
	if err != nil {
		return 0, err
	}
	e.LoadAll(records)
	exported := e.ExportAll()
	if err := s.records.ReplaceDocument(ctx, docID, exported); err != nil {
		return 0, err
	}
	s.notify(docID, "loaded", "", "")
	return len(exported), nil
}

// persist mirrors one annotation's record into storage.
func (s *Service) persist(ctx context.Context, docID string, e *annotation.Engine, a *annotation.Annotation) error {
	start, end := a.Range.Start, a.Range.End
	return s.records.Upsert(ctx, docID, annotation.Record{
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

func (s *Service) notify(docID, eventType, annotationID, sectionID string) {
	if s.hub != nil {
		s.hub.Broadcast(docID, Event{
			Type:         eventType,
			AnnotationID: annotationID,
			SectionID:    sectionID,
		})
	}
}
