package search

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
)

const collectionName = "comments"

// Index is an in-memory vector index over comment annotations, so
// reviewers can find feedback by meaning rather than exact words.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// Result is one semantic search hit.
type Result struct {
	AnnotationID string  `json:"annotation_id"`
	DocumentID   string  `json:"document_id"`
	SectionID    string  `json:"section_id"`
	Text         string  `json:"text"`
	Similarity   float32 `json:"similarity"`
}

// NewIndex creates an empty comment index over the given embedder.
func NewIndex(embedder Embedder) (*Index, error) {
	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collectionName, nil, toChromemFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &Index{db: db, collection: col}, nil
}

// IndexComment upserts one comment's text. Implements review.CommentIndex.
func (ix *Index) IndexComment(ctx context.Context, id, docID, sectionID, text string) error {
	return ix.collection.AddDocuments(ctx, []chromem.Document{{
		ID:      id,
		Content: text,
		Metadata: map[string]string{
			"document_id": docID,
			"section_id":  sectionID,
		},
	}}, 1)
}

// RemoveComment drops a comment from the index. Implements
// review.CommentIndex.
func (ix *Index) RemoveComment(ctx context.Context, id string) error {
	return ix.collection.Delete(ctx, nil, nil, id)
}

// Count returns the number of indexed comments.
func (ix *Index) Count() int { return ix.collection.Count() }

// Search finds the comments closest in meaning to the query, optionally
// restricted to one document.
func (ix *Index) Search(ctx context.Context, query string, limit int, docID string) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}
	// chromem-go requires nResults <= collection size.
	count := ix.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	var where map[string]string
	if docID != "" {
		where = map[string]string{"document_id": docID}
	}

	results, err := ix.collection.Query(ctx, query, limit, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	out := make([]Result, len(results))
	for i, r := range results {
		out[i] = Result{
			AnnotationID: r.ID,
			DocumentID:   r.Metadata["document_id"],
			SectionID:    r.Metadata["section_id"],
			Text:         r.Content,
			Similarity:   r.Similarity,
		}
	}
	return out, nil
}
