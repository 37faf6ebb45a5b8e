package review

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/redlinehq/redline/internal/annotation"
	"github.com/redlinehq/redline/internal/document"
)

// RegisterRoutes mounts the annotation API under the document tree.
func RegisterRoutes(r chi.Router, svc *Service, hub *Hub) {
	r.Route("/api/documents/{docID}", func(r chi.Router) {
		r.Post("/selection", handleCaptureSelection(svc))
		r.Post("/annotations/highlights", handleAddHighlight(svc))
		r.Post("/annotations/comments", handleAddComment(svc))
		r.Put("/annotations/{id}", handleUpdateComment(svc))
		r.Delete("/annotations/{id}", handleDelete(svc))
		r.Get("/annotations", handleSummary(svc))
		r.Get("/annotations/export", handleExport(svc))
		r.Post("/annotations/load", handleLoad(svc))
		r.Get("/sections/{sectionID}/render", handleRender(svc))
		r.Get("/events", handleEvents(hub))
	})
}

// writeError maps engine validation errors onto HTTP statuses: bad input
// is the client's problem, a missing document or section is 404.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, annotation.ErrInvalidRange),
		errors.Is(err, annotation.ErrInvalidColor),
		errors.Is(err, annotation.ErrEmptyComment),
		errors.Is(err, annotation.ErrOverlappingRange):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, annotation.ErrUnknownSection),
		strings.Contains(err.Error(), "not found"):
		status = http.StatusNotFound
	}
	http.Error(w, `{"error":"`+err.Error()+`"}`, status)
}

type selectionRequest struct {
	SectionID   string `json:"section_id"`
	Text        string `json:"text"`
	StartOffset int    `json:"start_offset"`
}

func handleCaptureSelection(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req selectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		sel, err := svc.CaptureSelection(r.Context(), chi.URLParam(r, "docID"), req.SectionID, req.Text, req.StartOffset)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sel)
	}
}

type highlightRequest struct {
	SectionID string           `json:"section_id"`
	Range     annotation.Range `json:"range"`
	Color     string           `json:"color"`
}

func handleAddHighlight(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req highlightRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		a, err := svc.AddHighlight(r.Context(), chi.URLParam(r, "docID"), req.SectionID, req.Range, req.Color)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(a)
	}
}

type commentRequest struct {
	SectionID   string           `json:"section_id"`
	Range       annotation.Range `json:"range"`
	CommentText string           `json:"comment_text"`
	AnchorText  string           `json:"anchor_text"`
}

func handleAddComment(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req commentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		a, err := svc.AddComment(r.Context(), chi.URLParam(r, "docID"), req.SectionID, req.Range, req.CommentText, req.AnchorText)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(a)
	}
}

type updateCommentRequest struct {
	CommentText string `json:"comment_text"`
}

func handleUpdateComment(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateCommentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		a, err := svc.UpdateComment(r.Context(), chi.URLParam(r, "docID"), chi.URLParam(r, "id"), req.CommentText)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(a)
	}
}

func handleDelete(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		existed, err := svc.Delete(r.Context(), chi.URLParam(r, "docID"), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{"deleted": existed})
	}
}

func handleSummary(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.Summary(r.Context(), chi.URLParam(r, "docID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if entries == nil {
			entries = []annotation.SummaryEntry{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	}
}

func handleExport(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.Export(r.Context(), chi.URLParam(r, "docID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if records == nil {
			records = []annotation.Record{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)
	}
}

func handleLoad(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var records []annotation.Record
		if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		loaded, err := svc.Load(r.Context(), chi.URLParam(r, "docID"), records)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"loaded": loaded, "dropped": len(records) - loaded})
	}
}

func handleRender(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		segments, err := svc.Render(r.Context(), chi.URLParam(r, "docID"), chi.URLParam(r, "sectionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if segments == nil {
			segments = []annotation.Segment{}
		}

		if r.URL.Query().Get("format") == "html" {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(document.SegmentsHTML(segments)))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(segments)
	}
}

func handleEvents(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hub.handleEvents(chi.URLParam(r, "docID"), w, r)
	}
}
