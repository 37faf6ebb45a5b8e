package document

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the document API routes.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/documents", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Post("/", handleCreate(store))
		r.Get("/{docID}", handleGetByID(store))
		r.Delete("/{docID}", handleDelete(store))
		r.Get("/{docID}/sections/{sectionID}", handleGetSection(store))
		r.Put("/{docID}/sections/{sectionID}", handleUpdateSection(store))
	})
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := store.List(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if docs == nil {
			docs = []Document{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(docs)
	}
}

func handleCreate(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc Document
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if doc.Title == "" {
			http.Error(w, `{"error":"title is required"}`, http.StatusBadRequest)
			return
		}
		if len(doc.Sections) == 0 {
			http.Error(w, `{"error":"at least one section is required"}`, http.StatusBadRequest)
			return
		}

		created, err := store.Create(r.Context(), doc)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func handleGetByID(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := store.GetByID(r.Context(), chi.URLParam(r, "docID"))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if doc == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(doc)
	}
}

func handleDelete(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		existed, err := store.Delete(r.Context(), chi.URLParam(r, "docID"))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{"deleted": existed})
	}
}

func handleGetSection(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docID := chi.URLParam(r, "docID")
		sectionID := chi.URLParam(r, "sectionID")

		content, ok := store.SectionText(r.Context(), docID, sectionID)
		if !ok {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"document_id": docID,
			"section_id":  sectionID,
			"content":     content,
		})
	}
}

type updateSectionRequest struct {
	Content string `json:"content"`
}

func handleUpdateSection(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateSectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		docID := chi.URLParam(r, "docID")
		sectionID := chi.URLParam(r, "sectionID")
		if err := store.UpdateSection(r.Context(), docID, sectionID, req.Content); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "updated"})
	}
}
