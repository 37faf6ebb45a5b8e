package review

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event tells subscribers that a document's annotation set changed so
// they can re-derive their render and summary. Events carry no annotation
// payload; subscribers re-fetch, matching the re-render-on-change model.
type Event struct {
	Type         string `json:"type"` // "added", "updated", "deleted", "loaded"
	AnnotationID string `json:"annotation_id,omitempty"`
	SectionID    string `json:"section_id,omitempty"`
}

// Hub fans annotation change events out to websocket subscribers, grouped
// by document.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*websocket.Conn]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*websocket.Conn]bool)}
}

// Broadcast sends an event to every subscriber of the document. Dead
// connections are dropped on write failure.
func (h *Hub) Broadcast(docID string, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.subs[docID] {
		if err := conn.WriteJSON(event); err != nil {
			conn.Close()
			delete(h.subs[docID], conn)
		}
	}
}

// Subscribers returns the number of open subscriptions for a document.
func (h *Hub) Subscribers(docID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[docID])
}

func (h *Hub) add(docID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[docID] == nil {
		h.subs[docID] = make(map[*websocket.Conn]bool)
	}
	h.subs[docID][conn] = true
}

func (h *Hub) remove(docID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[docID], conn)
}

// handleEvents upgrades the connection and holds it open until the client
// goes away. The feed is one way; incoming messages are discarded.
func (h *Hub) handleEvents(docID string, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("review: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	h.add(docID, conn)
	defer h.remove(docID, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("review: websocket read: %v", err)
			}
			return
		}
	}
}
