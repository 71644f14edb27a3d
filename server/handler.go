package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// DocumentEntry is one row of the /documents listing.
type DocumentEntry struct {
	Path    string `json:"path"`
	Version int    `json:"version"`
	Updated string `json:"updated"`
}

// NewHandler creates the HTTP handler with all routes.
func NewHandler(s *Session, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log = log.With("component", "http")
	mux := http.NewServeMux()

	// Stored maps, for clients building an open prompt.
	mux.HandleFunc("/documents", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		docs, err := s.ws.List(r.Context())
		if err != nil {
			log.Error("list documents", "err", err)
			http.Error(w, "failed to list documents", http.StatusInternalServerError)
			return
		}
		out := make([]DocumentEntry, 0, len(docs))
		for _, d := range docs {
			out = append(out, DocumentEntry{
				Path:    d.Path,
				Version: d.Version,
				Updated: d.UpdatedAt.UTC().Format(time.RFC3339),
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	})

	// WebSocket endpoint.
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", "err", err)
			return
		}
		client := newClient(s, conn)
		select {
		case s.join <- client:
		case <-s.done:
			conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	})

	return mux
}
