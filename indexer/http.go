/*
File Name:  http.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

HTTP front-end: a single versioned resolve_peer_id route plus a static-file
fallback, wrapped in a permissive CORS policy. Mirrors
delia-server/src/http.rs's router shape (api mounted under /api/v0, any
other path falls through to a directory server) using the teacher's own
gorilla/mux (webapi/API.go) in place of axum.
*/

package indexer

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	delpeer "github.com/polkastorage/delia/peer"
)

// HTTPConfig configures the indexer's HTTP front-end.
type HTTPConfig struct {
	// ServeDirectory is the static file fallback root, relative to the
	// process's working directory unless given as an absolute path
	// (spec.md §9, "serve_directory default").
	ServeDirectory string
}

type httpHandler struct {
	requests chan<- SwarmRequest
	logger   *log.Logger
}

// NewRouter builds the indexer's HTTP handler: the versioned API mount,
// the static-file fallback, and the permissive CORS wrapper. requests is
// the many-producer, single-consumer channel shared with the swarm worker.
func NewRouter(cfg HTTPConfig, requests chan<- SwarmRequest, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}

	h := &httpHandler{requests: requests, logger: logger}

	router := mux.NewRouter()

	// Versioned just in case.
	api := router.PathPrefix("/api/v0").Subrouter()
	api.HandleFunc("/resolve_peer_id", h.resolvePeerID).Methods(http.MethodGet)

	router.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.ServeDirectory)))

	return withCORS(router)
}

// withCORS allows GET/POST/PUT/OPTIONS from any origin with a Content-Type
// header and a one-hour preflight cache, matching the Rust server's
// tower_http::cors::CorsLayer configuration.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// resolvePeerID implements GET /api/v0/resolve_peer_id?peer_id=<PeerId>.
func (h *httpHandler) resolvePeerID(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("peer_id")
	if raw == "" {
		http.Error(w, "missing peer_id query parameter", http.StatusBadRequest)
		return
	}

	peerID, err := delpeer.IDFromString(raw)
	if err != nil {
		http.Error(w, fmt.Sprintf("malformed peer_id: %v", err), http.StatusBadRequest)
		return
	}

	respCh := make(chan QueryOutcome, 1)
	select {
	case h.requests <- SwarmRequest{PeerID: peerID, Response: respCh}:
	case <-r.Context().Done():
		return
	}

	select {
	case out := <-respCh:
		h.respond(w, peerID, out)
	case <-r.Context().Done():
	}
}

func (h *httpHandler) respond(w http.ResponseWriter, peerID delpeer.ID, out QueryOutcome) {
	if out.Err != nil {
		if errors.Is(out.Err, ErrNotFound) {
			http.Error(w, fmt.Sprintf("no record for peer %s", peerID), http.StatusNotFound)
			return
		}
		h.logger.Printf("indexer: query for %s failed: %v", peerID, out.Err)
		http.Error(w, out.Err.Error(), http.StatusInternalServerError)
		return
	}

	addrs := make([]string, len(out.Maddrs))
	for i, a := range out.Maddrs {
		addrs[i] = a.String()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(addrs); err != nil {
		h.logger.Printf("indexer: failed to write response for %s: %v", peerID, err)
	}
}
