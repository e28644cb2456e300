// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

// Package fakesim is a fake simulator test double for transport integration tests: an
// HTTP server that accepts a pushed snapshot and lets the test read back whatever
// mutation the scheduler replied with, without a real simulator process or IPC socket
// on either end. Mirrors the teacher's mux-routed fake-upstream test server.
package fakesim

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gorilla/mux"

	"github.com/wagomu-sim/elastisim-scheduler/internal/transport"
)

// Server is an HTTP-only stand-in for the simulator's WebSocket IPC endpoint: tests
// push a snapshot via POST and later fetch the recorded mutation via GET, rather than
// driving a live socket. It is not itself a transport.SnapshotSource — use it to
// exercise handler code that accepts transport.Snapshot/transport.Mutation over HTTP
// (e.g. a debug/replay endpoint), or to stage fixtures for Channel-level tests.
type Server struct {
	mu        sync.Mutex
	snapshots map[string]transport.Snapshot
	mutations map[string]transport.Mutation

	httpServer *httptest.Server
	router     *mux.Router
}

// New starts a Server on a loopback port and returns it. Call Close when done.
func New() *Server {
	s := &Server{
		snapshots: make(map[string]transport.Snapshot),
		mutations: make(map[string]transport.Mutation),
		router:    mux.NewRouter(),
	}
	s.router.HandleFunc("/tick", s.handlePushSnapshot).Methods(http.MethodPost)
	s.router.HandleFunc("/events", s.handleListMutations).Methods(http.MethodGet)
	s.router.HandleFunc("/mutations/{request_id}", s.handleGetMutation).Methods(http.MethodGet)
	s.router.HandleFunc("/mutations/{request_id}", s.handlePostMutation).Methods(http.MethodPost)
	s.httpServer = httptest.NewServer(s.router)
	return s
}

// URL returns the server's base HTTP address.
func (s *Server) URL() string { return s.httpServer.URL }

// Close shuts down the underlying HTTP server.
func (s *Server) Close() { s.httpServer.Close() }

// PushSnapshot stages a snapshot directly (bypassing HTTP), for tests that want to
// hand a fixture straight to a SnapshotSource implementation under test.
func (s *Server) PushSnapshot(snap transport.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.RequestID] = snap
}

// Mutation returns the mutation recorded for requestID, if the scheduler has replied
// yet.
func (s *Server) Mutation(requestID string) (transport.Mutation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mutations[requestID]
	return m, ok
}

func (s *Server) handlePushSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap transport.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.PushSnapshot(snap)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleListMutations(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]transport.Mutation, 0, len(s.mutations))
	for _, m := range s.mutations {
		out = append(out, m)
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (s *Server) handleGetMutation(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["request_id"]
	m, ok := s.Mutation(requestID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m)
}

func (s *Server) handlePostMutation(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["request_id"]
	var m transport.Mutation
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	m.RequestID = requestID

	s.mu.Lock()
	s.mutations[requestID] = m
	s.mu.Unlock()

	w.WriteHeader(http.StatusAccepted)
}
