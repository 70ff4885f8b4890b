// Copyright (c) 2025 Neomantra Corp

// Package mcpserver exposes a decoded NRBF object graph as Model Context
// Protocol tools: decode a file into a session, walk its members, read a
// projected value, and patch a writable primitive slot in place.
package mcpserver

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/nrbf-go/nrbf-go"
)

// Server holds shared state for the MCP tool handlers: every file opened
// via decode_file stays resident, keyed by session ID, until closed.
type Server struct {
	Logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
	nextID   int
}

type session struct {
	path    string
	file    *os.File
	decoder *nrbf.Decoder
	root    nrbf.Value
}

// NewServer builds a Server. logger is attached to every handler's log line.
func NewServer(logger *slog.Logger) *Server {
	return &Server{Logger: logger, sessions: make(map[string]*session)}
}

// openSession decodes path into a new session and returns its ID. When
// writable is true the file is opened for read-write so overwrite_member
// can patch it in place; otherwise it is opened read-only.
func (s *Server) openSession(path string, writable bool) (string, nrbf.Value, error) {
	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return "", nrbf.Value{}, fmt.Errorf("opening %s: %w", path, err)
	}

	decoder := nrbf.NewDecoder(f, writable)
	root, err := decoder.Read()
	if err != nil {
		f.Close()
		return "", nrbf.Value{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	s.mu.Lock()
	s.nextID++
	id := fmt.Sprintf("sess-%d", s.nextID)
	s.sessions[id] = &session{path: path, file: f, decoder: decoder, root: root}
	s.mu.Unlock()

	return id, root, nil
}

func (s *Server) session(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// CloseAll releases every open session's file handle, for server shutdown.
func (s *Server) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		sess.file.Close()
	}
	s.sessions = make(map[string]*session)
}
