// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apitest runs a fake Pocket Poker Pal API for tests.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
)

// Reply is a canned response.
type Reply struct {
	Status int
	Body   any // marshaled as JSON; a string is written raw
}

// Upload is what the transcription handler received.
type Upload struct {
	Field       string
	FileName    string
	ContentType string
	Data        []byte
}

// Server is an httptest server routing the two endpoints with chi.
type Server struct {
	*httptest.Server

	// AskFunc answers /api/ask. Default: {"answer":"ok"}.
	AskFunc func(question string) Reply
	// TranscribeFunc answers /api/transcribe-audio. Default: {"transcript":""}.
	TranscribeFunc func(u Upload) Reply

	asks        atomic.Int32
	transcribes atomic.Int32

	mu        sync.Mutex
	questions []string
	uploads   []Upload

	// Gate, when non-nil, blocks every handler until it is closed.
	Gate chan struct{}
}

// New starts a server. Close it with Close.
func New() *Server {
	s := &Server{}
	r := chi.NewRouter()
	r.Post("/api/ask", s.handleAsk)
	r.Post("/api/transcribe-audio", s.handleTranscribe)
	s.Server = httptest.NewServer(r)
	return s
}

func (s *Server) wait() {
	if s.Gate != nil {
		<-s.Gate
	}
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	s.asks.Add(1)
	var body struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		write(w, Reply{Status: http.StatusBadRequest, Body: map[string]string{"error": "bad json"}})
		return
	}
	s.mu.Lock()
	s.questions = append(s.questions, body.Question)
	s.mu.Unlock()
	s.wait()

	reply := Reply{Status: http.StatusOK, Body: map[string]string{"answer": "ok"}}
	if s.AskFunc != nil {
		reply = s.AskFunc(body.Question)
	}
	write(w, reply)
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	s.transcribes.Add(1)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		write(w, Reply{Status: http.StatusBadRequest, Body: map[string]string{"error": "bad form"}})
		return
	}
	var u Upload
	for field, files := range r.MultipartForm.File {
		if len(files) == 0 {
			continue
		}
		fh := files[0]
		f, err := fh.Open()
		if err != nil {
			continue
		}
		data, _ := io.ReadAll(f)
		f.Close()
		u = Upload{Field: field, FileName: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}
		break
	}
	s.mu.Lock()
	s.uploads = append(s.uploads, u)
	s.mu.Unlock()
	s.wait()

	reply := Reply{Status: http.StatusOK, Body: map[string]string{"transcript": ""}}
	if s.TranscribeFunc != nil {
		reply = s.TranscribeFunc(u)
	}
	write(w, reply)
}

func write(w http.ResponseWriter, r Reply) {
	if r.Status == 0 {
		r.Status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.Status)
	switch b := r.Body.(type) {
	case nil:
	case string:
		io.WriteString(w, b)
	default:
		json.NewEncoder(w).Encode(b)
	}
}

// Asks returns how many /api/ask requests arrived.
func (s *Server) Asks() int { return int(s.asks.Load()) }

// Transcribes returns how many /api/transcribe-audio requests arrived.
func (s *Server) Transcribes() int { return int(s.transcribes.Load()) }

// Questions returns the questions received so far.
func (s *Server) Questions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.questions...)
}

// Uploads returns the uploads received so far.
func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads...)
}
