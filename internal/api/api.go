// ABOUTME: HTTP API handlers exposing the library store as JSON
// ABOUTME: Routes books, notes, tags and exports through a chi router

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/2389/booknotes/internal/export"
	"github.com/2389/booknotes/internal/replay"
	"github.com/2389/booknotes/internal/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// BookResponse is the JSON form of a book.
type BookResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	CreatedAt string `json:"created_at"`
}

// NoteResponse is the JSON form of a note.
type NoteResponse struct {
	ID        int64    `json:"id"`
	BookID    int64    `json:"book_id"`
	Content   string   `json:"content"`
	CreatedAt string   `json:"created_at"`
	BookTitle string   `json:"book_title,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// TagResponse is the JSON form of a tag.
type TagResponse struct {
	ID     int64  `json:"id"`
	NoteID int64  `json:"note_id"`
	Name   string `json:"name"`
}

// TagCountResponse is one entry of GET /api/tags.
type TagCountResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CreateBookRequest is the JSON request body for POST /api/books.
type CreateBookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// CreateNoteRequest is the JSON request body for POST /api/books/{id}/notes.
type CreateNoteRequest struct {
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// AddTagsRequest is the JSON request body for POST /api/notes/{id}/tags.
type AddTagsRequest struct {
	Tags []string `json:"tags"`
}

// Replayed responses are kept this long.
const (
	replayTTL  = 24 * time.Hour
	replaySize = 1024
)

// Server serves the HTTP API for a Store.
type Server struct {
	store   store.Store
	logger  *slog.Logger
	router  chi.Router
	replays *replay.Cache
}

// New creates an API server. A nil logger uses slog.Default.
func New(s store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{
		store:   s,
		logger:  logger.With("component", "api"),
		replays: replay.New(replayTTL, replaySize),
	}
	srv.router = srv.routes()
	return srv
}

// Close releases the idempotency cache. The store is owned by the caller.
func (s *Server) Close() {
	s.replays.Close()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/books", s.handleListBooks)
		r.With(s.idempotent).Post("/books", s.handleCreateBook)
		r.Get("/books/{id}", s.handleGetBook)
		r.Get("/books/{id}/notes", s.handleListNotes)
		r.With(s.idempotent).Post("/books/{id}/notes", s.handleCreateNote)
		r.Get("/books/{id}/export", s.handleExport)

		r.Get("/notes/search", s.handleSearchNotes)
		r.Get("/notes/{id}/tags", s.handleListNoteTags)
		r.With(s.idempotent).Post("/notes/{id}/tags", s.handleAddTags)

		r.Get("/tags", s.handleListTags)
		r.Get("/tags/{name}/notes", s.handleNotesByTag)
	})

	return r
}

// requestID propagates X-Request-ID or assigns a fresh one.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"request_id", w.Header().Get("X-Request-ID"),
		)
	})
}

// captureWriter tees a response so it can be stored for replay.
type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(p []byte) (int, error) {
	cw.body.Write(p)
	return cw.ResponseWriter.Write(p)
}

// idempotent replays the stored response when a request repeats an
// Idempotency-Key. Only successful responses are stored. A repeat that
// arrives while the first request is still running gets 409.
func (s *Server) idempotent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("Idempotency-Key")
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		cacheKey := r.Method + " " + r.URL.Path + " " + key

		resp, outcome := s.replays.Claim(cacheKey)
		switch outcome {
		case replay.Replayed:
			for k, v := range resp.Header {
				w.Header()[k] = v
			}
			w.Header().Set("Idempotent-Replayed", "true")
			w.WriteHeader(resp.Status)
			_, _ = w.Write(resp.Body)
			s.logger.Debug("replayed response", "key", key, "path", r.URL.Path)
			return
		case replay.InFlight:
			s.sendJSONError(w, http.StatusConflict, "a request with this Idempotency-Key is in progress")
			return
		}
		defer s.replays.Release(cacheKey)

		cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(cw, r)
		if cw.status >= 200 && cw.status < 300 {
			s.replays.Put(cacheKey, replay.Response{
				Status: cw.status,
				Header: http.Header{"Content-Type": w.Header().Values("Content-Type")},
				Body:   bytes.Clone(cw.body.Bytes()),
			})
		}
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListBooks handles GET /api/books. With ?q= it searches title and author.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	var (
		books []*store.Book
		err   error
	)
	if q, ok := r.URL.Query()["q"]; ok {
		books, err = s.store.SearchBooks(r.Context(), q[0])
	} else {
		books, err = s.store.GetBooks(r.Context())
	}
	if err != nil {
		s.sendStoreError(w, err)
		return
	}

	resp := make([]BookResponse, 0, len(books))
	for _, b := range books {
		resp = append(resp, toBookResponse(b))
	}
	s.sendJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if err := decodeJSON(r, &req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	book, err := s.store.AddBook(r.Context(), req.Title, req.Author)
	if err != nil {
		s.sendStoreError(w, err)
		return
	}
	s.sendJSON(w, http.StatusCreated, toBookResponse(book))
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	book, err := s.store.GetBook(r.Context(), id)
	if err != nil {
		s.sendStoreError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, toBookResponse(book))
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	notes, err := s.store.GetNotes(r.Context(), id)
	if err != nil {
		s.sendStoreError(w, err)
		return
	}

	resp := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		resp = append(resp, toNoteResponse(n))
	}
	s.sendJSON(w, http.StatusOK, resp)
}

// handleCreateNote stores a note and its tags atomically.
func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var req CreateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	note, err := s.store.AddNoteWithTags(r.Context(), id, req.Content, req.Tags)
	if err != nil {
		s.sendStoreError(w, err)
		return
	}

	resp := toNoteResponse(note)
	for _, t := range req.Tags {
		resp.Tags = append(resp.Tags, strings.TrimSpace(t))
	}
	s.sendJSON(w, http.StatusCreated, resp)
}

// handleSearchNotes handles GET /api/notes/search?q=X&book_id=N.
func (s *Server) handleSearchNotes(w http.ResponseWriter, r *http.Request) {
	search := store.NoteSearch{Query: r.URL.Query().Get("q")}
	if raw := r.URL.Query().Get("book_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.sendJSONError(w, http.StatusBadRequest, "book_id must be an integer")
			return
		}
		search.BookID = &id
	}

	matches, err := s.store.SearchNotes(r.Context(), search)
	if err != nil {
		s.sendStoreError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, toMatchResponses(matches))
}

func (s *Server) handleListNoteTags(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	tags, err := s.store.GetTags(r.Context(), id)
	if err != nil {
		s.sendStoreError(w, err)
		return
	}

	resp := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		resp = append(resp, TagResponse{ID: t.ID, NoteID: t.NoteID, Name: t.Name})
	}
	s.sendJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddTags(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var req AddTagsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.AddTags(r.Context(), id, req.Tags); err != nil {
		s.sendStoreError(w, err)
		return
	}
	s.sendJSON(w, http.StatusCreated, map[string]any{"note_id": id, "added": len(req.Tags)})
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.ListTags(r.Context())
	if err != nil {
		s.sendStoreError(w, err)
		return
	}

	resp := make([]TagCountResponse, 0, len(counts))
	for _, c := range counts {
		resp = append(resp, TagCountResponse{Name: c.Name, Count: c.Count})
	}
	s.sendJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNotesByTag(w http.ResponseWriter, r *http.Request) {
	matches, err := s.store.NotesByTag(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.sendStoreError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, toMatchResponses(matches))
}

// handleExport handles GET /api/books/{id}/export?format=md|html.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatMarkdown
	}
	var contentType string
	switch format {
	case export.FormatMarkdown:
		contentType = "text/markdown; charset=utf-8"
	case export.FormatHTML:
		contentType = "text/html; charset=utf-8"
	default:
		s.sendJSONError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format))
		return
	}

	doc, err := export.Load(r.Context(), s.store, id)
	if err != nil {
		s.sendStoreError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, doc, format); err != nil {
		s.logger.Error("export failed", "book_id", id, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// pathID parses the {id} URL parameter, writing a 400 on failure.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.sendJSONError(w, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// sendStoreError maps store error kinds to HTTP status codes.
func (s *Server) sendStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.sendJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrConstraintViolation):
		s.sendJSONError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, store.ErrStorageUnavailable):
		s.logger.Error("storage unavailable", "error", err)
		s.sendJSONError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		s.logger.Error("store operation failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}

func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, map[string]string{"error": message})
}

func toBookResponse(b *store.Book) BookResponse {
	return BookResponse{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toNoteResponse(n *store.Note) NoteResponse {
	return NoteResponse{
		ID:        n.ID,
		BookID:    n.BookID,
		Content:   n.Content,
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toMatchResponses(matches []*store.NoteMatch) []NoteResponse {
	resp := make([]NoteResponse, 0, len(matches))
	for _, m := range matches {
		nr := toNoteResponse(m.Note)
		nr.BookTitle = m.BookTitle
		resp = append(resp, nr)
	}
	return resp
}
