// Package affinetest provides an in-memory AFFiNE server for tests.
package affinetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"

	"github.com/entrhq/affine-tools/pkg/affine"
)

const (
	// Email and Password are the credentials the server accepts.
	Email    = "agent@example.com"
	Password = "s3cret"

	// SessionCookie is the cookie carrying the session token.
	SessionCookie = "affine_session"
	// UserCookie is a second cookie issued alongside the session.
	UserCookie = "affine_user_id"

	updatedAt = "2026-01-02T03:04:05.000Z"
)

// Request records one API call received by the server (sign-ins excluded).
type Request struct {
	Method string
	Path   string // escaped path as sent on the wire
	Cookie string
	Body   []byte
}

type doc struct {
	id       string
	title    string
	markdown string
}

// Server is an httptest server speaking the subset of the AFFiNE API the
// client uses. Sessions are numbered; only the latest one is accepted.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	generation   int
	signIns      int
	requests     []Request
	rejectNext   int
	signInStatus int
	omitCookies  bool
	redirect     bool
	nextDocID    int
	workspaces   []affine.Workspace
	docs         map[string][]*doc
}

// NewServer starts a server with a single workspace "ws-1".
func NewServer() *Server {
	s := &Server{
		docs: make(map[string][]*doc),
	}
	s.AddWorkspace("ws-1", "owner")
	s.Server = httptest.NewServer(s)
	return s
}

// AddWorkspace registers a workspace.
func (s *Server) AddWorkspace(id, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces = append(s.workspaces, affine.Workspace{ID: id, Role: role, CreatedAt: updatedAt})
	if _, ok := s.docs[id]; !ok {
		s.docs[id] = nil
	}
}

// AddDoc stores a document in a workspace, creating the workspace if needed.
func (s *Server) AddDoc(wsID, docID, title, markdown string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[wsID] = append(s.docs[wsID], &doc{id: docID, title: title, markdown: markdown})
}

// Doc returns a stored document.
func (s *Server) Doc(wsID, docID string) (affine.DocContent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.findDoc(wsID, docID)
	if d == nil {
		return affine.DocContent{}, false
	}
	return affine.DocContent{Title: d.title, Markdown: d.markdown}, true
}

// SignIns returns how many sign-in attempts reached the server.
func (s *Server) SignIns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signIns
}

// Requests returns the API calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// ExpireSession invalidates the current session cookie.
func (s *Server) ExpireSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
}

// RejectNext answers the next n API calls with 401 regardless of cookies.
func (s *Server) RejectNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectNext = n
}

// SetSignInStatus makes sign-in answer with the given status. Zero restores normal behavior.
func (s *Server) SetSignInStatus(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signInStatus = code
}

// SetOmitCookies makes successful sign-ins issue no cookies.
func (s *Server) SetOmitCookies(omit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.omitCookies = omit
}

// SetRedirect makes successful sign-ins answer 302 instead of 200.
func (s *Server) SetRedirect(redirect bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redirect = redirect
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.URL.Path == "/api/auth/sign-in" {
		s.handleSignIn(w, r)
		return
	}

	var body []byte
	if r.Body != nil {
		var raw json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err == nil {
			body = raw
		}
	}
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.EscapedPath(),
		Cookie: r.Header.Get("Cookie"),
		Body:   body,
	})

	if s.rejectNext > 0 {
		s.rejectNext--
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "session expired"})
		return
	}
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
		return
	}

	s.route(w, r, body)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	s.signIns++

	if s.signInStatus != 0 {
		writeJSON(w, s.signInStatus, map[string]string{"message": "sign-in rejected"})
		return
	}

	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if r.Method != http.MethodPost || json.NewDecoder(r.Body).Decode(&creds) != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}
	if creds.Email != Email || creds.Password != Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "wrong credentials"})
		return
	}

	s.generation++
	if !s.omitCookies {
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: s.sessionToken(), Path: "/", HttpOnly: true})
		http.SetCookie(w, &http.Cookie{Name: UserCookie, Value: "user-1", Path: "/"})
	}
	if s.redirect {
		w.Header().Set("Location", "/")
		w.WriteHeader(http.StatusFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": "user-1"})
}

func (s *Server) sessionToken() string {
	return fmt.Sprintf("sess-%d", s.generation)
}

// SessionHeader returns the Cookie header a client holding the current session sends.
func (s *Server) SessionHeader() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionCookie + "=" + s.sessionToken() + "; " + UserCookie + "=user-1"
}

func (s *Server) authorized(r *http.Request) bool {
	c, err := r.Cookie(SessionCookie)
	return err == nil && c.Value == s.sessionToken()
}

func (s *Server) route(w http.ResponseWriter, r *http.Request, body []byte) {
	const prefix = "/api/docs/workspaces"
	escaped := r.URL.EscapedPath()
	if !strings.HasPrefix(escaped, prefix) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
		return
	}

	var segs []string
	for _, seg := range strings.Split(strings.TrimPrefix(escaped, prefix), "/")[1:] {
		unescaped, err := url.PathUnescape(seg)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad path"})
			return
		}
		segs = append(segs, unescaped)
	}

	switch {
	case len(segs) == 0 && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, s.workspaces)
	case len(segs) == 2 && segs[1] == "docs" && r.Method == http.MethodGet:
		s.listDocs(w, segs[0])
	case len(segs) == 2 && segs[1] == "docs" && r.Method == http.MethodPost:
		s.createDoc(w, segs[0], body)
	case len(segs) == 4 && segs[1] == "docs" && segs[3] == "markdown" && r.Method == http.MethodGet:
		s.readDoc(w, segs[0], segs[2])
	case len(segs) == 4 && segs[1] == "docs" && segs[3] == "markdown" && r.Method == http.MethodPut:
		s.updateDoc(w, segs[0], segs[2], body)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
	}
}

func (s *Server) listDocs(w http.ResponseWriter, wsID string) {
	docs, ok := s.docs[wsID]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "workspace not found"})
		return
	}
	summaries := make([]affine.DocSummary, 0, len(docs))
	for _, d := range docs {
		summary, _, _ := strings.Cut(d.markdown, "\n")
		summaries = append(summaries, affine.DocSummary{
			ID:        d.id,
			Title:     d.title,
			Summary:   summary,
			Mode:      "page",
			UpdatedAt: updatedAt,
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) readDoc(w http.ResponseWriter, wsID, docID string) {
	d := s.findDoc(wsID, docID)
	if d == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "doc not found"})
		return
	}
	writeJSON(w, http.StatusOK, affine.DocContent{Title: d.title, Markdown: d.markdown})
}

func (s *Server) updateDoc(w http.ResponseWriter, wsID, docID string, body []byte) {
	var req struct {
		Markdown *string `json:"markdown"`
	}
	if json.Unmarshal(body, &req) != nil || req.Markdown == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "markdown is required"})
		return
	}
	d := s.findDoc(wsID, docID)
	if d == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "doc not found"})
		return
	}
	d.markdown = *req.Markdown
	writeJSON(w, http.StatusOK, affine.UpdateResult{Success: true})
}

func (s *Server) createDoc(w http.ResponseWriter, wsID string, body []byte) {
	var req struct {
		Title    string `json:"title"`
		Markdown string `json:"markdown"`
	}
	if json.Unmarshal(body, &req) != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	if _, ok := s.docs[wsID]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "workspace not found"})
		return
	}
	s.nextDocID++
	id := fmt.Sprintf("doc-%d", s.nextDocID)
	s.docs[wsID] = append(s.docs[wsID], &doc{id: id, title: req.Title, markdown: req.Markdown})
	writeJSON(w, http.StatusOK, affine.CreateResult{DocID: id})
}

func (s *Server) findDoc(wsID, docID string) *doc {
	for _, d := range s.docs[wsID] {
		if d.id == docID {
			return d
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
