// Package apitest provides an in-memory implementation of the remote
// activity API. Tests run it behind httptest; `board serve-fake` runs it
// on a real port for local development.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/existflow/activityboard/internal/api"
	"github.com/existflow/activityboard/internal/logger"
	"github.com/existflow/activityboard/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPrefix mirrors the path of the real backend
const DefaultPrefix = "/api/todo"

// Request is what the server recorded about one authenticated call
type Request struct {
	Method    string
	Path      string
	RequestID string
	Username  string
}

type override struct {
	status int
	body   string
}

// Server is the fake activity store
type Server struct {
	echo *echo.Echo

	username     string
	passwordHash []byte
	prefix       string
	now          func() time.Time

	mu         sync.Mutex
	activities map[int64]model.Activity
	nextID     int64
	overrides  map[string]override // "METHOD /path" -> one-shot response
	requests   []Request
}

// New creates a fake API that accepts only the given credentials
func New(username, password string) (*Server, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s := &Server{
		username:     username,
		passwordHash: hash,
		prefix:       DefaultPrefix,
		now:          func() time.Time { return time.Now().UTC() },
		activities:   make(map[int64]model.Activity),
		nextID:       1,
		overrides:    make(map[string]override),
	}
	s.setupEcho()
	return s, nil
}

// Start runs the fake behind httptest and returns it with the base URL the
// client should use. The server is closed when the test ends.
func Start(t testing.TB, username, password string) (*Server, string) {
	t.Helper()
	s, err := New(username, password)
	if err != nil {
		t.Fatalf("apitest: %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts.URL + s.prefix
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			err := next(c)
			logger.Debug("Fake API",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("status", c.Response().Status),
				logger.F("duration", time.Since(start).String()))
			return err
		}
	})
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	g := e.Group(s.prefix)
	g.Use(middleware.BasicAuth(s.checkCredentials))
	g.Use(s.record)
	g.Use(s.applyOverride)

	g.GET("/unfinished", s.handleList(false))
	g.GET("/finished", s.handleList(true))
	g.POST("/create", s.handleCreate)
	g.PUT("/finish/:id", s.handleFinish)
	g.PUT("/revert/:id", s.handleRevert)
	g.PUT("/edit", s.handleEdit)
	g.DELETE("/delete/:id", s.handleDelete)
	g.GET("/:id", s.handleGet)

	s.echo = e
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// ListenAndServe serves the fake on addr until it fails
func (s *Server) ListenAndServe(addr string) error {
	return s.echo.Start(addr)
}

// SetClock replaces the time source used for completion timestamps
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Server) checkCredentials(username, password string, c echo.Context) (bool, error) {
	if username != s.username {
		return false, nil
	}
	return bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil, nil
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		user, _, _ := req.BasicAuth()

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    req.Method,
			Path:      strings.TrimPrefix(req.URL.Path, s.prefix),
			RequestID: req.Header.Get(echo.HeaderXRequestID),
			Username:  user,
		})
		s.mu.Unlock()

		return next(c)
	}
}

func (s *Server) applyOverride(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Method + " " + strings.TrimPrefix(c.Request().URL.Path, s.prefix)

		s.mu.Lock()
		o, ok := s.overrides[key]
		if ok {
			delete(s.overrides, key)
		}
		s.mu.Unlock()

		if ok {
			return c.Blob(o.status, echo.MIMEApplicationJSON, []byte(o.body))
		}
		return next(c)
	}
}

// Override makes the next request matching method and path (relative to
// the API prefix, e.g. "/finish/3") answer with status and body instead.
func (s *Server) Override(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[method+" "+path] = override{status: status, body: body}
}

// FailNext makes the next matching request fail with status
func (s *Server) FailNext(method, path string, status int) {
	s.Override(method, path, status, `{"error":"injected failure"}`)
}

// Seed stores an activity directly and returns it with its assigned id
func (s *Server) Seed(description string, done bool) model.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	a := model.Activity{
		ID:          s.nextID,
		Description: description,
		IsDone:      done,
		CreatedAt:   now,
	}
	if done {
		a.CompletedAt = &now
	}
	s.activities[a.ID] = a
	s.nextID++
	return a
}

// Remove deletes an activity behind the client's back
func (s *Server) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.activities, id)
}

// Get returns the stored activity
func (s *Server) Get(id int64) (model.Activity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.activities[id]
	return a, ok
}

// Requests returns a copy of everything recorded so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) handleList(done bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		out := []model.Activity{}
		for _, a := range s.activities {
			if a.IsDone == done {
				out = append(out, a)
			}
		}
		s.mu.Unlock()

		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return c.JSON(http.StatusOK, api.Envelope[[]model.Activity]{Data: out})
	}
}

func (s *Server) handleCreate(c echo.Context) error {
	var req model.CreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if strings.TrimSpace(req.Description) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "descricao required"})
	}

	s.mu.Lock()
	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	a := model.Activity{
		ID:          s.nextID,
		Description: req.Description,
		CreatedAt:   createdAt,
	}
	s.activities[a.ID] = a
	s.nextID++
	s.mu.Unlock()

	return c.JSON(http.StatusOK, api.Envelope[model.Activity]{Data: a})
}

func (s *Server) handleFinish(c echo.Context) error {
	return s.mutate(c, func(a *model.Activity, now time.Time) {
		a.IsDone = true
		a.CompletedAt = &now
	})
}

func (s *Server) handleRevert(c echo.Context) error {
	return s.mutate(c, func(a *model.Activity, _ time.Time) {
		a.IsDone = false
		a.CompletedAt = nil
	})
}

func (s *Server) mutate(c echo.Context, fn func(a *model.Activity, now time.Time)) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}

	s.mu.Lock()
	a, ok := s.activities[id]
	if ok {
		fn(&a, s.now())
		s.activities[id] = a
	}
	s.mu.Unlock()

	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "activity not found"})
	}
	return c.JSON(http.StatusOK, api.Envelope[model.Activity]{Data: a})
}

func (s *Server) handleEdit(c echo.Context) error {
	var req model.EditRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	s.mu.Lock()
	a, ok := s.activities[req.ID]
	if ok {
		a.Description = req.Description
		s.activities[req.ID] = a
	}
	s.mu.Unlock()

	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "activity not found"})
	}
	return c.JSON(http.StatusOK, api.Envelope[model.Activity]{Data: a})
}

func (s *Server) handleDelete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}

	s.mu.Lock()
	_, ok := s.activities[id]
	delete(s.activities, id)
	s.mu.Unlock()

	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "activity not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleGet(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}

	a, ok := s.Get(id)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "activity not found"})
	}
	return c.JSON(http.StatusOK, api.Envelope[model.Activity]{Data: a})
}
