// Package graphqltest provides a fake GraphQL platform for tests. It answers
// each operation, keyed by the operation name in the query document, with a
// registered handler and records what it received.
package graphqltest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
)

var operationPattern = regexp.MustCompile(`^\s*(?:query|mutation)\s+(\w+)`)

// Server is a fake GraphQL endpoint. Operations without a handler get a
// GraphQL error response.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests map[string][]*http.Request
	bodies   map[string][]map[string]any
}

// New starts a Server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		handlers: make(map[string]http.HandlerFunc),
		requests: make(map[string][]*http.Request),
		bodies:   make(map[string][]map[string]any),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	op := Operation(body.Query)

	s.mu.Lock()
	s.requests[op] = append(s.requests[op], r.Clone(r.Context()))
	s.bodies[op] = append(s.bodies[op], body.Variables)
	h := s.handlers[op]
	s.mu.Unlock()

	if h == nil {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"errors":[{"message":"unexpected operation"}]}`))
		return
	}
	h(w, r)
}

// Operation returns the operation name of a query document.
func Operation(query string) string {
	if m := operationPattern.FindStringSubmatch(query); m != nil {
		return m[1]
	}
	return ""
}

// On registers h for the named operation.
func (s *Server) On(op string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[op] = h
}

// OnData answers op with {"data": data}.
func (s *Server) OnData(op string, data any) {
	s.On(op, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	})
}

// OnStatus answers op with an empty body and the given HTTP status.
func (s *Server) OnStatus(op string, status int) {
	s.On(op, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	})
}

// Variables returns the variables of every request for op, in order.
func (s *Server) Variables(op string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.bodies[op]...)
}

// Headers returns the headers of every request for op, in order.
func (s *Server) Headers(op string) []http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]http.Header, 0, len(s.requests[op]))
	for _, r := range s.requests[op] {
		out = append(out, r.Header)
	}
	return out
}

// Calls returns how many requests op received.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests[op])
}

// ServiceLanguages builds the language lookup response for a service whose
// first repository has the given name/usage pairs.
func ServiceLanguages(alias string, pairs ...any) map[string]any {
	languages := make([]any, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		languages = append(languages, map[string]any{"name": pairs[i], "usage": pairs[i+1]})
	}
	return map[string]any{
		"account": map[string]any{"service": map[string]any{
			"name": alias,
			"repos": map[string]any{"edges": []any{
				map[string]any{"node": map[string]any{"languages": languages}},
			}},
		}},
	}
}
