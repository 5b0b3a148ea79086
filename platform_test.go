package opslevel_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var operationPattern = regexp.MustCompile(`^\s*(?:query|mutation)\s+(\w+)`)

// call is one GraphQL request received by the fake platform.
type call struct {
	Operation string
	Query     string
	Variables map[string]any
	Header    http.Header
	Path      string
}

// fakePlatform is a GraphQL server answering per operation name.
type fakePlatform struct {
	t        *testing.T
	server   *httptest.Server
	mu       sync.Mutex
	calls    []call
	handlers map[string]http.HandlerFunc
}

func newFakePlatform(t *testing.T) *fakePlatform {
	t.Helper()
	p := &fakePlatform{t: t, handlers: make(map[string]http.HandlerFunc)}
	p.server = httptest.NewServer(http.HandlerFunc(p.serve))
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakePlatform) serve(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c := call{
		Query:     body.Query,
		Variables: body.Variables,
		Header:    r.Header.Clone(),
		Path:      r.URL.Path,
	}
	if m := operationPattern.FindStringSubmatch(body.Query); m != nil {
		c.Operation = m[1]
	}

	p.mu.Lock()
	p.calls = append(p.calls, c)
	handler, ok := p.handlers[c.Operation]
	p.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"errors": []map[string]any{{"message": "unexpected operation " + c.Operation}},
		})
		return
	}
	handler(w, r)
}

// on registers a handler for an operation.
func (p *fakePlatform) on(operation string, handler http.HandlerFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[operation] = handler
}

// onData answers operation with {"data": data}.
func (p *fakePlatform) onData(operation string, data any) {
	p.on(operation, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": data})
	})
}

// onFixture answers operation with a testdata file.
func (p *fakePlatform) onFixture(operation, name string) {
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(p.t, err)
	p.on(operation, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	})
}

// callsFor returns the calls received for operation.
func (p *fakePlatform) callsFor(operation string) []call {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []call
	for _, c := range p.calls {
		if c.Operation == operation {
			out = append(out, c)
		}
	}
	return out
}

// callCount returns the number of calls received.
func (p *fakePlatform) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func (p *fakePlatform) URL() string {
	return p.server.URL
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// languagesData builds a getServiceLanguage response for one repository.
func languagesData(name string, languages ...map[string]any) map[string]any {
	return map[string]any{
		"account": map[string]any{
			"service": map[string]any{
				"name": name,
				"repos": map[string]any{
					"edges": []any{
						map[string]any{"node": map[string]any{"languages": languages}},
					},
				},
			},
		},
	}
}

func lang(name string, usage float64) map[string]any {
	return map[string]any{"name": name, "usage": usage}
}

// serviceUpdateOK is an accepted serviceUpdate response.
var serviceUpdateOK = map[string]any{"serviceUpdate": map[string]any{"errors": []any{}}}
