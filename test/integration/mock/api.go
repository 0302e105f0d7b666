//go:build integration

package mock

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// ReceivedRequest is a call recorded by the mock.
type ReceivedRequest struct {
	Method  string
	Path    string
	Headers http.Header
	Body    string
}

type cannedResponse struct {
	status int
	body   string
}

// ApiMock is an HTTP server answering with canned responses keyed by
// method and path. A path of "*" matches any path for that method.
// Unmatched requests get 404 with an empty JSON object.
type ApiMock struct {
	mu        sync.Mutex
	server    *httptest.Server
	responses map[string]cannedResponse
	received  []ReceivedRequest
}

// NewApiServer creates an unstarted mock.
func NewApiServer() *ApiMock {
	return &ApiMock{responses: map[string]cannedResponse{}}
}

// Start begins serving on a random local port.
func (a *ApiMock) Start() {
	a.server = httptest.NewServer(http.HandlerFunc(a.handle))
}

// Close stops the server.
func (a *ApiMock) Close() {
	if a.server != nil {
		a.server.Close()
	}
}

// GetUrl returns the base URL of the running server.
func (a *ApiMock) GetUrl() string {
	return a.server.URL
}

// SetResponse registers the reply for method and path.
func (a *ApiMock) SetResponse(method, path string, status int, body string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responses[key(method, path)] = cannedResponse{status: status, body: body}
}

// Requests returns the calls received for method and path, oldest first.
func (a *ApiMock) Requests(method, path string) []ReceivedRequest {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out []ReceivedRequest
	for _, r := range a.received {
		if r.Method == strings.ToUpper(method) && (path == "*" || r.Path == path) {
			out = append(out, r)
		}
	}
	return out
}

// Reset forgets canned responses and recorded calls.
func (a *ApiMock) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responses = map[string]cannedResponse{}
	a.received = nil
}

func (a *ApiMock) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	a.mu.Lock()
	a.received = append(a.received, ReceivedRequest{
		Method:  r.Method,
		Path:    r.URL.Path,
		Headers: r.Header.Clone(),
		Body:    string(body),
	})
	resp, ok := a.responses[key(r.Method, r.URL.Path)]
	if !ok {
		resp, ok = a.responses[key(r.Method, "*")]
	}
	a.mu.Unlock()

	if !ok {
		resp = cannedResponse{status: http.StatusNotFound, body: "{}"}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}

func key(method, path string) string {
	return strings.ToUpper(method) + " " + path
}
