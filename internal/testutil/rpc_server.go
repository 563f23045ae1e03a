// Package testutil provides test doubles for the remote transfer engine.
package testutil

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

// RPCRequest is one recorded JSON-RPC call received by the fake engine.
type RPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// RPCError mirrors the JSON-RPC error member.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPCServer is a configurable fake aria2 RPC endpoint. Responses are canned
// per method and can be swapped between calls to simulate engine progress.
type RPCServer struct {
	Server *httptest.Server

	mu       sync.Mutex
	requests []RPCRequest
	results  map[string]any
	errors   map[string]*RPCError
	httpCode int
}

// RPCServerOption configures an RPCServer.
type RPCServerOption func(*RPCServer)

// WithResult sets the canned result for a method.
func WithResult(method string, result any) RPCServerOption {
	return func(s *RPCServer) {
		s.results[method] = result
	}
}

// WithError makes a method return a JSON-RPC error member.
func WithError(method string, code int, message string) RPCServerOption {
	return func(s *RPCServer) {
		s.errors[method] = &RPCError{Code: code, Message: message}
	}
}

// WithHTTPStatus makes every request fail at the HTTP layer.
func WithHTTPStatus(code int) RPCServerOption {
	return func(s *RPCServer) {
		s.httpCode = code
	}
}

// NewRPCServer starts a fake engine endpoint and registers cleanup with t.
// Binds to IPv4 explicitly to avoid IPv6 listener issues in sandboxed
// environments.
func NewRPCServer(t *testing.T, opts ...RPCServerOption) *RPCServer {
	t.Helper()

	s := &RPCServer{
		results:  make(map[string]any),
		errors:   make(map[string]*RPCError),
		httpCode: http.StatusOK,
	}
	for _, opt := range opts {
		opt(s)
	}

	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("tcp4 listener unavailable: %v", err)
		return nil
	}
	s.Server = &httptest.Server{
		Listener: ln,
		Config:   &http.Server{Handler: http.HandlerFunc(s.handle)},
	}
	s.Server.Start()
	t.Cleanup(s.Server.Close)

	return s
}

// URL returns the fake endpoint URL.
func (s *RPCServer) URL() string {
	return s.Server.URL
}

// SetResult swaps the canned result for a method.
func (s *RPCServer) SetResult(method string, result any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[method] = result
}

// SetError makes a method start returning a JSON-RPC error member.
// A nil-equivalent is restored with ClearError.
func (s *RPCServer) SetError(method string, code int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[method] = &RPCError{Code: code, Message: message}
}

// ClearError removes a canned error for a method.
func (s *RPCServer) ClearError(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.errors, method)
}

// Requests returns a copy of every recorded request.
func (s *RPCServer) Requests() []RPCRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RPCRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent recorded request, or nil.
func (s *RPCServer) LastRequest() *RPCRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	req := s.requests[len(s.requests)-1]
	return &req
}

// Calls counts recorded requests for a method.
func (s *RPCServer) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Method == method {
			n++
		}
	}
	return n
}

func (s *RPCServer) handle(w http.ResponseWriter, r *http.Request) {
	var req RPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	httpCode := s.httpCode
	cannedErr := s.errors[req.Method]
	result, hasResult := s.results[req.Method]
	s.mu.Unlock()

	if httpCode != http.StatusOK {
		http.Error(w, "engine unavailable", httpCode)
		return
	}

	type envelope struct {
		JSONRPC string    `json:"jsonrpc"`
		ID      string    `json:"id"`
		Result  any       `json:"result,omitempty"`
		Error   *RPCError `json:"error,omitempty"`
	}

	resp := envelope{JSONRPC: "2.0", ID: req.ID}
	switch {
	case cannedErr != nil:
		resp.Error = cannedErr
	case hasResult:
		resp.Result = result
	default:
		resp.Result = "OK"
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// StatusResult builds a tellStatus result map in the engine's wire shape,
// with numeric fields encoded as decimal strings.
func StatusResult(gid, status string, total, completed, speed int64) map[string]any {
	return map[string]any{
		"gid":             gid,
		"status":          status,
		"totalLength":     strconv.FormatInt(total, 10),
		"completedLength": strconv.FormatInt(completed, 10),
		"downloadSpeed":   strconv.FormatInt(speed, 10),
		"connections":     "1",
	}
}
