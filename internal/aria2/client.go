// Package aria2 implements the JSON-RPC 2.0 client for the external aria2
// transfer engine. Every call is a stateless request/response round trip;
// no task state is held here.
package aria2

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// Client talks to a single aria2 RPC endpoint.
type Client struct {
	rpcURL string
	secret string
	http   *http.Client
	callID atomic.Int64
}

// NewClient creates a client for the given RPC endpoint. An empty secret
// disables authentication.
func NewClient(rpcURL, secret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		rpcURL: rpcURL,
		secret: secret,
		http:   &http.Client{Timeout: timeout},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// call performs one RPC round trip and decodes the result member into out.
// When a secret is configured it is injected as the first positional parameter.
func (c *Client) call(ctx context.Context, method string, out any, params ...any) error {
	finalParams := make([]any, 0, len(params)+1)
	if c.secret != "" {
		finalParams = append(finalParams, "token:"+c.secret)
	}
	finalParams = append(finalParams, params...)

	envelope := rpcRequest{
		JSONRPC: "2.0",
		ID:      strconv.FormatInt(c.callID.Add(1), 10),
		Method:  method,
		Params:  finalParams,
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Limit error body read to 1KB
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &NetworkError{Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(msg))}
	}

	var env rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &ProtocolError{Reason: method, Err: err}
	}

	if env.Error != nil {
		return &RemoteError{Code: env.Error.Code, Message: env.Error.Message}
	}

	if out != nil {
		if env.Result == nil {
			return &ProtocolError{Reason: method + ": missing result"}
		}
		if err := json.Unmarshal(env.Result, out); err != nil {
			return &ProtocolError{Reason: method, Err: err}
		}
	}

	return nil
}

// AddURI submits a new download and returns the engine-assigned handle (gid).
func (c *Client) AddURI(ctx context.Context, uris []string, opts Options) (string, error) {
	var gid string
	if err := c.call(ctx, "aria2.addUri", &gid, uris, opts); err != nil {
		return "", err
	}
	if gid == "" {
		return "", &ProtocolError{Reason: "aria2.addUri: empty gid"}
	}
	return gid, nil
}

// TellStatus queries the status of a single download.
func (c *Client) TellStatus(ctx context.Context, gid string) (*TaskStatus, error) {
	var status TaskStatus
	if err := c.call(ctx, "aria2.tellStatus", &status, gid); err != nil {
		return nil, err
	}
	return &status, nil
}

// Pause pauses an active or waiting download.
func (c *Client) Pause(ctx context.Context, gid string) error {
	var confirm string
	return c.call(ctx, "aria2.pause", &confirm, gid)
}

// Unpause resumes a paused download.
func (c *Client) Unpause(ctx context.Context, gid string) error {
	var confirm string
	return c.call(ctx, "aria2.unpause", &confirm, gid)
}

// Remove cancels a download and drops it from the engine's queue.
func (c *Client) Remove(ctx context.Context, gid string) error {
	var confirm string
	return c.call(ctx, "aria2.remove", &confirm, gid)
}

// RemoveDownloadResult forgets a stopped download so its gid no longer
// shows up in the engine's result listings.
func (c *Client) RemoveDownloadResult(ctx context.Context, gid string) error {
	var confirm string
	return c.call(ctx, "aria2.removeDownloadResult", &confirm, gid)
}

// TellActive lists the downloads the engine is currently transferring.
func (c *Client) TellActive(ctx context.Context) ([]TaskStatus, error) {
	var statuses []TaskStatus
	if err := c.call(ctx, "aria2.tellActive", &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

// GetGlobalStat returns the engine-wide transfer aggregate.
func (c *Client) GetGlobalStat(ctx context.Context) (*GlobalStat, error) {
	var stat GlobalStat
	if err := c.call(ctx, "aria2.getGlobalStat", &stat); err != nil {
		return nil, err
	}
	return &stat, nil
}

// ChangeGlobalOption updates engine-wide options, e.g. the overall
// download speed limit.
func (c *Client) ChangeGlobalOption(ctx context.Context, opts map[string]string) error {
	var confirm string
	return c.call(ctx, "aria2.changeGlobalOption", &confirm, opts)
}

// Shutdown asks the engine process to exit.
func (c *Client) Shutdown(ctx context.Context) error {
	var confirm string
	return c.call(ctx, "aria2.shutdown", &confirm)
}
