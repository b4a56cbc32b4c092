// Package engine is the HTTP client for the external assembler and
// execution engine.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/ezrec/lmcview/state"
	"github.com/ezrec/lmcview/transfer"
)

// Endpoint paths.
const (
	PATH_COMPILE     = "/api/compile"
	PATH_CHECK       = "/api/check"
	PATH_STEP        = "/api/step"
	PATH_RUN         = "/api/run"
	PATH_AFTER_INPUT = "/api/after-input"
)

// DEFAULT_SERVER is where the engine listens unless configured otherwise.
const DEFAULT_SERVER = "http://localhost:5000"

// Compiled is a successfully assembled program.
type Compiled struct {
	ObjectCode []string       `json:"object_code"`
	State      state.Snapshot `json:"memory_and_registers"`
}

type sourceRequest struct {
	UncompiledCode string `json:"uncompiledCode"`
}

type compileResponse struct {
	Valid  bool      `json:"valid"`
	Result *Compiled `json:"result,omitempty"`
	Reason string    `json:"reason,omitempty"`
	Line   Line      `json:"line_number,omitempty"`
}

type afterInputRequest struct {
	State state.Snapshot `json:"state"`
	Input string         `json:"input"`
}

// Client talks to the engine over JSON/HTTP.
type Client struct {
	BaseURL string       // Engine root URL, without a trailing slash.
	HTTP    *http.Client // Nil means http.DefaultClient.
	Logger  *slog.Logger // Nil means slog.Default().
}

// NewClient creates a client for the engine at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/")}
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

// post sends body as JSON to path and decodes the reply into reply.
func (c *Client) post(ctx context.Context, path string, body any, reply any) (err error) {
	data, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, path)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger().DebugContext(ctx, "engine request", "path", path, "bytes", len(data))

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return errors.Wrap(err, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err = &ErrStatus{Endpoint: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(text))}
		c.logger().WarnContext(ctx, "engine response", "path", path, "status", resp.StatusCode)
		return
	}

	err = json.NewDecoder(resp.Body).Decode(reply)
	if err != nil {
		return errors.Wrapf(err, "%v: decode", path)
	}

	return
}

// Compile assembles source. A rejected program is a *CompileError.
func (c *Client) Compile(ctx context.Context, source string) (compiled Compiled, err error) {
	var reply compileResponse
	err = c.post(ctx, PATH_COMPILE, sourceRequest{UncompiledCode: source}, &reply)
	if err != nil {
		return
	}

	if !reply.Valid {
		err = &CompileError{Reason: reply.Reason, Line: reply.Line}
		return
	}
	if reply.Result == nil {
		err = errors.Errorf("%v: valid reply without result", PATH_COMPILE)
		return
	}

	compiled = *reply.Result
	return
}

// Check validates source without assembling it.
func (c *Client) Check(ctx context.Context, source string) (err error) {
	var reply compileResponse
	err = c.post(ctx, PATH_CHECK, sourceRequest{UncompiledCode: source}, &reply)
	if err != nil {
		return
	}

	if !reply.Valid {
		err = &CompileError{Reason: reply.Reason, Line: reply.Line}
	}
	return
}

// Step executes one cycle from snap.
func (c *Client) Step(ctx context.Context, snap state.Snapshot) (cycle transfer.Cycle, err error) {
	err = c.post(ctx, PATH_STEP, snap, &cycle)
	return
}

// Run executes cycles from snap until HLT, INP, or the engine's limit.
func (c *Client) Run(ctx context.Context, snap state.Snapshot) (cycles []transfer.Cycle, err error) {
	err = c.post(ctx, PATH_RUN, snap, &cycles)
	if err == nil && len(cycles) == 0 {
		err = errors.Errorf("%v: empty run", PATH_RUN)
	}
	return
}

// AfterInput completes an INP cycle with the user's input.
func (c *Client) AfterInput(ctx context.Context, snap state.Snapshot, input string) (t transfer.Transfer, err error) {
	err = c.post(ctx, PATH_AFTER_INPUT, afterInputRequest{State: snap, Input: input}, &t)
	return
}
