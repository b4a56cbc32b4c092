package lmctest

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"sync"

	"github.com/ezrec/lmcview/engine"
	"github.com/ezrec/lmcview/state"
	"github.com/ezrec/lmcview/transfer"
)

// Server serves the engine endpoints and counts requests per path.
type Server struct {
	Limit int // Cycles per run; zero means DEFAULT_RUN_LIMIT.

	// AfterInputHook, if set, rewrites the after-input reply.
	AfterInputHook func(t transfer.Transfer) transfer.Transfer

	mu     sync.Mutex
	counts map[string]int
}

// NewServer creates a server with the default run limit.
func NewServer() *Server {
	return &Server{
		Limit:  DEFAULT_RUN_LIMIT,
		counts: map[string]int{},
	}
}

// Count is the number of requests received on path.
func (s *Server) Count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[path]
}

// Handler routes the engine API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+engine.PATH_CHECK, s.endpoint(s.check))
	mux.HandleFunc("POST "+engine.PATH_COMPILE, s.endpoint(s.compile))
	mux.HandleFunc("POST "+engine.PATH_STEP, s.endpoint(s.step))
	mux.HandleFunc("POST "+engine.PATH_RUN, s.endpoint(s.run))
	mux.HandleFunc("POST "+engine.PATH_AFTER_INPUT, s.endpoint(s.afterInput))
	return mux
}

// handler decodes a request body and returns a reply, or an error with
// its HTTP status.
type handler func(r *http.Request) (reply any, status int, err error)

func (s *Server) endpoint(h handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		if s.counts == nil {
			s.counts = map[string]int{}
		}
		s.counts[r.URL.Path]++
		s.mu.Unlock()

		media, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if media != "application/json" {
			http.Error(w, "Expected JSON request", http.StatusUnsupportedMediaType)
			return
		}

		reply, status, err := h(r)
		if err != nil {
			http.Error(w, err.Error(), status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply)
	}
}

type sourceRequest struct {
	UncompiledCode *string `json:"uncompiledCode"`
}

type compileReply struct {
	Valid  bool   `json:"valid"`
	Result any    `json:"result,omitempty"`
	Reason string `json:"reason,omitempty"`
	Line   any    `json:"line_number,omitempty"`
}

func decodeSource(r *http.Request) (source string, err error) {
	var req sourceRequest
	err = json.NewDecoder(r.Body).Decode(&req)
	if err == nil && req.UncompiledCode == nil {
		err = errors.New("Could not find uncompiledCode")
	}
	if err == nil {
		source = *req.UncompiledCode
	}
	return
}

func rejected(err error) (reply compileReply) {
	reply.Reason = err.Error()
	reply.Line = engine.UNKNOWN_LINE

	var syntax *ErrSyntax
	if errors.As(err, &syntax) && syntax.LineNo > 0 {
		reply.Line = syntax.LineNo
	}
	return
}

func (s *Server) check(r *http.Request) (reply any, status int, err error) {
	source, err := decodeSource(r)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	if _, aerr := Assemble(source); aerr != nil {
		return rejected(aerr), 0, nil
	}
	return compileReply{Valid: true}, 0, nil
}

func (s *Server) compile(r *http.Request) (reply any, status int, err error) {
	source, err := decodeSource(r)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	prog, aerr := Assemble(source)
	if aerr != nil {
		return rejected(aerr), 0, nil
	}

	return compileReply{
		Valid: true,
		Result: engine.Compiled{
			ObjectCode: prog.ObjectCode,
			State:      prog.State,
		},
	}, 0, nil
}

func decodeMachine(r *http.Request) (m *Machine, err error) {
	var snap state.Snapshot
	err = json.NewDecoder(r.Body).Decode(&snap)
	if err != nil {
		return
	}
	return FromSnapshot(snap)
}

func (s *Server) step(r *http.Request) (reply any, status int, err error) {
	m, err := decodeMachine(r)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	cycle, err := m.Step()
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return cycle, 0, nil
}

func (s *Server) run(r *http.Request) (reply any, status int, err error) {
	m, err := decodeMachine(r)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	limit := s.Limit
	if limit <= 0 {
		limit = DEFAULT_RUN_LIMIT
	}

	cycles, err := m.Run(limit)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return cycles, 0, nil
}

type afterInputRequest struct {
	State *state.Snapshot `json:"state"`
	Input string          `json:"input"`
}

func (s *Server) afterInput(r *http.Request) (reply any, status int, err error) {
	var req afterInputRequest
	err = json.NewDecoder(r.Body).Decode(&req)
	if err == nil && (req.State == nil || req.Input == "") {
		err = errors.New("Invalid request body. Need input and state.")
	}
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	m, err := FromSnapshot(*req.State)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	t, err := m.AfterInput(req.Input)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	if s.AfterInputHook != nil {
		t = s.AfterInputHook(t)
	}
	return t, 0, nil
}
