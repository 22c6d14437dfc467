package participant

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/tidwall/pretty"

	"github.com/oltplab/atomic-commit/internal/kv"
)

// Server exposes a Manager over the HTTP/JSON wire format of spec §6.3.
type Server struct {
	mgr    *Manager
	Pretty bool
}

// NewServer wraps mgr in an HTTP server.
func NewServer(mgr *Manager) *Server {
	return &Server{mgr: mgr}
}

// Routes registers every endpoint on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/prepare", s.handleVote("PREPARE"))
	mux.HandleFunc("/can_commit", s.handleVote("CAN_COMMIT"))
	mux.HandleFunc("/precommit", s.handlePreCommit)
	mux.HandleFunc("/commit", s.handleCommit)
	mux.HandleFunc("/abort", s.handleAbort)
	mux.HandleFunc("/status", s.handleStatus)
}

type voteRequest struct {
	TxnID string       `json:"txid"`
	Op    kv.Operation `json:"op"`
}

type voteResponse struct {
	Vote  string `json:"vote"`
	State string `json:"state"`
}

type txnRequest struct {
	TxnID string `json:"txid"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

func (s *Server) handleVote(event string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req voteRequest
		if !decodeBody(w, r, &req) || req.TxnID == "" {
			writeError(w, http.StatusBadRequest, "malformed request")
			return
		}
		vote, state := s.mgr.Prepare(event, req.TxnID, req.Op)
		s.writeJSON(w, http.StatusOK, voteResponse{Vote: vote, State: state})
	}
}

func (s *Server) handlePreCommit(w http.ResponseWriter, r *http.Request) {
	var req txnRequest
	if !decodeBody(w, r, &req) || req.TxnID == "" {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}
	s.mgr.PreCommit(req.TxnID)
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req txnRequest
	if !decodeBody(w, r, &req) || req.TxnID == "" {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}
	s.mgr.Commit(req.TxnID)
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleAbort(w http.ResponseWriter, r *http.Request) {
	var req txnRequest
	if !decodeBody(w, r, &req) || req.TxnID == "" {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}
	s.mgr.Abort(req.TxnID)
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

type statusResponse struct {
	OK bool           `json:"ok"`
	Tx map[string]Txn `json:"tx"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, statusResponse{OK: true, Tx: s.mgr.Status()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		return false
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode error")
		return
	}
	if s.Pretty {
		body = pretty.Pretty(body)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"ok":false,"error":"` + msg + `"}`))
}
