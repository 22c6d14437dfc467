package coordinator

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/tidwall/pretty"

	"github.com/oltplab/atomic-commit/internal/kv"
)

// Server exposes a Manager over the HTTP/JSON wire format of spec §6.2.
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
	mux.HandleFunc("/tx/start", s.handleStart)
	mux.HandleFunc("/status", s.handleStatus)
}

type startRequest struct {
	TxnID    string       `json:"txid"`
	Op       kv.Operation `json:"op"`
	Protocol string       `json:"protocol"`
}

type startResponse struct {
	OK       bool              `json:"ok"`
	TxnID    string            `json:"txid"`
	Decision string            `json:"decision"`
	Votes    map[string]string `json:"votes"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if r.Body == nil || json.NewDecoder(r.Body).Decode(&req) != nil || req.TxnID == "" {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}
	protocol, ok := ParseProtocol(req.Protocol)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid protocol")
		return
	}
	txn, err := s.mgr.Submit(req.TxnID, req.Op, protocol)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "submit failed")
		return
	}
	s.writeJSON(w, http.StatusOK, startResponse{
		OK:       true,
		TxnID:    txn.TxnID,
		Decision: txn.Decision,
		Votes:    txn.Votes,
	})
}

type statusResponse struct {
	OK bool           `json:"ok"`
	Tx map[string]Txn `json:"tx"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, statusResponse{OK: true, Tx: s.mgr.Status()})
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
