package coordinator

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"golang.org/x/net/http2"

	"github.com/oltplab/atomic-commit/internal/kv"
)

// Client is the coordinator's outbound connection to participants. The
// transport speaks HTTP/2 with prior knowledge over plain TCP (h2c):
// participants still see ordinary HTTP/1.1-shaped request/response
// semantics (spec §6.1 calls the channel "HTTP/1.1-like"), just
// multiplexed over one connection per participant instead of one per
// request.
type Client struct {
	http *http.Client
}

// NewClient builds a Client whose requests time out after timeout.
func NewClient(timeout time.Duration) *Client {
	transport := &http2.Transport{
		AllowHTTP: true,
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, addr)
		},
	}
	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

var errNonOK = errors.New("non-200 response")

type voteRequest struct {
	TxnID string       `json:"txid"`
	Op    kv.Operation `json:"op"`
}

type txnRequest struct {
	TxnID string `json:"txid"`
}

// joinURL concatenates a participant base URL with an endpoint path,
// tolerating a trailing slash on addr.
func joinURL(addr, path string) string {
	return strings.TrimSuffix(addr, "/") + path
}

// Vote sends a prepare/can_commit request to addr and returns the
// upper-cased vote. Any transport error, non-200 status, or unparsable
// body is treated as the synthetic NO_TIMEOUT vote (spec §4.1.1 step 2,
// §7) rather than propagated as an error: voting failures are data, not
// exceptions, to the coordinator's protocol engine.
func (c *Client) Vote(ctx context.Context, addr, path, txid string, op kv.Operation) string {
	body, err := json.Marshal(voteRequest{TxnID: txid, Op: op})
	if err != nil {
		return VoteNoTimeout
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(addr, path), bytes.NewReader(body))
	if err != nil {
		return VoteNoTimeout
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return VoteNoTimeout
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return VoteNoTimeout
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return VoteNoTimeout
	}
	vote := gjson.GetBytes(raw, "vote")
	if !vote.Exists() {
		return VoteNoTimeout
	}
	return strings.ToUpper(vote.String())
}

// Dispatch sends a precommit/commit/abort request to addr. Errors are
// swallowed by the caller (spec §4.1.1 step 5, §4.1.2): the durable
// decision log is the authoritative outcome, not the dispatch ack.
func (c *Client) Dispatch(ctx context.Context, addr, path, txid string) error {
	body, err := json.Marshal(txnRequest{TxnID: txid})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(addr, path), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return errNonOK
	}
	return nil
}
