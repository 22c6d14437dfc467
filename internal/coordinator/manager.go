// Package coordinator implements the coordinator side of the commit
// protocol: the 2PC and 3PC voting/decision state machines, the
// decision log, and multi-participant dispatch (spec §4.1).
package coordinator

import (
	"context"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set"
	"golang.org/x/sync/errgroup"

	"github.com/oltplab/atomic-commit/internal/configs"
	"github.com/oltplab/atomic-commit/internal/kv"
	"github.com/oltplab/atomic-commit/internal/walog"
)

// Manager drives transactions to a decision and keeps the coordinator's
// transaction table. The reference coordinator handles one transaction
// at a time synchronously (spec §5); Manager mirrors that by running
// each Submit call to completion before returning, while still letting
// /status read the table concurrently.
type Manager struct {
	client        *Client
	participants  []string
	decisionLog   *walog.Log
	timeout       time.Duration
	postVoteDelay time.Duration

	mu   sync.RWMutex
	txns map[string]*Txn
}

// Config bundles the knobs spec §4.1.3 and §9 call out as configurable.
type Config struct {
	Participants    []string
	DecisionLogPath string
	Timeout         time.Duration // per-request timeout for every outbound participant request, default 2s.
	PostVoteDelay   time.Duration // crash-window simulator between vote collection and decision fsync, default 0.
}

// NewManager builds a Manager. DecisionLogPath must be writable; a
// failure to open it is fatal, per spec §7's disk-failure policy.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	l, err := walog.ReplayAndOpen(cfg.DecisionLogPath, func(string) {
		// The decision log is written but never read back by the
		// coordinator itself (spec §9); any replay is left to
		// operator tooling (cmd/redrive).
	})
	if err != nil {
		return nil, err
	}
	return &Manager{
		client:        NewClient(cfg.Timeout),
		participants:  cfg.Participants,
		decisionLog:   l,
		timeout:       cfg.Timeout,
		postVoteDelay: cfg.PostVoteDelay,
		txns:          make(map[string]*Txn),
	}, nil
}

// Submit runs a transaction to completion with the chosen protocol and
// returns its final record (decision plus per-participant vote map).
// It is synchronous: the caller blocks until the decision is durable
// and dispatched (spec §4.1).
func (m *Manager) Submit(txid string, op kv.Operation, protocol Protocol) (*Txn, error) {
	txn := &Txn{
		TxnID:        txid,
		Protocol:     protocol,
		Op:           op,
		Participants: append([]string(nil), m.participants...),
		Votes:        make(map[string]string),
	}
	m.store(txn)

	var err error
	if protocol == ThreePC {
		err = m.runThreePC(txn)
	} else {
		err = m.runTwoPC(txn)
	}
	return txn, err
}

// Status returns a snapshot of every transaction the coordinator has
// ever accepted, for the /status endpoint (spec §6.2).
func (m *Manager) Status() map[string]Txn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Txn, len(m.txns))
	for id, t := range m.txns {
		out[id] = *t
	}
	return out
}

func (m *Manager) store(txn *Txn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns[txn.TxnID] = txn
}

func (m *Manager) setState(txn *Txn, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn.State = state
}

// collectVotes fans prepare/can_commit out to every participant and
// waits for all replies (or the per-request timeout, which counts as
// NO_TIMEOUT for that participant — spec §4.1.3: "no retries within a
// single transaction call"). yesVoters is tracked as a set purely so
// the all-YES check reads as a set-membership question rather than a
// hand-rolled boolean accumulator.
func (m *Manager) collectVotes(txn *Txn, path string) (votes map[string]string, allYes bool) {
	votes = make(map[string]string, len(txn.Participants))
	yesVoters := mapset.NewThreadUnsafeSet()
	var mu sync.Mutex

	var wg sync.WaitGroup
	for _, addr := range txn.Participants {
		addr := addr
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
			defer cancel()
			vote := m.client.Vote(ctx, addr, path, txn.TxnID, txn.Op)
			mu.Lock()
			votes[addr] = vote
			if vote == VoteYes {
				yesVoters.Add(addr)
			}
			mu.Unlock()
			configs.TxnPrintf(txn.TxnID, "%s vote from %s: %s", path, addr, vote)
		}()
	}
	wg.Wait()

	return votes, yesVoters.Cardinality() == len(txn.Participants)
}

// dispatch fans a precommit/commit/abort request out to every
// participant concurrently. Per-participant errors are swallowed (spec
// §4.1.1 step 5, §4.1.2): the decision is already durable, so a
// participant that doesn't answer just means an operator may need to
// re-drive it later from the decision log.
func (m *Manager) dispatch(txn *Txn, path string) {
	g := new(errgroup.Group)
	for _, addr := range txn.Participants {
		addr := addr
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
			defer cancel()
			if err := m.client.Dispatch(ctx, addr, path, txn.TxnID); err != nil {
				configs.Warn(false, "dispatch "+path+" to "+addr+" failed: "+err.Error())
			}
			return nil
		})
	}
	_ = g.Wait()
}

// appendDecision writes the linearization point for txid: once this
// returns, the decision is irrevocable (spec §4.1.1 step 4,
// §4.1.2). A failure here is fatal rather than silently continuing
// without durability (spec §7).
func (m *Manager) appendDecision(txid, decision string) {
	configs.CheckError(m.decisionLog.Append(txid + " " + decision))
}
