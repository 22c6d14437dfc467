// Package participant implements the participant side of the commit
// protocol: the per-transaction state machine of spec §4.2, WAL
// append/replay, and apply-on-commit against the in-memory key/value
// store.
package participant

import (
	"github.com/goccy/go-json"
	"github.com/viney-shih/go-lock"

	"github.com/oltplab/atomic-commit/internal/configs"
	"github.com/oltplab/atomic-commit/internal/kv"
	"github.com/oltplab/atomic-commit/internal/utils"
	"github.com/oltplab/atomic-commit/internal/walog"
)

// Manager owns a participant's entire durable and in-memory state. A
// single global mutex guards both the transaction table and the key/
// value store (spec §5): WAL appends happen inside the same critical
// section as the state mutation they record, so the two can never
// drift apart from the handler's point of view.
type Manager struct {
	mu    lock.Mutex
	txns  map[string]*Txn
	store *kv.Store
	wal   *walog.Log
}

// NewManager creates a participant manager, replaying walPath (if it
// exists) to reconstruct prior state before accepting any requests. An
// empty walPath disables durability entirely (in-memory only).
func NewManager(walPath string) (*Manager, error) {
	m := &Manager{
		txns:  make(map[string]*Txn),
		store: kv.NewStore(),
		mu:    lock.NewCASMutex(),
	}
	l, err := walog.ReplayAndOpen(walPath, m.replayLine)
	if err != nil {
		return nil, err
	}
	m.wal = l
	return m, nil
}

// Prepare handles both the 2PC "prepare" and 3PC "can_commit" messages,
// which share identical semantics and differ only in the WAL event name
// recorded (spec §4.2). event must be "PREPARE" or "CAN_COMMIT".
func (m *Manager) Prepare(event, txid string, op kv.Operation) (vote, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	vote = "NO"
	state = StateAborted
	if op.Validate() {
		vote = "YES"
		state = StateReady
	}
	m.txns[txid] = &Txn{State: state, Op: op}

	record := txid + " " + event + " " + vote + " " + configs.JToString(op)
	configs.CheckError(m.wal.Append(record))
	configs.TxnPrintf(txid, "%s vote=%s state=%s", event, vote, state)
	return vote, state
}

// PreCommit handles the 3PC precommit message. A WAL record is written
// even for an unknown txid — following the reference implementation,
// the event itself happened regardless of whether this participant
// still tracks the transaction (spec §4.2, "unknown txid tolerance").
func (m *Manager) PreCommit(txid string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.txns[txid]; ok {
		t.State = StatePreCommit
	}
	configs.CheckError(m.wal.Append(txid + " PRECOMMIT"))
	configs.TxnPrintf(txid, "PRECOMMIT")
}

// Commit handles the commit message. It applies the operation exactly
// once: only while transitioning out of READY/PRECOMMIT into
// COMMITTED. A second commit message for an already-committed txn is a
// pure no-op on the store (idempotence, spec invariant 2, §8 property
// 4), though the WAL still records that the message arrived.
func (m *Manager) Commit(txid string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.txns[txid]; ok && (t.State == StateReady || t.State == StatePreCommit) {
		t.Op.Apply(m.store)
		t.State = StateCommitted
	}
	configs.CheckError(m.wal.Append(txid + " COMMIT"))
	configs.TxnPrintf(txid, "COMMIT")
}

// Abort handles the abort message, accepted from any non-committed
// state (spec §4.2).
func (m *Manager) Abort(txid string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.txns[txid]; ok && t.State != StateCommitted {
		t.State = StateAborted
	}
	configs.CheckError(m.wal.Append(txid + " ABORT"))
	configs.TxnPrintf(txid, "ABORT")
}

// Status returns a snapshot of every known transaction.
func (m *Manager) Status() map[string]Txn {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Txn, len(m.txns))
	for id, t := range m.txns {
		out[id] = *t
	}
	return out
}

// TxnState reports the current state for txid, for tests that want to
// assert on it without going through Status's full copy. Returns
// ErrUnknownTxn if txid was never heard from.
func (m *Manager) TxnState(txid string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.txns[txid]
	if !ok {
		return "", utils.ErrUnknownTxn
	}
	return t.State, nil
}

// Snapshot returns the current contents of the key/value store.
func (m *Manager) Snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Snapshot()
}

// Close releases the WAL file handle.
func (m *Manager) Close() error {
	return m.wal.Close()
}

func decodeOperation(raw string) (kv.Operation, error) {
	var op kv.Operation
	err := json.Unmarshal([]byte(raw), &op)
	return op, err
}
