package participant

import "github.com/oltplab/atomic-commit/internal/kv"

// Transaction states, per the state machine in spec §4.2. There is no
// "unknown" constant: a txid simply absent from Manager.txns has never
// been heard from.
const (
	StateReady     = "READY"
	StatePreCommit = "PRECOMMIT"
	StateCommitted = "COMMITTED"
	StateAborted   = "ABORTED"
)

// Txn is the per-transaction record a participant keeps: its current
// state and the operation it voted on. It is retained indefinitely once
// created, so a repeated prepare/commit/abort message is idempotent and
// /status can always answer for it.
type Txn struct {
	State string       `json:"state"`
	Op    kv.Operation `json:"op"`
}
