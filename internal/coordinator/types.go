package coordinator

import (
	"strings"

	"github.com/oltplab/atomic-commit/internal/kv"
)

// Protocol selects which atomic commit algorithm drives a transaction.
type Protocol string

const (
	TwoPC   Protocol = "2PC"
	ThreePC Protocol = "3PC"
)

// ParseProtocol normalizes a case-insensitive protocol name from a
// client request, defaulting to TwoPC per spec §6.2.
func ParseProtocol(s string) (Protocol, bool) {
	switch strings.ToUpper(s) {
	case "":
		return TwoPC, true
	case string(TwoPC):
		return TwoPC, true
	case string(ThreePC):
		return ThreePC, true
	default:
		return "", false
	}
}

// Coordinator-side transaction states, named after the state machines
// in spec §4.1.1 and §4.1.2.
const (
	StatePrepareSent   = "PREPARE_SENT"
	StateCanCommitSent = "CAN_COMMIT_SENT"
	StatePreCommitSent = "PRECOMMIT_SENT"
	StateCommitSent    = "COMMIT_SENT"
	StateAbortSent     = "ABORT_SENT"
	StateDone          = "DONE"
)

// Vote values a participant can return, plus the synthetic NoTimeout
// vote the coordinator records for any transport failure during voting
// (spec §4.1.1 step 2, §7).
const (
	VoteYes       = "YES"
	VoteNo        = "NO"
	VoteNoTimeout = "NO_TIMEOUT"
)

// Txn is the coordinator's record of one transaction, retained for the
// lifetime of the process once /tx/start creates it (spec §3).
type Txn struct {
	TxnID        string            `json:"txid"`
	Protocol     Protocol          `json:"protocol"`
	Op           kv.Operation      `json:"op"`
	Participants []string          `json:"participants"`
	State        string            `json:"state"`
	Votes        map[string]string `json:"votes"`
	Decision     string            `json:"decision,omitempty"`
}
