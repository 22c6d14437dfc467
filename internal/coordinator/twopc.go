package coordinator

import "time"

// runTwoPC drives txn through the two-phase commit state machine of
// spec §4.1.1: PREPARE_SENT -> (COMMIT_SENT | ABORT_SENT) -> DONE.
func (m *Manager) runTwoPC(txn *Txn) error {
	m.setState(txn, StatePrepareSent)
	votes, allYes := m.collectVotes(txn, "/prepare")
	m.mu.Lock()
	txn.Votes = votes
	m.mu.Unlock()

	// Deliberate post-vote, pre-decision sleep window: exposes the
	// classic "coordinator crashes after collecting votes" failure mode.
	// Must never precede the decision-log fsync below it; defaults to 0.
	if m.postVoteDelay > 0 {
		time.Sleep(m.postVoteDelay)
	}

	decision, sentState, path := "ABORT", StateAbortSent, "/abort"
	if allYes {
		decision, sentState, path = "COMMIT", StateCommitSent, "/commit"
	}

	// Linearization point: once this returns, the decision is
	// irrevocable (spec §4.1.1 step 4).
	m.appendDecision(txn.TxnID, decision)

	m.setState(txn, sentState)
	m.dispatch(txn, path)
	m.setState(txn, StateDone)

	m.mu.Lock()
	txn.Decision = decision
	m.mu.Unlock()
	return nil
}
