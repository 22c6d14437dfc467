package coordinator

// runThreePC drives txn through the three-phase commit state machine
// of spec §4.1.2: CAN_COMMIT_SENT -> (ABORT_SENT | PRECOMMIT_SENT ->
// COMMIT_SENT).
func (m *Manager) runThreePC(txn *Txn) error {
	m.setState(txn, StateCanCommitSent)
	votes, allYes := m.collectVotes(txn, "/can_commit")
	m.mu.Lock()
	txn.Votes = votes
	m.mu.Unlock()

	if !allYes {
		m.appendDecision(txn.TxnID, "ABORT")
		m.setState(txn, StateAbortSent)
		m.dispatch(txn, "/abort")
		m.mu.Lock()
		txn.Decision = "ABORT"
		m.mu.Unlock()
		return nil
	}

	m.setState(txn, StatePreCommitSent)
	m.dispatch(txn, "/precommit")

	// Decision-log write always precedes the corresponding outward
	// commit dispatch (spec §4.1.2 step 3, the coordinator's single
	// safety contract for both protocols).
	m.appendDecision(txn.TxnID, "COMMIT")

	m.setState(txn, StateCommitSent)
	m.dispatch(txn, "/commit")

	m.mu.Lock()
	txn.Decision = "COMMIT"
	m.mu.Unlock()
	return nil
}
