package participant

import "strings"

// replayLine reconstructs in-memory state from one WAL record, exactly
// as the live handler would have, except that replay never re-emits a
// WAL record (spec §4.2.2). Called only during startup, before the WAL
// writer is handed to concurrent request handlers, so it needs no
// locking of its own.
func (m *Manager) replayLine(line string) {
	txid, event, rest, ok := splitRecord(line)
	if !ok {
		return
	}
	switch event {
	case "PREPARE", "CAN_COMMIT":
		vote, opJSON, ok := cut(rest, ' ')
		if !ok {
			return
		}
		op, err := decodeOperation(opJSON)
		if err != nil {
			return
		}
		state := StateAborted
		if vote == "YES" {
			state = StateReady
		}
		m.txns[txid] = &Txn{State: state, Op: op}
	case "PRECOMMIT":
		if t, ok := m.txns[txid]; ok {
			t.State = StatePreCommit
		}
	case "COMMIT":
		if t, ok := m.txns[txid]; ok && (t.State == StateReady || t.State == StatePreCommit) {
			t.Op.Apply(m.store)
			t.State = StateCommitted
		}
	case "ABORT":
		if t, ok := m.txns[txid]; ok && t.State != StateCommitted {
			t.State = StateAborted
		}
	}
}

// splitRecord splits "<txid> <EVENT> <rest...>" into its parts. rest is
// empty for events (PRECOMMIT/COMMIT/ABORT) that carry no payload.
func splitRecord(line string) (txid, event, rest string, ok bool) {
	txid, tail, ok := cut(line, ' ')
	if !ok {
		return "", "", "", false
	}
	event, rest, hasRest := cut(tail, ' ')
	if !hasRest {
		return txid, tail, "", true
	}
	return txid, event, rest, true
}

// cut splits s at the first occurrence of sep, like strings.Cut but
// named for readability at call sites that are about wire-record
// parsing, not arbitrary string splitting.
func cut(s string, sep byte) (before, after string, found bool) {
	i := strings.IndexByte(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}
