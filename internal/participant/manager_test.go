package participant

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oltplab/atomic-commit/internal/kv"
)

func TestPrepareYesThenCommitApplies(t *testing.T) {
	mgr, err := NewManager("")
	require.NoError(t, err)
	defer mgr.Close()

	vote, state := mgr.Prepare("PREPARE", "T1", kv.Operation{Type: "SET", Key: "x", Value: "1"})
	assert.Equal(t, "YES", vote)
	assert.Equal(t, StateReady, state)

	mgr.Commit("T1")
	got, err := mgr.TxnState("T1")
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, got)

	assert.Equal(t, map[string]string{"x": "1"}, mgr.Snapshot())
}

func TestPrepareNoForUnknownTag(t *testing.T) {
	mgr, err := NewManager("")
	require.NoError(t, err)
	defer mgr.Close()

	vote, state := mgr.Prepare("PREPARE", "T1", kv.Operation{Type: "DEL", Key: "x"})
	assert.Equal(t, "NO", vote)
	assert.Equal(t, StateAborted, state)
	assert.Empty(t, mgr.Snapshot())
}

func TestCommitIsIdempotent(t *testing.T) {
	mgr, err := NewManager("")
	require.NoError(t, err)
	defer mgr.Close()

	mgr.Prepare("PREPARE", "T1", kv.Operation{Type: "SET", Key: "x", Value: "1"})
	mgr.Commit("T1")
	mgr.Commit("T1") // second commit must not change anything.

	assert.Equal(t, map[string]string{"x": "1"}, mgr.Snapshot())
	state, err := mgr.TxnState("T1")
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, state)
}

func TestAbortFromPreCommit(t *testing.T) {
	mgr, err := NewManager("")
	require.NoError(t, err)
	defer mgr.Close()

	mgr.Prepare("CAN_COMMIT", "T1", kv.Operation{Type: "SET", Key: "x", Value: "1"})
	mgr.PreCommit("T1")
	mgr.Abort("T1")

	state, err := mgr.TxnState("T1")
	require.NoError(t, err)
	assert.Equal(t, StateAborted, state)
	assert.Empty(t, mgr.Snapshot())
}

func TestUnknownTxnPreCommitCommitAbortAreNoOps(t *testing.T) {
	mgr, err := NewManager("")
	require.NoError(t, err)
	defer mgr.Close()

	// None of these should panic or create a visible transaction.
	mgr.PreCommit("ghost")
	mgr.Commit("ghost")
	mgr.Abort("ghost")

	_, err = mgr.TxnState("ghost")
	assert.Error(t, err)
}

// TestWALReplayDeterminism is the repo's S6 scenario: replaying a WAL
// built from a fixed sequence of records must leave the kv store and
// transaction table in exactly the state a live run would have.
func TestWALReplayDeterminism(t *testing.T) {
	path := filepath.Join(t.TempDir(), "participant.wal")
	lines := []string{
		`T1 PREPARE YES {"type":"SET","key":"a","value":"1"}`,
		`T1 COMMIT`,
		`T2 PREPARE YES {"type":"SET","key":"a","value":"2"}`,
		`T2 ABORT`,
	}
	require.NoError(t, os.WriteFile(path, []byte(joinLines(lines)), 0o644))

	mgr, err := NewManager(path)
	require.NoError(t, err)
	defer mgr.Close()

	if diff := cmp.Diff(map[string]string{"a": "1"}, mgr.Snapshot()); diff != "" {
		t.Fatalf("kv store mismatch after replay (-want +got):\n%s", diff)
	}
	t1, err := mgr.TxnState("T1")
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, t1)
	t2, err := mgr.TxnState("T2")
	require.NoError(t, err)
	assert.Equal(t, StateAborted, t2)
}

func TestWALReplayThenLiveHandlingAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "participant.wal")
	mgr, err := NewManager(path)
	require.NoError(t, err)
	mgr.Prepare("PREPARE", "T1", kv.Operation{Type: "SET", Key: "x", Value: "1"})
	mgr.Commit("T1")
	require.NoError(t, mgr.Close())

	mgr2, err := NewManager(path)
	require.NoError(t, err)
	defer mgr2.Close()
	assert.Equal(t, map[string]string{"x": "1"}, mgr2.Snapshot())
	state, err := mgr2.TxnState("T1")
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, state)

	lines, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(lines), "T1 PREPARE YES")
	assert.Contains(t, string(lines), "T1 COMMIT")
}

func joinLines(lines []string) string {
	out := ""
	for _, l := range lines {
		out += l + "\n"
	}
	return out
}
