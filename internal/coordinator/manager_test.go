package coordinator

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oltplab/atomic-commit/internal/httpx"
	"github.com/oltplab/atomic-commit/internal/kv"
	"github.com/oltplab/atomic-commit/internal/participant"
)

// newTestParticipant starts a real participant (manager + HTTP server)
// backed by a WAL file under t.TempDir(), the same stack cmd/participant
// runs in production.
func newTestParticipant(t *testing.T) (*httptest.Server, *participant.Manager) {
	t.Helper()
	walPath := filepath.Join(t.TempDir(), "p.wal")
	mgr, err := participant.NewManager(walPath)
	require.NoError(t, err)
	srv := participant.NewServer(mgr)
	mux := http.NewServeMux()
	srv.Routes(mux)
	ts := httptest.NewServer(httpx.H2C(mux))
	t.Cleanup(func() {
		ts.Close()
		mgr.Close()
	})
	return ts, mgr
}

func newTestManager(t *testing.T, participants []string) *Manager {
	t.Helper()
	mgr, err := NewManager(Config{
		Participants:    participants,
		DecisionLogPath: filepath.Join(t.TempDir(), "decisions.log"),
		Timeout:         500 * time.Millisecond,
	})
	require.NoError(t, err)
	return mgr
}

// TestHappyTwoPC is scenario S1.
func TestHappyTwoPC(t *testing.T) {
	p1, m1 := newTestParticipant(t)
	p2, m2 := newTestParticipant(t)

	cmgr := newTestManager(t, []string{p1.URL, p2.URL})
	txn, err := cmgr.Submit("T1", kv.Operation{Type: "SET", Key: "x", Value: "1"}, TwoPC)
	require.NoError(t, err)

	assert.Equal(t, "COMMIT", txn.Decision)
	assert.Equal(t, "YES", txn.Votes[p1.URL])
	assert.Equal(t, "YES", txn.Votes[p2.URL])

	assert.Equal(t, map[string]string{"x": "1"}, m1.Snapshot())
	assert.Equal(t, map[string]string{"x": "1"}, m2.Snapshot())

	assertDecisionLogContains(t, cmgr, "T1 COMMIT")
}

// TestVoteNoAborts is scenario S2.
func TestVoteNoAborts(t *testing.T) {
	p1, m1 := newTestParticipant(t)
	p2, m2 := newTestParticipant(t)

	cmgr := newTestManager(t, []string{p1.URL, p2.URL})
	txn, err := cmgr.Submit("T1", kv.Operation{Type: "DEL", Key: "x"}, TwoPC)
	require.NoError(t, err)

	assert.Equal(t, "ABORT", txn.Decision)
	assert.Equal(t, "NO", txn.Votes[p1.URL])
	assert.Equal(t, "NO", txn.Votes[p2.URL])
	assert.Empty(t, m1.Snapshot())
	assert.Empty(t, m2.Snapshot())

	assertDecisionLogContains(t, cmgr, "T1 ABORT")
}

// TestOneParticipantDown is scenario S3.
func TestOneParticipantDown(t *testing.T) {
	p1, m1 := newTestParticipant(t)
	p2, _ := newTestParticipant(t)
	downAddr := p2.URL
	p2.Close() // P2 unreachable for the whole transaction.

	cmgr := newTestManager(t, []string{p1.URL, downAddr})
	txn, err := cmgr.Submit("T1", kv.Operation{Type: "SET", Key: "x", Value: "1"}, TwoPC)
	require.NoError(t, err)

	assert.Equal(t, "ABORT", txn.Decision)
	assert.Equal(t, "YES", txn.Votes[p1.URL])
	assert.Equal(t, "NO_TIMEOUT", txn.Votes[downAddr])

	state, err := m1.TxnState("T1")
	require.NoError(t, err)
	assert.Equal(t, participant.StateAborted, state)

	assertDecisionLogContains(t, cmgr, "T1 ABORT")
}

// TestHappyThreePC is scenario S4.
func TestHappyThreePC(t *testing.T) {
	p1, m1 := newTestParticipant(t)
	p2, m2 := newTestParticipant(t)

	cmgr := newTestManager(t, []string{p1.URL, p2.URL})
	txn, err := cmgr.Submit("T1", kv.Operation{Type: "SET", Key: "x", Value: "1"}, ThreePC)
	require.NoError(t, err)

	assert.Equal(t, "COMMIT", txn.Decision)
	assert.Equal(t, map[string]string{"x": "1"}, m1.Snapshot())
	assert.Equal(t, map[string]string{"x": "1"}, m2.Snapshot())

	assertDecisionLogContains(t, cmgr, "T1 COMMIT")
}

func TestParseProtocolDefault(t *testing.T) {
	p, ok := ParseProtocol("")
	assert.True(t, ok)
	assert.Equal(t, TwoPC, p)

	p, ok = ParseProtocol("3pc")
	assert.True(t, ok)
	assert.Equal(t, ThreePC, p)

	_, ok = ParseProtocol("4PC")
	assert.False(t, ok)
}

func assertDecisionLogContains(t *testing.T, m *Manager, want string) {
	t.Helper()
	require.NoError(t, m.decisionLog.Close())
	data, err := os.ReadFile(m.decisionLog.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), want)
}
