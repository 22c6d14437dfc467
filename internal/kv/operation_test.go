package kv

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestOperationValidate(t *testing.T) {
	assert.True(t, Operation{Type: "SET"}.Validate())
	assert.True(t, Operation{Type: "set"}.Validate())
	assert.False(t, Operation{Type: "DEL"}.Validate())
	assert.False(t, Operation{Type: ""}.Validate())
}

func TestOperationApply(t *testing.T) {
	store := NewStore()
	Operation{Type: "SET", Key: "x", Value: "1"}.Apply(store)

	got := store.Snapshot()
	want := map[string]string{"x": "1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("store mismatch (-want +got):\n%s", diff)
	}

	// overwriting the key replaces the value.
	Operation{Type: "SET", Key: "x", Value: "2"}.Apply(store)
	v, ok := store.Get("x")
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	// a non-SET tag never touches the store, defensively.
	Operation{Type: "DEL", Key: "y", Value: "9"}.Apply(store)
	_, ok = store.Get("y")
	assert.False(t, ok)
}
