/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryKeepsJoinOrder(t *testing.T) {
	r := newRegistry()

	for _, name := range []string{"Carol", "Alice", "Bob"} {
		_, err := r.Register(ConnID(name), Identity{Name: name})
		require.NoError(t, err)
	}

	var names []string
	for _, p := range r.List() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Carol", "Alice", "Bob"}, names)

	_, ok := r.Unregister("Alice")
	require.True(t, ok)
	assert.Equal(t, []ConnID{"Carol", "Bob"}, r.IDs())
}

func TestRegistryRejectsDuplicateNameCaseInsensitive(t *testing.T) {
	r := newRegistry()

	_, err := r.Register("a", Identity{Email: "alice@one.com", Name: "Alice"})
	require.NoError(t, err)

	_, err = r.Register("b", Identity{Email: "alice@two.com", Name: "ALICE"})
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
	assert.Equal(t, 1, r.Len())
	_, ok := r.Get("b")
	assert.False(t, ok)
}

func TestRegistryRejectsSecondJoinFromSameConnection(t *testing.T) {
	r := newRegistry()

	_, err := r.Register("a", Identity{Name: "Alice"})
	require.NoError(t, err)

	_, err = r.Register("a", Identity{Name: "Bob"})
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	p, _ := r.Get("a")
	assert.Equal(t, "Alice", p.Name)
}

func TestRegistryUnregisterUnknownIsNoop(t *testing.T) {
	r := newRegistry()

	_, ok := r.Unregister("ghost")
	assert.False(t, ok)
	assert.Empty(t, r.List())
}

func TestRegistryNameFreedAfterLeave(t *testing.T) {
	r := newRegistry()

	_, err := r.Register("a", Identity{Name: "Alice"})
	require.NoError(t, err)
	r.Unregister("a")

	_, err = r.Register("b", Identity{Name: "Alice"})
	assert.NoError(t, err)
}
