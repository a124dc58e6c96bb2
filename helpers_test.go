/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type delivery struct {
	to  ConnID
	msg any
}

// recorder is a Transport that keeps every message it is handed.
type recorder struct {
	mu  sync.Mutex
	out []delivery
}

func (r *recorder) Send(to ConnID, msg any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.out = append(r.out, delivery{to: to, msg: msg})
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.out = nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.out)
}

func (r *recorder) to(id ConnID) []any {
	r.mu.Lock()
	defer r.mu.Unlock()

	var msgs []any
	for _, d := range r.out {
		if d.to == id {
			msgs = append(msgs, d.msg)
		}
	}

	return msgs
}

func (r *recorder) typesTo(t *testing.T, id ConnID) []string {
	t.Helper()

	var types []string
	for _, msg := range r.to(id) {
		types = append(types, messageType(t, msg))
	}

	return types
}

func messageType(t *testing.T, msg any) string {
	t.Helper()

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var env struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(data, &env))

	return env.Type
}

func newTestRoom(t *testing.T, opts RoomOptions) (*Room, *recorder) {
	t.Helper()

	rec := &recorder{}
	room := NewRoom(rec, IdentityValidator{}, opts)

	n := 0
	room.stories.newID = func() string {
		n++

		return fmt.Sprintf("story-%d", n)
	}

	return room, rec
}
