/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import "strings"

// ConnID identifies one live transport connection.
type ConnID string

type Participant struct {
	ID    ConnID
	Name  string
	Email string

	// Vote is only set while a round is in progress.
	Vote *string
}

// Registry maps connections to participants. It is not safe for concurrent
// use; the Room serializes access.
type Registry struct {
	order []ConnID
	byID  map[ConnID]*Participant
}

func newRegistry() *Registry {
	return &Registry{
		byID: make(map[ConnID]*Participant),
	}
}

// Register fails without mutating anything if id is already registered, or if
// another participant has the same display name (case-insensitive).
func (r *Registry) Register(id ConnID, ident Identity) (*Participant, error) {
	if _, ok := r.byID[id]; ok {
		return nil, ErrAlreadyJoined
	}

	for _, p := range r.byID {
		if strings.EqualFold(p.Name, ident.Name) {
			return nil, ErrDuplicateIdentity
		}
	}

	p := &Participant{
		ID:    id,
		Name:  ident.Name,
		Email: ident.Email,
	}

	r.byID[id] = p
	r.order = append(r.order, id)

	return p, nil
}

// Unregister is a no-op for unknown ids.
func (r *Registry) Unregister(id ConnID) (*Participant, bool) {
	p, ok := r.byID[id]
	if !ok {
		return nil, false
	}

	delete(r.byID, id)

	dst := r.order[:0]
	for _, other := range r.order {
		if other != id {
			dst = append(dst, other)
		}
	}
	r.order = dst

	return p, true
}

func (r *Registry) Get(id ConnID) (*Participant, bool) {
	p, ok := r.byID[id]

	return p, ok
}

func (r *Registry) Len() int {
	return len(r.order)
}

// List returns participants in join order.
func (r *Registry) List() []*Participant {
	out := make([]*Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}

	return out
}

func (r *Registry) IDs() []ConnID {
	out := make([]ConnID, len(r.order))
	copy(out, r.order)

	return out
}

func (r *Registry) clearVotes() {
	for _, p := range r.byID {
		p.Vote = nil
	}
}
