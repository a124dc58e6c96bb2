/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Deck is the set of cards offered to clients.
var Deck = []string{"0", "1", "2", "3", "5", "8", "13", "21", "34", "55", "89", "?", "☕"}

type RoundState int

const (
	RoundIdle RoundState = iota
	RoundAwaitingStart
	RoundVoting
	RoundRevealed
)

func (s RoundState) String() string {
	switch s {
	case RoundAwaitingStart:
		return "awaiting_start"
	case RoundVoting:
		return "voting"
	case RoundRevealed:
		return "revealed"
	default:
		return "idle"
	}
}

// Round is the estimation state for the current story.
type Round struct {
	storyID  string
	votes    map[ConnID]string
	started  bool
	revealed bool
}

func newRound() *Round {
	return &Round{votes: make(map[ConnID]string)}
}

func (r *Round) State() RoundState {
	switch {
	case r.storyID == "":
		return RoundIdle
	case r.revealed:
		return RoundRevealed
	case r.started:
		return RoundVoting
	default:
		return RoundAwaitingStart
	}
}

func (r *Round) StoryID() string { return r.storyID }
func (r *Round) Started() bool   { return r.started }
func (r *Round) Revealed() bool  { return r.revealed }

// Select always clears the round, even when id is already current.
func (r *Round) Select(id string) {
	r.storyID = id
	r.Reset()
}

func (r *Round) Start() bool {
	if r.State() != RoundAwaitingStart {
		return false
	}
	r.started = true

	return true
}

// Vote records value for id, replacing any earlier vote in this round.
func (r *Round) Vote(id ConnID, value string) bool {
	if r.State() != RoundVoting {
		return false
	}
	r.votes[id] = value

	return true
}

func (r *Round) Forget(id ConnID) bool {
	if _, ok := r.votes[id]; !ok {
		return false
	}
	delete(r.votes, id)

	return true
}

func (r *Round) VoteOf(id ConnID) (string, bool) {
	v, ok := r.votes[id]

	return v, ok
}

func (r *Round) VoteCount() int {
	return len(r.votes)
}

// Reveal moves Voting to Revealed. Any other state is left untouched.
func (r *Round) Reveal() bool {
	if r.State() != RoundVoting {
		return false
	}
	r.revealed = true

	return true
}

// Reset keeps the story but drops votes and returns to AwaitingStart.
func (r *Round) Reset() {
	clear(r.votes)
	r.started = false
	r.revealed = false
}

func (r *Round) Votes() map[ConnID]string {
	out := make(map[ConnID]string, len(r.votes))
	for id, v := range r.votes {
		out[id] = v
	}

	return out
}

type VoteStats struct {
	Average        float64 `json:"average"`
	AverageRounded float64 `json:"averageRounded"`
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
	Count          int     `json:"count"`
}

// computeStats aggregates the votes that parse as finite numbers once
// surrounding whitespace is dropped. It returns nil when there are none.
func computeStats(votes []string) *VoteStats {
	var (
		sum   float64
		count int
		stats VoteStats
	)

	for _, v := range votes {
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			continue
		}

		if count == 0 || n < stats.Min {
			stats.Min = n
		}
		if count == 0 || n > stats.Max {
			stats.Max = n
		}
		sum += n
		count++
	}

	if count == 0 {
		return nil
	}

	stats.Count = count
	stats.Average = sum / float64(count)
	stats.AverageRounded = math.Round(stats.Average*10) / 10

	return &stats
}

func inDeck(value string) bool {
	return slices.Contains(Deck, value)
}
