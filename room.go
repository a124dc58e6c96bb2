/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type RoomOptions struct {
	// StrictVotes drops votes that are not on the Deck.
	StrictVotes bool
}

// Room is the single shared planning session. Every handler holds mu for the
// whole read-modify-write and enqueues its broadcasts before releasing it, so
// mutations and their messages are applied in the order handlers are entered.
//
// Handlers other than Join report only whether they changed anything; an
// action whose precondition does not hold is dropped without a broadcast.
type Room struct {
	mu sync.Mutex

	registry  *Registry
	stories   *StoryQueue
	round     *Round
	bcast     *Synchronizer
	validator Validator
	opts      RoomOptions

	createdAt  time.Time
	lastActive time.Time
}

func NewRoom(transport Transport, validator Validator, opts RoomOptions) *Room {
	reg := newRegistry()
	now := time.Now()

	return &Room{
		registry:   reg,
		stories:    newStoryQueue(),
		round:      newRound(),
		bcast:      &Synchronizer{reg: reg, transport: transport},
		validator:  validator,
		opts:       opts,
		createdAt:  now,
		lastActive: now,
	}
}

func (r *Room) touch() {
	r.lastActive = time.Now()
}

func ignored(id ConnID, action, reason string) bool {
	log.Debug().Str("module", "room").Str("conn", string(id)).Str("action", action).Str("reason", reason).Msg("ignored")

	return false
}

// Join validates identity and registers id. Validation and duplicate errors are
// also reported to id as an error event.
func (r *Room) Join(id ConnID, identity string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ident, err := r.validator.Validate(identity)
	if err != nil {
		r.bcast.rejected(id, err)
		log.Info().Str("module", "room").Str("conn", string(id)).Err(err).Msg("join rejected")

		return err
	}

	p, err := r.registry.Register(id, ident)
	if err != nil {
		r.bcast.rejected(id, err)
		log.Info().Str("module", "room").Str("conn", string(id)).Str("name", ident.Name).Err(err).Msg("join rejected")

		return err
	}

	r.touch()
	r.bcast.joined(p, r.stories, r.round)

	log.Info().Str("module", "room").Str("conn", string(id)).Str("name", p.Name).Int("participants", r.registry.Len()).Msg("participant joined")

	return nil
}

// Leave is safe to call for connections that never joined or already left.
func (r *Room) Leave(id ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.registry.Unregister(id)
	if !ok {
		return false
	}
	r.round.Forget(id)

	r.touch()
	r.bcast.left(id)

	log.Info().Str("module", "room").Str("conn", string(id)).Str("name", p.Name).Int("participants", r.registry.Len()).Msg("participant left")

	return true
}

func (r *Room) AddStory(id ConnID, title, description string) Story {
	r.mu.Lock()
	defer r.mu.Unlock()

	story := r.stories.Add(title, description)

	r.touch()
	r.bcast.storyAdded(story)

	log.Info().Str("module", "room").Str("conn", string(id)).Str("story", story.ID).Str("title", story.Title).Msg("story added")

	return story
}

func (r *Room) DeleteStory(id ConnID, storyID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.stories.Remove(storyID) {
		return ignored(id, "delete-story", "unknown story")
	}

	wasCurrent := r.round.StoryID() == storyID
	if wasCurrent {
		r.round.Select("")
		r.registry.clearVotes()
	}

	r.touch()
	r.bcast.storyDeleted(storyID, wasCurrent)

	log.Info().Str("module", "room").Str("conn", string(id)).Str("story", storyID).Bool("was_current", wasCurrent).Msg("story deleted")

	return true
}

// SelectStory makes storyID current and clears the round, even if it was
// already current.
func (r *Room) SelectStory(id ConnID, storyID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	story, ok := r.stories.Find(storyID)
	if !ok {
		return ignored(id, "select-story", "unknown story")
	}

	r.round.Select(story.ID)
	r.registry.clearVotes()

	r.touch()
	r.bcast.currentStoryChanged(story)

	log.Info().Str("module", "room").Str("conn", string(id)).Str("story", story.ID).Msg("current story changed")

	return true
}

func (r *Room) StartEstimation(id ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.round.Start() {
		return ignored(id, "start-estimation", "round is "+r.round.State().String())
	}

	r.touch()
	r.bcast.estimationStarted()

	log.Info().Str("module", "room").Str("conn", string(id)).Str("story", r.round.StoryID()).Msg("estimation started")

	return true
}

func (r *Room) Vote(id ConnID, value string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.registry.Get(id)
	switch {
	case !ok:
		return ignored(id, "vote", "not joined")
	case strings.TrimSpace(value) == "":
		return ignored(id, "vote", "empty vote")
	case r.opts.StrictVotes && !inDeck(value):
		return ignored(id, "vote", "not in deck")
	}

	if !r.round.Vote(id, value) {
		return ignored(id, "vote", "round is "+r.round.State().String())
	}
	p.Vote = &value

	r.touch()
	r.bcast.voteSubmitted(p)

	log.Debug().Str("module", "room").Str("conn", string(id)).Int("votes", r.round.VoteCount()).Msg("vote submitted")

	return true
}

func (r *Room) Reveal(id ConnID) (RevealPayload, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.round.Reveal() {
		return RevealPayload{}, ignored(id, "reveal-votes", "round is "+r.round.State().String())
	}

	payload := r.bcast.revealPayload(r.round)

	r.touch()
	r.bcast.votesRevealed(payload)

	log.Info().Str("module", "room").Str("conn", string(id)).Int("votes", len(payload.VotesWithUsers)).Msg("votes revealed")

	return payload, true
}

// ResetVotes and RestartVoting are the same operation under two wire names.
func (r *Room) ResetVotes(id ConnID) {
	r.clearRound(id, EventVotesReset)
}

func (r *Room) RestartVoting(id ConnID) {
	r.clearRound(id, EventVotesRestarted)
}

func (r *Room) clearRound(id ConnID, event string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.round.Reset()
	r.registry.clearVotes()

	r.touch()
	r.bcast.roundCleared(event)

	log.Info().Str("module", "room").Str("conn", string(id)).Str("event", event).Msg("round cleared")
}

// RoomView is a read-only summary safe to show to anyone: vote values appear
// only once the round is revealed.
type RoomView struct {
	Users             []UserView     `json:"users"`
	Stories           []Story        `json:"stories"`
	CurrentStoryID    *string        `json:"currentStoryId"`
	State             string         `json:"state"`
	EstimationStarted bool           `json:"estimationStarted"`
	VotesRevealed     bool           `json:"votesRevealed"`
	VotesCast         int            `json:"votesCast"`
	Results           *RevealPayload `json:"results,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	LastActive        time.Time      `json:"lastActive"`
}

func (r *Room) View() RoomView {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.bcast.snapshot("", r.stories, r.round)

	return RoomView{
		Users:             snap.Users,
		Stories:           snap.Stories,
		CurrentStoryID:    snap.CurrentStoryID,
		State:             r.round.State().String(),
		EstimationStarted: snap.EstimationStarted,
		VotesRevealed:     snap.VotesRevealed,
		VotesCast:         r.round.VoteCount(),
		Results:           snap.Results,
		CreatedAt:         r.createdAt,
		LastActive:        r.lastActive,
	}
}
