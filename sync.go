/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

// Transport delivers one outbound message to one live connection.
// Send must not block.
type Transport interface {
	Send(to ConnID, msg any)
}

const (
	EventRoomState           = "room-state"
	EventUserJoined          = "user-joined"
	EventUsersUpdated        = "users-updated"
	EventUserLeft            = "user-left"
	EventStoryAdded          = "story-added"
	EventStoryDeleted        = "story-deleted"
	EventCurrentStoryChanged = "current-story-changed"
	EventEstimationStarted   = "estimation-started"
	EventVoteSubmitted       = "vote-submitted"
	EventVotesRevealed       = "votes-revealed"
	EventVotesReset          = "votes-reset"
	EventVotesRestarted      = "votes-restarted"
	EventError               = "error"
)

// UserView is a roster entry. It never carries a vote value.
type UserView struct {
	ID    ConnID `json:"id"`
	Name  string `json:"name"`
	Voted bool   `json:"voted"`
}

type RevealedVote struct {
	UserID   ConnID `json:"userId"`
	UserName string `json:"userName"`
	Vote     string `json:"vote"`
}

type RevealPayload struct {
	Votes          map[ConnID]string `json:"votes"`
	VotesWithUsers []RevealedVote    `json:"votesWithUsers"`
	Users          []UserView        `json:"users"`
	Stats          *VoteStats        `json:"stats,omitempty"`
}

// RoomStateMessage is the full snapshot sent once to a joining connection.
type RoomStateMessage struct {
	Type              string            `json:"type"`
	Self              ConnID            `json:"self"`
	Users             []UserView        `json:"users"`
	Stories           []Story           `json:"stories"`
	CurrentStoryID    *string           `json:"currentStoryId"`
	Votes             map[ConnID]string `json:"votes"`
	VotesRevealed     bool              `json:"votesRevealed"`
	EstimationStarted bool              `json:"estimationStarted"`
	Deck              []string          `json:"deck"`
	Results           *RevealPayload    `json:"results,omitempty"`
}

type UserJoinedMessage struct {
	Type string   `json:"type"`
	User UserView `json:"user"`
}

type UsersUpdatedMessage struct {
	Type  string     `json:"type"`
	Users []UserView `json:"users"`
}

type UserLeftMessage struct {
	Type   string `json:"type"`
	UserID ConnID `json:"userId"`
}

type StoryAddedMessage struct {
	Type  string `json:"type"`
	Story Story  `json:"story"`
}

type StoryDeletedMessage struct {
	Type       string `json:"type"`
	StoryID    string `json:"storyId"`
	RoundReset bool   `json:"roundReset,omitempty"`
}

type CurrentStoryChangedMessage struct {
	Type    string `json:"type"`
	StoryID string `json:"storyId"`
	Story   Story  `json:"story"`
}

type VoteSubmittedMessage struct {
	Type     string `json:"type"`
	UserID   ConnID `json:"userId"`
	UserName string `json:"userName"`
}

type VotesRevealedMessage struct {
	Type string `json:"type"`
	RevealPayload
}

// SignalMessage carries no payload beyond its type.
type SignalMessage struct {
	Type string `json:"type"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Synchronizer turns room mutations into outbound messages. Recipients are
// resolved against the registry at call time, so it must be used while the
// room lock is held.
type Synchronizer struct {
	reg       *Registry
	transport Transport
}

func (s *Synchronizer) toOne(id ConnID, msg any) {
	s.transport.Send(id, msg)
}

func (s *Synchronizer) toAll(msg any) {
	for _, id := range s.reg.IDs() {
		s.transport.Send(id, msg)
	}
}

func (s *Synchronizer) toAllExcept(except ConnID, msg any) {
	for _, id := range s.reg.IDs() {
		if id == except {
			continue
		}
		s.transport.Send(id, msg)
	}
}

func (s *Synchronizer) roster() []UserView {
	list := s.reg.List()

	out := make([]UserView, 0, len(list))
	for _, p := range list {
		out = append(out, viewOf(p))
	}

	return out
}

func viewOf(p *Participant) UserView {
	return UserView{ID: p.ID, Name: p.Name, Voted: p.Vote != nil}
}

func (s *Synchronizer) revealPayload(round *Round) RevealPayload {
	payload := RevealPayload{
		Votes:          round.Votes(),
		VotesWithUsers: []RevealedVote{},
		Users:          s.roster(),
	}

	values := make([]string, 0, round.VoteCount())
	for _, p := range s.reg.List() {
		v, ok := round.VoteOf(p.ID)
		if !ok {
			continue
		}
		payload.VotesWithUsers = append(payload.VotesWithUsers, RevealedVote{
			UserID:   p.ID,
			UserName: p.Name,
			Vote:     v,
		})
		values = append(values, v)
	}
	payload.Stats = computeStats(values)

	return payload
}

func (s *Synchronizer) snapshot(self ConnID, stories *StoryQueue, round *Round) RoomStateMessage {
	msg := RoomStateMessage{
		Type:              EventRoomState,
		Self:              self,
		Users:             s.roster(),
		Stories:           stories.List(),
		Votes:             map[ConnID]string{},
		VotesRevealed:     round.Revealed(),
		EstimationStarted: round.Started(),
		Deck:              Deck,
	}

	if id := round.StoryID(); id != "" {
		msg.CurrentStoryID = &id
	}

	if round.Revealed() {
		results := s.revealPayload(round)
		msg.Votes = results.Votes
		msg.Results = &results
	}

	return msg
}

func (s *Synchronizer) joined(p *Participant, stories *StoryQueue, round *Round) {
	s.toOne(p.ID, s.snapshot(p.ID, stories, round))
	s.toAllExcept(p.ID, UserJoinedMessage{Type: EventUserJoined, User: viewOf(p)})
	s.toAll(UsersUpdatedMessage{Type: EventUsersUpdated, Users: s.roster()})
}

// left runs after the participant is unregistered, so it never reaches them.
func (s *Synchronizer) left(id ConnID) {
	s.toAll(UserLeftMessage{Type: EventUserLeft, UserID: id})
	s.toAll(UsersUpdatedMessage{Type: EventUsersUpdated, Users: s.roster()})
}

func (s *Synchronizer) rejected(id ConnID, err error) {
	s.toOne(id, ErrorMessage{Type: EventError, Message: err.Error()})
}

func (s *Synchronizer) storyAdded(story Story) {
	s.toAll(StoryAddedMessage{Type: EventStoryAdded, Story: story})
}

func (s *Synchronizer) storyDeleted(id string, roundReset bool) {
	s.toAll(StoryDeletedMessage{Type: EventStoryDeleted, StoryID: id, RoundReset: roundReset})
}

func (s *Synchronizer) currentStoryChanged(story Story) {
	s.toAll(CurrentStoryChangedMessage{Type: EventCurrentStoryChanged, StoryID: story.ID, Story: story})
}

func (s *Synchronizer) estimationStarted() {
	s.toAll(SignalMessage{Type: EventEstimationStarted})
}

func (s *Synchronizer) voteSubmitted(p *Participant) {
	s.toAll(VoteSubmittedMessage{Type: EventVoteSubmitted, UserID: p.ID, UserName: p.Name})
}

func (s *Synchronizer) votesRevealed(payload RevealPayload) {
	s.toAll(VotesRevealedMessage{Type: EventVotesRevealed, RevealPayload: payload})
}

func (s *Synchronizer) roundCleared(event string) {
	s.toAll(SignalMessage{Type: event})
}
