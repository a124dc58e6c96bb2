/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"strings"

	"github.com/google/uuid"
)

const untitledStory = "Untitled Story"

type Story struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// StoryQueue keeps stories in insertion order.
type StoryQueue struct {
	stories []Story
	newID   func() string
}

func newStoryQueue() *StoryQueue {
	return &StoryQueue{newID: uuid.NewString}
}

func (q *StoryQueue) Add(title, description string) Story {
	title = strings.TrimSpace(title)
	if title == "" {
		title = untitledStory
	}

	s := Story{
		ID:          q.newID(),
		Title:       title,
		Description: strings.TrimSpace(description),
	}
	q.stories = append(q.stories, s)

	return s
}

func (q *StoryQueue) Remove(id string) bool {
	for i, s := range q.stories {
		if s.ID == id {
			q.stories = append(q.stories[:i], q.stories[i+1:]...)

			return true
		}
	}

	return false
}

func (q *StoryQueue) Find(id string) (Story, bool) {
	for _, s := range q.stories {
		if s.ID == id {
			return s, true
		}
	}

	return Story{}, false
}

func (q *StoryQueue) List() []Story {
	out := make([]Story, len(q.stories))
	copy(out, q.stories)

	return out
}
