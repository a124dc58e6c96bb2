/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStoryQueueAddAppendsWithFreshIDs(t *testing.T) {
	q := newStoryQueue()

	a := q.Add("Login flow", "")
	b := q.Add("  Signup  ", "  email + password ")

	assert.NotEqual(t, a.ID, b.ID)
	_, err := uuid.Parse(a.ID)
	assert.NoError(t, err)

	assert.Equal(t, "Signup", b.Title)
	assert.Equal(t, "email + password", b.Description)
	assert.Equal(t, []Story{a, b}, q.List())
}

func TestStoryQueueDefaultsTitle(t *testing.T) {
	q := newStoryQueue()

	assert.Equal(t, untitledStory, q.Add("   ", "").Title)
}

func TestStoryQueueRemoveAndFind(t *testing.T) {
	q := newStoryQueue()
	a := q.Add("A", "")
	b := q.Add("B", "")
	c := q.Add("C", "")

	assert.True(t, q.Remove(b.ID))
	assert.False(t, q.Remove(b.ID))
	assert.Equal(t, []Story{a, c}, q.List())

	found, ok := q.Find(c.ID)
	assert.True(t, ok)
	assert.Equal(t, c, found)

	_, ok = q.Find(b.ID)
	assert.False(t, ok)
}

func TestStoryQueueListIsACopy(t *testing.T) {
	q := newStoryQueue()
	q.Add("A", "")

	list := q.List()
	list[0].Title = "changed"

	assert.Equal(t, "A", q.List()[0].Title)
}
