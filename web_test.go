/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, body
}

func TestStaticRoutes(t *testing.T) {
	_, srv := newTestServer(t, testConfig())

	resp, body := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ok\n", string(body))

	resp, body = get(t, srv.URL+"/version")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pokerbox v"+releaseVersion+"\n", string(body))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	resp, body = get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "assets/app.js")

	resp, _ = get(t, srv.URL+"/assets/app.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/javascript")

	resp, _ = get(t, srv.URL+"/assets/missing.js")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/robots.txt")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestQRCode(t *testing.T) {
	_, srv := newTestServer(t, testConfig())

	resp, body := get(t, srv.URL+"/qr")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	require.Greater(t, len(body), 8)
	assert.Equal(t, "\x89PNG", string(body[:4]))
}

func TestRoomURL(t *testing.T) {
	cfg := testConfig()
	cfg.prefix = "/poker"

	req, err := http.NewRequest(http.MethodGet, "http://poker.example.com/poker/qr", nil)
	require.NoError(t, err)
	req.Host = "poker.example.com"
	req.Header.Set("X-Forwarded-Proto", "https")

	assert.Equal(t, "https://poker.example.com/poker/", roomURL(cfg, req))
}

func TestStateEndpoint(t *testing.T) {
	hub, srv := newTestServer(t, testConfig())

	story := hub.room.AddStory("x", "Login flow", "")
	hub.room.SelectStory("x", story.ID)
	require.NoError(t, hub.room.Join("a", "alice@example.com"))
	hub.room.StartEstimation("a")
	hub.room.Vote("a", "banana")

	resp, body := get(t, srv.URL+"/api/state")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(body), "banana")

	var view struct {
		Users     []UserView `json:"users"`
		State     string     `json:"state"`
		VotesCast int        `json:"votesCast"`
	}
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, "voting", view.State)
	assert.Equal(t, 1, view.VotesCast)
	assert.Equal(t, []UserView{{ID: "a", Name: "Alice", Voted: true}}, view.Users)
}

func TestClientVoteCountdown(t *testing.T) {
	_, srv := newTestServer(t, testConfig())

	_, page := get(t, srv.URL+"/")
	assert.Contains(t, string(page), `id="vote-timer"`)
	assert.Contains(t, string(page), `id="timer-countdown"`)

	_, script := get(t, srv.URL+"/assets/app.js")
	for _, want := range []string{"function startVoteTimer()", "function clearVoteTimer()", "startVoteTimer();", "clearVoteTimer();"} {
		assert.Contains(t, string(script), want)
	}
}
