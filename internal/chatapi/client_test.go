package chatapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chat-app-agent/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/", Token: "tok", ProjectUUID: "p1"}), srv
}

func TestListRoomsFollowsPagination(t *testing.T) {
	var srvURL string
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/room/", r.URL.Path)
		assert.Equal(t, "p1", r.URL.Query().Get("project"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("offset") == "" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"next":    srvURL + "/room/?project=p1&offset=1",
				"results": []model.Room{{UUID: "r1"}},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"next":    nil,
			"results": []model.Room{{UUID: "r2"}},
		})
	})
	srvURL = srv.URL

	rooms, err := c.ListRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "r1", rooms[0].UUID)
	assert.Equal(t, "r2", rooms[1].UUID)
}

func TestGetProjectAndStatusErrors(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/project/p1/":
			_, _ = w.Write([]byte(`{"uuid":"p1","room_routing_type":"QUEUE_PRIORITY"}`))
		default:
			http.Error(w, "nope", http.StatusForbidden)
		}
	})

	p, err := c.GetProject(context.Background())
	require.NoError(t, err)
	assert.True(t, p.AutomaticRouting())

	_, err = c.ListDiscussions(context.Background())
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.Code)
	assert.Equal(t, "nope", se.Body)
}

func TestUpdateStatusPostsJSON(t *testing.T) {
	got := make(chan map[string]string, 1)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/project/p1/set_status/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		got <- body
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.UpdateStatus(context.Background(), "ONLINE"))
	assert.Equal(t, map[string]string{"status": "ONLINE"}, <-got)
}

func TestNewerRequestCancelsPrevious(t *testing.T) {
	release := make(chan struct{})
	firstArrived := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("room") == "slow" {
			close(firstArrived)
			select {
			case <-r.Context().Done():
			case <-release:
			}
			return
		}
		_, _ = w.Write([]byte(`{"next":"","results":[{"uuid":"m1","room":"fast"}]}`))
	})
	defer close(release)

	errc := make(chan error, 1)
	go func() {
		_, err := c.ListRoomMessages(context.Background(), "slow")
		errc <- err
	}()

	select {
	case <-firstArrived:
	case <-time.After(2 * time.Second):
		t.Fatal("first request never reached the server")
	}

	msgs, err := c.ListRoomMessages(context.Background(), "fast")
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	select {
	case err := <-errc:
		assert.True(t, errors.Is(err, ErrCanceled), "got %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded request did not return")
	}
}

func TestDifferentKindsDoNotCancelEachOther(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	_, err := c.ListRoomMessages(context.Background(), "r1")
	require.NoError(t, err)
	_, err = c.ListDiscussionMessages(context.Background(), "d1")
	require.NoError(t, err)
}
