// Package chatapi talks to the chat backend's REST API.
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"chat-app-agent/internal/model"
)

// ErrCanceled is returned by a request that a newer request of the same
// kind superseded.
var ErrCanceled = errors.New("chatapi: request superseded")

// maxPages bounds pagination so a looping next link cannot spin forever.
const maxPages = 100

type kind string

const (
	kindRoomMessages       kind = "room-messages"
	kindDiscussionMessages kind = "discussion-messages"
)

type Config struct {
	BaseURL     string
	Token       string
	ProjectUUID string
	HTTPClient  *http.Client
}

type Client struct {
	baseURL string
	token   string
	project string
	hc      *http.Client

	mu       sync.Mutex
	inflight map[kind]*pending
}

type pending struct {
	cancel     context.CancelFunc
	superseded bool
}

type page[T any] struct {
	Next    string `json:"next"`
	Results []T    `json:"results"`
}

type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chatapi: http %d: %s", e.Code, e.Body)
}

func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    cfg.Token,
		project:  cfg.ProjectUUID,
		hc:       hc,
		inflight: make(map[kind]*pending),
	}
}

func (c *Client) ListRooms(ctx context.Context) ([]model.Room, error) {
	q := url.Values{"project": {c.project}, "is_active": {"true"}}
	return list[model.Room](ctx, c, c.baseURL+"/room/?"+q.Encode())
}

func (c *Client) ListDiscussions(ctx context.Context) ([]model.Discussion, error) {
	q := url.Values{"project": {c.project}, "is_active": {"true"}}
	return list[model.Discussion](ctx, c, c.baseURL+"/discussion/?"+q.Encode())
}

func (c *Client) GetProject(ctx context.Context) (model.Project, error) {
	var p model.Project
	err := c.do(ctx, http.MethodGet, c.baseURL+"/project/"+url.PathEscape(c.project)+"/", nil, &p)
	return p, err
}

// ListRoomMessages loads a room's history. A newer call cancels an older one
// still in flight, which then returns ErrCanceled.
func (c *Client) ListRoomMessages(ctx context.Context, roomUUID string) ([]model.Message, error) {
	q := url.Values{"room": {roomUUID}, "ordering": {"created_on"}}
	return exclusive(ctx, c, kindRoomMessages, func(ctx context.Context) ([]model.Message, error) {
		return list[model.Message](ctx, c, c.baseURL+"/msg/?"+q.Encode())
	})
}

func (c *Client) ListDiscussionMessages(ctx context.Context, discussionUUID string) ([]model.Message, error) {
	endpoint := c.baseURL + "/discussion/" + url.PathEscape(discussionUUID) + "/list_messages/"
	return exclusive(ctx, c, kindDiscussionMessages, func(ctx context.Context) ([]model.Message, error) {
		return list[model.Message](ctx, c, endpoint)
	})
}

func (c *Client) UpdateStatus(ctx context.Context, status string) error {
	body := map[string]string{"status": status}
	return c.do(ctx, http.MethodPost, c.baseURL+"/project/"+url.PathEscape(c.project)+"/set_status/", body, nil)
}

func exclusive[T any](ctx context.Context, c *Client, k kind, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithCancel(ctx)
	p := &pending{cancel: cancel}

	c.mu.Lock()
	if prev := c.inflight[k]; prev != nil {
		prev.superseded = true
		prev.cancel()
	}
	c.inflight[k] = p
	c.mu.Unlock()

	out, err := fn(ctx)

	c.mu.Lock()
	superseded := p.superseded
	if c.inflight[k] == p {
		delete(c.inflight, k)
	}
	c.mu.Unlock()
	cancel()

	if superseded {
		var zero T
		return zero, ErrCanceled
	}
	return out, err
}

func list[T any](ctx context.Context, c *Client, endpoint string) ([]T, error) {
	var out []T
	for i := 0; endpoint != "" && i < maxPages; i++ {
		var p page[T]
		if err := c.do(ctx, http.MethodGet, endpoint, nil, &p); err != nil {
			return nil, err
		}
		out = append(out, p.Results...)
		endpoint = p.Next
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}
