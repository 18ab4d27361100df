package client

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
	"time"

	"Quackito/internal/model"
)

var (
	ErrNotFound      = errors.New("duck not found")
	ErrInvalidAction = errors.New("invalid action")
	ErrTransport     = errors.New("transport failure")
)

// Duck is the server's authoritative view of a duck.
type Duck struct {
	Code     string
	Name     string
	Mood     model.Mood
	Snapshot model.Snapshot
}

// Client talks to the duck API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Now     func() time.Time
}

// New creates a client with the given request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Now:     time.Now,
	}
}

// duckPayload is the JSON shape returned by every duck endpoint.
type duckPayload struct {
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Hunger      float64    `json:"hunger"`
	Happiness   float64    `json:"happiness"`
	Energy      float64    `json:"energy"`
	Mood        model.Mood `json:"mood"`
	LastUpdated time.Time  `json:"last_updated"`
}

func (c *Client) toDuck(p duckPayload) *Duck {
	last := p.LastUpdated
	if last.IsZero() {
		last = c.Now()
	}
	return &Duck{
		Code: p.Code,
		Name: p.Name,
		Mood: p.Mood,
		Snapshot: model.Snapshot{
			Hunger:      p.Hunger,
			Happiness:   p.Happiness,
			Energy:      p.Energy,
			LastUpdated: last,
		},
	}
}

// CreateDuck hatches a new duck on the server.
func (c *Client) CreateDuck(ctx context.Context, name string) (*Duck, error) {
	body := map[string]string{}
	if name != "" {
		body["name"] = name
	}
	return c.do(ctx, http.MethodPost, "/api/ducks", body, http.StatusCreated)
}

// GetDuck fetches a duck; the server applies decay as part of the read.
func (c *Client) GetDuck(ctx context.Context, code string) (*Duck, error) {
	return c.do(ctx, http.MethodGet, "/api/ducks/"+url.PathEscape(code), nil, http.StatusOK)
}

// Interact sends one action to the server. food may be empty.
func (c *Client) Interact(ctx context.Context, code string, action model.Action, food model.FoodType) (*Duck, error) {
	body := map[string]string{"action": string(action)}
	if food != "" {
		body["food_type"] = string(food)
	}
	return c.do(ctx, http.MethodPost, "/api/ducks/"+url.PathEscape(code)+"/interact", body, http.StatusOK)
}

// Health reports whether the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: health: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health: status %d", ErrTransport, resp.StatusCode)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, want int) (*Duck, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return nil, statusError(resp)
	}
	var p duckPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: decode duck: %v", ErrTransport, err)
	}
	return c.toDuck(p), nil
}

func statusError(resp *http.Response) error {
	var e struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(raw, &e); err != nil || e.Error == "" {
		e.Error = strings.TrimSpace(string(raw))
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, e.Error)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrInvalidAction, e.Error)
	default:
		return fmt.Errorf("%w: status %d, body: %s", ErrTransport, resp.StatusCode, e.Error)
	}
}
