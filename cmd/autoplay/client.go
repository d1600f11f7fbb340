package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wricardo/dungeon-run-game/game/service"
)

// APIError is a non-2xx answer from the game server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error: %d", e.Status)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// Client plays through the REST API as a single party member.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessionID  string
	playerID   string
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateSession opens a fresh run owned by name.
func (c *Client) CreateSession(ctx context.Context, name, difficulty string) (*service.SessionState, error) {
	req := service.CreateSessionRequest{OwnerName: name, Difficulty: difficulty}
	var result service.CreateSessionResult
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &result); err != nil {
		return nil, err
	}
	c.sessionID = result.SessionID
	c.playerID = result.OwnerPlayerID
	return result.Session, nil
}

// GetState fetches the current session snapshot.
func (c *Client) GetState(ctx context.Context) (*service.SessionState, error) {
	var state service.SessionState
	if err := c.do(ctx, http.MethodGet, c.sessionPath(""), nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Move submits one step for the client's player.
func (c *Client) Move(ctx context.Context, direction string) (*service.MoveResult, error) {
	body := map[string]string{"playerId": c.playerID, "direction": direction}
	var result service.MoveResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/actions/move"), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		return &APIError{Status: resp.StatusCode, Message: errResp["error"]}
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}
