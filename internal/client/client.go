// Package client talks to a running yan server.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/patham9/YAN/internal/engine"
)

const (
	defaultServerURL = "http://127.0.0.1:37778"
	httpTimeout      = 5 * time.Second
)

// Client talks to the yan server.
type Client struct {
	http      *http.Client
	serverURL string
}

// New creates a client for serverURL. An empty URL falls back to YAN_URL and
// then to http://127.0.0.1:37778.
func New(serverURL string) *Client {
	if serverURL == "" {
		serverURL = os.Getenv("YAN_URL")
	}
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	return &Client{
		http:      &http.Client{Timeout: httpTimeout},
		serverURL: serverURL,
	}
}

// Post sends a POST request with JSON body. Returns response body.
func (c *Client) Post(path string, body []byte) ([]byte, error) {
	resp, err := c.http.Post(c.serverURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		return data, fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, errorMessage(data))
	}
	return data, nil
}

// Get sends a GET request. Returns response body.
func (c *Client) Get(path string) ([]byte, error) {
	resp, err := c.http.Get(c.serverURL + path)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		return data, fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, errorMessage(data))
	}
	return data, nil
}

// errorMessage extracts the error field of a JSON error body.
func errorMessage(data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return body.Error
	}
	return string(data)
}

// Healthy checks if the server is reachable.
func (c *Client) Healthy() bool {
	resp, err := c.http.Get(c.serverURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (c *Client) postJSON(path string, req, resp any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	data, err := c.Post(path, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, resp); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// AddEvent inputs a statement at the server's current time.
func (c *Client) AddEvent(in engine.Input) (engine.EventView, error) {
	var ev engine.EventView
	err := c.postJSON("/api/events", in, &ev)
	return ev, err
}

// Advance moves the server clock and returns the new time.
func (c *Client) Advance(steps int64) (int64, error) {
	var resp struct {
		Time int64 `json:"time"`
	}
	err := c.postJSON("/api/time", map[string]int64{"steps": steps}, &resp)
	return resp.Time, err
}

// Cycle runs reasoning cycles and returns the number of derivations.
func (c *Client) Cycle(cycles int) (int, error) {
	var resp struct {
		Derived int `json:"derived"`
	}
	err := c.postJSON("/api/cycle", map[string]int{"cycles": cycles}, &resp)
	return resp.Derived, err
}

// Summary returns the server's markdown summary of its memory.
func (c *Client) Summary() (string, error) {
	data, err := c.Get("/api/summary")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
