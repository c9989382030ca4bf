package cli

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

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/schema"
)

// Client reads desks from a running patchbay server. It backs the
// --server mode of show, graph and exec.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient builds a client for the given base URL (e.g.
// "http://localhost:8080").
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// State fetches the snapshot of a desk.
func (c *Client) State(ctx context.Context, deskID string) (*domain.Snapshot, error) {
	body, err := c.get(ctx, "/desks/"+url.PathEscape(deskID))
	if err != nil {
		return nil, err
	}
	return schema.DecodeJSON(body)
}

// Graph fetches the mermaid diagram of a desk.
func (c *Client) Graph(ctx context.Context, deskID string) (string, error) {
	body, err := c.get(ctx, "/desks/"+url.PathEscape(deskID)+"/graph")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Command posts a command envelope to a desk and returns the raw
// response envelope.
func (c *Client) Command(ctx context.Context, deskID string, envelope []byte) ([]byte, error) {
	target := c.BaseURL + "/desks/" + url.PathEscape(deskID) + "/commands"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(envelope))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode >= 400 {
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
			return nil, fmt.Errorf("server: %s", payload.Error)
		}
		return nil, fmt.Errorf("server: %s", res.Status)
	}
	return body, nil
}
