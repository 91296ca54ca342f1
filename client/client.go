package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"combatsim/combat"
	"combatsim/game"
	"combatsim/rules"
	"combatsim/server"
	"combatsim/simulator"
	"combatsim/stats"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client talks to a combatsim server.
type Client struct {
	serverURL string
	http      *http.Client
}

func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: serverURL,
		http:      http.DefaultClient,
	}
}

// Simulate runs a simulation remotely. An invalid configuration comes back
// as *simulator.ValidationError, as it would locally.
func (c *Client) Simulate(ctx context.Context, cfg simulator.Config) (stats.SimulationResult, error) {
	var result stats.SimulationResult
	err := c.do(ctx, http.MethodPost, "/simulate", cfg, &result)
	var apiErr *validationResponse
	if errors.As(err, &apiErr) {
		return stats.SimulationResult{}, &simulator.ValidationError{Errors: apiErr.Errors}
	}
	return result, err
}

func (c *Client) Validate(ctx context.Context, cfg simulator.Config) (rules.Validation, error) {
	var v rules.Validation
	err := c.do(ctx, http.MethodPost, "/simulate/validate", cfg, &v)
	return v, err
}

// Resolve resolves one action on the server. A zero seed lets the server
// pick one; apply folds the diffs into the server's live board.
func (c *Client) Resolve(ctx context.Context, phase combat.Phase, action combat.Action, seed uint64, apply bool) (server.ResolveResponse, error) {
	q := url.Values{}
	if seed != 0 {
		q.Set("seed", strconv.FormatUint(seed, 10))
	}
	if apply {
		q.Set("apply", "true")
	}
	path := "/resolve/" + url.PathEscape(string(phase))
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var resp server.ResolveResponse
	err := c.do(ctx, http.MethodPost, path, action, &resp)
	return resp, err
}

func (c *Client) Rules(ctx context.Context) ([]rules.RuleDefinition, error) {
	var defs []rules.RuleDefinition
	err := c.do(ctx, http.MethodGet, "/rules", nil, &defs)
	return defs, err
}

func (c *Client) UnitRules(ctx context.Context, unitID string) ([]rules.RuleID, error) {
	var ids []rules.RuleID
	err := c.do(ctx, http.MethodGet, "/units/"+url.PathEscape(unitID)+"/rules", nil, &ids)
	return ids, err
}

func (c *Client) Unit(ctx context.Context, unitID string) (*game.Unit, error) {
	var u game.Unit
	if err := c.do(ctx, http.MethodGet, "/units/"+url.PathEscape(unitID), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ReplaceUnits swaps the server's live board for the given units.
func (c *Client) ReplaceUnits(ctx context.Context, docs []game.UnitDoc) error {
	return c.do(ctx, http.MethodPut, "/units", docs, nil)
}

type validationResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func (v *validationResponse) Error() string {
	return fmt.Sprintf("invalid configuration: %v", v.Errors)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var raw json.RawMessage
		if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		var v validationResponse
		if json.Unmarshal(raw, &v) == nil && v.Errors != nil {
			return &v
		}
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
