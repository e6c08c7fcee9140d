// Package rclone is a thin client for the rclone rc API. The engine is
// reached over HTTP (rclone rcd); every method is a single POST with a JSON
// body and a JSON response.
package rclone

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ketchdev/ketch/internal/logging/events"
)

// Engine is the surface the job tracker depends on. Implemented by Client;
// tests substitute fakes.
type Engine interface {
	Sync(src, dest string, async bool) (uint64, error)
	JobStatus(id uint64) (Status, error)
	JobList() ([]uint64, error)
	ListRemotes() ([]string, error)
}

// Client calls an rclone rc endpoint. The engine serialises rc calls
// internally, but this client is also safe to share: requests are independent
// and carry no client-side state.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New builds a client for the rc endpoint at addr (e.g. http://localhost:5572).
func New(addr string) *Client {
	return &Client{
		baseURL: strings.TrimRight(addr, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Sync submits a transfer from src to dest and returns the job id assigned by
// the engine. With async true the call returns as soon as the job is queued.
func (c *Client) Sync(src, dest string, async bool) (uint64, error) {
	var resp syncResponse
	if err := c.call("sync/sync", syncRequest{SrcFs: src, DstFs: dest, Async: async}, &resp); err != nil {
		return 0, err
	}
	return resp.JobID, nil
}

// JobStatus fetches the current status of a job.
func (c *Client) JobStatus(id uint64) (Status, error) {
	var status Status
	if err := c.call("job/status", jobStatusRequest{JobID: id}, &status); err != nil {
		return Status{}, err
	}
	return status, nil
}

// JobList returns the ids of jobs the engine currently knows about.
func (c *Client) JobList() ([]uint64, error) {
	var resp jobListResponse
	if err := c.call("job/list", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.JobIDs, nil
}

// ListRemotes returns the names of remotes configured in the engine itself.
func (c *Client) ListRemotes() ([]string, error) {
	var resp listRemotesResponse
	if err := c.call("config/listremotes", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Remotes, nil
}

// SetOptions applies engine option blocks via options/set.
func (c *Client) SetOptions(opts map[string]interface{}) error {
	var resp map[string]interface{}
	return c.call("options/set", opts, &resp)
}

// DumpConfig fetches the engine's configuration. Used as a startup probe: an
// encrypted config the engine cannot read fails here rather than mid-job.
func (c *Client) DumpConfig() (map[string]interface{}, error) {
	var resp map[string]interface{}
	if err := c.call("config/dump", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Noop round-trips its parameters through the engine.
func (c *Client) Noop(params map[string]interface{}) (map[string]interface{}, error) {
	var resp map[string]interface{}
	if err := c.call("rc/noop", params, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) call(method string, params, out interface{}) error {
	events.RPC.Call(method)
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}
	url := c.baseURL + "/" + method
	resp, err := c.httpc.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		events.RPC.CallError(method, err)
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		events.RPC.CallError(method, err)
		return fmt.Errorf("read %s response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		err := remoteError(method, resp.StatusCode, payload)
		events.RPC.CallError(method, err)
		return err
	}
	if err := json.Unmarshal(payload, out); err != nil {
		derr := &DecodeError{Method: method, Err: err}
		events.RPC.CallError(method, derr)
		return derr
	}
	return nil
}

// remoteError unwraps the engine's {"error": "..."} payload when present.
func remoteError(method string, status int, payload []byte) error {
	var resp errorResponse
	if err := json.Unmarshal(payload, &resp); err == nil && resp.Error != "" {
		return fmt.Errorf("%s: %s", method, resp.Error)
	}
	return fmt.Errorf("%s: unexpected status %d", method, status)
}
