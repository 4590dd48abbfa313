// Copyright 2018 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package nftstorage is a minimal client for the nft.storage pinning API.
package nftstorage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ipfs/go-cid"

	"github.com/meowsdao/meowkit/ipfs"
)

// DefaultEndpoint is the public nft.storage API.
const DefaultEndpoint = "https://api.nft.storage"

// ErrNoToken is returned when the client has no API token.
var ErrNoToken = errors.New("nftstorage: API token required")

// APIError is an error reported by the service.
type APIError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("nftstorage: %s (status %d): %s", e.Name, e.StatusCode, e.Message)
}

// Client talks to one nft.storage endpoint.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithEndpoint points the client at another deployment of the API.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = strings.TrimRight(endpoint, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// New creates a client authenticating with token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type envelope struct {
	OK    bool            `json:"ok"`
	Value json.RawMessage `json:"value"`
	Error *struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}

type uploadValue struct {
	CID string `json:"cid"`
}

type statusValue struct {
	CID     string    `json:"cid"`
	Size    uint64    `json:"size"`
	Created time.Time `json:"created"`
	Pins    []struct {
		PeerID string `json:"peerId"`
		Status string `json:"status"`
	} `json:"pins"`
}

// StoreDirectory uploads files as a single directory.
func (c *Client) StoreDirectory(ctx context.Context, files []ipfs.File) (cid.Cid, error) {
	if len(files) == 0 {
		return cid.Undef, ipfs.ErrEmptyDirectory
	}
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := form.CreateFormFile("file", f.Name)
		if err != nil {
			return cid.Undef, err
		}
		if _, err := part.Write(f.Data); err != nil {
			return cid.Undef, err
		}
	}
	if err := form.Close(); err != nil {
		return cid.Undef, err
	}
	log.Debug("Uploading directory", "endpoint", c.endpoint, "files", len(files), "bytes", body.Len())

	var out uploadValue
	if err := c.do(ctx, http.MethodPost, "/upload", form.FormDataContentType(), &body, &out); err != nil {
		return cid.Undef, err
	}
	root, err := cid.Decode(out.CID)
	if err != nil {
		return cid.Undef, fmt.Errorf("%w: %q: %v", ipfs.ErrInvalidCID, out.CID, err)
	}
	return root, nil
}

// Status returns the pin and size information for root.
func (c *Client) Status(ctx context.Context, root cid.Cid) (*ipfs.Status, error) {
	var out statusValue
	if err := c.do(ctx, http.MethodGet, "/"+root.String(), "", nil, &out); err != nil {
		return nil, err
	}
	status := &ipfs.Status{CID: root, Size: out.Size, Created: out.Created}
	for _, p := range out.Pins {
		status.Pins = append(status.Pins, ipfs.Pin{Peer: p.PeerID, Status: p.Status})
	}
	return status, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, value interface{}) error {
	if c.token == "" {
		return ErrNoToken
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("nftstorage: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Name: "BadResponse", Message: strings.TrimSpace(string(raw))}
	}
	if !env.OK || resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode, Name: "Error"}
		if env.Error != nil {
			apiErr.Name, apiErr.Message = env.Error.Name, env.Error.Message
		}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %v", ipfs.ErrNotFound, apiErr)
		}
		return apiErr
	}
	return json.Unmarshal(env.Value, value)
}
