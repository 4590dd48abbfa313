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

// Package etherscan fetches verified contract ABIs from Etherscan-compatible
// block explorers.
package etherscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// Explorer API roots.
const (
	MainnetURL = "https://api.etherscan.io/api"
	GoerliURL  = "https://api-goerli.etherscan.io/api"
)

// ErrUnknownChain is returned by URLFor for chains without an explorer.
var ErrUnknownChain = errors.New("etherscan: no explorer for chain")

// URLFor returns the explorer API for a chain id.
func URLFor(chainID *big.Int) (string, error) {
	switch chainID.Uint64() {
	case 1:
		return MainnetURL, nil
	case 5:
		return GoerliURL, nil
	}
	return "", fmt.Errorf("%w %s", ErrUnknownChain, chainID)
}

// Error is a failure reported by the explorer, e.g. "Contract source code
// not verified".
type Error struct {
	Message string
	Result  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("etherscan: %s: %s", e.Message, e.Result)
}

// Client queries one explorer API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a client for the API at baseURL.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

// RawABI returns the ABI JSON of the verified contract at addr.
func (c *Client) RawABI(ctx context.Context, addr common.Address) (string, error) {
	q := url.Values{}
	q.Set("module", "contract")
	q.Set("action", "getabi")
	q.Set("address", addr.Hex())
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("etherscan: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("etherscan: unexpected status %d", resp.StatusCode)
	}
	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("etherscan: malformed response: %w", err)
	}
	if out.Status != "1" {
		return "", &Error{Message: out.Message, Result: out.Result}
	}
	log.Debug("Fetched contract ABI", "address", addr.Hex(), "bytes", len(out.Result))
	return out.Result, nil
}

// ABI fetches and parses the ABI of the verified contract at addr.
func (c *Client) ABI(ctx context.Context, addr common.Address) (abi.ABI, error) {
	raw, err := c.RawABI(ctx, addr)
	if err != nil {
		return abi.ABI{}, err
	}
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("etherscan: invalid ABI for %s: %w", addr.Hex(), err)
	}
	return parsed, nil
}
