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

package etherscan

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quoter = common.HexToAddress("0xb27308f9F90D607463bb33eA1BeBb41C27CE5AB6")

const quoterABI = `[{"inputs":[{"internalType":"address","name":"tokenIn","type":"address"},{"internalType":"address","name":"tokenOut","type":"address"},{"internalType":"uint24","name":"fee","type":"uint24"},{"internalType":"uint256","name":"amountIn","type":"uint256"},{"internalType":"uint160","name":"sqrtPriceLimitX96","type":"uint160"}],"name":"quoteExactInputSingle","outputs":[{"internalType":"uint256","name":"amountOut","type":"uint256"}],"stateMutability":"nonpayable","type":"function"}]`

func explorer(t *testing.T, status, message, result string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "contract", q.Get("module"))
		assert.Equal(t, "getabi", q.Get("action"))
		assert.Equal(t, quoter.Hex(), q.Get("address"))
		assert.Equal(t, "key", q.Get("apikey"))
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status, "message": message, "result": result})
	}))
}

func TestABI(t *testing.T) {
	srv := explorer(t, "1", "OK", quoterABI)
	defer srv.Close()

	parsed, err := New(srv.URL, "key").ABI(context.Background(), quoter)
	require.NoError(t, err)
	method, ok := parsed.Methods["quoteExactInputSingle"]
	require.True(t, ok)
	assert.Len(t, method.Inputs, 5)
}

func TestABIExplorerError(t *testing.T) {
	srv := explorer(t, "0", "NOTOK", "Contract source code not verified")
	defer srv.Close()

	_, err := New(srv.URL, "key").ABI(context.Background(), quoter)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Contract source code not verified", apiErr.Result)
}

func TestABIInvalidJSON(t *testing.T) {
	srv := explorer(t, "1", "OK", "not an abi")
	defer srv.Close()

	_, err := New(srv.URL, "key").ABI(context.Background(), quoter)
	assert.Error(t, err)
}

func TestURLFor(t *testing.T) {
	u, err := URLFor(big.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, GoerliURL, u)

	_, err = URLFor(big.NewInt(1337))
	assert.ErrorIs(t, err, ErrUnknownChain)
}
