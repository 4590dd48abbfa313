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

package artifact

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meowsdao/meowkit/contracts/meow/meowtest"
)

const placeholder = "__$53aea86b7d70b31448b230b20ae141a537$__"

var linkedArtifact = `{
  "_format": "hh-sol-artifact-1",
  "contractName": "Token",
  "sourceName": "contracts/Token.sol",
  "abi": [{"inputs": [{"internalType": "uint256", "name": "supply", "type": "uint256"}], "stateMutability": "nonpayable", "type": "constructor"}],
  "bytecode": "0x6080` + placeholder + `00",
  "deployedBytecode": "0x",
  "linkReferences": {"contracts/libraries/Utils.sol": {"Utils": [{"start": 2, "length": 20}]}}
}`

func TestParseAndLink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Token.json")
	require.NoError(t, os.WriteFile(path, []byte(linkedArtifact), 0o644))

	a, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Token", a.ContractName)
	assert.Equal(t, []string{"contracts/libraries/Utils.sol:Utils"}, a.Unresolved())

	_, err = a.Bin()
	assert.ErrorIs(t, err, ErrUnlinked)

	lib := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	linked, err := a.Link(map[string]common.Address{"Utils": lib})
	require.NoError(t, err)
	assert.Empty(t, linked.Unresolved())
	assert.Contains(t, a.Bytecode, placeholder, "original artifact is left untouched")

	bin, err := linked.Bin()
	require.NoError(t, err)
	require.Len(t, bin, 23)
	assert.Equal(t, []byte{0x60, 0x80}, bin[:2])
	assert.Equal(t, lib.Bytes(), bin[2:22])
}

func TestLinkByQualifiedName(t *testing.T) {
	a, err := Parse([]byte(linkedArtifact))
	require.NoError(t, err)

	linked, err := a.Link(map[string]common.Address{"contracts/libraries/Utils.sol:Utils": {1}})
	require.NoError(t, err)
	assert.Empty(t, linked.Unresolved())

	partial, err := a.Link(map[string]common.Address{"Other": {1}})
	require.NoError(t, err)
	assert.Len(t, partial.Unresolved(), 1)
}

func TestLinkRejectsBadReference(t *testing.T) {
	a, err := Parse([]byte(strings.Replace(linkedArtifact, `"start": 2`, `"start": 200`, 1)))
	require.NoError(t, err)
	_, err = a.Link(map[string]common.Address{"Utils": {1}})
	assert.ErrorIs(t, err, ErrBadReference)
}

func TestDeploy(t *testing.T) {
	a, err := Parse([]byte(linkedArtifact))
	require.NoError(t, err)
	a, err = a.Link(map[string]common.Address{"Utils": {0xaa}})
	require.NoError(t, err)

	key, opts, err := meowtest.NewTransactor()
	require.NoError(t, err)
	backend := &meowtest.Backend{}

	addr, receipt, err := a.Deploy(context.Background(), opts, backend, big.NewInt(42))
	require.NoError(t, err)
	assert.Equal(t, crypto.CreateAddress(crypto.PubkeyToAddress(key.PublicKey), 0), addr)
	assert.NotZero(t, receipt.GasUsed)

	tx := backend.Last()
	require.NotNil(t, tx)
	assert.Nil(t, tx.To())
	bin, err := a.Bin()
	require.NoError(t, err)
	assert.Equal(t, hexutil.Encode(bin), hexutil.Encode(tx.Data()[:len(bin)]))
	assert.Equal(t, common.LeftPadBytes([]byte{42}, 32), tx.Data()[len(bin):])
}

func TestDeployNeedsBytecode(t *testing.T) {
	a, err := Parse([]byte(`{"contractName": "IToken", "abi": [], "bytecode": "0x"}`))
	require.NoError(t, err)
	_, opts, err := meowtest.NewTransactor()
	require.NoError(t, err)
	_, _, err = a.Deploy(context.Background(), opts, &meowtest.Backend{})
	assert.ErrorIs(t, err, ErrNoBytecode)
}
