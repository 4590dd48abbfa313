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

package merkle

import (
	"crypto/ecdsa"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccounts(n int) []common.Address {
	out := make([]common.Address, n)
	for i := range out {
		out[i] = crypto.PubkeyToAddress(mustKey(i).PublicKey)
	}
	return out
}

func mustKey(i int) *ecdsa.PrivateKey {
	key, err := crypto.ToECDSA(common.LeftPadBytes([]byte{byte(i + 1)}, 32))
	if err != nil {
		panic(err)
	}
	return key
}

func TestBuildProofsVerify(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 8, 13} {
		accounts := testAccounts(n)
		tree, err := Build(MakeSampleSnapshot(accounts))
		require.NoError(t, err)
		require.Len(t, tree.Claims, n)

		seen := make(map[uint64]bool)
		for _, a := range accounts {
			c, err := tree.Claim(a)
			require.NoError(t, err)
			assert.False(t, seen[c.Index], "duplicate index %d", c.Index)
			seen[c.Index] = true
			assert.True(t, Verify(tree.Root, a, c), "n=%d account=%s", n, a.Hex())
		}
	}
}

func TestSingleLeafTree(t *testing.T) {
	a := testAccounts(1)[0]
	tree, err := Build(Snapshot{a: 4})
	require.NoError(t, err)
	assert.Equal(t, Leaf(0, a, 4), tree.Root)
	assert.Empty(t, tree.Claims[a].Proof)
	assert.Equal(t, uint64(4), tree.Total)
}

func TestVerifyRejectsForgedClaims(t *testing.T) {
	accounts := testAccounts(4)
	tree, err := Build(MakeSampleSnapshot(accounts))
	require.NoError(t, err)

	c := tree.Claims[accounts[1]]
	assert.False(t, Verify(tree.Root, accounts[0], c), "proof used by another account")

	inflated := c
	inflated.Amount++
	assert.False(t, Verify(tree.Root, accounts[1], inflated))
}

func TestBuildIsDeterministic(t *testing.T) {
	accounts := testAccounts(6)
	a, err := Build(MakeSampleSnapshot(accounts))
	require.NoError(t, err)

	snap := make(Snapshot)
	for i := len(accounts) - 1; i >= 0; i-- {
		snap[accounts[i]] = uint64(i%3 + 1)
	}
	b, err := Build(snap)
	require.NoError(t, err)
	assert.Equal(t, a.Root, b.Root)
	assert.Equal(t, a.Claims, b.Claims)
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(Snapshot{})
	assert.ErrorIs(t, err, ErrEmptySnapshot)

	_, err = Build(Snapshot{testAccounts(1)[0]: 0})
	assert.ErrorIs(t, err, ErrZeroAmount)

	tree, err := Build(MakeSampleSnapshot(testAccounts(2)))
	require.NoError(t, err)
	_, err = tree.Claim(common.Address{})
	assert.ErrorIs(t, err, ErrNoClaim)
}

func TestLeafEncoding(t *testing.T) {
	a := common.HexToAddress("0x00000000000000000000000000000000000000ff")
	packed := append(common.LeftPadBytes([]byte{2}, 32), a.Bytes()...)
	packed = append(packed, common.LeftPadBytes([]byte{3}, 32)...)
	require.Len(t, packed, 84)
	assert.Equal(t, crypto.Keccak256Hash(packed), Leaf(2, a, 3))
}

func TestTreeJSONRoundTrip(t *testing.T) {
	accounts := testAccounts(5)
	tree, err := Build(MakeSampleSnapshot(accounts))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "merkle.json")
	require.NoError(t, tree.WriteFile(path))
	loaded, err := ReadTree(path)
	require.NoError(t, err)

	assert.Equal(t, tree.Root, loaded.Root)
	assert.Equal(t, tree.Total, loaded.Total)
	for _, a := range accounts {
		assert.True(t, Verify(loaded.Root, a, loaded.Claims[a]))
	}

	raw, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), `"merkleRoot"`))
}

func TestTreeJSONChecksummedKeys(t *testing.T) {
	account := common.HexToAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	tree, err := Build(Snapshot{account: 2})
	require.NoError(t, err)

	raw, err := json.Marshal(tree)
	require.NoError(t, err)
	var decoded struct {
		Claims map[string]json.RawMessage `json:"claims"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded.Claims, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")

	lower := strings.Replace(string(raw), "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", strings.ToLower("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"), 1)
	var loaded Tree
	require.NoError(t, json.Unmarshal([]byte(lower), &loaded))
	require.Contains(t, loaded.Claims, account)
	assert.Equal(t, tree.Claims[account].Amount, loaded.Claims[account].Amount)
	assert.True(t, Verify(loaded.Root, account, loaded.Claims[account]))

	bad := strings.Replace(string(raw), "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", "0x5aAe", 1)
	assert.ErrorIs(t, json.Unmarshal([]byte(bad), &loaded), ErrBadSnapshot)
}
