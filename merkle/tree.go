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

// Package merkle builds allowlist snapshots for the merkleMint entry point.
//
// Every allowlisted account gets one leaf
//
//	keccak256(abi.encodePacked(uint256 index, address account, uint256 amount))
//
// and parent nodes hash their two children in ascending order, so a proof is
// just the list of siblings from leaf to root. A node without a sibling is
// carried up unchanged.
package merkle

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrEmptySnapshot = errors.New("merkle: snapshot is empty")
	ErrZeroAmount    = errors.New("merkle: claim amount must be positive")
	ErrNoClaim       = errors.New("merkle: account has no claim")
)

// Snapshot assigns each allowlisted account the number of tokens it may
// claim.
type Snapshot map[common.Address]uint64

// Claim is what an account submits to merkleMint.
type Claim struct {
	Index  uint64
	Amount uint64
	Proof  []common.Hash
}

// ProofBytes returns the proof in the [][32]byte form the bindings take.
func (c Claim) ProofBytes() [][32]byte {
	out := make([][32]byte, len(c.Proof))
	for i, h := range c.Proof {
		out[i] = h
	}
	return out
}

// Tree is a built snapshot: its root and every account's claim.
type Tree struct {
	Root   common.Hash
	Total  uint64
	Claims map[common.Address]Claim
}

// MakeSampleSnapshot gives account i a claim of i%3+1 tokens. It produces
// deterministic fixtures for tests and dry runs.
func MakeSampleSnapshot(accounts []common.Address) Snapshot {
	s := make(Snapshot, len(accounts))
	for i, a := range accounts {
		s[a] = uint64(i%3 + 1)
	}
	return s
}

// Leaf hashes one claim.
func Leaf(index uint64, account common.Address, amount uint64) common.Hash {
	return crypto.Keccak256Hash(
		common.LeftPadBytes(new(big.Int).SetUint64(index).Bytes(), 32),
		account.Bytes(),
		common.LeftPadBytes(new(big.Int).SetUint64(amount).Bytes(), 32),
	)
}

func hashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a[:], b[:])
}

// Accounts returns the snapshot's accounts in ascending byte order, which is
// also their claim index order.
func (s Snapshot) Accounts() []common.Address {
	accounts := make([]common.Address, 0, len(s))
	for a := range s {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return bytes.Compare(accounts[i][:], accounts[j][:]) < 0
	})
	return accounts
}

// Build computes the tree and a proof for every account.
func Build(s Snapshot) (*Tree, error) {
	if len(s) == 0 {
		return nil, ErrEmptySnapshot
	}
	accounts := s.Accounts()

	tree := &Tree{Claims: make(map[common.Address]Claim, len(accounts))}
	level := make([]common.Hash, len(accounts))
	for i, a := range accounts {
		amount := s[a]
		if amount == 0 {
			return nil, fmt.Errorf("%w: %s", ErrZeroAmount, a.Hex())
		}
		tree.Total += amount
		level[i] = Leaf(uint64(i), a, amount)
		tree.Claims[a] = Claim{Index: uint64(i), Amount: amount}
	}

	// pos[i] tracks where leaf i sits in the current level.
	pos := make([]int, len(accounts))
	for i := range pos {
		pos[i] = i
	}
	for len(level) > 1 {
		for i, a := range accounts {
			p := pos[i]
			sibling := p ^ 1
			if sibling < len(level) {
				c := tree.Claims[a]
				c.Proof = append(c.Proof, level[sibling])
				tree.Claims[a] = c
			}
			pos[i] = p / 2
		}
		next := make([]common.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, hashPair(level[i], level[i+1]))
			} else {
				next = append(next, level[i])
			}
		}
		level = next
	}
	tree.Root = level[0]
	return tree, nil
}

// Claim returns the claim of account.
func (t *Tree) Claim(account common.Address) (Claim, error) {
	c, ok := t.Claims[account]
	if !ok {
		return Claim{}, fmt.Errorf("%w: %s", ErrNoClaim, account.Hex())
	}
	return c, nil
}

// Verify checks that claim, submitted by account, proves membership under
// root. It is the same check merkleMint performs on-chain.
func Verify(root common.Hash, account common.Address, claim Claim) bool {
	node := Leaf(claim.Index, account, claim.Amount)
	for _, sibling := range claim.Proof {
		node = hashPair(node, sibling)
	}
	return node == root
}
