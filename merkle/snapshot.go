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
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var ErrBadSnapshot = errors.New("merkle: malformed snapshot")

// LoadSnapshot reads a snapshot file. Files ending in .csv hold
// "address,amount" rows (an optional header row is skipped); anything else
// is read as a JSON object of address to amount.
func LoadSnapshot(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ReadCSV(f)
	}
	return ReadJSON(f)
}

// ReadJSON decodes {"0xabc…": 3, …}.
func ReadJSON(r io.Reader) (Snapshot, error) {
	var raw map[string]uint64
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	s := make(Snapshot, len(raw))
	for addr, amount := range raw {
		if err := s.add(addr, amount); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ReadCSV decodes address,amount rows. A first row is taken as a header
// only when neither column parses.
func ReadCSV(r io.Reader) (Snapshot, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	s := make(Snapshot, len(rows))
	for i, row := range rows {
		if len(row) != 2 {
			return nil, fmt.Errorf("%w: row %d has %d fields", ErrBadSnapshot, i+1, len(row))
		}
		addr, amountText := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		amount, err := strconv.ParseUint(amountText, 10, 64)
		if i == 0 && err != nil && !common.IsHexAddress(addr) {
			// header row
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrBadSnapshot, i+1, err)
		}
		if err := s.add(addr, amount); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s Snapshot) add(addr string, amount uint64) error {
	if !common.IsHexAddress(addr) {
		return fmt.Errorf("%w: invalid address %q", ErrBadSnapshot, addr)
	}
	a := common.HexToAddress(addr)
	if _, dup := s[a]; dup {
		return fmt.Errorf("%w: duplicate address %s", ErrBadSnapshot, a.Hex())
	}
	s[a] = amount
	return nil
}

type claimJSON struct {
	Index uint64          `json:"index"`
	Data  string          `json:"data"`
	Proof []hexutil.Bytes `json:"proof"`
}

type treeJSON struct {
	MerkleRoot common.Hash          `json:"merkleRoot"`
	TokenTotal string               `json:"tokenTotal"`
	Claims     map[string]claimJSON `json:"claims"`
}

// MarshalJSON encodes the tree in the layout the minting front end reads:
// root, total and a claims object keyed by EIP-55 checksummed address, the
// form wallets report, so front ends can index it directly.
func (t *Tree) MarshalJSON() ([]byte, error) {
	out := treeJSON{
		MerkleRoot: t.Root,
		TokenTotal: strconv.FormatUint(t.Total, 10),
		Claims:     make(map[string]claimJSON, len(t.Claims)),
	}
	for a, c := range t.Claims {
		proof := make([]hexutil.Bytes, len(c.Proof))
		for i, h := range c.Proof {
			proof[i] = h.Bytes()
		}
		out.Claims[a.Hex()] = claimJSON{Index: c.Index, Data: strconv.FormatUint(c.Amount, 10), Proof: proof}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a tree written by MarshalJSON. Claim keys are
// accepted in any letter case.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var in treeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	total, err := strconv.ParseUint(in.TokenTotal, 10, 64)
	if err != nil {
		return fmt.Errorf("merkle: tokenTotal: %w", err)
	}
	t.Root, t.Total = in.MerkleRoot, total
	t.Claims = make(map[common.Address]Claim, len(in.Claims))
	for key, c := range in.Claims {
		if !common.IsHexAddress(key) {
			return fmt.Errorf("%w: invalid claim address %q", ErrBadSnapshot, key)
		}
		a := common.HexToAddress(key)
		amount, err := strconv.ParseUint(c.Data, 10, 64)
		if err != nil {
			return fmt.Errorf("merkle: claim %s: %w", a.Hex(), err)
		}
		proof := make([]common.Hash, len(c.Proof))
		for i, p := range c.Proof {
			proof[i] = common.BytesToHash(p)
		}
		t.Claims[a] = Claim{Index: c.Index, Amount: amount, Proof: proof}
	}
	return nil
}

// WriteFile stores the tree as indented JSON.
func (t *Tree) WriteFile(path string) error {
	raw, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(raw, '\n'), 0o644)
}

// ReadTree loads a tree written by WriteFile.
func ReadTree(path string) (*Tree, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t := new(Tree)
	if err := json.Unmarshal(raw, t); err != nil {
		return nil, err
	}
	return t, nil
}
