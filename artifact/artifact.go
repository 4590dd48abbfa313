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

// Package artifact loads Hardhat compilation artifacts, links their library
// references and deploys them.
package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"

	"github.com/meowsdao/meowkit/contracts/meow"
)

var (
	ErrUnlinked     = errors.New("artifact: unresolved library references")
	ErrBadReference = errors.New("artifact: link reference out of range")
	ErrNoBytecode   = errors.New("artifact: no bytecode (abstract contract or interface)")
)

// Ref locates one library placeholder in the bytecode, in bytes.
type Ref struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// Artifact is a compiled contract as Hardhat writes it to
// artifacts/<source>/<Name>.json.
type Artifact struct {
	ContractName string
	SourceName   string
	ABI          abi.ABI

	// Bytecode is the creation code in hex without the 0x prefix. It may
	// still hold __$…$__ placeholders until Link is called.
	Bytecode string

	// LinkReferences maps source file to library name to placeholder
	// positions.
	LinkReferences map[string]map[string][]Ref
}

type artifactJSON struct {
	ContractName   string                      `json:"contractName"`
	SourceName     string                      `json:"sourceName"`
	ABI            json.RawMessage             `json:"abi"`
	Bytecode       string                      `json:"bytecode"`
	LinkReferences map[string]map[string][]Ref `json:"linkReferences"`
}

// Parse decodes an artifact document.
func Parse(data []byte) (*Artifact, error) {
	var raw artifactJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("artifact: %w", err)
	}
	parsed, err := abi.JSON(strings.NewReader(string(raw.ABI)))
	if err != nil {
		return nil, fmt.Errorf("artifact: %s abi: %w", raw.ContractName, err)
	}
	return &Artifact{
		ContractName:   raw.ContractName,
		SourceName:     raw.SourceName,
		ABI:            parsed,
		Bytecode:       strings.TrimPrefix(raw.Bytecode, "0x"),
		LinkReferences: raw.LinkReferences,
	}, nil
}

// Load reads the artifact at path.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Unresolved lists the libraries still to be linked as "source:Name".
func (a *Artifact) Unresolved() []string {
	var out []string
	for source, libs := range a.LinkReferences {
		for name := range libs {
			out = append(out, source+":"+name)
		}
	}
	sort.Strings(out)
	return out
}

// Link returns a copy of the artifact with every library in libs written
// into its placeholders. Keys are either "source:Name" or the bare library
// name. Libraries not in libs stay unresolved.
func (a *Artifact) Link(libs map[string]common.Address) (*Artifact, error) {
	code := []byte(a.Bytecode)
	remaining := make(map[string]map[string][]Ref)
	for source, refs := range a.LinkReferences {
		for name, positions := range refs {
			addr, ok := libs[source+":"+name]
			if !ok {
				addr, ok = libs[name]
			}
			if !ok {
				if remaining[source] == nil {
					remaining[source] = make(map[string][]Ref)
				}
				remaining[source][name] = positions
				continue
			}
			hexAddr := hexutil.Encode(addr.Bytes())[2:]
			for _, r := range positions {
				from, to := r.Start*2, (r.Start+r.Length)*2
				if r.Length != common.AddressLength || from < 0 || to > len(code) {
					return nil, fmt.Errorf("%w: %s at %d", ErrBadReference, name, r.Start)
				}
				copy(code[from:to], hexAddr)
			}
		}
	}
	linked := *a
	linked.Bytecode = string(code)
	linked.LinkReferences = remaining
	return &linked, nil
}

// Bin returns the creation code, failing while libraries are unresolved.
func (a *Artifact) Bin() ([]byte, error) {
	if len(a.Bytecode) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoBytecode, a.ContractName)
	}
	if missing := a.Unresolved(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnlinked, strings.Join(missing, ", "))
	}
	return hexutil.Decode("0x" + a.Bytecode)
}

// Deploy sends the creation transaction with the given constructor
// arguments and waits for it to be mined.
func (a *Artifact) Deploy(ctx context.Context, opts *bind.TransactOpts, backend meow.Backend, args ...interface{}) (common.Address, *types.Receipt, error) {
	bin, err := a.Bin()
	if err != nil {
		return common.Address{}, nil, err
	}
	addr, tx, _, err := bind.DeployContract(opts, a.ABI, bin, backend, args...)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("artifact: deploy %s: %w", a.ContractName, err)
	}
	log.Debug("Deployment sent", "contract", a.ContractName, "tx", tx.Hash())

	receipt, err := meow.WaitMined(ctx, backend, tx)
	if err != nil {
		return common.Address{}, receipt, err
	}
	if receipt.ContractAddress != (common.Address{}) {
		addr = receipt.ContractAddress
	}
	log.Debug("Deployment mined", "contract", a.ContractName, "address", addr, "gas", receipt.GasUsed)
	return addr, receipt, nil
}
