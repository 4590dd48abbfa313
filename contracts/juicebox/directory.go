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

// Package juicebox binds the parts of the Juicebox v2 protocol the token
// contracts route their proceeds through.
package juicebox

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// TokensETH is JBTokens.ETH, the pseudo-token address under which a
// project's ETH terminal is registered.
var TokensETH = common.HexToAddress("0x000000000000000000000000000000000000EEEe")

// Well-known JBDirectory deployments.
var (
	MainnetDirectory = common.HexToAddress("0x65572FB928b46f9aDB7cfe5A4c41226F636161ea")
	GoerliDirectory  = common.HexToAddress("0x8E05bcD2812E1449f0EC3aE24E2C395F533d9A99")
)

// DirectoryABI is the read surface of JBDirectory.
const DirectoryABI = `[
	{"type": "function", "name": "isTerminalOf", "stateMutability": "view",
	 "inputs": [
		{"name": "_projectId", "type": "uint256"},
		{"name": "_terminal", "type": "address"}
	 ],
	 "outputs": [{"name": "", "type": "bool"}]},
	{"type": "function", "name": "primaryTerminalOf", "stateMutability": "view",
	 "inputs": [
		{"name": "_projectId", "type": "uint256"},
		{"name": "_token", "type": "address"}
	 ],
	 "outputs": [{"name": "", "type": "address"}]}
]`

// DirectoryFor returns the known JBDirectory for a chain id.
func DirectoryFor(chainID *big.Int) (common.Address, bool) {
	switch chainID.Uint64() {
	case 1:
		return MainnetDirectory, true
	case 5:
		return GoerliDirectory, true
	}
	return common.Address{}, false
}

// Directory is a read-only wrapper around a deployed JBDirectory.
type Directory struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewDirectory connects to a JBDirectory.
func NewDirectory(addr common.Address, caller bind.ContractCaller) (*Directory, error) {
	parsed, err := abi.JSON(strings.NewReader(DirectoryABI))
	if err != nil {
		return nil, err
	}
	return &Directory{
		address:  addr,
		contract: bind.NewBoundContract(addr, parsed, caller, nil, nil),
	}, nil
}

// Address returns the directory address.
func (d *Directory) Address() common.Address { return d.address }

func (d *Directory) IsTerminalOf(projectID *big.Int, terminal common.Address) (bool, error) {
	var out []interface{}
	if err := d.contract.Call(&bind.CallOpts{}, &out, "isTerminalOf", projectID, terminal); err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

func (d *Directory) PrimaryTerminalOf(projectID *big.Int, token common.Address) (common.Address, error) {
	var out []interface{}
	if err := d.contract.Call(&bind.CallOpts{}, &out, "primaryTerminalOf", projectID, token); err != nil {
		return common.Address{}, err
	}
	return out[0].(common.Address), nil
}

// ETHTerminal resolves the project's primary ETH terminal and reports whether
// the directory lists it as a terminal of the project. Token mints revert with
// PAYMENT_FAILURE() when either check fails.
func (d *Directory) ETHTerminal(projectID *big.Int) (common.Address, bool, error) {
	terminal, err := d.PrimaryTerminalOf(projectID, TokensETH)
	if err != nil {
		return common.Address{}, false, err
	}
	if terminal == (common.Address{}) {
		return terminal, false, nil
	}
	ok, err := d.IsTerminalOf(projectID, terminal)
	if err != nil {
		return terminal, false, err
	}
	return terminal, ok, nil
}
