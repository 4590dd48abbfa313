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

// Package meow provides high-level Go bindings for the MEOWs DAO contracts:
// the NFT token family, the Deployer factory, the AuctionMachine and the
// on-chain asset Storage.
package meow

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Backend is everything the bindings need from a node: calls, transactions,
// log filtering and receipt lookups. *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// bound parses an ABI and binds it to an address on the given backend.
func bound(abiJSON string, addr common.Address, backend bind.ContractBackend) (abi.ABI, *bind.BoundContract, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return abi.ABI{}, nil, err
	}
	return parsed, bind.NewBoundContract(addr, parsed, backend, backend, backend), nil
}

// withValue returns a shallow copy of opts carrying value. The shared opts
// are never mutated, so a binding can be used from several goroutines.
func withValue(opts *bind.TransactOpts, value *big.Int) *bind.TransactOpts {
	cp := *opts
	cp.Value = value
	return &cp
}

// WaitMined blocks until tx is mined and fails if it reverted.
func WaitMined(ctx context.Context, backend bind.DeployBackend, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, backend, tx)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s", ErrTxReverted, tx.Hash().Hex())
	}
	return receipt, nil
}
