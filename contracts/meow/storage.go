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

package meow

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/meowsdao/meowkit/contracts/meow/contract"
)

// StorageGasLimit is the fixed gas limit for asset writes. Estimation is
// skipped because a batch of 256 words costs close to the block budget.
const StorageGasLimit uint64 = 5_000_000

// Storage wraps the on-chain asset store used by TraitsChainToken.
type Storage struct {
	abi          abi.ABI
	address      common.Address
	contract     *bind.BoundContract
	transactOpts *bind.TransactOpts
}

// NewStorage connects to an already-deployed Storage contract.
func NewStorage(opts *bind.TransactOpts, addr common.Address, backend bind.ContractBackend) (*Storage, error) {
	parsed, bc, err := bound(contract.StorageABI, addr, backend)
	if err != nil {
		return nil, err
	}
	return &Storage{abi: parsed, address: addr, contract: bc, transactOpts: opts}, nil
}

// Address returns the contract address.
func (s *Storage) Address() common.Address { return s.address }

// CreateAsset writes the first batch of an asset together with its total
// byte size. Duplicate asset ids revert.
func (s *Storage) CreateAsset(assetID uint64, sliceKey [32]byte, content [][32]byte, size uint64) (*types.Transaction, error) {
	return s.transact("createAsset", assetID, sliceKey, content, size)
}

// AppendAssetContent writes a further batch of an existing asset.
func (s *Storage) AppendAssetContent(assetID uint64, sliceKey [32]byte, content [][32]byte) (*types.Transaction, error) {
	return s.transact("appendAssetContent", assetID, sliceKey, content)
}

// AssetContent reads back the stored bytes of an asset.
func (s *Storage) AssetContent(assetID uint64) ([]byte, error) {
	var out []interface{}
	if err := s.contract.Call(&bind.CallOpts{}, &out, "getAssetContentForId", assetID); err != nil {
		return nil, DecodeRevert(s.abi, err)
	}
	return out[0].([]byte), nil
}

// AssetSize reads the recorded byte size of an asset.
func (s *Storage) AssetSize(assetID uint64) (uint64, error) {
	var out []interface{}
	if err := s.contract.Call(&bind.CallOpts{}, &out, "getAssetSize", assetID); err != nil {
		return 0, DecodeRevert(s.abi, err)
	}
	return out[0].(uint64), nil
}

func (s *Storage) transact(method string, args ...interface{}) (*types.Transaction, error) {
	opts := *s.transactOpts
	opts.GasLimit = StorageGasLimit
	tx, err := s.contract.Transact(&opts, method, args...)
	if err != nil {
		return nil, DecodeRevert(s.abi, err)
	}
	return tx, nil
}
