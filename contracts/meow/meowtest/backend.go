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

// Package meowtest provides an in-memory contract backend for exercising the
// bindings without a node. Transactions are signed and recorded, calls are
// answered by a caller-supplied function and every transaction is mined
// immediately with a successful receipt unless a hook says otherwise.
package meowtest

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ChainID is the chain id transactors from NewTransactor sign for.
var ChainID = big.NewInt(1337)

var errNoSubscriptions = errors.New("meowtest: subscriptions not supported")

// Backend records transactions and answers calls. The zero value is ready
// to use.
type Backend struct {
	// Call answers eth_call. A nil Call returns empty output.
	Call func(msg ethereum.CallMsg) ([]byte, error)

	// Receipt builds the receipt for a sent transaction. A nil Receipt or a
	// nil return yields a successful receipt with no logs.
	Receipt func(tx *types.Transaction) *types.Receipt

	// EstimateErr, when set, fails gas estimation.
	EstimateErr error

	mu       sync.Mutex
	sent     []*types.Transaction
	receipts map[common.Hash]*types.Receipt
	nonces   map[common.Address]uint64
}

// NewTransactor returns a fresh key and a transactor signing for ChainID.
func NewTransactor() (*ecdsa.PrivateKey, *bind.TransactOpts, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, nil, err
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, ChainID)
	if err != nil {
		return nil, nil, err
	}
	return key, opts, nil
}

// Sent returns the transactions sent so far, in order.
func (b *Backend) Sent() []*types.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*types.Transaction(nil), b.sent...)
}

// Last returns the most recent transaction or nil.
func (b *Backend) Last() *types.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.sent) == 0 {
		return nil
	}
	return b.sent[len(b.sent)-1]
}

func (b *Backend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (b *Backend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if b.Call == nil {
		return nil, nil
	}
	return b.Call(call)
}

func (b *Backend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(1), BaseFee: big.NewInt(1_000_000_000)}, nil
}

func (b *Backend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return []byte{0x60}, nil
}

func (b *Backend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nonces[account], nil
}

func (b *Backend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (b *Backend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (b *Backend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	if b.EstimateErr != nil {
		return 0, b.EstimateErr
	}
	return 100_000, nil
}

func (b *Backend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	sender, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return err
	}
	var receipt *types.Receipt
	if b.Receipt != nil {
		receipt = b.Receipt(tx)
	}
	if receipt == nil {
		receipt = &types.Receipt{Status: types.ReceiptStatusSuccessful}
	}
	receipt.TxHash = tx.Hash()
	if receipt.GasUsed == 0 {
		receipt.GasUsed = tx.Gas() / 2
	}
	if tx.To() == nil && receipt.ContractAddress == (common.Address{}) {
		receipt.ContractAddress = crypto.CreateAddress(sender, tx.Nonce())
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.nonces == nil {
		b.nonces = make(map[common.Address]uint64)
		b.receipts = make(map[common.Hash]*types.Receipt)
	}
	b.nonces[sender] = tx.Nonce() + 1
	b.receipts[tx.Hash()] = receipt
	b.sent = append(b.sent, tx)
	return nil
}

func (b *Backend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r, ok := b.receipts[txHash]; ok {
		return r, nil
	}
	return nil, ethereum.NotFound
}

func (b *Backend) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (b *Backend) SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	return nil, errNoSubscriptions
}

// RevertError mimics the JSON-RPC error a node returns for a reverted call:
// it carries the revert data as a hex string.
type RevertError struct {
	Data []byte
}

func (e *RevertError) Error() string { return "execution reverted" }

func (e *RevertError) ErrorCode() int { return 3 }

func (e *RevertError) ErrorData() interface{} { return hexutil.Encode(e.Data) }
