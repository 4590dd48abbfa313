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
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/meowsdao/meowkit/contracts/meow/contract"
)

// DefaultAdminRole is the AccessControl role granted to the token owner.
var DefaultAdminRole = [32]byte{}

// Token is a high-level wrapper around a deployed Token, UnorderedToken,
// TraitsGatewayToken or TraitsChainToken contract. All four share the mint
// and admin surface bound here.
type Token struct {
	abi          abi.ABI
	address      common.Address
	contract     *bind.BoundContract
	transactOpts *bind.TransactOpts
}

// NewToken connects to an already-deployed token contract.
func NewToken(opts *bind.TransactOpts, addr common.Address, backend bind.ContractBackend) (*Token, error) {
	parsed, bc, err := bound(contract.TokenABI, addr, backend)
	if err != nil {
		return nil, err
	}
	return &Token{abi: parsed, address: addr, contract: bc, transactOpts: opts}, nil
}

// Address returns the contract address.
func (t *Token) Address() common.Address { return t.address }

// ABI returns the parsed token ABI, used for event and revert decoding.
func (t *Token) ABI() abi.ABI { return t.abi }

// ──────────────────────────────────────────────
//  Minting
// ──────────────────────────────────────────────

// Mint mints one token to the sender paying value wei. The contract rejects
// anything but the exact price with INCORRECT_PAYMENT(expected).
func (t *Token) Mint(value *big.Int) (*types.Transaction, error) {
	return t.transact(withValue(t.transactOpts, value), "mint")
}

// MintWithToken mints one token paying with an approved ERC20 token.
func (t *Token) MintWithToken(paymentToken common.Address, value *big.Int) (*types.Transaction, error) {
	return t.transact(withValue(t.transactOpts, value), "mint0", paymentToken)
}

// MintFor mints a token to account. Requires the minter role.
func (t *Token) MintFor(account common.Address) (*types.Transaction, error) {
	return t.transact(t.transactOpts, "mintFor", account)
}

// MerkleMint claims one allowlist token with a Merkle proof.
func (t *Token) MerkleMint(index, amount *big.Int, proof [][32]byte) (*types.Transaction, error) {
	return t.transact(t.transactOpts, "merkleMint", index, amount, proof)
}

// ──────────────────────────────────────────────
//  Admin
// ──────────────────────────────────────────────

func (t *Token) SetMerkleRoot(root [32]byte) (*types.Transaction, error) {
	return t.transact(t.transactOpts, "setMerkleRoot", root)
}

func (t *Token) SetPause(pause bool) (*types.Transaction, error) {
	return t.transact(t.transactOpts, "setPause", pause)
}

func (t *Token) AddMinter(account common.Address) (*types.Transaction, error) {
	return t.transact(t.transactOpts, "addMinter", account)
}

func (t *Token) RemoveMinter(account common.Address) (*types.Transaction, error) {
	return t.transact(t.transactOpts, "removeMinter", account)
}

// SetProvenanceHash can only be called once; a second call reverts with
// PROVENANCE_REASSIGNMENT().
func (t *Token) SetProvenanceHash(hash string) (*types.Transaction, error) {
	return t.transact(t.transactOpts, "setProvenanceHash", hash)
}

func (t *Token) SetContractURI(uri string) (*types.Transaction, error) {
	return t.transact(t.transactOpts, "setContractURI", uri)
}

func (t *Token) UpdateMintPeriod(start, end *big.Int) (*types.Transaction, error) {
	return t.transact(t.transactOpts, "updateMintPeriod", start, end)
}

func (t *Token) UpdateUnitPrice(price *big.Int) (*types.Transaction, error) {
	return t.transact(t.transactOpts, "updateUnitPrice", price)
}

// SetBaseURI updates the base URI. Once reveal has been set, going back to a
// hidden URI reverts with ALREADY_REVEALED().
func (t *Token) SetBaseURI(uri string, reveal bool) (*types.Transaction, error) {
	return t.transact(t.transactOpts, "setBaseURI", uri, reveal)
}

func (t *Token) UpdatePaymentTokenList(paymentToken common.Address, accepted bool) (*types.Transaction, error) {
	return t.transact(t.transactOpts, "updatePaymentTokenList", paymentToken, accepted)
}

func (t *Token) SetIPFSGatewayURI(uri string) (*types.Transaction, error) {
	return t.transact(t.transactOpts, "setIPFSGatewayURI", uri)
}

func (t *Token) SetIPFSRoot(root string) (*types.Transaction, error) {
	return t.transact(t.transactOpts, "setIPFSRoot", root)
}

// SetAssets points a TraitsChainToken at an on-chain Storage contract.
func (t *Token) SetAssets(storage common.Address) (*types.Transaction, error) {
	return t.transact(t.transactOpts, "setAssets", storage)
}

// ──────────────────────────────────────────────
//  Reads
// ──────────────────────────────────────────────

func (t *Token) BalanceOf(owner common.Address) (*big.Int, error) {
	out, err := t.call("balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

func (t *Token) OwnerOf(tokenID *big.Int) (common.Address, error) {
	out, err := t.call("ownerOf", tokenID)
	if err != nil {
		return common.Address{}, err
	}
	return out[0].(common.Address), nil
}

func (t *Token) TotalSupply() (*big.Int, error) {
	out, err := t.call("totalSupply")
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

func (t *Token) MaxSupply() (*big.Int, error) {
	out, err := t.call("maxSupply")
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

func (t *Token) UnitPrice() (*big.Int, error) {
	out, err := t.call("unitPrice")
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

func (t *Token) MerkleRoot() ([32]byte, error) {
	out, err := t.call("merkleRoot")
	if err != nil {
		return [32]byte{}, err
	}
	return out[0].([32]byte), nil
}

func (t *Token) HasRole(role [32]byte, account common.Address) (bool, error) {
	out, err := t.call("hasRole", role, account)
	if err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

func (t *Token) TokenURI(tokenID *big.Int) (string, error) {
	out, err := t.call("tokenURI", tokenID)
	if err != nil {
		return "", err
	}
	return out[0].(string), nil
}

func (t *Token) ContractURI() (string, error) {
	out, err := t.call("contractURI")
	if err != nil {
		return "", err
	}
	return out[0].(string), nil
}

// TransferEvent is a decoded ERC721 Transfer log.
type TransferEvent struct {
	From    common.Address
	To      common.Address
	TokenID *big.Int
}

// ParseTransfers returns every Transfer emitted by this token in receipt.
// Minted token ids are read this way.
func (t *Token) ParseTransfers(receipt *types.Receipt) []TransferEvent {
	event := t.abi.Events["Transfer"]
	var transfers []TransferEvent
	for _, l := range receipt.Logs {
		if l.Address != t.address || len(l.Topics) != 4 || l.Topics[0] != event.ID {
			continue
		}
		transfers = append(transfers, TransferEvent{
			From:    common.BytesToAddress(l.Topics[1].Bytes()),
			To:      common.BytesToAddress(l.Topics[2].Bytes()),
			TokenID: new(big.Int).SetBytes(l.Topics[3].Bytes()),
		})
	}
	return transfers
}

func (t *Token) transact(opts *bind.TransactOpts, method string, args ...interface{}) (*types.Transaction, error) {
	tx, err := t.contract.Transact(opts, method, args...)
	if err != nil {
		return nil, DecodeRevert(t.abi, err)
	}
	return tx, nil
}

func (t *Token) call(method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := t.contract.Call(&bind.CallOpts{}, &out, method, args...); err != nil {
		return nil, DecodeRevert(t.abi, err)
	}
	return out, nil
}
