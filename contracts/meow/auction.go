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

// AuctionMachine wraps a deployed sequential English auction. The first bid
// after an auction expires starts the next one; settle pays the winner's
// token out and the proceeds into the Juicebox terminal.
type AuctionMachine struct {
	abi          abi.ABI
	address      common.Address
	contract     *bind.BoundContract
	transactOpts *bind.TransactOpts
}

// NewAuctionMachine connects to an already-deployed AuctionMachine.
func NewAuctionMachine(opts *bind.TransactOpts, addr common.Address, backend bind.ContractBackend) (*AuctionMachine, error) {
	parsed, bc, err := bound(contract.AuctionMachineABI, addr, backend)
	if err != nil {
		return nil, err
	}
	return &AuctionMachine{abi: parsed, address: addr, contract: bc, transactOpts: opts}, nil
}

// Address returns the contract address.
func (a *AuctionMachine) Address() common.Address { return a.address }

// Bid places value wei on the current auction. Bids that do not beat the
// current one revert with INVALID_BID(), bids after expiry with AUCTION_ENDED().
func (a *AuctionMachine) Bid(value *big.Int) (*types.Transaction, error) {
	return a.transact(withValue(a.transactOpts, value), "bid")
}

// Settle closes an expired auction. A non-zero value is treated as the
// opening bid of the next auction.
func (a *AuctionMachine) Settle(value *big.Int) (*types.Transaction, error) {
	return a.transact(withValue(a.transactOpts, value), "settle")
}

// RecoverToken transfers a token held by the machine (an unsold lot) to
// account. Owner only.
func (a *AuctionMachine) RecoverToken(account common.Address, tokenID *big.Int) (*types.Transaction, error) {
	return a.transact(a.transactOpts, "recoverToken", account, tokenID)
}

func (a *AuctionMachine) CurrentBid() (*big.Int, error) {
	out, err := a.call("currentBid")
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

func (a *AuctionMachine) CurrentBidder() (common.Address, error) {
	out, err := a.call("currentBidder")
	if err != nil {
		return common.Address{}, err
	}
	return out[0].(common.Address), nil
}

func (a *AuctionMachine) CurrentTokenID() (*big.Int, error) {
	out, err := a.call("currentTokenId")
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// TimeLeft returns the seconds until the current auction expires, zero once
// it has.
func (a *AuctionMachine) TimeLeft() (*big.Int, error) {
	out, err := a.call("timeLeft")
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

func (a *AuctionMachine) Owner() (common.Address, error) {
	out, err := a.call("owner")
	if err != nil {
		return common.Address{}, err
	}
	return out[0].(common.Address), nil
}

// AuctionEvent is a decoded Bid or AuctionEnded log. Account is the bidder
// or the winner.
type AuctionEvent struct {
	Name    string
	Account common.Address
	Amount  *big.Int
	Token   common.Address
	TokenID *big.Int
}

// ParseEvents decodes the Bid and AuctionEnded events in receipt, in log
// order. AuctionStarted is reported with Amount set to the expiration time.
func (a *AuctionMachine) ParseEvents(receipt *types.Receipt) ([]AuctionEvent, error) {
	var events []AuctionEvent
	for _, l := range receipt.Logs {
		if l == nil || l.Address != a.address || len(l.Topics) == 0 {
			continue
		}
		switch l.Topics[0] {
		case a.abi.Events["Bid"].ID:
			var ev struct {
				Bidder  common.Address
				Bid     *big.Int
				Token   common.Address
				TokenId *big.Int
			}
			if err := a.contract.UnpackLog(&ev, "Bid", *l); err != nil {
				return nil, err
			}
			events = append(events, AuctionEvent{Name: "Bid", Account: ev.Bidder, Amount: ev.Bid, Token: ev.Token, TokenID: ev.TokenId})
		case a.abi.Events["AuctionEnded"].ID:
			var ev struct {
				Winner  common.Address
				Price   *big.Int
				Token   common.Address
				TokenId *big.Int
			}
			if err := a.contract.UnpackLog(&ev, "AuctionEnded", *l); err != nil {
				return nil, err
			}
			events = append(events, AuctionEvent{Name: "AuctionEnded", Account: ev.Winner, Amount: ev.Price, Token: ev.Token, TokenID: ev.TokenId})
		case a.abi.Events["AuctionStarted"].ID:
			var ev struct {
				Expiration *big.Int
				Token      common.Address
				TokenId    *big.Int
			}
			if err := a.contract.UnpackLog(&ev, "AuctionStarted", *l); err != nil {
				return nil, err
			}
			events = append(events, AuctionEvent{Name: "AuctionStarted", Amount: ev.Expiration, Token: ev.Token, TokenID: ev.TokenId})
		}
	}
	return events, nil
}

func (a *AuctionMachine) transact(opts *bind.TransactOpts, method string, args ...interface{}) (*types.Transaction, error) {
	tx, err := a.contract.Transact(opts, method, args...)
	if err != nil {
		return nil, DecodeRevert(a.abi, err)
	}
	return tx, nil
}

func (a *AuctionMachine) call(method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := a.contract.Call(&bind.CallOpts{}, &out, method, args...); err != nil {
		return nil, DecodeRevert(a.abi, err)
	}
	return out, nil
}
