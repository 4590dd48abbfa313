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
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// Custom errors raised by the contracts, keyed by their Solidity names.
var (
	ErrAllowanceExhausted     = errors.New("meow: ALLOWANCE_EXHAUSTED()")
	ErrAlreadyRevealed        = errors.New("meow: ALREADY_REVEALED()")
	ErrAuctionActive          = errors.New("meow: AUCTION_ACTIVE()")
	ErrAuctionEnded           = errors.New("meow: AUCTION_ENDED()")
	ErrClaimsExhausted        = errors.New("meow: CLAIMS_EXHAUSTED()")
	ErrIncorrectPayment       = errors.New("meow: INCORRECT_PAYMENT")
	ErrInvalidBid             = errors.New("meow: INVALID_BID()")
	ErrInvalidProof           = errors.New("meow: INVALID_PROOF()")
	ErrMintConcluded          = errors.New("meow: MINT_CONCLUDED()")
	ErrMintNotStarted         = errors.New("meow: MINT_NOT_STARTED()")
	ErrPaymentFailure         = errors.New("meow: PAYMENT_FAILURE()")
	ErrProvenanceReassignment = errors.New("meow: PROVENANCE_REASSIGNMENT()")
	ErrSupplyExhausted        = errors.New("meow: SUPPLY_EXHAUSTED()")
	ErrUnapprovedToken        = errors.New("meow: UNAPPROVED_TOKEN()")

	ErrTxReverted   = errors.New("meow: transaction reverted")
	ErrNoDeployment = errors.New("meow: no Deployment event in receipt")
)

var customErrors = map[string]error{
	"ALLOWANCE_EXHAUSTED":     ErrAllowanceExhausted,
	"ALREADY_REVEALED":        ErrAlreadyRevealed,
	"AUCTION_ACTIVE":          ErrAuctionActive,
	"AUCTION_ENDED":           ErrAuctionEnded,
	"CLAIMS_EXHAUSTED":        ErrClaimsExhausted,
	"INCORRECT_PAYMENT":       ErrIncorrectPayment,
	"INVALID_BID":             ErrInvalidBid,
	"INVALID_PROOF":           ErrInvalidProof,
	"MINT_CONCLUDED":          ErrMintConcluded,
	"MINT_NOT_STARTED":        ErrMintNotStarted,
	"PAYMENT_FAILURE":         ErrPaymentFailure,
	"PROVENANCE_REASSIGNMENT": ErrProvenanceReassignment,
	"SUPPLY_EXHAUSTED":        ErrSupplyExhausted,
	"UNAPPROVED_TOKEN":        ErrUnapprovedToken,
}

// IncorrectPaymentError is INCORRECT_PAYMENT(uint256): the value sent did not
// match the price the contract expected for this mint.
type IncorrectPaymentError struct {
	Expected *big.Int
}

func (e *IncorrectPaymentError) Error() string {
	return fmt.Sprintf("meow: INCORRECT_PAYMENT(%s)", e.Expected)
}

func (e *IncorrectPaymentError) Unwrap() error { return ErrIncorrectPayment }

// RevertError is a revert that does not map to a known custom error, either a
// require() reason string or an error selector missing from the ABI.
type RevertError struct {
	Reason string
	Data   []byte
}

func (e *RevertError) Error() string {
	if e.Reason != "" {
		return "meow: execution reverted: " + e.Reason
	}
	return "meow: execution reverted: " + hexutil.Encode(e.Data)
}

// UnpackRevert turns raw revert data into a Go error using the custom errors
// declared in contractABI. It returns nil when data holds no selector.
func UnpackRevert(contractABI abi.ABI, data []byte) error {
	if len(data) < 4 {
		return nil
	}
	if reason, err := abi.UnpackRevert(data); err == nil {
		return &RevertError{Reason: reason, Data: data}
	}
	for name, abiErr := range contractABI.Errors {
		if !bytes.Equal(abiErr.ID[:4], data[:4]) {
			continue
		}
		sentinel, known := customErrors[name]
		if !known {
			return &RevertError{Reason: abiErr.Sig, Data: data}
		}
		if sentinel != ErrIncorrectPayment {
			return sentinel
		}
		vals, err := abiErr.Unpack(data)
		if err != nil {
			return sentinel
		}
		if args, ok := vals.([]interface{}); ok && len(args) == 1 {
			if expected, ok := args[0].(*big.Int); ok {
				return &IncorrectPaymentError{Expected: expected}
			}
		}
		return sentinel
	}
	return &RevertError{Data: data}
}

// DecodeRevert inspects an error returned by a node call or gas estimation
// and, if it carries revert data, replaces it with the decoded contract
// error. Other errors are returned unchanged.
func DecodeRevert(contractABI abi.ABI, err error) error {
	if err == nil {
		return nil
	}
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return err
	}
	var data []byte
	switch v := dataErr.ErrorData().(type) {
	case string:
		decoded, derr := hexutil.Decode(strings.TrimSpace(v))
		if derr != nil {
			return err
		}
		data = decoded
	case []byte:
		data = v
	default:
		return err
	}
	if decoded := UnpackRevert(contractABI, data); decoded != nil {
		return decoded
	}
	return err
}
