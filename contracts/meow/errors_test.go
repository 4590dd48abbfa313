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
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meowsdao/meowkit/contracts/meow/contract"
	"github.com/meowsdao/meowkit/contracts/meow/meowtest"
)

func mustABI(t *testing.T, def string) abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(def))
	require.NoError(t, err)
	return parsed
}

func selector(sig string) []byte {
	return crypto.Keccak256([]byte(sig))[:4]
}

func TestUnpackRevertCustomErrors(t *testing.T) {
	tokenABI := mustABI(t, contract.TokenABI)
	auctionABI := mustABI(t, contract.AuctionMachineABI)

	cases := []struct {
		abi  abi.ABI
		sig  string
		want error
	}{
		{tokenABI, "ALLOWANCE_EXHAUSTED()", ErrAllowanceExhausted},
		{tokenABI, "SUPPLY_EXHAUSTED()", ErrSupplyExhausted},
		{tokenABI, "INVALID_PROOF()", ErrInvalidProof},
		{tokenABI, "CLAIMS_EXHAUSTED()", ErrClaimsExhausted},
		{tokenABI, "PAYMENT_FAILURE()", ErrPaymentFailure},
		{tokenABI, "PROVENANCE_REASSIGNMENT()", ErrProvenanceReassignment},
		{tokenABI, "ALREADY_REVEALED()", ErrAlreadyRevealed},
		{tokenABI, "UNAPPROVED_TOKEN()", ErrUnapprovedToken},
		{auctionABI, "INVALID_BID()", ErrInvalidBid},
		{auctionABI, "AUCTION_ENDED()", ErrAuctionEnded},
		{auctionABI, "AUCTION_ACTIVE()", ErrAuctionActive},
	}
	for _, tc := range cases {
		t.Run(tc.sig, func(t *testing.T) {
			err := UnpackRevert(tc.abi, selector(tc.sig))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUnpackRevertIncorrectPayment(t *testing.T) {
	tokenABI := mustABI(t, contract.TokenABI)
	price := new(big.Int).SetUint64(12_500_000_000_000_000)
	data := append(selector("INCORRECT_PAYMENT(uint256)"), common.LeftPadBytes(price.Bytes(), 32)...)

	err := UnpackRevert(tokenABI, data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncorrectPayment)

	var payment *IncorrectPaymentError
	require.True(t, errors.As(err, &payment))
	assert.Equal(t, 0, payment.Expected.Cmp(price))
	assert.Equal(t, "meow: INCORRECT_PAYMENT(12500000000000000)", err.Error())
}

func TestUnpackRevertReasonString(t *testing.T) {
	stringType, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: stringType}}.Pack("Ownable: caller is not the owner")
	require.NoError(t, err)
	data := append([]byte{0x08, 0xc3, 0x79, 0xa0}, packed...)

	err = UnpackRevert(mustABI(t, contract.AuctionMachineABI), data)
	var revert *RevertError
	require.True(t, errors.As(err, &revert))
	assert.Equal(t, "Ownable: caller is not the owner", revert.Reason)
}

func TestUnpackRevertUnknownSelector(t *testing.T) {
	err := UnpackRevert(mustABI(t, contract.TokenABI), []byte{0xde, 0xad, 0xbe, 0xef})
	var revert *RevertError
	require.True(t, errors.As(err, &revert))
	assert.Contains(t, err.Error(), "0xdeadbeef")

	assert.NoError(t, UnpackRevert(mustABI(t, contract.TokenABI), nil))
}

func TestDecodeRevertPassesThroughPlainErrors(t *testing.T) {
	tokenABI := mustABI(t, contract.TokenABI)
	plain := errors.New("connection refused")
	assert.Same(t, plain, DecodeRevert(tokenABI, plain))
	assert.NoError(t, DecodeRevert(tokenABI, nil))

	wrapped := fmt.Errorf("estimate: %w", &meowtest.RevertError{Data: selector("INVALID_PROOF()")})
	assert.ErrorIs(t, DecodeRevert(tokenABI, wrapped), ErrInvalidProof)
}
