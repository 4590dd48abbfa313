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

package deploy

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEther(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1", "1000000000000000000"},
		{"0.0125", "12500000000000000"},
		{".5", "500000000000000000"},
		{"0.000000000000000001", "1"},
		{" 2.50 ", "2500000000000000000"},
	}
	for _, tt := range tests {
		wei, err := ParseEther(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, wei.String(), tt.in)
	}
	assert.Equal(t, 0, DefaultUnitPrice.Cmp(big.NewInt(12_500_000_000_000_000)))
}

func TestParseEtherErrors(t *testing.T) {
	_, err := ParseEther("")
	assert.ErrorIs(t, err, ErrBadAmount)
	_, err = ParseEther("-1")
	assert.ErrorIs(t, err, ErrNegativePrice)
	_, err = ParseEther("1.2.3")
	assert.ErrorIs(t, err, ErrBadAmount)
	_, err = ParseEther("1.+5")
	assert.ErrorIs(t, err, ErrBadAmount)
	_, err = ParseEther("0.0000000000000000001")
	assert.ErrorIs(t, err, ErrTooPrecise)
}

func TestFormatEther(t *testing.T) {
	assert.Equal(t, "0.0125", FormatEther(DefaultUnitPrice))
	assert.Equal(t, "3", FormatEther(new(big.Int).Mul(big.NewInt(3), Ether)))
	assert.Equal(t, "0.000000000000000001", FormatEther(big.NewInt(1)))
	assert.Equal(t, "-1.5", FormatEther(big.NewInt(-1_500_000_000_000_000_000)))
	assert.Equal(t, "0", FormatEther(nil))
}

func TestQuoteMint(t *testing.T) {
	total, err := QuoteMint(DefaultUnitPrice, 4)
	require.NoError(t, err)
	assert.Equal(t, "0.05", FormatEther(total))

	_, err = QuoteMint(big.NewInt(-1), 1)
	assert.ErrorIs(t, err, ErrNegativePrice)
}
