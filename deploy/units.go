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
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Denominations used when parsing and quoting prices.
var (
	// Ether is 10^18 wei.
	Ether = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	// DefaultUnitPrice is 0.0125 ETH expressed in wei.
	DefaultUnitPrice = new(big.Int).Mul(big.NewInt(125), new(big.Int).Exp(big.NewInt(10), big.NewInt(14), nil))
)

// Errors for price validation.
var (
	ErrBadAmount     = errors.New("deploy: malformed ether amount")
	ErrNegativePrice = errors.New("deploy: price cannot be negative")
	ErrTooPrecise    = errors.New("deploy: ether amount has more than 18 decimals")
)

// ParseEther converts a decimal ether amount such as "0.0125" into wei.
func ParseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrBadAmount
	}
	if strings.HasPrefix(s, "-") {
		return nil, ErrNegativePrice
	}
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 18 {
		return nil, fmt.Errorf("%w: %s", ErrTooPrecise, s)
	}
	if whole == "" {
		whole = "0"
	}
	digits := whole + frac + strings.Repeat("0", 18-len(frac))
	wei, ok := new(big.Int).SetString(digits, 10)
	if !ok || strings.ContainsAny(digits, "+-") {
		return nil, fmt.Errorf("%w: %q", ErrBadAmount, s)
	}
	return wei, nil
}

// FormatEther renders wei as a decimal ether amount without trailing zeros.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	sign := ""
	abs := new(big.Int).Set(wei)
	if abs.Sign() < 0 {
		sign = "-"
		abs.Neg(abs)
	}
	whole, frac := new(big.Int).QuoRem(abs, Ether, new(big.Int))
	if frac.Sign() == 0 {
		return sign + whole.String()
	}
	digits := frac.String()
	fracText := strings.TrimRight(strings.Repeat("0", 18-len(digits))+digits, "0")
	return sign + whole.String() + "." + fracText
}

// QuoteMint returns what count mints cost at unitPrice.
func QuoteMint(unitPrice *big.Int, count uint64) (*big.Int, error) {
	if unitPrice.Sign() < 0 {
		return nil, ErrNegativePrice
	}
	return new(big.Int).Mul(unitPrice, new(big.Int).SetUint64(count)), nil
}
