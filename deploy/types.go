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

// Package deploy drives deployments of the MEOWs DAO contracts: direct
// artifact deployments, factory deployments through the Deployer, the
// Juicebox terminal preflight and allowlist publication. Every deployment
// is recorded in a YAML ledger.
package deploy

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/meowsdao/meowkit/contracts/meow"
)

// Kind names a deployable contract.
type Kind uint8

const (
	KindToken              Kind = iota // sequential ids, public mint
	KindUnorderedToken                 // random ids, Merkle allowlist mint
	KindTraitsGatewayToken             // metadata served from an IPFS gateway
	KindAuctionMachine                 // English auction over a token
)

var kindNames = map[Kind]string{
	KindToken:              "Token",
	KindUnorderedToken:     "UnorderedToken",
	KindTraitsGatewayToken: "TraitsGatewayToken",
	KindAuctionMachine:     "AuctionMachine",
}

// String returns the contract name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind is the inverse of Kind.String.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Errors for parameter validation.
var (
	ErrUnknownKind   = errors.New("deploy: unknown contract kind")
	ErrMissingName   = errors.New("deploy: token name and symbol are required")
	ErrZeroSupply    = errors.New("deploy: max supply must be positive")
	ErrMintPeriod    = errors.New("deploy: mint period ends before it starts")
	ErrMissingIPFS   = errors.New("deploy: gateway tokens need a gateway URI and IPFS root")
	ErrZeroDuration  = errors.New("deploy: auction duration must be positive")
	ErrMissingToken  = errors.New("deploy: auction needs a token address")
	ErrNoDirectory   = errors.New("deploy: no JBDirectory configured")
	ErrNoDeployer    = errors.New("deploy: no Deployer configured")
	ErrNoTerminal    = errors.New("deploy: project has no registered ETH terminal")
	ErrNoClaim       = errors.New("deploy: account is not on the allowlist")
	ErrInvalidProof  = errors.New("deploy: claim does not verify against the on-chain root")
	ErrRootMismatch  = errors.New("deploy: on-chain merkle root differs from snapshot")
	ErrWrongKind     = errors.New("deploy: kind cannot be created this way")
	ErrNothingMinted = errors.New("deploy: mint emitted no Transfer")
)

// TokenParams describe one token deployment.
type TokenParams struct {
	Kind          Kind
	Name          string
	Symbol        string
	BaseURI       string
	ContractURI   string
	ProjectID     *big.Int
	Directory     common.Address
	MaxSupply     *big.Int
	UnitPrice     *big.Int
	MintAllowance *big.Int

	// Zero times leave the mint period open-ended.
	MintStart time.Time
	MintEnd   time.Time

	// TraitsGatewayToken only.
	GatewayURI string
	IPFSRoot   string
}

// Validate checks the parameters before anything is sent.
func (p *TokenParams) Validate() error {
	if p.Name == "" || p.Symbol == "" {
		return ErrMissingName
	}
	if p.MaxSupply == nil || p.MaxSupply.Sign() <= 0 {
		return ErrZeroSupply
	}
	if p.UnitPrice != nil && p.UnitPrice.Sign() < 0 {
		return ErrNegativePrice
	}
	if !p.MintStart.IsZero() && !p.MintEnd.IsZero() && p.MintEnd.Before(p.MintStart) {
		return ErrMintPeriod
	}
	if p.Kind == KindTraitsGatewayToken && (p.GatewayURI == "" || p.IPFSRoot == "") {
		return ErrMissingIPFS
	}
	if p.Kind == KindAuctionMachine {
		return fmt.Errorf("%w: %s", ErrWrongKind, p.Kind)
	}
	return nil
}

func unixOrZero(t time.Time) *big.Int {
	if t.IsZero() {
		return new(big.Int)
	}
	return big.NewInt(t.Unix())
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// TokenArgs converts the parameters into Token constructor arguments.
func (p *TokenParams) TokenArgs() *meow.TokenArgs {
	return &meow.TokenArgs{
		Name:            p.Name,
		Symbol:          p.Symbol,
		BaseURI:         p.BaseURI,
		ContractURI:     p.ContractURI,
		JBXProjectID:    orZero(p.ProjectID),
		JBXDirectory:    p.Directory,
		MaxSupply:       orZero(p.MaxSupply),
		UnitPrice:       orZero(p.UnitPrice),
		MintAllowance:   orZero(p.MintAllowance),
		MintPeriodStart: unixOrZero(p.MintStart),
		MintPeriodEnd:   unixOrZero(p.MintEnd),
	}
}

// GatewayArgs converts the parameters into TraitsGatewayToken constructor
// arguments.
func (p *TokenParams) GatewayArgs() *meow.GatewayTokenArgs {
	return &meow.GatewayTokenArgs{
		Name:          p.Name,
		Symbol:        p.Symbol,
		BaseURI:       p.BaseURI,
		ContractURI:   p.ContractURI,
		JBXProjectID:  orZero(p.ProjectID),
		JBXDirectory:  p.Directory,
		MaxSupply:     orZero(p.MaxSupply),
		UnitPrice:     orZero(p.UnitPrice),
		MintAllowance: orZero(p.MintAllowance),
		GatewayURI:    p.GatewayURI,
		IPFSRoot:      p.IPFSRoot,
	}
}

func (p *TokenParams) summary() map[string]string {
	return map[string]string{
		"name":      p.Name,
		"symbol":    p.Symbol,
		"maxSupply": orZero(p.MaxSupply).String(),
		"unitPrice": FormatEther(orZero(p.UnitPrice)),
		"projectId": orZero(p.ProjectID).String(),
	}
}

// AuctionParams describe an AuctionMachine deployment.
type AuctionParams struct {
	MaxAuctions uint64
	Duration    time.Duration
	ProjectID   *big.Int
	Directory   common.Address
	Token       common.Address
}

// Validate checks the parameters before anything is sent.
func (p *AuctionParams) Validate() error {
	if p.Duration < time.Second {
		return ErrZeroDuration
	}
	if p.Token == (common.Address{}) {
		return ErrMissingToken
	}
	return nil
}

// Args converts the parameters into createAuctionMachine arguments.
func (p *AuctionParams) Args() *meow.AuctionArgs {
	return &meow.AuctionArgs{
		MaxAuctions:     new(big.Int).SetUint64(p.MaxAuctions),
		AuctionDuration: big.NewInt(int64(p.Duration / time.Second)),
		JBXProjectID:    orZero(p.ProjectID),
		JBXDirectory:    p.Directory,
		Token:           p.Token,
	}
}

// Record is one ledger entry.
type Record struct {
	Kind    string            `yaml:"kind"`
	Address common.Address    `yaml:"address"`
	TxHash  common.Hash       `yaml:"tx"`
	Network string            `yaml:"network,omitempty"`
	Block   uint64            `yaml:"block,omitempty"`
	GasUsed uint64            `yaml:"gasUsed"`
	Time    time.Time         `yaml:"time"`
	Factory *common.Address   `yaml:"factory,omitempty"`
	Params  map[string]string `yaml:"params,omitempty"`
}
