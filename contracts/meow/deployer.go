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

// TokenArgs are the constructor arguments shared by Token and UnorderedToken.
type TokenArgs struct {
	Name            string
	Symbol          string
	BaseURI         string
	ContractURI     string
	JBXProjectID    *big.Int
	JBXDirectory    common.Address
	MaxSupply       *big.Int
	UnitPrice       *big.Int
	MintAllowance   *big.Int
	MintPeriodStart *big.Int
	MintPeriodEnd   *big.Int
}

// Values returns the arguments in constructor order.
func (a *TokenArgs) Values() []interface{} {
	return []interface{}{
		a.Name, a.Symbol, a.BaseURI, a.ContractURI,
		a.JBXProjectID, a.JBXDirectory,
		a.MaxSupply, a.UnitPrice, a.MintAllowance,
		a.MintPeriodStart, a.MintPeriodEnd,
	}
}

// GatewayTokenArgs are the constructor arguments of TraitsGatewayToken.
type GatewayTokenArgs struct {
	Name          string
	Symbol        string
	BaseURI       string
	ContractURI   string
	JBXProjectID  *big.Int
	JBXDirectory  common.Address
	MaxSupply     *big.Int
	UnitPrice     *big.Int
	MintAllowance *big.Int
	GatewayURI    string
	IPFSRoot      string
}

// Values returns the arguments in constructor order.
func (a *GatewayTokenArgs) Values() []interface{} {
	return []interface{}{
		a.Name, a.Symbol, a.BaseURI, a.ContractURI,
		a.JBXProjectID, a.JBXDirectory,
		a.MaxSupply, a.UnitPrice, a.MintAllowance,
		a.GatewayURI, a.IPFSRoot,
	}
}

// AuctionArgs configure an AuctionMachine.
type AuctionArgs struct {
	MaxAuctions     *big.Int
	AuctionDuration *big.Int // seconds
	JBXProjectID    *big.Int
	JBXDirectory    common.Address
	Token           common.Address
}

// Deployer wraps the factory contract. Every create* call emits a
// Deployment event carrying the new contract's address.
type Deployer struct {
	abi          abi.ABI
	address      common.Address
	contract     *bind.BoundContract
	transactOpts *bind.TransactOpts
}

// NewDeployer connects to an already-deployed Deployer.
func NewDeployer(opts *bind.TransactOpts, addr common.Address, backend bind.ContractBackend) (*Deployer, error) {
	parsed, bc, err := bound(contract.DeployerABI, addr, backend)
	if err != nil {
		return nil, err
	}
	return &Deployer{abi: parsed, address: addr, contract: bc, transactOpts: opts}, nil
}

// Address returns the contract address.
func (d *Deployer) Address() common.Address { return d.address }

// CreateToken deploys a Token owned by owner.
func (d *Deployer) CreateToken(args *TokenArgs, owner common.Address) (*types.Transaction, error) {
	return d.transact("createToken", append(args.Values(), owner)...)
}

// CreateUnorderedToken deploys an UnorderedToken (random token ids,
// Merkle allowlist minting) owned by owner.
func (d *Deployer) CreateUnorderedToken(args *TokenArgs, owner common.Address) (*types.Transaction, error) {
	return d.transact("createUnorderedToken", append(args.Values(), owner)...)
}

// CreateTraitsGatewayToken deploys a TraitsGatewayToken owned by owner.
func (d *Deployer) CreateTraitsGatewayToken(args *GatewayTokenArgs, owner common.Address) (*types.Transaction, error) {
	return d.transact("createTraitsGatewayToken", append(args.Values(), owner)...)
}

// CreateAuctionMachine deploys an AuctionMachine selling args.Token and
// transfers its ownership to owner.
func (d *Deployer) CreateAuctionMachine(args *AuctionArgs, owner common.Address) (*types.Transaction, error) {
	return d.transact("createAuctionMachine",
		args.MaxAuctions, args.AuctionDuration, args.JBXProjectID, args.JBXDirectory, args.Token, owner)
}

// ParseDeployment returns the address announced by the first Deployment
// event this factory emitted in receipt.
func (d *Deployer) ParseDeployment(receipt *types.Receipt) (common.Address, error) {
	for _, l := range receipt.Logs {
		if l == nil || l.Address != d.address || len(l.Topics) == 0 || l.Topics[0] != d.abi.Events["Deployment"].ID {
			continue
		}
		var ev struct {
			ContractAddress common.Address
		}
		if err := d.contract.UnpackLog(&ev, "Deployment", *l); err != nil {
			return common.Address{}, err
		}
		return ev.ContractAddress, nil
	}
	return common.Address{}, ErrNoDeployment
}

func (d *Deployer) transact(method string, args ...interface{}) (*types.Transaction, error) {
	tx, err := d.contract.Transact(d.transactOpts, method, args...)
	if err != nil {
		return nil, DecodeRevert(d.abi, err)
	}
	return tx, nil
}
