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
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"

	"github.com/meowsdao/meowkit/artifact"
	"github.com/meowsdao/meowkit/contracts/juicebox"
	"github.com/meowsdao/meowkit/contracts/meow"
	"github.com/meowsdao/meowkit/merkle"
)

// Options wire a Service to already deployed infrastructure. Zero
// addresses leave the matching operations unavailable.
type Options struct {
	Network   string
	Deployer  common.Address
	Directory common.Address
	Ledger    *Ledger
}

// Service orchestrates contract deployments and the follow-up admin calls:
//  1. Validate parameters and preflight the Juicebox terminal
//  2. Deploy directly from an artifact or through the Deployer factory
//  3. Wait for the receipt and extract the new address
//  4. Record the deployment in the ledger
//  5. Publish allowlist roots and mint against deployed tokens
type Service struct {
	backend   meow.Backend
	opts      *bind.TransactOpts
	network   string
	deployer  *meow.Deployer
	directory *juicebox.Directory
	ledger    *Ledger

	mu     sync.RWMutex
	tokens map[common.Address]*meow.Token // bound token cache
}

// NewService creates a deployment service signing with opts.
func NewService(backend meow.Backend, opts *bind.TransactOpts, o Options) (*Service, error) {
	s := &Service{
		backend: backend,
		opts:    opts,
		network: o.Network,
		ledger:  o.Ledger,
		tokens:  make(map[common.Address]*meow.Token),
	}
	if o.Deployer != (common.Address{}) {
		d, err := meow.NewDeployer(opts, o.Deployer, backend)
		if err != nil {
			return nil, fmt.Errorf("deploy service: %v", err)
		}
		s.deployer = d
	}
	if o.Directory != (common.Address{}) {
		d, err := juicebox.NewDirectory(o.Directory, backend)
		if err != nil {
			return nil, fmt.Errorf("deploy service: %v", err)
		}
		s.directory = d
	}
	return s, nil
}

// Sender returns the account transactions are signed by.
func (s *Service) Sender() common.Address { return s.opts.From }

// ──────────────────────────────────────────────
//  Deployments
// ──────────────────────────────────────────────

// DeployToken deploys a token contract straight from its compiled artifact.
func (s *Service) DeployToken(ctx context.Context, art *artifact.Artifact, p *TokenParams) (*Record, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	args := p.TokenArgs().Values()
	if p.Kind == KindTraitsGatewayToken {
		args = p.GatewayArgs().Values()
	}
	addr, receipt, err := art.Deploy(ctx, s.opts, s.backend, args...)
	if err != nil {
		return nil, fmt.Errorf("deploy service: %s deployment failed: %w", art.ContractName, err)
	}
	rec := s.record(p.Kind, addr, receipt, p.summary())
	return rec, s.commit(rec)
}

// CreateToken deploys a token of p.Kind through the Deployer factory and
// hands ownership to owner.
func (s *Service) CreateToken(ctx context.Context, p *TokenParams, owner common.Address) (*Record, error) {
	if s.deployer == nil {
		return nil, ErrNoDeployer
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var (
		tx  *types.Transaction
		err error
	)
	switch p.Kind {
	case KindToken:
		tx, err = s.deployer.CreateToken(p.TokenArgs(), owner)
	case KindUnorderedToken:
		tx, err = s.deployer.CreateUnorderedToken(p.TokenArgs(), owner)
	case KindTraitsGatewayToken:
		tx, err = s.deployer.CreateTraitsGatewayToken(p.GatewayArgs(), owner)
	default:
		return nil, fmt.Errorf("%w: %s", ErrWrongKind, p.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("deploy service: create %s tx failed: %w", p.Kind, err)
	}
	return s.fromFactory(ctx, p.Kind, tx, p.summary())
}

// CreateUnorderedToken is CreateToken for an UnorderedToken.
func (s *Service) CreateUnorderedToken(ctx context.Context, p *TokenParams, owner common.Address) (*Record, error) {
	unordered := *p
	unordered.Kind = KindUnorderedToken
	return s.CreateToken(ctx, &unordered, owner)
}

// CreateAuctionMachine deploys an AuctionMachine through the factory.
func (s *Service) CreateAuctionMachine(ctx context.Context, p *AuctionParams, owner common.Address) (*Record, error) {
	if s.deployer == nil {
		return nil, ErrNoDeployer
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	tx, err := s.deployer.CreateAuctionMachine(p.Args(), owner)
	if err != nil {
		return nil, fmt.Errorf("deploy service: create auction tx failed: %w", err)
	}
	return s.fromFactory(ctx, KindAuctionMachine, tx, map[string]string{
		"token":       p.Token.Hex(),
		"maxAuctions": fmt.Sprint(p.MaxAuctions),
		"duration":    p.Duration.String(),
	})
}

func (s *Service) fromFactory(ctx context.Context, kind Kind, tx *types.Transaction, params map[string]string) (*Record, error) {
	receipt, err := meow.WaitMined(ctx, s.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("deploy service: %s: %w", kind, err)
	}
	addr, err := s.deployer.ParseDeployment(receipt)
	if err != nil {
		return nil, fmt.Errorf("deploy service: %s: %w", kind, err)
	}
	rec := s.record(kind, addr, receipt, params)
	factory := s.deployer.Address()
	rec.Factory = &factory
	return rec, s.commit(rec)
}

func (s *Service) record(kind Kind, addr common.Address, receipt *types.Receipt, params map[string]string) *Record {
	rec := &Record{
		Kind:    kind.String(),
		Address: addr,
		TxHash:  receipt.TxHash,
		Network: s.network,
		GasUsed: receipt.GasUsed,
		Time:    time.Now().UTC().Truncate(time.Second),
		Params:  params,
	}
	if receipt.BlockNumber != nil {
		rec.Block = receipt.BlockNumber.Uint64()
	}
	return rec
}

func (s *Service) commit(rec *Record) error {
	log.Info("Contract deployed", "kind", rec.Kind, "address", rec.Address.Hex(), "tx", rec.TxHash.Hex(), "gas", rec.GasUsed)
	if s.ledger == nil {
		return nil
	}
	if err := s.ledger.Append(*rec); err != nil {
		return fmt.Errorf("deploy service: failed to record deployment: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────
//  Juicebox
// ──────────────────────────────────────────────

// CheckTerminal returns the project's primary ETH terminal. Mints of a
// project without one revert with PAYMENT_FAILURE().
func (s *Service) CheckTerminal(projectID *big.Int) (common.Address, error) {
	if s.directory == nil {
		return common.Address{}, ErrNoDirectory
	}
	terminal, ok, err := s.directory.ETHTerminal(projectID)
	if err != nil {
		return common.Address{}, fmt.Errorf("deploy service: directory read failed: %w", err)
	}
	if !ok {
		return terminal, fmt.Errorf("%w: project %s", ErrNoTerminal, projectID)
	}
	log.Debug("Juicebox terminal found", "project", projectID, "terminal", terminal.Hex())
	return terminal, nil
}

// ──────────────────────────────────────────────
//  Tokens
// ──────────────────────────────────────────────

// Token returns a binding for the token at addr, reusing earlier ones.
func (s *Service) Token(addr common.Address) (*meow.Token, error) {
	s.mu.RLock()
	if t, ok := s.tokens[addr]; ok {
		s.mu.RUnlock()
		return t, nil
	}
	s.mu.RUnlock()

	t, err := meow.NewToken(s.opts, addr, s.backend)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.tokens[addr] = t
	s.mu.Unlock()
	return t, nil
}

// PublishMerkleRoot stores the allowlist root on the token.
func (s *Service) PublishMerkleRoot(ctx context.Context, token common.Address, tree *merkle.Tree) (*types.Receipt, error) {
	t, err := s.Token(token)
	if err != nil {
		return nil, err
	}
	tx, err := t.SetMerkleRoot(tree.Root)
	if err != nil {
		return nil, fmt.Errorf("deploy service: setMerkleRoot tx failed: %w", err)
	}
	receipt, err := meow.WaitMined(ctx, s.backend, tx)
	if err != nil {
		return nil, err
	}
	log.Info("Merkle root published", "token", token.Hex(), "root", tree.Root.Hex(), "claims", len(tree.Claims))
	return receipt, nil
}

// Mint buys one token at the current unit price and returns its id.
func (s *Service) Mint(ctx context.Context, token common.Address) (*big.Int, error) {
	t, err := s.Token(token)
	if err != nil {
		return nil, err
	}
	price, err := t.UnitPrice()
	if err != nil {
		return nil, fmt.Errorf("deploy service: unitPrice read failed: %w", err)
	}
	tx, err := t.Mint(price)
	if err != nil {
		return nil, fmt.Errorf("deploy service: mint tx failed: %w", err)
	}
	return s.minted(ctx, t, tx)
}

// MintWithToken mints one token paid in an accepted ERC20. The token must
// already be approved for the unit price; unapproved payment tokens revert
// with UNAPPROVED_TOKEN().
func (s *Service) MintWithToken(ctx context.Context, token, paymentToken common.Address) (*big.Int, error) {
	t, err := s.Token(token)
	if err != nil {
		return nil, err
	}
	tx, err := t.MintWithToken(paymentToken, nil)
	if err != nil {
		return nil, fmt.Errorf("deploy service: mint tx failed: %w", err)
	}
	return s.minted(ctx, t, tx)
}

// ClaimMint mints one token against the sender's allowlist claim. The
// claim is checked against the on-chain root before anything is sent.
func (s *Service) ClaimMint(ctx context.Context, token common.Address, tree *merkle.Tree) (*big.Int, error) {
	claim, err := tree.Claim(s.opts.From)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoClaim, err)
	}
	t, err := s.Token(token)
	if err != nil {
		return nil, err
	}
	root, err := t.MerkleRoot()
	if err != nil {
		return nil, fmt.Errorf("deploy service: merkleRoot read failed: %w", err)
	}
	if common.Hash(root) != tree.Root {
		return nil, fmt.Errorf("%w: chain %x, snapshot %s", ErrRootMismatch, root, tree.Root.Hex())
	}
	if !merkle.Verify(tree.Root, s.opts.From, claim) {
		return nil, ErrInvalidProof
	}
	tx, err := t.MerkleMint(new(big.Int).SetUint64(claim.Index), new(big.Int).SetUint64(claim.Amount), claim.ProofBytes())
	if err != nil {
		return nil, fmt.Errorf("deploy service: merkleMint tx failed: %w", err)
	}
	return s.minted(ctx, t, tx)
}

func (s *Service) minted(ctx context.Context, t *meow.Token, tx *types.Transaction) (*big.Int, error) {
	receipt, err := meow.WaitMined(ctx, s.backend, tx)
	if err != nil {
		return nil, err
	}
	for _, ev := range t.ParseTransfers(receipt) {
		if ev.From == (common.Address{}) {
			log.Info("Token minted", "token", t.Address().Hex(), "id", ev.TokenID, "to", ev.To.Hex())
			return ev.TokenID, nil
		}
	}
	return nil, ErrNothingMinted
}
