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
	"math/big"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meowsdao/meowkit/artifact"
	"github.com/meowsdao/meowkit/contracts/juicebox"
	"github.com/meowsdao/meowkit/contracts/meow/contract"
	"github.com/meowsdao/meowkit/contracts/meow/meowtest"
	"github.com/meowsdao/meowkit/merkle"
)

var (
	factoryAddr   = common.HexToAddress("0x000000000000000000000000000000000000fac7")
	directoryAddr = common.HexToAddress("0x000000000000000000000000000000000000d1d1")
	tokenAddr     = common.HexToAddress("0x00000000000000000000000000000000000c0ffe")
	createdAddr   = common.HexToAddress("0x4444444444444444444444444444444444444444")
	terminalAddr  = common.HexToAddress("0x7777777777777777777777777777777777777777")
)

func mustABI(t *testing.T, def string) abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(def))
	require.NoError(t, err)
	return parsed
}

type fixture struct {
	svc     *Service
	backend *meowtest.Backend
	ledger  *Ledger
	sender  common.Address

	// answers keyed by method name
	answers map[string][]interface{}
	// token id carried by minted Transfer logs
	mintID int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokenABI := mustABI(t, contract.TokenABI)
	deployerABI := mustABI(t, contract.DeployerABI)
	directoryABI := mustABI(t, juicebox.DirectoryABI)

	key, opts, err := meowtest.NewTransactor()
	require.NoError(t, err)
	f := &fixture{
		ledger:  OpenLedger(filepath.Join(t.TempDir(), "deployments.yaml")),
		sender:  crypto.PubkeyToAddress(key.PublicKey),
		answers: make(map[string][]interface{}),
		mintID:  7,
	}
	f.backend = &meowtest.Backend{
		Call: func(msg ethereum.CallMsg) ([]byte, error) {
			for _, parsed := range []abi.ABI{tokenABI, directoryABI} {
				method, err := parsed.MethodById(msg.Data[:4])
				if err != nil {
					continue
				}
				return method.Outputs.Pack(f.answers[method.Name]...)
			}
			t.Fatalf("unexpected call %x", msg.Data[:4])
			return nil, nil
		},
		Receipt: func(tx *types.Transaction) *types.Receipt {
			if tx.To() == nil {
				return nil
			}
			switch *tx.To() {
			case factoryAddr:
				data, err := deployerABI.Events["Deployment"].Inputs.Pack(createdAddr)
				require.NoError(t, err)
				return &types.Receipt{
					Status:      types.ReceiptStatusSuccessful,
					BlockNumber: big.NewInt(12),
					Logs:        []*types.Log{{Address: factoryAddr, Topics: []common.Hash{deployerABI.Events["Deployment"].ID}, Data: data}},
				}
			case tokenAddr:
				method, err := tokenABI.MethodById(tx.Data()[:4])
				require.NoError(t, err)
				switch method.Sig {
				case "mint()", "mint(address)", "merkleMint(uint256,uint256,bytes32[])":
				default:
					return nil
				}
				return &types.Receipt{Status: types.ReceiptStatusSuccessful, Logs: []*types.Log{{
					Address: tokenAddr,
					Topics: []common.Hash{
						tokenABI.Events["Transfer"].ID,
						{},
						common.BytesToHash(f.sender.Bytes()),
						common.BigToHash(big.NewInt(f.mintID)),
					},
				}}}
			}
			return nil
		},
	}
	f.svc, err = NewService(f.backend, opts, Options{
		Network:   "goerli",
		Deployer:  factoryAddr,
		Directory: directoryAddr,
		Ledger:    f.ledger,
	})
	require.NoError(t, err)
	return f
}

func sampleParams() *TokenParams {
	return &TokenParams{
		Kind:          KindToken,
		Name:          "Meows",
		Symbol:        "MEOW",
		BaseURI:       "ipfs://base/",
		ProjectID:     big.NewInt(99),
		Directory:     juicebox.GoerliDirectory,
		MaxSupply:     big.NewInt(100),
		UnitPrice:     new(big.Int).Set(DefaultUnitPrice),
		MintAllowance: big.NewInt(5),
		MintStart:     time.Unix(1_700_000_000, 0),
		MintEnd:       time.Unix(1_700_086_400, 0),
	}
}

func TestCreateUnorderedTokenRecordsDeployment(t *testing.T) {
	f := newFixture(t)
	owner := common.HexToAddress("0x3333333333333333333333333333333333333333")

	rec, err := f.svc.CreateUnorderedToken(context.Background(), sampleParams(), owner)
	require.NoError(t, err)
	assert.Equal(t, createdAddr, rec.Address)
	assert.Equal(t, "UnorderedToken", rec.Kind)
	assert.Equal(t, uint64(12), rec.Block)
	require.NotNil(t, rec.Factory)
	assert.Equal(t, factoryAddr, *rec.Factory)

	deployerABI := mustABI(t, contract.DeployerABI)
	method, err := deployerABI.MethodById(f.backend.Last().Data()[:4])
	require.NoError(t, err)
	assert.Equal(t, "createUnorderedToken", method.Name)
	args, err := method.Inputs.Unpack(f.backend.Last().Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000), args[9].(*big.Int).Int64())
	assert.Equal(t, owner, args[11])

	got, err := f.ledger.Latest(KindUnorderedToken, "goerli")
	require.NoError(t, err)
	assert.Equal(t, createdAddr, got)
}

func TestCreateAuctionMachine(t *testing.T) {
	f := newFixture(t)
	rec, err := f.svc.CreateAuctionMachine(context.Background(), &AuctionParams{
		MaxAuctions: 10,
		Duration:    time.Hour,
		ProjectID:   big.NewInt(99),
		Directory:   juicebox.GoerliDirectory,
		Token:       tokenAddr,
	}, f.sender)
	require.NoError(t, err)
	assert.Equal(t, "AuctionMachine", rec.Kind)

	deployerABI := mustABI(t, contract.DeployerABI)
	method, err := deployerABI.MethodById(f.backend.Last().Data()[:4])
	require.NoError(t, err)
	args, err := method.Inputs.Unpack(f.backend.Last().Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, int64(3600), args[1].(*big.Int).Int64())
	assert.Equal(t, tokenAddr, args[4])

	_, err = f.svc.CreateAuctionMachine(context.Background(), &AuctionParams{Token: tokenAddr}, f.sender)
	assert.ErrorIs(t, err, ErrZeroDuration)
}

func TestCreateTokenValidatesAndNeedsFactory(t *testing.T) {
	f := newFixture(t)
	bad := sampleParams()
	bad.MaxSupply = big.NewInt(0)
	_, err := f.svc.CreateToken(context.Background(), bad, f.sender)
	assert.ErrorIs(t, err, ErrZeroSupply)
	assert.Empty(t, f.backend.Sent())

	_, opts, err := meowtest.NewTransactor()
	require.NoError(t, err)
	bare, err := NewService(f.backend, opts, Options{})
	require.NoError(t, err)
	_, err = bare.CreateToken(context.Background(), sampleParams(), f.sender)
	assert.ErrorIs(t, err, ErrNoDeployer)
	_, err = bare.CheckTerminal(big.NewInt(1))
	assert.ErrorIs(t, err, ErrNoDirectory)
}

func TestCheckTerminal(t *testing.T) {
	f := newFixture(t)
	f.answers["primaryTerminalOf"] = []interface{}{terminalAddr}
	f.answers["isTerminalOf"] = []interface{}{true}

	got, err := f.svc.CheckTerminal(big.NewInt(99))
	require.NoError(t, err)
	assert.Equal(t, terminalAddr, got)

	f.answers["isTerminalOf"] = []interface{}{false}
	_, err = f.svc.CheckTerminal(big.NewInt(99))
	assert.ErrorIs(t, err, ErrNoTerminal)

	f.answers["primaryTerminalOf"] = []interface{}{common.Address{}}
	_, err = f.svc.CheckTerminal(big.NewInt(99))
	assert.ErrorIs(t, err, ErrNoTerminal)
}

func TestPublishRootAndClaimMint(t *testing.T) {
	f := newFixture(t)
	snap := merkle.Snapshot{
		f.sender: 2,
		common.HexToAddress("0x1111111111111111111111111111111111111111"): 1,
		common.HexToAddress("0x2222222222222222222222222222222222222222"): 3,
	}
	tree, err := merkle.Build(snap)
	require.NoError(t, err)

	_, err = f.svc.PublishMerkleRoot(context.Background(), tokenAddr, tree)
	require.NoError(t, err)
	tokenABI := mustABI(t, contract.TokenABI)
	method, err := tokenABI.MethodById(f.backend.Last().Data()[:4])
	require.NoError(t, err)
	assert.Equal(t, "setMerkleRoot", method.Name)

	f.answers["merkleRoot"] = []interface{}{[32]byte{1}}
	_, err = f.svc.ClaimMint(context.Background(), tokenAddr, tree)
	assert.ErrorIs(t, err, ErrRootMismatch)

	f.answers["merkleRoot"] = []interface{}{[32]byte(tree.Root)}
	id, err := f.svc.ClaimMint(context.Background(), tokenAddr, tree)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id.Int64())

	method, err = tokenABI.MethodById(f.backend.Last().Data()[:4])
	require.NoError(t, err)
	assert.Equal(t, "merkleMint", method.Name)
	args, err := method.Inputs.Unpack(f.backend.Last().Data()[4:])
	require.NoError(t, err)
	claim := tree.Claims[f.sender]
	assert.Equal(t, claim.Index, args[0].(*big.Int).Uint64())
	assert.Equal(t, uint64(2), args[1].(*big.Int).Uint64())
}

func TestClaimMintRequiresClaim(t *testing.T) {
	f := newFixture(t)
	tree, err := merkle.Build(merkle.Snapshot{common.HexToAddress("0x1111111111111111111111111111111111111111"): 1})
	require.NoError(t, err)
	_, err = f.svc.ClaimMint(context.Background(), tokenAddr, tree)
	assert.ErrorIs(t, err, ErrNoClaim)
}

func TestMintPaysUnitPrice(t *testing.T) {
	f := newFixture(t)
	f.answers["unitPrice"] = []interface{}{DefaultUnitPrice}

	id, err := f.svc.Mint(context.Background(), tokenAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id.Int64())
	assert.Equal(t, 0, f.backend.Last().Value().Cmp(DefaultUnitPrice))

	a, err := f.svc.Token(tokenAddr)
	require.NoError(t, err)
	b, err := f.svc.Token(tokenAddr)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestMintWithPaymentToken(t *testing.T) {
	f := newFixture(t)
	dai := common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")

	id, err := f.svc.MintWithToken(context.Background(), tokenAddr, dai)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id.Int64())

	tx := f.backend.Last()
	assert.Zero(t, tx.Value().Sign())
	tokenABI := mustABI(t, contract.TokenABI)
	method, err := tokenABI.MethodById(tx.Data()[:4])
	require.NoError(t, err)
	assert.Equal(t, "mint(address)", method.Sig)
}

// captureLogs records every log message for the duration of the test.
func captureLogs(t *testing.T) func() []string {
	t.Helper()
	var (
		mu   sync.Mutex
		msgs []string
	)
	prev := log.Root().GetHandler()
	log.Root().SetHandler(log.FuncHandler(func(r *log.Record) error {
		mu.Lock()
		defer mu.Unlock()
		msgs = append(msgs, r.Msg)
		return nil
	}))
	t.Cleanup(func() { log.Root().SetHandler(prev) })
	return func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), msgs...)
	}
}

func TestDeployTokenFromArtifact(t *testing.T) {
	f := newFixture(t)
	logs := captureLogs(t)
	art, err := artifact.Parse([]byte(`{
		"contractName": "Token",
		"abi": [{"type": "constructor", "stateMutability": "nonpayable", "inputs": [
			{"name": "_name", "type": "string"},
			{"name": "_symbol", "type": "string"},
			{"name": "_baseUri", "type": "string"},
			{"name": "_contractUri", "type": "string"},
			{"name": "_jbxProjectId", "type": "uint256"},
			{"name": "_jbxDirectory", "type": "address"},
			{"name": "_maxSupply", "type": "uint256"},
			{"name": "_unitPrice", "type": "uint256"},
			{"name": "_mintAllowance", "type": "uint256"},
			{"name": "_mintPeriodStart", "type": "uint256"},
			{"name": "_mintPeriodEnd", "type": "uint256"}
		]}],
		"bytecode": "0x6080604052"
	}`))
	require.NoError(t, err)

	rec, err := f.svc.DeployToken(context.Background(), art, sampleParams())
	require.NoError(t, err)
	assert.Equal(t, crypto.CreateAddress(f.sender, 0), rec.Address)
	assert.Nil(t, rec.Factory)
	assert.Nil(t, f.backend.Last().To())

	records, err := f.ledger.Records()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Token", records[0].Kind)
	assert.Equal(t, "0.0125", records[0].Params["unitPrice"])

	var deployed int
	for _, msg := range logs() {
		if msg == "Contract deployed" {
			deployed++
		}
	}
	assert.Equal(t, 1, deployed)
}
