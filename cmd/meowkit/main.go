// Copyright 2018 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

// meowkit drives the MEOWs DAO contracts from the command line.
//
// It deploys tokens and auction machines, loads artwork into on-chain
// storage, uploads collections to IPFS and manages Merkle allowlists.
//
// Usage:
//
//	meowkit [--config meowkit.yaml] [--rpc <endpoint>] <command> [flags]
package main

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/cmd/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/meowsdao/meowkit/config"
	"github.com/meowsdao/meowkit/deploy"
)

var (
	app = cli.NewApp()

	// Global flags
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "Deployment configuration file (YAML)",
	}
	rpcFlag = cli.StringFlag{
		Name:  "rpc",
		Usage: "Ethereum JSON-RPC endpoint, overrides the config file",
	}
	envFlag = cli.StringFlag{
		Name:  "env",
		Usage: "Dotenv file holding NFT_STORAGE_API_KEY, ETHERSCAN_KEY and PRIVATE_KEY",
		Value: ".env",
	}
	keystoreFlag = cli.StringFlag{
		Name:  "keystore",
		Usage: "Encrypted JSON key used when PRIVATE_KEY is not set",
	}
	passwordFlag = cli.StringFlag{
		Name:  "password",
		Usage: "Password of the keystore file",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: 3,
	}

	// Shared command flags
	tokenFlag = cli.StringFlag{
		Name:  "token",
		Usage: "Token contract address (defaults to the latest ledger entry)",
	}
	treeFlag = cli.StringFlag{
		Name:  "tree",
		Usage: "Merkle tree JSON written by 'snapshot build'",
		Value: "merkle.json",
	}
	ownerFlag = cli.StringFlag{
		Name:  "owner",
		Usage: "Owner of the created contract (defaults to the signer)",
	}
	projectFlag = cli.Uint64Flag{
		Name:  "project",
		Usage: "Juicebox project id",
	}
)

func init() {
	app.Name = "meowkit"
	app.Usage = "MEOWs DAO NFT deployment and asset tooling"
	app.Version = "0.3.0"
	app.Flags = []cli.Flag{
		configFlag,
		rpcFlag,
		envFlag,
		keystoreFlag,
		passwordFlag,
		verbosityFlag,
	}
	app.Before = func(ctx *cli.Context) error {
		lvl := log.Lvl(ctx.GlobalInt(verbosityFlag.Name))
		log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(os.Stderr, log.TerminalFormat(true))))
		return nil
	}
	app.Commands = []cli.Command{
		deployTokenCommand,
		createTokenCommand,
		createAuctionCommand,
		checkTerminalCommand,
		mintCommand,
		infoCommand,
		bidCommand,
		settleCommand,
		auctionInfoCommand,
		recoverTokenCommand,
		tokenCommand,
		loadAssetCommand,
		loadLayersCommand,
		listAssetsCommand,
		renameAssetsCommand,
		uploadCommand,
		snapshotCommand,
		setMerkleRootCommand,
		claimCommand,
		fetchABICommand,
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// toolEnv is everything a chain-facing command needs.
type toolEnv struct {
	cfg     *config.Config
	secrets *config.Secrets
	client  *ethclient.Client
	chainID *big.Int
	key     *ecdsa.PrivateKey
	opts    *bind.TransactOpts
	ledger  *deploy.Ledger
}

func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func loadConfig(ctx *cli.Context) *config.Config {
	cfg := config.Default()
	if path := ctx.GlobalString(configFlag.Name); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			utils.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if ctx.GlobalIsSet(rpcFlag.Name) {
		cfg.RPC = ctx.GlobalString(rpcFlag.Name)
	}
	return cfg
}

func loadSecrets(ctx *cli.Context) *config.Secrets {
	secrets, err := config.LoadSecrets(ctx.GlobalString(envFlag.Name))
	if err != nil {
		utils.Fatalf("Failed to load environment: %v", err)
	}
	return secrets
}

// connect dials the node and, when signing is set, unlocks the signer.
func connect(ctx *cli.Context, cctx context.Context, signing bool) *toolEnv {
	env := &toolEnv{cfg: loadConfig(ctx), secrets: loadSecrets(ctx)}
	env.ledger = deploy.OpenLedger(env.cfg.Ledger)

	client, err := ethclient.DialContext(cctx, env.cfg.RPC)
	if err != nil {
		utils.Fatalf("Failed to connect to %s: %v", env.cfg.RPC, err)
	}
	env.client = client
	if env.chainID, err = client.ChainID(cctx); err != nil {
		utils.Fatalf("Failed to read chain id: %v", err)
	}
	log.Debug("Connected", "rpc", env.cfg.RPC, "chain", env.chainID, "network", env.cfg.Network)

	if !signing {
		env.opts = &bind.TransactOpts{Context: cctx}
		return env
	}
	key, err := env.secrets.SigningKey(ctx.GlobalString(keystoreFlag.Name), ctx.GlobalString(passwordFlag.Name))
	if err != nil {
		utils.Fatalf("Failed to unlock signer: %v", err)
	}
	env.key = key
	if env.opts, err = bind.NewKeyedTransactorWithChainID(key, env.chainID); err != nil {
		utils.Fatalf("Failed to create transactor: %v", err)
	}
	env.opts.Context = cctx
	log.Info("Signer unlocked", "address", crypto.PubkeyToAddress(key.PublicKey).Hex())
	return env
}

func (env *toolEnv) service() *deploy.Service {
	factory, err := config.ParseAddress(env.cfg.Deployer)
	if err != nil {
		utils.Fatalf("Invalid deployer address: %v", err)
	}
	directory, err := env.cfg.DirectoryAddress(env.chainID)
	if err != nil {
		log.Warn("No JBDirectory configured", "chain", env.chainID)
	}
	svc, err := deploy.NewService(env.client, env.opts, deploy.Options{
		Network:   env.cfg.Network,
		Deployer:  factory,
		Directory: directory,
		Ledger:    env.ledger,
	})
	if err != nil {
		utils.Fatalf("Failed to create deploy service: %v", err)
	}
	return svc
}

// address resolves an address flag, falling back to the newest ledger entry
// of the given kinds.
func (env *toolEnv) address(ctx *cli.Context, flag string, kinds ...deploy.Kind) common.Address {
	if v := ctx.String(flag); v != "" {
		addr, err := config.ParseAddress(v)
		if err != nil {
			utils.Fatalf("Invalid --%s: %v", flag, err)
		}
		return addr
	}
	for _, k := range kinds {
		if addr, err := env.ledger.Latest(k, env.cfg.Network); err == nil {
			log.Info("Using recorded deployment", "kind", k, "address", addr.Hex())
			return addr
		}
	}
	utils.Fatalf("--%s is required (nothing recorded in %s)", flag, env.ledger.Path())
	return common.Address{}
}

func (env *toolEnv) owner(ctx *cli.Context) common.Address {
	if v := ctx.String(ownerFlag.Name); v != "" {
		addr, err := config.ParseAddress(v)
		if err != nil {
			utils.Fatalf("Invalid --owner: %v", err)
		}
		return addr
	}
	return env.opts.From
}

// parseLibs reads Name=0xaddress pairs.
func parseLibs(pairs []string) (map[string]common.Address, error) {
	libs := make(map[string]common.Address, len(pairs))
	for _, p := range pairs {
		name, addr, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("library %q: want Name=0xaddress", p)
		}
		a, err := config.ParseAddress(addr)
		if err != nil {
			return nil, err
		}
		libs[name] = a
	}
	return libs, nil
}
