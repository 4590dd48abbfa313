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

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/cmd/utils"
	"github.com/ethereum/go-ethereum/log"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/meowsdao/meowkit/assets"
	"github.com/meowsdao/meowkit/config"
	"github.com/meowsdao/meowkit/contracts/meow"
	"github.com/meowsdao/meowkit/etherscan"
	"github.com/meowsdao/meowkit/ipfs"
	"github.com/meowsdao/meowkit/ipfs/kubo"
	"github.com/meowsdao/meowkit/ipfs/nftstorage"
)

var (
	storageFlag = cli.StringFlag{
		Name:  "storage",
		Usage: "On-chain asset Storage contract (overrides the config)",
	}

	loadAssetCommand = cli.Command{
		Name:      "load-asset",
		Usage:     "Store one file in the on-chain Storage contract",
		ArgsUsage: "<file>",
		Action:    loadAsset,
		Flags: []cli.Flag{
			storageFlag,
			cli.Uint64Flag{Name: "id", Usage: "Asset id"},
		},
	}
	loadLayersCommand = cli.Command{
		Name:   "load-layers",
		Usage:  "Store every layer listed in assetIndex.json, using the configured id offsets",
		Action: loadLayers,
		Flags: []cli.Flag{
			storageFlag,
			cli.StringFlag{Name: "source", Usage: "Layer directory (overrides the config)"},
		},
	}
	listAssetsCommand = cli.Command{
		Name:      "list-assets",
		Usage:     "Print an asset index of the files under a directory",
		ArgsUsage: "<dir>",
		Action:    listAssets,
		Flags: []cli.Flag{
			cli.StringFlag{Name: "ext", Usage: "File extension to list", Value: ".png"},
		},
	}
	renameAssetsCommand = cli.Command{
		Name:      "rename-assets",
		Usage:     "Copy indexed assets into a flat directory named <group>_<n><ext>",
		ArgsUsage: "<source> <destination>",
		Action:    renameAssets,
	}
	uploadCommand = cli.Command{
		Name:      "upload",
		Usage:     "Upload a flat directory to IPFS",
		ArgsUsage: "<dir>",
		Action:    upload,
		Flags: []cli.Flag{
			cli.BoolFlag{Name: "delete", Usage: "Remove the directory after a successful upload"},
			cli.StringFlag{Name: "backend", Usage: "nftstorage or kubo (overrides the config)"},
		},
	}
	fetchABICommand = cli.Command{
		Name:      "fetch-abi",
		Usage:     "Download the ABI of a verified contract from the block explorer",
		ArgsUsage: "<address>",
		Action:    fetchABI,
	}
)

func loadAsset(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		utils.Fatalf("This command requires a file argument.")
	}
	cctx, cancel := interruptible()
	defer cancel()
	env := connect(ctx, cctx, true)

	storage := env.storage(ctx)
	path, id := ctx.Args().First(), ctx.Uint64("id")
	gas, err := assets.NewLoader(storage, env.client, os.Stderr).LoadAsset(cctx, path, id)
	if err != nil {
		return err
	}
	if err := assets.VerifyAsset(storage, path, id); err != nil {
		return err
	}
	log.Info("Asset stored and verified", "file", path, "id", id, "gas", gas)
	return nil
}

func loadLayers(ctx *cli.Context) error {
	cctx, cancel := interruptible()
	defer cancel()
	env := connect(ctx, cctx, true)

	source := env.cfg.Assets.Source
	if ctx.IsSet("source") {
		source = ctx.String("source")
	}
	gas, err := assets.NewLoader(env.storage(ctx), env.client, os.Stderr).LoadLayers(cctx, source, env.cfg.Assets.Offsets)
	if err != nil {
		return err
	}
	log.Info("Layers stored", "source", source, "gas", gas)
	return nil
}

func (env *toolEnv) storage(ctx *cli.Context) *meow.Storage {
	raw := env.cfg.Assets.Storage
	if ctx.IsSet(storageFlag.Name) {
		raw = ctx.String(storageFlag.Name)
	}
	addr, err := config.ParseAddress(raw)
	if err != nil || raw == "" {
		utils.Fatalf("A valid --storage address is required")
	}
	storage, err := meow.NewStorage(env.opts, addr, env.client)
	if err != nil {
		utils.Fatalf("Failed to bind storage: %v", err)
	}
	return storage
}

func listAssets(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		utils.Fatalf("This command requires a directory argument.")
	}
	idx, err := assets.ListAssets(ctx.Args().First(), ctx.String("ext"))
	if err != nil {
		return err
	}
	return idx.Write(os.Stdout)
}

func renameAssets(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		utils.Fatalf("This command requires source and destination arguments.")
	}
	written, err := assets.RenameAssets(ctx.Args().Get(0), ctx.Args().Get(1))
	if err != nil {
		return err
	}
	log.Info("Assets renamed", "count", len(written), "destination", ctx.Args().Get(1))
	return nil
}

func upload(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		utils.Fatalf("This command requires a directory argument.")
	}
	cfg, secrets := loadConfig(ctx), loadSecrets(ctx)
	backend := cfg.IPFS.Backend
	if ctx.IsSet("backend") {
		backend = ctx.String("backend")
	}

	var store ipfs.Store
	switch strings.ToLower(backend) {
	case "kubo":
		store = kubo.New(kubo.Options{Bin: cfg.IPFS.KuboBin})
	case "nftstorage", "":
		var opts []nftstorage.Option
		if cfg.IPFS.Endpoint != "" {
			opts = append(opts, nftstorage.WithEndpoint(cfg.IPFS.Endpoint))
		}
		store = nftstorage.New(secrets.NFTStorageKey, opts...)
	default:
		utils.Fatalf("Unknown IPFS backend %q", backend)
	}

	cctx, cancel := interruptible()
	defer cancel()
	root, err := ipfs.Upload(cctx, store, ctx.Args().First(), ctx.Bool("delete"))
	if err != nil {
		return err
	}
	fmt.Println(root)
	return nil
}

func fetchABI(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		utils.Fatalf("This command requires an address argument.")
	}
	addr, err := config.ParseAddress(ctx.Args().First())
	if err != nil {
		utils.Fatalf("%v", err)
	}
	cctx, cancel := interruptible()
	defer cancel()
	env := connect(ctx, cctx, false)

	endpoint, err := etherscan.URLFor(env.chainID)
	if err != nil {
		return err
	}
	raw, err := etherscan.New(endpoint, env.secrets.EtherscanKey).RawABI(cctx, addr)
	if err != nil {
		return err
	}
	fmt.Println(raw)
	return nil
}
