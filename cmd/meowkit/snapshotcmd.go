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
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/cmd/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/meowsdao/meowkit/deploy"
	"github.com/meowsdao/meowkit/merkle"
)

var (
	snapshotCommand = cli.Command{
		Name:  "snapshot",
		Usage: "Build and check Merkle allowlists",
		Subcommands: []cli.Command{
			{
				Name:      "build",
				Usage:     "Build a Merkle tree from a CSV or JSON snapshot",
				ArgsUsage: "[snapshot.csv|snapshot.json]",
				Action:    buildSnapshot,
				Flags: []cli.Flag{
					cli.StringFlag{Name: "out", Usage: "Tree output file", Value: "merkle.json"},
					cli.IntFlag{Name: "sample", Usage: "Build from N random accounts instead of a snapshot file"},
				},
			},
			{
				Name:      "verify",
				Usage:     "Check an account's claim against the tree root",
				ArgsUsage: "<address>",
				Action:    verifySnapshot,
				Flags:     []cli.Flag{treeFlag},
			},
		},
	}
	setMerkleRootCommand = cli.Command{
		Name:   "set-merkle-root",
		Usage:  "Publish a tree's root on an UnorderedToken",
		Action: setMerkleRoot,
		Flags:  []cli.Flag{tokenFlag, treeFlag},
	}
	claimCommand = cli.Command{
		Name:   "claim",
		Usage:  "Mint one token against the signer's allowlist claim",
		Action: claim,
		Flags:  []cli.Flag{tokenFlag, treeFlag},
	}
)

func buildSnapshot(ctx *cli.Context) error {
	var (
		snap merkle.Snapshot
		err  error
	)
	switch n := ctx.Int("sample"); {
	case n > 0:
		accounts := make([]common.Address, n)
		for i := range accounts {
			key, err := crypto.GenerateKey()
			if err != nil {
				return err
			}
			accounts[i] = crypto.PubkeyToAddress(key.PublicKey)
		}
		snap = merkle.MakeSampleSnapshot(accounts)
	case ctx.NArg() == 1:
		if snap, err = merkle.LoadSnapshot(ctx.Args().First()); err != nil {
			return err
		}
	default:
		utils.Fatalf("This command requires a snapshot argument or --sample.")
	}
	tree, err := merkle.Build(snap)
	if err != nil {
		return err
	}
	if err := tree.WriteFile(ctx.String("out")); err != nil {
		return err
	}
	log.Info("Merkle tree written", "file", ctx.String("out"), "accounts", len(tree.Claims), "total", tree.Total)
	fmt.Println(tree.Root.Hex())
	return nil
}

func verifySnapshot(ctx *cli.Context) error {
	if ctx.NArg() != 1 || !common.IsHexAddress(ctx.Args().First()) {
		utils.Fatalf("This command requires an address argument.")
	}
	tree, err := merkle.ReadTree(ctx.String(treeFlag.Name))
	if err != nil {
		return err
	}
	account := common.HexToAddress(ctx.Args().First())
	c, err := tree.Claim(account)
	if err != nil {
		return err
	}
	if !merkle.Verify(tree.Root, account, c) {
		return fmt.Errorf("claim of %s does not verify against %s", account.Hex(), tree.Root.Hex())
	}
	out, err := json.MarshalIndent(map[string]interface{}{
		"index": c.Index,
		"data":  c.Amount,
		"proof": c.Proof,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func setMerkleRoot(ctx *cli.Context) error {
	tree, err := merkle.ReadTree(ctx.String(treeFlag.Name))
	if err != nil {
		return err
	}
	cctx, cancel := interruptible()
	defer cancel()
	env := connect(ctx, cctx, true)

	token := env.address(ctx, tokenFlag.Name, deploy.KindUnorderedToken)
	_, err = env.service().PublishMerkleRoot(cctx, token, tree)
	return err
}

func claim(ctx *cli.Context) error {
	tree, err := merkle.ReadTree(ctx.String(treeFlag.Name))
	if err != nil {
		return err
	}
	cctx, cancel := interruptible()
	defer cancel()
	env := connect(ctx, cctx, true)

	token := env.address(ctx, tokenFlag.Name, deploy.KindUnorderedToken)
	id, err := env.service().ClaimMint(cctx, token, tree)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}
