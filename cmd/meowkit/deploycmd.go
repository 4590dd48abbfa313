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
	"math/big"

	"github.com/ethereum/go-ethereum/cmd/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/meowsdao/meowkit/artifact"
	"github.com/meowsdao/meowkit/config"
	"github.com/meowsdao/meowkit/deploy"
)

var (
	deployTokenCommand = cli.Command{
		Name:      "deploy-token",
		Usage:     "Deploy a token directly from its Hardhat artifact",
		ArgsUsage: "<artifact.json>",
		Action:    deployToken,
		Flags: []cli.Flag{
			cli.StringSliceFlag{
				Name:  "lib",
				Usage: "Library address to link, as Name=0xaddress (repeatable)",
			},
		},
	}
	createTokenCommand = cli.Command{
		Name:   "create-token",
		Usage:  "Deploy the configured token through the Deployer factory",
		Action: createToken,
		Flags: []cli.Flag{
			ownerFlag,
			cli.StringFlag{
				Name:  "kind",
				Usage: "Token, UnorderedToken or TraitsGatewayToken (overrides the config)",
			},
		},
	}
	createAuctionCommand = cli.Command{
		Name:   "create-auction",
		Usage:  "Deploy an AuctionMachine for a token through the factory",
		Action: createAuction,
		Flags:  []cli.Flag{ownerFlag, tokenFlag},
	}
	checkTerminalCommand = cli.Command{
		Name:   "check-terminal",
		Usage:  "Verify that a Juicebox project has a registered ETH terminal",
		Action: checkTerminal,
		Flags:  []cli.Flag{projectFlag},
	}
	mintCommand = cli.Command{
		Name:   "mint",
		Usage:  "Mint one token at its unit price",
		Action: mint,
		Flags: []cli.Flag{
			tokenFlag,
			cli.StringFlag{Name: "pay-with", Usage: "Pay with this approved ERC20 instead of ether"},
		},
	}
	infoCommand = cli.Command{
		Name:   "info",
		Usage:  "Print token state",
		Action: info,
		Flags:  []cli.Flag{tokenFlag},
	}
	bidCommand = cli.Command{
		Name:   "bid",
		Usage:  "Bid on the running auction",
		Action: bid,
		Flags: []cli.Flag{
			auctionFlag,
			cli.StringFlag{Name: "value", Usage: "Bid in ether"},
		},
	}
)

func deployToken(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		utils.Fatalf("This command requires an artifact argument.")
	}
	art, err := artifact.Load(ctx.Args().First())
	if err != nil {
		utils.Fatalf("Failed to load artifact: %v", err)
	}
	libs, err := parseLibs(ctx.StringSlice("lib"))
	if err != nil {
		utils.Fatalf("%v", err)
	}
	linked, err := art.Link(libs)
	if err != nil {
		utils.Fatalf("Failed to link %s: %v", art.ContractName, err)
	}

	cctx, cancel := interruptible()
	defer cancel()
	env := connect(ctx, cctx, true)
	directory, err := env.cfg.DirectoryAddress(env.chainID)
	if err != nil {
		utils.Fatalf("%v", err)
	}
	params, err := env.cfg.TokenParams(directory)
	if err != nil {
		utils.Fatalf("Invalid token config: %v", err)
	}
	rec, err := env.service().DeployToken(cctx, linked, params)
	if err != nil {
		return err
	}
	fmt.Println(rec.Address.Hex())
	return nil
}

func createToken(ctx *cli.Context) error {
	cctx, cancel := interruptible()
	defer cancel()
	env := connect(ctx, cctx, true)

	directory, err := env.cfg.DirectoryAddress(env.chainID)
	if err != nil {
		utils.Fatalf("%v", err)
	}
	params, err := env.cfg.TokenParams(directory)
	if err != nil {
		utils.Fatalf("Invalid token config: %v", err)
	}
	if k := ctx.String("kind"); k != "" {
		if params.Kind, err = deploy.ParseKind(k); err != nil {
			utils.Fatalf("%v", err)
		}
	}
	svc := env.service()
	if _, err := svc.CheckTerminal(params.ProjectID); err != nil {
		log.Warn("Mints will revert with PAYMENT_FAILURE()", "err", err)
	}
	rec, err := svc.CreateToken(cctx, params, env.owner(ctx))
	if err != nil {
		return err
	}
	fmt.Println(rec.Address.Hex())
	return nil
}

func createAuction(ctx *cli.Context) error {
	cctx, cancel := interruptible()
	defer cancel()
	env := connect(ctx, cctx, true)

	directory, err := env.cfg.DirectoryAddress(env.chainID)
	if err != nil {
		utils.Fatalf("%v", err)
	}
	var fallback common.Address
	if env.cfg.Auction != nil {
		if ctx.IsSet(tokenFlag.Name) {
			env.cfg.Auction.Token = ctx.String(tokenFlag.Name)
		}
		if env.cfg.Auction.Token == "" {
			fallback = env.address(ctx, tokenFlag.Name, deploy.KindToken, deploy.KindTraitsGatewayToken, deploy.KindUnorderedToken)
		}
	}
	params, err := env.cfg.AuctionParams(directory, fallback)
	if err != nil {
		utils.Fatalf("Invalid auction config: %v", err)
	}
	rec, err := env.service().CreateAuctionMachine(cctx, params, env.owner(ctx))
	if err != nil {
		return err
	}
	fmt.Println(rec.Address.Hex())
	return nil
}

func checkTerminal(ctx *cli.Context) error {
	cctx, cancel := interruptible()
	defer cancel()
	env := connect(ctx, cctx, false)

	project := new(big.Int).SetUint64(ctx.Uint64(projectFlag.Name))
	if !ctx.IsSet(projectFlag.Name) && env.cfg.Token != nil {
		project.SetUint64(env.cfg.Token.ProjectID)
	}
	terminal, err := env.service().CheckTerminal(project)
	if err != nil {
		return err
	}
	fmt.Printf("project %s: ETH terminal %s\n", project, terminal.Hex())
	return nil
}

func mint(ctx *cli.Context) error {
	cctx, cancel := interruptible()
	defer cancel()
	env := connect(ctx, cctx, true)

	token := env.address(ctx, tokenFlag.Name, deploy.KindToken, deploy.KindTraitsGatewayToken, deploy.KindUnorderedToken)
	var (
		id  *big.Int
		err error
	)
	if erc20 := ctx.String("pay-with"); erc20 != "" {
		payment, perr := config.ParseAddress(erc20)
		if perr != nil {
			utils.Fatalf("Invalid --pay-with: %v", perr)
		}
		id, err = env.service().MintWithToken(cctx, token, payment)
	} else {
		id, err = env.service().Mint(cctx, token)
	}
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func info(ctx *cli.Context) error {
	cctx, cancel := interruptible()
	defer cancel()
	env := connect(ctx, cctx, false)

	addr := env.address(ctx, tokenFlag.Name, deploy.KindToken, deploy.KindTraitsGatewayToken, deploy.KindUnorderedToken)
	token, err := env.service().Token(addr)
	if err != nil {
		return err
	}
	supply, err := token.TotalSupply()
	if err != nil {
		return err
	}
	maxSupply, err := token.MaxSupply()
	if err != nil {
		return err
	}
	price, err := token.UnitPrice()
	if err != nil {
		return err
	}
	uri, err := token.ContractURI()
	if err != nil {
		return err
	}
	root, err := token.MerkleRoot()
	if err != nil {
		log.Debug("Token has no merkle root", "err", err)
	}
	fmt.Printf("address:     %s\n", addr.Hex())
	fmt.Printf("supply:      %s / %s\n", supply, maxSupply)
	fmt.Printf("unit price:  %s ETH\n", deploy.FormatEther(price))
	fmt.Printf("contractURI: %s\n", uri)
	fmt.Printf("merkle root: %s\n", common.Hash(root).Hex())
	return nil
}

func bid(ctx *cli.Context) error {
	value, err := deploy.ParseEther(ctx.String("value"))
	if err != nil {
		utils.Fatalf("Invalid --value: %v", err)
	}
	cctx, cancel := interruptible()
	defer cancel()
	env := connect(ctx, cctx, true)

	machine := env.auction(ctx)
	if current, err := machine.CurrentBid(); err == nil && value.Cmp(current) <= 0 {
		utils.Fatalf("Bid must exceed the current bid of %s ETH", deploy.FormatEther(current))
	}
	tx, err := machine.Bid(value)
	if err != nil {
		return err
	}
	receipt, err := confirm(cctx, env, "bid", tx)
	if err != nil {
		return err
	}
	return logAuctionEvents(machine, receipt)
}
