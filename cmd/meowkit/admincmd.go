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
	"context"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/cmd/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/meowsdao/meowkit/config"
	"github.com/meowsdao/meowkit/contracts/meow"
	"github.com/meowsdao/meowkit/deploy"
)

var auctionFlag = cli.StringFlag{
	Name:  "auction",
	Usage: "AuctionMachine address (defaults to the latest ledger entry)",
}

// tokenOp builds one owner-only token transaction from the positional
// arguments of a command.
type tokenOp func(ctx *cli.Context, token *meow.Token) (*types.Transaction, error)

func tokenAdmin(name, usage, argsUsage string, nargs int, op tokenOp, flags ...cli.Flag) cli.Command {
	return cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: argsUsage,
		Flags:     append([]cli.Flag{tokenFlag}, flags...),
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() != nargs {
				utils.Fatalf("%s takes %d argument(s): %s", name, nargs, argsUsage)
			}
			cctx, cancel := interruptible()
			defer cancel()
			env := connect(ctx, cctx, true)

			addr := env.address(ctx, tokenFlag.Name, deploy.KindToken, deploy.KindTraitsGatewayToken, deploy.KindUnorderedToken)
			token, err := env.service().Token(addr)
			if err != nil {
				return err
			}
			tx, err := op(ctx, token)
			if err != nil {
				return err
			}
			_, err = confirm(cctx, env, name, tx)
			return err
		},
	}
}

var (
	tokenCommand = cli.Command{
		Name:  "token",
		Usage: "Owner and minter administration of a deployed token",
		Subcommands: []cli.Command{
			tokenAdmin("pause", "Stop minting", "", 0, func(_ *cli.Context, t *meow.Token) (*types.Transaction, error) {
				return t.SetPause(true)
			}),
			tokenAdmin("unpause", "Resume minting", "", 0, func(_ *cli.Context, t *meow.Token) (*types.Transaction, error) {
				return t.SetPause(false)
			}),
			tokenAdmin("add-minter", "Grant the minter role", "<address>", 1, func(ctx *cli.Context, t *meow.Token) (*types.Transaction, error) {
				return t.AddMinter(argAddress(ctx, 0))
			}),
			tokenAdmin("remove-minter", "Revoke the minter role", "<address>", 1, func(ctx *cli.Context, t *meow.Token) (*types.Transaction, error) {
				return t.RemoveMinter(argAddress(ctx, 0))
			}),
			tokenAdmin("mint-for", "Mint a token to an account (minter only)", "<address>", 1, func(ctx *cli.Context, t *meow.Token) (*types.Transaction, error) {
				return t.MintFor(argAddress(ctx, 0))
			}),
			tokenAdmin("set-provenance", "Record the provenance hash (once)", "<hash>", 1, func(ctx *cli.Context, t *meow.Token) (*types.Transaction, error) {
				return t.SetProvenanceHash(ctx.Args().First())
			}),
			tokenAdmin("set-contract-uri", "Update the collection metadata URI", "<uri>", 1, func(ctx *cli.Context, t *meow.Token) (*types.Transaction, error) {
				return t.SetContractURI(ctx.Args().First())
			}),
			tokenAdmin("set-base-uri", "Update the token base URI", "<uri>", 1, func(ctx *cli.Context, t *meow.Token) (*types.Transaction, error) {
				return t.SetBaseURI(ctx.Args().First(), ctx.Bool("reveal"))
			}, cli.BoolFlag{Name: "reveal", Usage: "Mark the collection as revealed"}),
			tokenAdmin("set-mint-period", "Update the mint window", "<start> <end>", 2, func(ctx *cli.Context, t *meow.Token) (*types.Transaction, error) {
				start, end, err := parsePeriod(ctx.Args().Get(0), ctx.Args().Get(1))
				if err != nil {
					return nil, err
				}
				return t.UpdateMintPeriod(start, end)
			}),
			tokenAdmin("set-unit-price", "Update the mint price", "<ether>", 1, func(ctx *cli.Context, t *meow.Token) (*types.Transaction, error) {
				price, err := deploy.ParseEther(ctx.Args().First())
				if err != nil {
					return nil, err
				}
				return t.UpdateUnitPrice(price)
			}),
			tokenAdmin("set-payment-token", "Accept or reject an ERC20 for mint payments", "<address>", 1, func(ctx *cli.Context, t *meow.Token) (*types.Transaction, error) {
				return t.UpdatePaymentTokenList(argAddress(ctx, 0), !ctx.Bool("reject"))
			}, cli.BoolFlag{Name: "reject", Usage: "Remove the token from the accepted list"}),
			tokenAdmin("set-ipfs-gateway", "Update the IPFS gateway of a TraitsGatewayToken", "<uri>", 1, func(ctx *cli.Context, t *meow.Token) (*types.Transaction, error) {
				return t.SetIPFSGatewayURI(ctx.Args().First())
			}),
			tokenAdmin("set-ipfs-root", "Update the IPFS root of a TraitsGatewayToken", "<cid>", 1, func(ctx *cli.Context, t *meow.Token) (*types.Transaction, error) {
				return t.SetIPFSRoot(ctx.Args().First())
			}),
			tokenAdmin("set-assets", "Point a TraitsChainToken at a Storage contract", "<storage>", 1, func(ctx *cli.Context, t *meow.Token) (*types.Transaction, error) {
				return t.SetAssets(argAddress(ctx, 0))
			}),
		},
	}
	settleCommand = cli.Command{
		Name:   "settle",
		Usage:  "Close an expired auction, optionally opening the next one with a bid",
		Action: settle,
		Flags: []cli.Flag{
			auctionFlag,
			cli.StringFlag{Name: "value", Usage: "Opening bid of the next auction in ether", Value: "0"},
		},
	}
	auctionInfoCommand = cli.Command{
		Name:   "auction-info",
		Usage:  "Print the state of the running auction",
		Action: auctionInfo,
		Flags:  []cli.Flag{auctionFlag},
	}
	recoverTokenCommand = cli.Command{
		Name:      "recover-token",
		Usage:     "Transfer an unsold token held by the auction machine",
		ArgsUsage: "<account> <tokenId>",
		Action:    recoverToken,
		Flags:     []cli.Flag{auctionFlag},
	}
)

// confirm waits for tx and logs what it cost.
func confirm(ctx context.Context, env *toolEnv, what string, tx *types.Transaction) (*types.Receipt, error) {
	log.Info("Transaction sent", "op", what, "hash", tx.Hash().Hex())
	receipt, err := meow.WaitMined(ctx, env.client, tx)
	if err != nil {
		return nil, err
	}
	log.Info("Transaction confirmed", "op", what, "block", receipt.BlockNumber, "gas", receipt.GasUsed)
	return receipt, nil
}

func argAddress(ctx *cli.Context, i int) common.Address {
	addr, err := config.ParseAddress(ctx.Args().Get(i))
	if err != nil {
		utils.Fatalf("Invalid address %q: %v", ctx.Args().Get(i), err)
	}
	return addr
}

// parsePeriod reads a mint window given as RFC 3339 times or unix seconds.
func parsePeriod(start, end string) (*big.Int, *big.Int, error) {
	s, err := parseTimestamp(start)
	if err != nil {
		return nil, nil, err
	}
	e, err := parseTimestamp(end)
	if err != nil {
		return nil, nil, err
	}
	if e.Cmp(s) <= 0 {
		return nil, nil, deploy.ErrMintPeriod
	}
	return s, e, nil
}

func parseTimestamp(v string) (*big.Int, error) {
	if secs, err := strconv.ParseUint(v, 10, 64); err == nil {
		return new(big.Int).SetUint64(secs), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("timestamp %q: want unix seconds or RFC 3339", v)
	}
	return big.NewInt(t.Unix()), nil
}

func (env *toolEnv) auction(ctx *cli.Context) *meow.AuctionMachine {
	addr := env.address(ctx, auctionFlag.Name, deploy.KindAuctionMachine)
	machine, err := meow.NewAuctionMachine(env.opts, addr, env.client)
	if err != nil {
		utils.Fatalf("Failed to bind auction machine: %v", err)
	}
	return machine
}

func logAuctionEvents(machine *meow.AuctionMachine, receipt *types.Receipt) error {
	events, err := machine.ParseEvents(receipt)
	if err != nil {
		return err
	}
	for _, ev := range events {
		log.Info("Auction event", "event", ev.Name, "account", ev.Account.Hex(), "amount", deploy.FormatEther(ev.Amount), "tokenId", ev.TokenID)
	}
	return nil
}

func settle(ctx *cli.Context) error {
	value, err := deploy.ParseEther(ctx.String("value"))
	if err != nil {
		utils.Fatalf("Invalid --value: %v", err)
	}
	cctx, cancel := interruptible()
	defer cancel()
	env := connect(ctx, cctx, true)

	machine := env.auction(ctx)
	if left, err := machine.TimeLeft(); err == nil && left.Sign() > 0 {
		log.Warn("Auction still running, settle will revert with AUCTION_ACTIVE()", "secondsLeft", left)
	}
	tx, err := machine.Settle(value)
	if err != nil {
		return err
	}
	receipt, err := confirm(cctx, env, "settle", tx)
	if err != nil {
		return err
	}
	return logAuctionEvents(machine, receipt)
}

func recoverToken(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		utils.Fatalf("This command requires account and token id arguments.")
	}
	account := argAddress(ctx, 0)
	id, ok := new(big.Int).SetString(ctx.Args().Get(1), 10)
	if !ok || id.Sign() < 0 {
		utils.Fatalf("Invalid token id %q", ctx.Args().Get(1))
	}
	cctx, cancel := interruptible()
	defer cancel()
	env := connect(ctx, cctx, true)

	machine := env.auction(ctx)
	tx, err := machine.RecoverToken(account, id)
	if err != nil {
		return err
	}
	_, err = confirm(cctx, env, "recoverToken", tx)
	return err
}

func auctionInfo(ctx *cli.Context) error {
	cctx, cancel := interruptible()
	defer cancel()
	env := connect(ctx, cctx, false)

	machine := env.auction(ctx)
	owner, err := machine.Owner()
	if err != nil {
		return err
	}
	id, err := machine.CurrentTokenID()
	if err != nil {
		return err
	}
	current, err := machine.CurrentBid()
	if err != nil {
		return err
	}
	bidder, err := machine.CurrentBidder()
	if err != nil {
		return err
	}
	left, err := machine.TimeLeft()
	if err != nil {
		return err
	}
	fmt.Printf("address:     %s\n", machine.Address().Hex())
	fmt.Printf("owner:       %s\n", owner.Hex())
	fmt.Printf("token id:    %s\n", id)
	fmt.Printf("current bid: %s ETH by %s\n", deploy.FormatEther(current), bidder.Hex())
	fmt.Printf("time left:   %s\n", time.Duration(left.Int64())*time.Second)
	return nil
}
