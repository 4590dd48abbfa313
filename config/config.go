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

// Package config loads deployment configuration: a YAML file with network,
// token, auction and asset settings, plus secrets taken from the
// environment or a .env file.
package config

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/meowsdao/meowkit/contracts/juicebox"
	"github.com/meowsdao/meowkit/deploy"
)

// Environment variables holding secrets.
const (
	EnvNFTStorageKey = "NFT_STORAGE_API_KEY"
	EnvEtherscanKey  = "ETHERSCAN_KEY"
	EnvPrivateKey    = "PRIVATE_KEY"
)

var (
	ErrNoKey       = errors.New("config: no signing key (set PRIVATE_KEY or --keystore)")
	ErrBadAddress  = errors.New("config: invalid address")
	ErrNoToken     = errors.New("config: no token section")
	ErrNoAuction   = errors.New("config: no auction section")
	ErrNoDirectory = errors.New("config: no JBDirectory known for chain")
)

// Config is the deployment configuration file.
type Config struct {
	Network   string `yaml:"network"`
	RPC       string `yaml:"rpc"`
	Deployer  string `yaml:"deployer"`
	Directory string `yaml:"directory"`
	Ledger    string `yaml:"ledger"`

	Token   *Token   `yaml:"token"`
	Auction *Auction `yaml:"auction"`
	Assets  Assets   `yaml:"assets"`
	IPFS    IPFS     `yaml:"ipfs"`
}

// Token holds the token constructor parameters.
type Token struct {
	Kind          string    `yaml:"kind"`
	Name          string    `yaml:"name"`
	Symbol        string    `yaml:"symbol"`
	BaseURI       string    `yaml:"baseUri"`
	ContractURI   string    `yaml:"contractUri"`
	ProjectID     uint64    `yaml:"projectId"`
	MaxSupply     uint64    `yaml:"maxSupply"`
	UnitPrice     string    `yaml:"unitPrice"` // ether
	MintAllowance uint64    `yaml:"mintAllowance"`
	MintStart     time.Time `yaml:"mintStart"`
	MintEnd       time.Time `yaml:"mintEnd"`
	GatewayURI    string    `yaml:"gatewayUri"`
	IPFSRoot      string    `yaml:"ipfsRoot"`
}

// Auction holds AuctionMachine parameters.
type Auction struct {
	MaxAuctions uint64        `yaml:"maxAuctions"`
	Duration    time.Duration `yaml:"duration"`
	ProjectID   uint64        `yaml:"projectId"`
	Token       string        `yaml:"token"`
}

// Assets configures on-chain asset loading.
type Assets struct {
	Source  string          `yaml:"source"`
	Storage string          `yaml:"storage"`
	Offsets map[string]uint `yaml:"offsets"`
}

// IPFS selects the upload backend.
type IPFS struct {
	Backend  string `yaml:"backend"` // nftstorage or kubo
	Endpoint string `yaml:"endpoint"`
	KuboBin  string `yaml:"kuboBin"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Network: "goerli",
		RPC:     "http://127.0.0.1:8545",
		Ledger:  "deployments.yaml",
		Assets:  Assets{Source: "assets"},
		IPFS:    IPFS{Backend: "nftstorage"},
	}
}

// Load reads the file at path over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// ParseAddress accepts a 0x-prefixed hex address. The empty string is the
// zero address.
func ParseAddress(s string) (common.Address, error) {
	if s == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrBadAddress, s)
	}
	return common.HexToAddress(s), nil
}

// DirectoryAddress returns the configured JBDirectory or the well-known one
// for chainID.
func (c *Config) DirectoryAddress(chainID *big.Int) (common.Address, error) {
	if c.Directory != "" {
		return ParseAddress(c.Directory)
	}
	if addr, ok := juicebox.DirectoryFor(chainID); ok {
		return addr, nil
	}
	return common.Address{}, fmt.Errorf("%w %s", ErrNoDirectory, chainID)
}

// TokenParams converts the token section.
func (c *Config) TokenParams(directory common.Address) (*deploy.TokenParams, error) {
	t := c.Token
	if t == nil {
		return nil, ErrNoToken
	}
	kind := deploy.KindToken
	if t.Kind != "" {
		k, err := deploy.ParseKind(t.Kind)
		if err != nil {
			return nil, err
		}
		kind = k
	}
	price := new(big.Int).Set(deploy.DefaultUnitPrice)
	if t.UnitPrice != "" {
		p, err := deploy.ParseEther(t.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("config: unitPrice: %w", err)
		}
		price = p
	}
	p := &deploy.TokenParams{
		Kind:          kind,
		Name:          t.Name,
		Symbol:        t.Symbol,
		BaseURI:       t.BaseURI,
		ContractURI:   t.ContractURI,
		ProjectID:     new(big.Int).SetUint64(t.ProjectID),
		Directory:     directory,
		MaxSupply:     new(big.Int).SetUint64(t.MaxSupply),
		UnitPrice:     price,
		MintAllowance: new(big.Int).SetUint64(t.MintAllowance),
		MintStart:     t.MintStart,
		MintEnd:       t.MintEnd,
		GatewayURI:    t.GatewayURI,
		IPFSRoot:      t.IPFSRoot,
	}
	return p, p.Validate()
}

// AuctionParams converts the auction section. An empty token address is
// filled from fallback.
func (c *Config) AuctionParams(directory, fallback common.Address) (*deploy.AuctionParams, error) {
	a := c.Auction
	if a == nil {
		return nil, ErrNoAuction
	}
	token, err := ParseAddress(a.Token)
	if err != nil {
		return nil, err
	}
	if token == (common.Address{}) {
		token = fallback
	}
	p := &deploy.AuctionParams{
		MaxAuctions: a.MaxAuctions,
		Duration:    a.Duration,
		ProjectID:   new(big.Int).SetUint64(a.ProjectID),
		Directory:   directory,
		Token:       token,
	}
	return p, p.Validate()
}

// Secrets are credentials read from the environment.
type Secrets struct {
	NFTStorageKey string
	EtherscanKey  string
	PrivateKey    string
}

// LoadSecrets loads the given .env files (missing files are ignored) and
// reads the secret variables. Variables already set in the environment win.
func LoadSecrets(envFiles ...string) (*Secrets, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("config: %s: %w", f, err)
		}
	}
	return &Secrets{
		NFTStorageKey: os.Getenv(EnvNFTStorageKey),
		EtherscanKey:  os.Getenv(EnvEtherscanKey),
		PrivateKey:    os.Getenv(EnvPrivateKey),
	}, nil
}

// SigningKey returns the deployer key: PRIVATE_KEY when set, otherwise the
// keystore file decrypted with password.
func (s *Secrets) SigningKey(keystorePath, password string) (*ecdsa.PrivateKey, error) {
	if s.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(s.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", EnvPrivateKey, err)
		}
		return key, nil
	}
	if keystorePath == "" {
		return nil, ErrNoKey
	}
	data, err := os.ReadFile(keystorePath)
	if err != nil {
		return nil, err
	}
	key, err := keystore.DecryptKey(data, password)
	if err != nil {
		return nil, fmt.Errorf("config: keystore %s: %w", keystorePath, err)
	}
	return key.PrivateKey, nil
}
