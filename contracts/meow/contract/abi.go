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

// Package contract contains the ABI fragments of the MEOWs DAO contracts that
// the off-chain tooling talks to. They cover only the surface used here; the
// full interfaces live in the Hardhat artifacts (see package artifact).
package contract

// TokenABI covers Token, UnorderedToken, TraitsGatewayToken and
// TraitsChainToken. The two mint overloads are exposed by go-ethereum as
// "mint" (no args) and "mint0" (ERC20 payment token), in that order.
const TokenABI = `[
	{"type": "function", "name": "mint", "stateMutability": "payable",
	 "inputs": [],
	 "outputs": [{"name": "tokenId", "type": "uint256"}]},
	{"type": "function", "name": "mint", "stateMutability": "payable",
	 "inputs": [{"name": "_token", "type": "address"}],
	 "outputs": [{"name": "tokenId", "type": "uint256"}]},
	{"type": "function", "name": "mintFor", "stateMutability": "payable",
	 "inputs": [{"name": "_account", "type": "address"}],
	 "outputs": [{"name": "tokenId", "type": "uint256"}]},
	{"type": "function", "name": "merkleMint", "stateMutability": "payable",
	 "inputs": [
		{"name": "_index", "type": "uint256"},
		{"name": "_cumulativeAmount", "type": "uint256"},
		{"name": "_proof", "type": "bytes32[]"}
	 ],
	 "outputs": [{"name": "tokenId", "type": "uint256"}]},
	{"type": "function", "name": "setMerkleRoot", "stateMutability": "nonpayable",
	 "inputs": [{"name": "_merkleRoot", "type": "bytes32"}], "outputs": []},
	{"type": "function", "name": "setPause", "stateMutability": "nonpayable",
	 "inputs": [{"name": "pause", "type": "bool"}], "outputs": []},
	{"type": "function", "name": "addMinter", "stateMutability": "nonpayable",
	 "inputs": [{"name": "_account", "type": "address"}], "outputs": []},
	{"type": "function", "name": "removeMinter", "stateMutability": "nonpayable",
	 "inputs": [{"name": "_account", "type": "address"}], "outputs": []},
	{"type": "function", "name": "setProvenanceHash", "stateMutability": "nonpayable",
	 "inputs": [{"name": "_provenanceHash", "type": "string"}], "outputs": []},
	{"type": "function", "name": "setContractURI", "stateMutability": "nonpayable",
	 "inputs": [{"name": "_contractUri", "type": "string"}], "outputs": []},
	{"type": "function", "name": "updateMintPeriod", "stateMutability": "nonpayable",
	 "inputs": [
		{"name": "_mintPeriodStart", "type": "uint256"},
		{"name": "_mintPeriodEnd", "type": "uint256"}
	 ], "outputs": []},
	{"type": "function", "name": "updateUnitPrice", "stateMutability": "nonpayable",
	 "inputs": [{"name": "_unitPrice", "type": "uint256"}], "outputs": []},
	{"type": "function", "name": "setBaseURI", "stateMutability": "nonpayable",
	 "inputs": [
		{"name": "_baseUri", "type": "string"},
		{"name": "_reveal", "type": "bool"}
	 ], "outputs": []},
	{"type": "function", "name": "updatePaymentTokenList", "stateMutability": "nonpayable",
	 "inputs": [
		{"name": "_token", "type": "address"},
		{"name": "_accepted", "type": "bool"}
	 ], "outputs": []},
	{"type": "function", "name": "setIPFSGatewayURI", "stateMutability": "nonpayable",
	 "inputs": [{"name": "_uri", "type": "string"}], "outputs": []},
	{"type": "function", "name": "setIPFSRoot", "stateMutability": "nonpayable",
	 "inputs": [{"name": "_root", "type": "string"}], "outputs": []},
	{"type": "function", "name": "setAssets", "stateMutability": "nonpayable",
	 "inputs": [{"name": "_assets", "type": "address"}], "outputs": []},

	{"type": "function", "name": "balanceOf", "stateMutability": "view",
	 "inputs": [{"name": "owner", "type": "address"}],
	 "outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "name": "ownerOf", "stateMutability": "view",
	 "inputs": [{"name": "id", "type": "uint256"}],
	 "outputs": [{"name": "owner", "type": "address"}]},
	{"type": "function", "name": "totalSupply", "stateMutability": "view",
	 "inputs": [], "outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "name": "maxSupply", "stateMutability": "view",
	 "inputs": [], "outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "name": "unitPrice", "stateMutability": "view",
	 "inputs": [], "outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "name": "merkleRoot", "stateMutability": "view",
	 "inputs": [], "outputs": [{"name": "", "type": "bytes32"}]},
	{"type": "function", "name": "hasRole", "stateMutability": "view",
	 "inputs": [
		{"name": "role", "type": "bytes32"},
		{"name": "account", "type": "address"}
	 ],
	 "outputs": [{"name": "", "type": "bool"}]},
	{"type": "function", "name": "tokenURI", "stateMutability": "view",
	 "inputs": [{"name": "_tokenId", "type": "uint256"}],
	 "outputs": [{"name": "", "type": "string"}]},
	{"type": "function", "name": "contractURI", "stateMutability": "view",
	 "inputs": [], "outputs": [{"name": "", "type": "string"}]},

	{"type": "event", "name": "Transfer", "anonymous": false,
	 "inputs": [
		{"name": "from", "type": "address", "indexed": true},
		{"name": "to", "type": "address", "indexed": true},
		{"name": "id", "type": "uint256", "indexed": true}
	 ]},

	{"type": "error", "name": "ALLOWANCE_EXHAUSTED", "inputs": []},
	{"type": "error", "name": "ALREADY_REVEALED", "inputs": []},
	{"type": "error", "name": "CLAIMS_EXHAUSTED", "inputs": []},
	{"type": "error", "name": "INCORRECT_PAYMENT", "inputs": [{"name": "", "type": "uint256"}]},
	{"type": "error", "name": "INVALID_PROOF", "inputs": []},
	{"type": "error", "name": "MINT_CONCLUDED", "inputs": []},
	{"type": "error", "name": "MINT_NOT_STARTED", "inputs": []},
	{"type": "error", "name": "PAYMENT_FAILURE", "inputs": []},
	{"type": "error", "name": "PROVENANCE_REASSIGNMENT", "inputs": []},
	{"type": "error", "name": "SUPPLY_EXHAUSTED", "inputs": []},
	{"type": "error", "name": "UNAPPROVED_TOKEN", "inputs": []}
]`

// DeployerABI is the factory that deploys token and auction contracts and
// announces each new instance with a Deployment event.
const DeployerABI = `[
	{"type": "function", "name": "createToken", "stateMutability": "nonpayable",
	 "inputs": [
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
		{"name": "_mintPeriodEnd", "type": "uint256"},
		{"name": "_owner", "type": "address"}
	 ],
	 "outputs": [{"name": "token", "type": "address"}]},
	{"type": "function", "name": "createUnorderedToken", "stateMutability": "nonpayable",
	 "inputs": [
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
		{"name": "_mintPeriodEnd", "type": "uint256"},
		{"name": "_owner", "type": "address"}
	 ],
	 "outputs": [{"name": "token", "type": "address"}]},
	{"type": "function", "name": "createTraitsGatewayToken", "stateMutability": "nonpayable",
	 "inputs": [
		{"name": "_name", "type": "string"},
		{"name": "_symbol", "type": "string"},
		{"name": "_baseUri", "type": "string"},
		{"name": "_contractUri", "type": "string"},
		{"name": "_jbxProjectId", "type": "uint256"},
		{"name": "_jbxDirectory", "type": "address"},
		{"name": "_maxSupply", "type": "uint256"},
		{"name": "_unitPrice", "type": "uint256"},
		{"name": "_mintAllowance", "type": "uint256"},
		{"name": "_gatewayUri", "type": "string"},
		{"name": "_metadataUri", "type": "string"},
		{"name": "_owner", "type": "address"}
	 ],
	 "outputs": [{"name": "token", "type": "address"}]},
	{"type": "function", "name": "createAuctionMachine", "stateMutability": "nonpayable",
	 "inputs": [
		{"name": "_maxAuctions", "type": "uint256"},
		{"name": "_auctionDuration", "type": "uint256"},
		{"name": "_projectId", "type": "uint256"},
		{"name": "_jbxDirectory", "type": "address"},
		{"name": "_token", "type": "address"},
		{"name": "_owner", "type": "address"}
	 ],
	 "outputs": [{"name": "machine", "type": "address"}]},

	{"type": "event", "name": "Deployment", "anonymous": false,
	 "inputs": [
		{"name": "contractAddress", "type": "address", "indexed": false}
	 ]}
]`

// AuctionMachineABI is the sequential English auction that mints a token per
// auction and forwards proceeds to the Juicebox project terminal.
const AuctionMachineABI = `[
	{"type": "function", "name": "bid", "stateMutability": "payable",
	 "inputs": [], "outputs": []},
	{"type": "function", "name": "settle", "stateMutability": "payable",
	 "inputs": [], "outputs": []},
	{"type": "function", "name": "recoverToken", "stateMutability": "nonpayable",
	 "inputs": [
		{"name": "_account", "type": "address"},
		{"name": "_tokenId", "type": "uint256"}
	 ], "outputs": []},
	{"type": "function", "name": "currentBid", "stateMutability": "view",
	 "inputs": [], "outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "name": "currentBidder", "stateMutability": "view",
	 "inputs": [], "outputs": [{"name": "", "type": "address"}]},
	{"type": "function", "name": "currentTokenId", "stateMutability": "view",
	 "inputs": [], "outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "name": "timeLeft", "stateMutability": "view",
	 "inputs": [], "outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "name": "owner", "stateMutability": "view",
	 "inputs": [], "outputs": [{"name": "", "type": "address"}]},

	{"type": "event", "name": "AuctionStarted", "anonymous": false,
	 "inputs": [
		{"name": "expiration", "type": "uint256", "indexed": false},
		{"name": "token", "type": "address", "indexed": false},
		{"name": "tokenId", "type": "uint256", "indexed": false}
	 ]},
	{"type": "event", "name": "Bid", "anonymous": false,
	 "inputs": [
		{"name": "bidder", "type": "address", "indexed": true},
		{"name": "bid", "type": "uint256", "indexed": false},
		{"name": "token", "type": "address", "indexed": false},
		{"name": "tokenId", "type": "uint256", "indexed": false}
	 ]},
	{"type": "event", "name": "AuctionEnded", "anonymous": false,
	 "inputs": [
		{"name": "winner", "type": "address", "indexed": true},
		{"name": "price", "type": "uint256", "indexed": false},
		{"name": "token", "type": "address", "indexed": false},
		{"name": "tokenId", "type": "uint256", "indexed": false}
	 ]},

	{"type": "error", "name": "AUCTION_ACTIVE", "inputs": []},
	{"type": "error", "name": "AUCTION_ENDED", "inputs": []},
	{"type": "error", "name": "INVALID_BID", "inputs": []},
	{"type": "error", "name": "SUPPLY_EXHAUSTED", "inputs": []},
	{"type": "error", "name": "PAYMENT_FAILURE", "inputs": []}
]`

// StorageABI is the on-chain asset store. Assets are written as arrays of
// bytes32 words, first with createAsset and then with appendAssetContent.
const StorageABI = `[
	{"type": "function", "name": "createAsset", "stateMutability": "nonpayable",
	 "inputs": [
		{"name": "_assetId", "type": "uint64"},
		{"name": "_assetKey", "type": "bytes32"},
		{"name": "_content", "type": "bytes32[]"},
		{"name": "fileSizeInBytes", "type": "uint64"}
	 ], "outputs": []},
	{"type": "function", "name": "appendAssetContent", "stateMutability": "nonpayable",
	 "inputs": [
		{"name": "_assetId", "type": "uint64"},
		{"name": "_assetKey", "type": "bytes32"},
		{"name": "_content", "type": "bytes32[]"}
	 ], "outputs": []},
	{"type": "function", "name": "getAssetContentForId", "stateMutability": "view",
	 "inputs": [{"name": "_assetId", "type": "uint64"}],
	 "outputs": [{"name": "_content", "type": "bytes"}]},
	{"type": "function", "name": "getAssetKeysForId", "stateMutability": "view",
	 "inputs": [{"name": "_assetId", "type": "uint64"}],
	 "outputs": [{"name": "", "type": "bytes32[]"}]},
	{"type": "function", "name": "getAssetSize", "stateMutability": "view",
	 "inputs": [{"name": "_assetId", "type": "uint64"}],
	 "outputs": [{"name": "", "type": "uint64"}]}
]`
