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

package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
)

var (
	ErrEmptyAsset   = errors.New("assets: asset has no content")
	ErrIDOverflow   = errors.New("assets: asset id does not fit in 64 bits")
	ErrAssetFailure = errors.New("assets: storage transaction failed")
	ErrMismatch     = errors.New("assets: stored content differs from file")
)

// Writer is the write side of the on-chain Storage contract.
type Writer interface {
	CreateAsset(assetID uint64, sliceKey [32]byte, content [][32]byte, size uint64) (*types.Transaction, error)
	AppendAssetContent(assetID uint64, sliceKey [32]byte, content [][32]byte) (*types.Transaction, error)
}

// Reader is the read side of the on-chain Storage contract.
type Reader interface {
	AssetContent(assetID uint64) ([]byte, error)
	AssetSize(assetID uint64) (uint64, error)
}

// Loader writes files into the Storage contract, one transaction per batch,
// waiting for each receipt before sending the next.
type Loader struct {
	store    Writer
	backend  bind.DeployBackend
	progress io.Writer
}

// NewLoader creates a loader. Progress bars are drawn to progress; pass nil
// to disable them.
func NewLoader(store Writer, backend bind.DeployBackend, progress io.Writer) *Loader {
	if progress == nil {
		progress = io.Discard
	}
	return &Loader{store: store, backend: backend, progress: progress}
}

// NewSliceKey returns a random 32-byte slice key: the trailing 32 bytes of
// the text form of a fresh UUIDv4.
func NewSliceKey() [32]byte {
	var key [32]byte
	s := uuid.NewString()
	copy(key[:], s[len(s)-len(key):])
	return key
}

// LoadAsset stores the file at path under assetID and returns the gas used.
// Asset ids are not validated; storing a duplicate id fails on-chain.
func (l *Loader) LoadAsset(ctx context.Context, path string, assetID uint64) (uint64, error) {
	chunked, err := ChunkFile(path)
	if err != nil {
		return 0, err
	}
	if len(chunked.Parts) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrEmptyAsset, path)
	}

	bar := progressbar.NewOptions(len(chunked.Parts),
		progressbar.OptionSetWriter(l.progress),
		progressbar.OptionSetDescription(filepath.Base(path)),
		progressbar.OptionClearOnFinish(),
	)
	defer bar.Finish()

	tx, err := l.store.CreateAsset(assetID, NewSliceKey(), toContent(chunked.Parts[0]), uint64(chunked.Length))
	if err != nil {
		return 0, fmt.Errorf("assets: createAsset %d: %w", assetID, err)
	}
	gas, err := l.wait(ctx, tx)
	if err != nil {
		return gas, err
	}
	bar.Add(1)

	for _, part := range chunked.Parts[1:] {
		tx, err := l.store.AppendAssetContent(assetID, NewSliceKey(), toContent(part))
		if err != nil {
			return gas, fmt.Errorf("assets: appendAssetContent %d: %w", assetID, err)
		}
		used, err := l.wait(ctx, tx)
		gas += used
		if err != nil {
			return gas, err
		}
		bar.Add(1)
	}

	if chunked.Compressed() {
		log.Info("Asset stored", "path", path, "id", assetID, "inflated", chunked.InflatedSize, "compressed", chunked.Length, "gas", gas)
	} else {
		log.Info("Asset stored", "path", path, "id", assetID, "size", chunked.Length, "gas", gas)
	}
	return gas, nil
}

// LayerID is the asset id of the item at position in a group stored with
// the given bit offset. Positions are 1-based on-chain so that the first
// item of every group gets a distinct id.
func LayerID(position int, offset uint) (uint64, error) {
	v := uint64(position + 1)
	if offset >= 64 || v > (^uint64(0))>>offset {
		return 0, ErrIDOverflow
	}
	return v << offset, nil
}

// LoadLayers stores every asset listed in source/assetIndex.json. Items of a
// group are numbered by LayerID with offsets[group]. Nothing slots are
// skipped; a failing asset is logged and the load continues. The total gas
// of the stored assets is returned.
func (l *Loader) LoadLayers(ctx context.Context, source string, offsets map[string]uint) (uint64, error) {
	idx, err := ReadIndex(source)
	if err != nil {
		return 0, err
	}

	var total uint64
	for _, g := range idx.Groups {
		for i, item := range g.Items {
			if item == Nothing {
				continue
			}
			if err := ctx.Err(); err != nil {
				return total, err
			}
			asset := filepath.Join(source, g.Name, item)
			id, err := LayerID(i, offsets[g.Name])
			if err != nil {
				log.Warn("Skipping asset", "path", asset, "group", g.Name, "err", err)
				continue
			}
			gas, err := l.LoadAsset(ctx, asset, id)
			if err != nil {
				log.Warn("Failed to store asset", "path", asset, "id", id, "err", err)
				continue
			}
			total += gas
		}
	}
	return total, nil
}

func (l *Loader) wait(ctx context.Context, tx *types.Transaction) (uint64, error) {
	receipt, err := bind.WaitMined(ctx, l.backend, tx)
	if err != nil {
		return 0, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt.GasUsed, fmt.Errorf("%w: %s", ErrAssetFailure, tx.Hash().Hex())
	}
	return receipt.GasUsed, nil
}

// VerifyAsset reads asset assetID back from the Storage contract and
// compares it with the file at path, chunked the same way LoadAsset does.
// The contract may return the final word with its zero padding.
func VerifyAsset(store Reader, path string, assetID uint64) error {
	chunked, err := ChunkFile(path)
	if err != nil {
		return err
	}
	size, err := store.AssetSize(assetID)
	if err != nil {
		return fmt.Errorf("assets: getAssetSize %d: %w", assetID, err)
	}
	if size != uint64(chunked.Length) {
		return fmt.Errorf("%w: asset %d has size %d, want %d", ErrMismatch, assetID, size, chunked.Length)
	}
	content, err := store.AssetContent(assetID)
	if err != nil {
		return fmt.Errorf("assets: getAssetContentForId %d: %w", assetID, err)
	}
	want := chunked.Bytes()[:chunked.Length]
	if len(content) < len(want) || !bytes.Equal(content[:len(want)], want) {
		return fmt.Errorf("%w: asset %d content", ErrMismatch, assetID)
	}
	log.Debug("Asset verified", "path", path, "id", assetID, "size", size)
	return nil
}
