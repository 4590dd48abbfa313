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

// Package ipfs uploads collection directories (images and metadata) to
// IPFS pinning backends.
//
// Backends implement Store. Two ship with the module: nftstorage, a client
// for the nft.storage HTTP API, and kubo, which shells out to a local Kubo
// node.
package ipfs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyDirectory = errors.New("ipfs: nothing to upload")
	ErrNotFound       = errors.New("ipfs: content not found")
	ErrInvalidCID     = errors.New("ipfs: invalid cid")
)

// File is one entry of an uploaded directory.
type File struct {
	Name string
	Data []byte
}

// Pin is the pin state of the content on one peer.
type Pin struct {
	Peer   string
	Status string // queued, pinning, pinned or failed
}

// Status describes stored content.
type Status struct {
	CID     cid.Cid
	Size    uint64
	Created time.Time
	Pins    []Pin
}

// Pinned reports whether at least one peer holds the content.
func (s *Status) Pinned() bool {
	for _, p := range s.Pins {
		if strings.EqualFold(p.Status, "pinned") {
			return true
		}
	}
	return false
}

// Store is a pinning backend.
type Store interface {
	// StoreDirectory stores files as one directory and returns its root CID.
	StoreDirectory(ctx context.Context, files []File) (cid.Cid, error)

	// Status reports what the backend knows about c.
	Status(ctx context.Context, c cid.Cid) (*Status, error)
}

// RawCID returns the CIDv1 (raw codec, sha2-256) of data.
func RawCID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// Manifest maps file names to their raw CIDs.
type Manifest map[string]cid.Cid

// NewManifest hashes every file.
func NewManifest(files []File) (Manifest, error) {
	m := make(Manifest, len(files))
	for _, f := range files {
		c, err := RawCID(f.Data)
		if err != nil {
			return nil, fmt.Errorf("ipfs: hash %s: %w", f.Name, err)
		}
		m[f.Name] = c
	}
	return m, nil
}

// readConcurrency bounds open files while reading a directory.
const readConcurrency = 16

// ReadDir loads the regular files directly inside dir, sorted by name.
func ReadDir(ctx context.Context, dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	files := make([]File, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(readConcurrency)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return err
			}
			files[i] = File{Name: name, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// Upload stores every file in dir as one directory and logs its status.
// The raw CID of each file is logged before anything is sent, so a pinned
// file can be matched against its source later.
// With deleteAfter set, dir is removed once the upload succeeded.
func Upload(ctx context.Context, store Store, dir string, deleteAfter bool) (cid.Cid, error) {
	files, err := ReadDir(ctx, dir)
	if err != nil {
		return cid.Undef, err
	}
	if len(files) == 0 {
		return cid.Undef, fmt.Errorf("%w: %s", ErrEmptyDirectory, dir)
	}
	manifest, err := NewManifest(files)
	if err != nil {
		return cid.Undef, err
	}
	for _, f := range files {
		log.Info("Uploading file", "name", f.Name, "size", len(f.Data), "cid", manifest[f.Name])
	}
	root, err := store.StoreDirectory(ctx, files)
	if err != nil {
		return cid.Undef, err
	}
	log.Info("Directory stored", "dir", dir, "files", len(files), "cid", root)

	if status, err := store.Status(ctx, root); err != nil {
		log.Warn("Status check failed", "cid", root, "err", err)
	} else {
		log.Info("Directory status", "cid", root, "size", status.Size, "pinned", status.Pinned())
	}

	if deleteAfter {
		if err := os.RemoveAll(dir); err != nil {
			return root, err
		}
		log.Debug("Removed uploaded directory", "dir", dir)
	}
	return root, nil
}
