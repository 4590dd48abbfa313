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

// Package kubo stores directories through a local Kubo ("ipfs") binary.
//
// It needs no API token and works against the node's own repository, which
// makes it the backend of choice for dry runs and self-hosted pinning.
package kubo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ipfs/go-cid"

	"github.com/meowsdao/meowkit/ipfs"
)

// Store shells out to the Kubo CLI.
type Store struct {
	bin string
	env []string
}

// Options configure a Store.
type Options struct {
	// Bin is the path to the ipfs binary. If empty, "ipfs" is used.
	Bin string
	// Env overrides the command environment (e.g. to set IPFS_PATH). If
	// nil, the process environment is used.
	Env []string
}

// New returns a Store.
func New(opts Options) *Store {
	bin := opts.Bin
	if bin == "" {
		bin = "ipfs"
	}
	return &Store{bin: bin, env: opts.Env}
}

// StoreDirectory writes files into a scratch directory and adds it
// recursively as CIDv1.
func (s *Store) StoreDirectory(ctx context.Context, files []ipfs.File) (cid.Cid, error) {
	if len(files) == 0 {
		return cid.Undef, ipfs.ErrEmptyDirectory
	}
	dir, err := os.MkdirTemp("", "meowkit-ipfs-")
	if err != nil {
		return cid.Undef, err
	}
	defer os.RemoveAll(dir)

	for _, f := range files {
		if f.Name != filepath.Base(f.Name) {
			return cid.Undef, fmt.Errorf("kubo: nested file name %q", f.Name)
		}
		if err := os.WriteFile(filepath.Join(dir, f.Name), f.Data, 0o644); err != nil {
			return cid.Undef, err
		}
	}

	out, err := s.run(ctx, "add", "-r", "-Q", "--pin=true", "--cid-version=1", dir)
	if err != nil {
		return cid.Undef, err
	}
	root, err := cid.Decode(strings.TrimSpace(string(out)))
	if err != nil {
		return cid.Undef, fmt.Errorf("%w: unexpected add output: %v", ipfs.ErrInvalidCID, err)
	}
	log.Debug("Added directory to local node", "cid", root, "files", len(files))
	return root, nil
}

// Status reports whether the local node pins root and its cumulative size.
func (s *Store) Status(ctx context.Context, root cid.Cid) (*ipfs.Status, error) {
	if !root.Defined() {
		return nil, ipfs.ErrInvalidCID
	}
	status := &ipfs.Status{CID: root}

	_, err := s.run(ctx, "pin", "ls", "--type=recursive", root.String())
	switch {
	case err == nil:
		status.Pins = []ipfs.Pin{{Peer: "local", Status: "pinned"}}
	case isNotPinned(err):
		status.Pins = []ipfs.Pin{{Peer: "local", Status: "unpinned"}}
	default:
		return nil, err
	}

	out, err := s.run(ctx, "dag", "stat", "--progress=false", root.String())
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ipfs.ErrNotFound, root)
		}
		return nil, err
	}
	status.Size = parseDagSize(string(out))
	return status, nil
}

// parseDagSize reads "Size: 1234, NumBlocks: 5" as printed by dag stat.
func parseDagSize(out string) uint64 {
	for _, field := range strings.Split(out, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(field), ":")
		if !ok || !strings.EqualFold(k, "size") {
			continue
		}
		var size uint64
		if _, err := fmt.Sscan(strings.TrimSpace(v), &size); err == nil {
			return size
		}
	}
	return 0
}

func (s *Store) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, s.bin, args...)
	if s.env != nil {
		cmd.Env = s.env
	}
	out, err := cmd.Output()
	if err == nil {
		return out, nil
	}

	var ee *exec.ExitError
	if errors.As(err, &ee) {
		msg := strings.TrimSpace(string(ee.Stderr))
		if msg == "" {
			return nil, fmt.Errorf("kubo: %v", err)
		}
		return nil, fmt.Errorf("kubo: %s", msg)
	}
	return nil, err
}

func isNotPinned(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "not pinned")
}

func isNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "no link named")
}
