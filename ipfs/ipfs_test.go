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

package ipfs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memStore struct {
	stored    []File
	statusErr error
}

func (m *memStore) StoreDirectory(ctx context.Context, files []File) (cid.Cid, error) {
	m.stored = files
	var all []byte
	for _, f := range files {
		all = append(all, f.Name...)
		all = append(all, f.Data...)
	}
	return RawCID(all)
}

func (m *memStore) Status(ctx context.Context, c cid.Cid) (*Status, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	return &Status{CID: c, Pins: []Pin{{Peer: "p", Status: "Pinned"}}}, nil
}

func writeFiles(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("body_%d.png", i+1)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	return dir
}

func TestRawCID(t *testing.T) {
	c, err := RawCID([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, uint64(cid.Raw), c.Type())
	assert.Equal(t, uint64(1), c.Version())
	// Known CIDv1 raw sha2-256 of "hello".
	assert.Equal(t, "bafkreibm6jg3ux5qumhcn2b3flc3tyu6dmlb4xa7u5bf44yegnrjhc4yeq", c.String())

	again, err := RawCID([]byte("hello"))
	require.NoError(t, err)
	assert.True(t, c.Equals(again))
}

func TestReadDirSkipsSubdirectories(t *testing.T) {
	dir := writeFiles(t, 40)
	files, err := ReadDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, files, 40)
	for _, f := range files {
		assert.Equal(t, f.Name, string(f.Data))
	}
	assert.Equal(t, "body_1.png", files[0].Name)
}

func TestUpload(t *testing.T) {
	dir := writeFiles(t, 3)
	store := &memStore{}

	root, err := Upload(context.Background(), store, dir, false)
	require.NoError(t, err)
	assert.True(t, root.Defined())
	assert.Len(t, store.stored, 3)
	assert.DirExists(t, dir)

	store.statusErr = errors.New("gateway timeout")
	_, err = Upload(context.Background(), store, dir, true)
	require.NoError(t, err, "status failures are only logged")
	assert.NoDirExists(t, dir)
}

func TestUploadLogsManifest(t *testing.T) {
	dir := writeFiles(t, 2)
	var (
		mu     sync.Mutex
		logged = make(map[string]string)
	)
	prev := log.Root().GetHandler()
	log.Root().SetHandler(log.FuncHandler(func(r *log.Record) error {
		if r.Msg != "Uploading file" {
			return nil
		}
		var name, id string
		for i := 0; i+1 < len(r.Ctx); i += 2 {
			switch r.Ctx[i] {
			case "name":
				name = fmt.Sprint(r.Ctx[i+1])
			case "cid":
				id = fmt.Sprint(r.Ctx[i+1])
			}
		}
		mu.Lock()
		logged[name] = id
		mu.Unlock()
		return nil
	}))
	defer log.Root().SetHandler(prev)

	_, err := Upload(context.Background(), &memStore{}, dir, false)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, logged, 2)
	for _, name := range []string{"body_1.png", "body_2.png"} {
		want, err := RawCID([]byte(name))
		require.NoError(t, err)
		assert.Equal(t, want.String(), logged[name], name)
	}
}

func TestUploadEmptyDirectory(t *testing.T) {
	_, err := Upload(context.Background(), &memStore{}, t.TempDir(), true)
	assert.ErrorIs(t, err, ErrEmptyDirectory)
}

func TestManifest(t *testing.T) {
	m, err := NewManifest([]File{{Name: "a", Data: []byte("hello")}, {Name: "b", Data: []byte("hello")}})
	require.NoError(t, err)
	assert.True(t, m["a"].Equals(m["b"]))
}
