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
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexKeepsGroupOrder(t *testing.T) {
	var idx Index
	require.NoError(t, json.Unmarshal([]byte(`{"zeta": ["1.png"], "alpha": ["Nothing", "2.png"]}`), &idx))
	require.Len(t, idx.Groups, 2)
	assert.Equal(t, "zeta", idx.Groups[0].Name)
	assert.Equal(t, []string{"Nothing", "2.png"}, idx.Groups[1].Items)

	raw, err := json.Marshal(&idx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zeta": ["1.png"], "alpha": ["Nothing", "2.png"]}`, string(raw))
	assert.Less(t, bytes.Index(raw, []byte("zeta")), bytes.Index(raw, []byte("alpha")))

	assert.ErrorIs(t, json.Unmarshal([]byte(`["not", "an", "object"]`), &idx), ErrBadIndex)
}

func TestListAssets(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{"body/b.png", "body/a.png", "eyes/open.png", "eyes/notes.txt", "top.png"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.Dir(p)), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, p), []byte(p), 0o644))
	}

	idx, err := ListAssets(root, "")
	require.NoError(t, err)
	assert.Equal(t, []Group{
		{Name: ".", Items: []string{"top.png"}},
		{Name: "body", Items: []string{"a.png", "b.png"}},
		{Name: "eyes", Items: []string{"open.png"}},
	}, idx.Groups)

	txt, err := ListAssets(root, ".txt")
	require.NoError(t, err)
	require.Len(t, txt.Groups, 1)
	assert.Equal(t, []string{"notes.txt"}, txt.Groups[0].Items)
}

func TestRenameAssets(t *testing.T) {
	src, dst := t.TempDir(), filepath.Join(t.TempDir(), "scratch")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "body"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "body", "Blue Body.png"), []byte("blue"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "body", "Red Body.png"), []byte("red"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, IndexFile),
		[]byte(`{"body": ["Nothing", "Blue Body.png", "Red Body.png"]}`), 0o644))

	written, err := RenameAssets(src, dst)
	require.NoError(t, err)
	assert.Equal(t, []string{"body_2.png", "body_3.png"}, written)

	red, err := os.ReadFile(filepath.Join(dst, "body_3.png"))
	require.NoError(t, err)
	assert.Equal(t, "red", string(red))
}
