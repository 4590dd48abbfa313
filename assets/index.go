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
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IndexFile is the name of the layer index expected in an asset directory.
const IndexFile = "assetIndex.json"

// Nothing marks an empty trait slot in a layer index. It keeps its position
// in the numbering but has no file.
const Nothing = "Nothing"

var ErrBadIndex = errors.New("assets: malformed asset index")

// Group is one trait layer: a directory of files in their canonical order.
type Group struct {
	Name  string
	Items []string
}

// Index maps trait groups to their ordered file names. Group order follows
// the document, which a plain map would lose.
type Index struct {
	Groups []Group
}

// ReadIndex loads dir/assetIndex.json.
func ReadIndex(dir string) (*Index, error) {
	raw, err := os.ReadFile(filepath.Join(dir, IndexFile))
	if err != nil {
		return nil, err
	}
	idx := new(Index)
	if err := json.Unmarshal(raw, idx); err != nil {
		return nil, err
	}
	return idx, nil
}

// UnmarshalJSON decodes {"group": ["item", ...], ...} keeping key order.
func (idx *Index) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return ErrBadIndex
	}
	idx.Groups = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return ErrBadIndex
		}
		var items []string
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("%w: group %q: %v", ErrBadIndex, name, err)
		}
		idx.Groups = append(idx.Groups, Group{Name: name, Items: items})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON encodes the index as an object in group order.
func (idx *Index) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range idx.Groups {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(g.Name)
		if err != nil {
			return nil, err
		}
		items := g.Items
		if items == nil {
			items = []string{}
		}
		list, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(list)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Write stores the index as indented JSON.
func (idx *Index) Write(w io.Writer) error {
	raw, err := idx.MarshalJSON()
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err = w.Write(out.Bytes())
	return err
}

// ListAssets walks root and groups every file with extension ext by its
// directory relative to root. Groups and items are sorted by name. An empty
// ext means ".png".
func ListAssets(root, ext string) (*Index, error) {
	if ext == "" {
		ext = ".png"
	}
	groups := make(map[string][]string)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ext) {
			return nil
		}
		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return err
		}
		group := filepath.ToSlash(rel)
		groups[group] = append(groups[group], d.Name())
		return nil
	})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	idx := &Index{Groups: make([]Group, 0, len(names))}
	for _, name := range names {
		items := groups[name]
		sort.Strings(items)
		idx.Groups = append(idx.Groups, Group{Name: name, Items: items})
	}
	return idx, nil
}

// FlatName is the name an indexed asset gets in a flat upload directory:
// the group, the 1-based position in the group and the original extension.
func FlatName(group string, position int, item string) string {
	return fmt.Sprintf("%s_%d%s", strings.ReplaceAll(group, "/", "_"), position+1, filepath.Ext(item))
}

// RenameAssets copies every file listed in source/assetIndex.json into
// destination under its FlatName, ready for a directory upload. Nothing
// slots are skipped. It returns the names written, in index order.
func RenameAssets(source, destination string) ([]string, error) {
	idx, err := ReadIndex(source)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(destination, 0o755); err != nil {
		return nil, err
	}
	var written []string
	for _, g := range idx.Groups {
		for i, item := range g.Items {
			if item == Nothing {
				continue
			}
			name := FlatName(g.Name, i, item)
			if err := copyFile(filepath.Join(source, g.Name, item), filepath.Join(destination, name)); err != nil {
				return written, fmt.Errorf("assets: rename %s/%s: %w", g.Name, item, err)
			}
			written = append(written, name)
		}
	}
	return written, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
