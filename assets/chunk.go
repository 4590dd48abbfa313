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

// Package assets prepares files for the on-chain asset Storage contract and
// for IPFS directory uploads. Files are cut into 32-byte EVM words, batched
// so that every storage transaction stays under the contract size budget,
// and written with one createAsset followed by appendAssetContent calls.
package assets

import (
	"bytes"
	"compress/flate"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	// WordSize is the size of one EVM storage word.
	WordSize = 32

	// ChunkWords is the number of words sent per storage transaction,
	// 8 KiB of payload.
	ChunkWords = (1024 * 8) / WordSize
)

// Word is one 32-byte storage slot.
type Word [WordSize]byte

// Chunked is a file split into transaction-sized batches of words.
type Chunked struct {
	// Length is the number of bytes that were chunked. For deflated input
	// it is the compressed length.
	Length int

	// Parts holds the word batches in file order.
	Parts [][]Word

	// InflatedSize is the original file size. It equals Length unless the
	// content was compressed.
	InflatedSize int
}

// Compressed reports whether the content was raw-deflated before chunking.
func (c *Chunked) Compressed() bool { return c.InflatedSize != c.Length }

// Words returns all batches flattened back into a single slice.
func (c *Chunked) Words() []Word {
	var n int
	for _, p := range c.Parts {
		n += len(p)
	}
	out := make([]Word, 0, n)
	for _, p := range c.Parts {
		out = append(out, p...)
	}
	return out
}

// Bytes reassembles the chunked bytes, dropping the zero padding of the
// last word.
func (c *Chunked) Bytes() []byte {
	buf := make([]byte, 0, len(c.Words())*WordSize)
	for _, w := range c.Words() {
		buf = append(buf, w[:]...)
	}
	return buf[:c.Length]
}

// WordsOf splits buf into 32-byte words. Only the last word is padded, with
// trailing zero bytes.
func WordsOf(buf []byte) []Word {
	words := make([]Word, (len(buf)+WordSize-1)/WordSize)
	for i := range words {
		copy(words[i][:], buf[i*WordSize:])
	}
	return words
}

// ChunkBuffer splits buf into words and groups them ChunkWords at a time.
func ChunkBuffer(buf []byte) Chunked {
	words := WordsOf(buf)
	parts := make([][]Word, 0, (len(words)+ChunkWords-1)/ChunkWords)
	for i := 0; i < len(words); i += ChunkWords {
		end := i + ChunkWords
		if end > len(words) {
			end = len(words)
		}
		parts = append(parts, words[i:end])
	}
	return Chunked{Length: len(buf), Parts: parts, InflatedSize: len(buf)}
}

// ChunkDeflate raw-deflates buf at best compression and chunks the result.
func ChunkDeflate(buf []byte) (Chunked, error) {
	var compressed bytes.Buffer
	w, err := flate.NewWriter(&compressed, flate.BestCompression)
	if err != nil {
		return Chunked{}, err
	}
	if _, err := w.Write(buf); err != nil {
		return Chunked{}, err
	}
	if err := w.Close(); err != nil {
		return Chunked{}, err
	}
	c := ChunkBuffer(compressed.Bytes())
	c.InflatedSize = len(buf)
	return c, nil
}

// Inflate returns the original content of c, decompressing it if needed.
func Inflate(c Chunked) ([]byte, error) {
	raw := c.Bytes()
	if !c.Compressed() {
		return raw, nil
	}
	r := flate.NewReader(bytes.NewReader(raw))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("assets: inflate: %w", err)
	}
	return out, nil
}

// ChunkFile reads and chunks a file. SVG sources are text and compress
// well, so they are deflated first; everything else is stored verbatim.
func ChunkFile(path string) (Chunked, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Chunked{}, err
	}
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return ChunkDeflate(buf)
	}
	return ChunkBuffer(buf), nil
}

// DeserializeString concatenates words and returns their text with all NUL
// bytes removed.
func DeserializeString(words []Word) string {
	var buf bytes.Buffer
	for _, w := range words {
		buf.Write(w[:])
	}
	return strings.ReplaceAll(buf.String(), "\x00", "")
}

// SmallIntToWord encodes v as a big-endian, left-padded word.
func SmallIntToWord(v uint64) Word {
	var w Word
	for i := 0; i < 8; i++ {
		w[WordSize-1-i] = byte(v >> (8 * i))
	}
	return w
}

// toContent converts a batch to the [][32]byte form the ABI encoder expects.
func toContent(words []Word) [][32]byte {
	out := make([][32]byte, len(words))
	for i, w := range words {
		out[i] = w
	}
	return out
}
