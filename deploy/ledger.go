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

package deploy

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// ErrNotRecorded is returned by Ledger.Latest when nothing matches.
var ErrNotRecorded = errors.New("deploy: no matching deployment in ledger")

// Ledger is an append-only YAML file of deployment records.
type Ledger struct {
	path string
	mu   sync.Mutex
}

// OpenLedger returns a ledger backed by path. The file is created on the
// first Append.
func OpenLedger(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the backing file.
func (l *Ledger) Path() string { return l.path }

// Records returns every record in file order.
func (l *Ledger) Records() ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read()
}

func (l *Ledger) read() ([]Record, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("deploy: ledger %s: %w", l.path, err)
	}
	return records, nil
}

// Append adds rec to the end of the ledger.
func (l *Ledger) Append(rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.read()
	if err != nil {
		return err
	}
	records = append(records, rec)
	data, err := yaml.Marshal(records)
	if err != nil {
		return err
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, l.path)
}

// Latest returns the address of the most recent deployment of kind on
// network. An empty network matches any.
func (l *Ledger) Latest(kind Kind, network string) (common.Address, error) {
	records, err := l.Records()
	if err != nil {
		return common.Address{}, err
	}
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		if r.Kind == kind.String() && (network == "" || r.Network == network) {
			return r.Address, nil
		}
	}
	return common.Address{}, fmt.Errorf("%w: %s on %q", ErrNotRecorded, kind, network)
}
