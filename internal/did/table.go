// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package did

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// entry pairs a DID's codec with its current stored value.
type entry struct {
	codec Codec
	value Value
}

// Table is the static codec table plus the mutable stored-value map. The
// codec half never changes after construction; the value half is mutated
// only by WriteDataByIdentifier, guarded here with a mutex for the same
// defensive reason the DTC store and download state take one: nothing in
// this simulator mutates it concurrently today, but nothing should have to
// prove that to use it safely tomorrow.
type Table struct {
	mu      sync.Mutex
	entries map[ID]entry
}

// NewTable builds the fixed set of DIDs this simulator exposes.
func NewTable() *Table {
	t := &Table{entries: make(map[ID]entry, 5)}
	t.entries[0xF191] = entry{codec: ASCIICodec(17), value: ASCII("FVB30FKA034ALDFA0")}
	t.entries[0x0021] = entry{codec: UCharLinearCodec(decimal.NewFromFloat(0.5), decimal.Zero), value: Numeric(decimal.NewFromInt(100))}
	t.entries[0x0041] = entry{codec: CharLinearCodec(decimal.NewFromFloat(0.2), decimal.Zero), value: Numeric(decimal.NewFromInt(24))}
	t.entries[0x0051] = entry{codec: UShortLinearCodec(decimal.NewFromFloat(0.1), decimal.Zero), value: Numeric(decimal.NewFromInt(1220))}
	t.entries[0x0061] = entry{codec: ShortLinearCodec(decimal.NewFromFloat(0.01), decimal.Zero), value: Numeric(decimal.NewFromInt(220))}
	return t
}

// Has reports whether id has both a codec and a stored value.
func (t *Table) Has(id ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[id]
	return ok
}

// Codec returns the codec registered for id.
func (t *Table) Codec(id ID) (Codec, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok {
		return nil, false
	}
	return e.codec, true
}

// Read encodes the DID's current stored value through its codec and
// returns the wire bytes, in one call, since ReadDataByIdentifier always
// wants both looked up together.
func (t *Table) Read(id ID) ([]byte, error) {
	t.mu.Lock()
	e, ok := t.entries[id]
	t.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("did: unknown identifier %04X", uint16(id))
	}
	return e.codec.Encode(e.value)
}

// Write decodes b through id's codec and stores the resulting value.
func (t *Table) Write(id ID, b []byte) error {
	t.mu.Lock()
	e, ok := t.entries[id]
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("did: unknown identifier %04X", uint16(id))
	}
	v, err := e.codec.Decode(b)
	if err != nil {
		return err
	}

	t.mu.Lock()
	e.value = v
	t.entries[id] = e
	t.mu.Unlock()
	return nil
}
