// Copyright 2026 The Osmium Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vmm

import (
	"fmt"

	"github.com/osmium-kernel/osmium/pkg/mem/pmm"
)

// EntryFlags holds the permission bits of a page-table entry, in the
// exact bit positions the Sv39 hardware assigns them.
type EntryFlags uint64

// Sv39 page-table entry flag bits.
const (
	FlagValid EntryFlags = 1 << 0
	FlagRead  EntryFlags = 1 << 1
	FlagWrite EntryFlags = 1 << 2
	FlagExec  EntryFlags = 1 << 3
	FlagUser  EntryFlags = 1 << 4

	flagMask EntryFlags = (1 << 10) - 1
	permMask EntryFlags = FlagRead | FlagWrite | FlagExec
)

// String renders the permission bits in ls -l style.
func (f EntryFlags) String() string {
	b := [3]byte{'-', '-', '-'}
	if f&FlagRead != 0 {
		b[0] = 'r'
	}
	if f&FlagWrite != 0 {
		b[1] = 'w'
	}
	if f&FlagExec != 0 {
		b[2] = 'x'
	}
	return string(b[:])
}

const (
	pteFrameShift = 10
	pteFrameMask  = 1<<44 - 1
)

// pageTableEntry is one 64-bit Sv39 table entry: flags in bits 0-9 and
// the physical page number in bits 10-53. An entry is empty (valid bit
// clear), a pointer to a next-level table (valid set, R/W/X clear), or
// a leaf mapping (valid set, at least one of R/W/X set). This layout is
// what the translation hardware reads; nothing above this type may
// depend on the raw encoding.
type pageTableEntry uint64

// newTableEntry encodes a pointer to a next-level table. Only the valid
// bit accompanies the frame number.
func newTableEntry(f pmm.Frame) pageTableEntry {
	return pageTableEntry(checkFrame(f)<<pteFrameShift) | pageTableEntry(FlagValid)
}

// newLeafEntry encodes a terminal mapping of a physical frame with the
// given permissions.
func newLeafEntry(f pmm.Frame, flags EntryFlags) pageTableEntry {
	return pageTableEntry(checkFrame(f)<<pteFrameShift) | pageTableEntry((flags&flagMask)|FlagValid)
}

func checkFrame(f pmm.Frame) uint64 {
	if uint64(f)&^pteFrameMask != 0 {
		panic(fmt.Sprintf("vmm: %s does not fit a table entry", f))
	}
	return uint64(f)
}

// IsEmpty returns true if the entry maps nothing.
func (e pageTableEntry) IsEmpty() bool {
	return e&pageTableEntry(FlagValid) == 0
}

// IsTable returns true if the entry points to a next-level table.
func (e pageTableEntry) IsTable() bool {
	return !e.IsEmpty() && e&pageTableEntry(permMask) == 0
}

// IsLeaf returns true if the entry is a terminal mapping.
func (e pageTableEntry) IsLeaf() bool {
	return !e.IsEmpty() && e&pageTableEntry(permMask) != 0
}

// Frame returns the physical page number held by the entry.
func (e pageTableEntry) Frame() pmm.Frame {
	return pmm.Frame((e >> pteFrameShift) & pteFrameMask)
}

// Flags returns the entry's flag bits.
func (e pageTableEntry) Flags() EntryFlags {
	return EntryFlags(e) & flagMask
}
