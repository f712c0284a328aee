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
	"github.com/osmium-kernel/osmium/pkg/mem"
	"github.com/osmium-kernel/osmium/pkg/mem/pmm"
)

// AddressSpace is the complete virtual-to-physical mapping state of one
// execution context: an arena of owned table nodes (index 0 is the
// root, created first and never replaced) plus the segments describing
// everything mapped so far. Mapping is append-only; there is no unmap.
type AddressSpace struct {
	allocator *pmm.Allocator
	tables    []*pageTable
	byFrame   map[pmm.Frame]*pageTable
	segments  []Segment
}

// New returns an empty address space rooted at a freshly allocated
// table node.
func New(allocator *pmm.Allocator) (*AddressSpace, error) {
	as := &AddressSpace{
		allocator: allocator,
		byFrame:   make(map[pmm.Frame]*pageTable),
	}
	root, err := newPageTable(allocator)
	if err != nil {
		return nil, err
	}
	as.adopt(root)
	return as, nil
}

// adopt appends a node to the owned arena.
func (as *AddressSpace) adopt(pt *pageTable) {
	as.tables = append(as.tables, pt)
	as.byFrame[pt.frame()] = pt
}

// root returns the root table node.
func (as *AddressSpace) root() *pageTable {
	return as.tables[0]
}

// mapOne installs a leaf entry binding page to frame, allocating and
// linking interior nodes on demand. Nodes created on the way down are
// owned by the address space immediately; if the terminal slot turns
// out to be occupied they stay linked and allocated even though the
// call fails. See the package tests for that accounting.
func (as *AddressSpace) mapOne(page Page, frame pmm.Frame, flags EntryFlags) error {
	pt := as.root()
	indexes := page.tableIndexes()
	for _, idx := range indexes[:mem.TableLevels-1] {
		entry := &pt.entries[idx]
		switch {
		case entry.IsTable():
			pt = as.byFrame[entry.Frame()]
		case entry.IsEmpty():
			next, err := newPageTable(as.allocator)
			if err != nil {
				return err
			}
			*entry = newTableEntry(next.frame())
			as.adopt(next)
			pt = next
		default:
			return ErrAlreadyMapped
		}
	}
	terminal := &pt.entries[indexes[mem.TableLevels-1]]
	if !terminal.IsEmpty() {
		return ErrAlreadyMapped
	}
	*terminal = newLeafEntry(frame, flags)
	return nil
}

// MapLinear maps every page of the range to the identical physical page
// number and records one linear segment. The first per-page failure
// aborts the call; pages mapped before the failure are not unmapped and
// no segment is recorded.
func (as *AddressSpace) MapLinear(r PageRange, flags EntryFlags) error {
	logger.Debugf("linear map %s %s", r, flags)
	for page := r.Start; page < r.End; page++ {
		if err := as.mapOne(page, pmm.Frame(page), flags); err != nil {
			return err
		}
	}
	as.segments = append(as.segments, Segment{Kind: SegmentLinear, Range: r, Flags: flags})
	return nil
}

// MapAlloc maps every page of the range to an independently allocated
// frame and records one framed segment holding the frames. The frames
// need not be contiguous. The first per-page failure aborts the call
// and drops the frames accumulated for the unrecorded segment; pages
// mapped before the failure are not unmapped.
func (as *AddressSpace) MapAlloc(r PageRange, flags EntryFlags) error {
	logger.Debugf("framed map %s %s", r, flags)
	frames := make([]*pmm.FrameTracker, 0, r.NumPages())
	abort := func(err error) error {
		for _, f := range frames {
			f.DecRef()
		}
		return err
	}
	for page := r.Start; page < r.End; page++ {
		tracker, err := as.allocator.Alloc()
		if err != nil {
			return abort(err)
		}
		frames = append(frames, tracker)
		if err := as.mapOne(page, tracker.Frame(), flags); err != nil {
			return abort(err)
		}
	}
	as.segments = append(as.segments, Segment{Kind: SegmentFramed, Range: r, Flags: flags, frames: frames})
	return nil
}

// Translate walks the table without allocating and returns the physical
// address and leaf flags for a virtual address, or ErrInvalidMapping if
// no leaf covers it.
func (as *AddressSpace) Translate(addr mem.VirtAddr) (mem.PhysAddr, EntryFlags, error) {
	pt := as.root()
	indexes := PageFromAddress(addr).tableIndexes()
	for _, idx := range indexes[:mem.TableLevels-1] {
		entry := pt.entries[idx]
		if !entry.IsTable() {
			return 0, 0, ErrInvalidMapping
		}
		pt = as.byFrame[entry.Frame()]
	}
	terminal := pt.entries[indexes[mem.TableLevels-1]]
	if !terminal.IsLeaf() {
		return 0, 0, ErrInvalidMapping
	}
	return terminal.Frame().Address() + mem.PhysAddr(addr.PageOffset()), terminal.Flags(), nil
}

// Segments returns the recorded segments in mapping order. The returned
// slice must not be mutated.
func (as *AddressSpace) Segments() []Segment {
	return as.segments
}

// RootFrame returns the physical page number of the root table node.
func (as *AddressSpace) RootFrame() pmm.Frame {
	return as.root().frame()
}

// TableFrames returns the frames of all owned table nodes in creation
// order, root first.
func (as *AddressSpace) TableFrames() []pmm.Frame {
	frames := make([]pmm.Frame, len(as.tables))
	for i, pt := range as.tables {
		frames[i] = pt.frame()
	}
	return frames
}

// Release returns every owned table node frame and every framed
// segment's backing frames to the allocator. The address space must not
// be used afterwards.
func (as *AddressSpace) Release() {
	for i := range as.segments {
		for _, f := range as.segments[i].frames {
			f.DecRef()
		}
	}
	for _, pt := range as.tables {
		pt.tracker.DecRef()
	}
	as.tables = nil
	as.byFrame = nil
	as.segments = nil
}
