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
	"unsafe"

	"github.com/osmium-kernel/osmium/pkg/mem"
	"github.com/osmium-kernel/osmium/pkg/mem/pmm"
)

// pageTable is one radix-tree node: a single owned frame viewed as
// mem.EntriesPerTable fixed-width entries. Nodes are never shared
// between address spaces.
type pageTable struct {
	tracker *pmm.FrameTracker
	entries *[mem.EntriesPerTable]pageTableEntry
}

// newPageTable allocates a frame, zeroes it and presents it as an empty
// table node.
func newPageTable(allocator *pmm.Allocator) (*pageTable, error) {
	tracker, err := allocator.Alloc()
	if err != nil {
		return nil, err
	}
	words := allocator.Words(tracker.Frame())
	clear(words[:])
	return &pageTable{
		tracker: tracker,
		entries: (*[mem.EntriesPerTable]pageTableEntry)(unsafe.Pointer(words)),
	}, nil
}

// frame returns the physical page number of the node's frame.
func (pt *pageTable) frame() pmm.Frame {
	return pt.tracker.Frame()
}
