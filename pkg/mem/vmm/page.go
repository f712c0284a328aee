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

	"github.com/osmium-kernel/osmium/pkg/mem"
)

// Page is a virtual page number.
type Page uint64

// PageFromAddress returns the page containing the given virtual address.
func PageFromAddress(addr mem.VirtAddr) Page {
	return Page(addr >> mem.PageShift)
}

// Address returns the virtual address of the first byte of the page.
func (p Page) Address() mem.VirtAddr {
	return mem.VirtAddr(p) << mem.PageShift
}

// tableIndexes decomposes the page number into one radix-table index
// per level, root level first.
func (p Page) tableIndexes() [mem.TableLevels]uint16 {
	var idx [mem.TableLevels]uint16
	v := uint64(p)
	for i := mem.TableLevels - 1; i >= 0; i-- {
		idx[i] = uint16(v & (mem.EntriesPerTable - 1))
		v >>= mem.TableIndexBits
	}
	return idx
}

// String implements fmt.Stringer.String.
func (p Page) String() string {
	return fmt.Sprintf("page %#x", uint64(p))
}

// PageRange is a half-open range [Start, End) of virtual pages.
type PageRange struct {
	Start Page
	End   Page
}

// RangeFromAddresses returns the page range covering [start, end): start
// is rounded down to a page boundary and end is rounded up.
func RangeFromAddresses(start, end mem.VirtAddr) PageRange {
	return PageRange{
		Start: PageFromAddress(start.RoundDown()),
		End:   PageFromAddress(end.RoundUp()),
	}
}

// NumPages returns the number of pages in the range.
func (r PageRange) NumPages() int {
	if r.End <= r.Start {
		return 0
	}
	return int(r.End - r.Start)
}

// Contains returns true if the page lies within the range.
func (r PageRange) Contains(p Page) bool {
	return p >= r.Start && p < r.End
}

// Overlaps returns true if the two ranges share at least one page.
func (r PageRange) Overlaps(other PageRange) bool {
	return r.Start < other.End && other.Start < r.End
}

// String implements fmt.Stringer.String.
func (r PageRange) String() string {
	return fmt.Sprintf("pages [%#x, %#x)", uint64(r.Start), uint64(r.End))
}
