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

// Package mem provides address types and constants for the Sv39
// virtual-memory scheme: 4 KiB pages translated through a 3-level radix
// table with 512 entries per level.
package mem

import "fmt"

const (
	// PageShift is the width in bits of the in-page offset.
	PageShift = 12

	// PageSize is the size in bytes of a page or frame.
	PageSize = 1 << PageShift

	// TableLevels is the depth of the translation table.
	TableLevels = 3

	// TableIndexBits is the width in bits of one level's index slice of
	// a virtual page number.
	TableIndexBits = 9

	// EntriesPerTable is the fan-out of one table node.
	EntriesPerTable = 1 << TableIndexBits
)

// VirtAddr is a virtual address.
type VirtAddr uint64

// PhysAddr is a physical address.
type PhysAddr uint64

// PageOffset returns the in-page offset of the address.
func (v VirtAddr) PageOffset() uint64 {
	return uint64(v) & (PageSize - 1)
}

// RoundDown returns the address rounded down to a page boundary.
func (v VirtAddr) RoundDown() VirtAddr {
	return v &^ (PageSize - 1)
}

// RoundUp returns the address rounded up to a page boundary.
func (v VirtAddr) RoundUp() VirtAddr {
	return (v + PageSize - 1).RoundDown()
}

// IsPageAligned returns true if the address lies on a page boundary.
func (v VirtAddr) IsPageAligned() bool {
	return v.PageOffset() == 0
}

// String implements fmt.Stringer.String.
func (v VirtAddr) String() string {
	return fmt.Sprintf("%#x", uint64(v))
}

// String implements fmt.Stringer.String.
func (p PhysAddr) String() string {
	return fmt.Sprintf("%#x", uint64(p))
}
