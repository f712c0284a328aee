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
	"github.com/pkg/errors"

	"github.com/osmium-kernel/osmium/pkg/mem"
	"github.com/osmium-kernel/osmium/pkg/mem/pmm"
)

// KernelLayout carries the page-aligned boundary addresses of the
// kernel image plus the end of usable physical memory. The boundaries
// come from the link-time layout; NewKernel trusts their ordering
// (TextStart < RodataStart < DataStart < BssStart < BootStackStart <=
// KernelEnd < MemoryEnd) without checking it.
type KernelLayout struct {
	TextStart      mem.VirtAddr
	RodataStart    mem.VirtAddr
	DataStart      mem.VirtAddr
	BssStart       mem.VirtAddr
	BootStackStart mem.VirtAddr
	KernelEnd      mem.VirtAddr
	MemoryEnd      mem.VirtAddr
}

// NewKernel builds the kernel's identity mapping: a rooted address
// space with five linear segments covering the image sections and the
// remaining physical memory. The first failure aborts the build and no
// address space is returned.
func NewKernel(allocator *pmm.Allocator, layout KernelLayout) (*AddressSpace, error) {
	as, err := New(allocator)
	if err != nil {
		return nil, errors.Wrap(err, "allocating root table")
	}
	regions := []struct {
		name       string
		start, end mem.VirtAddr
		flags      EntryFlags
	}{
		{".text", layout.TextStart, layout.RodataStart, FlagRead | FlagExec},
		{".rodata", layout.RodataStart, layout.DataStart, FlagRead},
		{".data", layout.DataStart, layout.BssStart, FlagRead | FlagWrite},
		{".bss", layout.BssStart, layout.BootStackStart, FlagRead | FlagWrite},
		{"free memory", layout.KernelEnd, layout.MemoryEnd, FlagRead | FlagWrite},
	}
	for _, r := range regions {
		if err := as.MapLinear(RangeFromAddresses(r.start, r.end), r.flags); err != nil {
			as.Release()
			return nil, errors.Wrapf(err, "mapping %s", r.name)
		}
	}
	logger.Debug("kernel remapping done")
	return as, nil
}
