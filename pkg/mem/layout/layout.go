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

// Package layout reads a kernel memory layout from a TOML file. The
// file stands in for the link-time symbols a booting kernel would read
// its section boundaries from, so the ordering and alignment
// preconditions the mapping code relies on are enforced here, at the
// configuration boundary.
package layout

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/osmium-kernel/osmium/pkg/mem"
	"github.com/osmium-kernel/osmium/pkg/mem/vmm"
)

// file mirrors the TOML document.
//
//	text_start       = 0x80200000
//	rodata_start     = 0x80400000
//	data_start       = 0x80500000
//	bss_start        = 0x80600000
//	boot_stack_start = 0x80700000
//	kernel_end       = 0x80800000
//	memory_end       = 0x88000000
type file struct {
	TextStart      uint64 `toml:"text_start"`
	RodataStart    uint64 `toml:"rodata_start"`
	DataStart      uint64 `toml:"data_start"`
	BssStart       uint64 `toml:"bss_start"`
	BootStackStart uint64 `toml:"boot_stack_start"`
	KernelEnd      uint64 `toml:"kernel_end"`
	MemoryEnd      uint64 `toml:"memory_end"`
}

// Load reads and validates a layout file.
func Load(path string) (vmm.KernelLayout, error) {
	var f file
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return vmm.KernelLayout{}, errors.Wrapf(err, "decoding layout %s", path)
	}
	return f.validate()
}

// Parse decodes and validates a layout document.
func Parse(data string) (vmm.KernelLayout, error) {
	var f file
	if _, err := toml.Decode(data, &f); err != nil {
		return vmm.KernelLayout{}, errors.Wrap(err, "decoding layout")
	}
	return f.validate()
}

func (f file) validate() (vmm.KernelLayout, error) {
	l := vmm.KernelLayout{
		TextStart:      mem.VirtAddr(f.TextStart),
		RodataStart:    mem.VirtAddr(f.RodataStart),
		DataStart:      mem.VirtAddr(f.DataStart),
		BssStart:       mem.VirtAddr(f.BssStart),
		BootStackStart: mem.VirtAddr(f.BootStackStart),
		KernelEnd:      mem.VirtAddr(f.KernelEnd),
		MemoryEnd:      mem.VirtAddr(f.MemoryEnd),
	}
	boundaries := []struct {
		name string
		addr mem.VirtAddr
	}{
		{"text_start", l.TextStart},
		{"rodata_start", l.RodataStart},
		{"data_start", l.DataStart},
		{"bss_start", l.BssStart},
		{"boot_stack_start", l.BootStackStart},
		{"kernel_end", l.KernelEnd},
		{"memory_end", l.MemoryEnd},
	}
	for _, b := range boundaries {
		if !b.addr.IsPageAligned() {
			return vmm.KernelLayout{}, errors.Errorf("%s %s is not page aligned", b.name, b.addr)
		}
	}
	// Strictly ascending image sections, then boot_stack_start <=
	// kernel_end < memory_end.
	for i := 1; i < 5; i++ {
		if boundaries[i].addr <= boundaries[i-1].addr {
			return vmm.KernelLayout{}, errors.Errorf("%s %s must be above %s %s",
				boundaries[i].name, boundaries[i].addr, boundaries[i-1].name, boundaries[i-1].addr)
		}
	}
	if l.KernelEnd < l.BootStackStart {
		return vmm.KernelLayout{}, errors.Errorf("kernel_end %s must not be below boot_stack_start %s", l.KernelEnd, l.BootStackStart)
	}
	if l.MemoryEnd <= l.KernelEnd {
		return vmm.KernelLayout{}, errors.Errorf("memory_end %s must be above kernel_end %s", l.MemoryEnd, l.KernelEnd)
	}
	return l, nil
}
