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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/osmium-kernel/osmium/pkg/mem"
	"github.com/osmium-kernel/osmium/pkg/mem/layout"
	"github.com/osmium-kernel/osmium/pkg/mem/pmm"
	"github.com/osmium-kernel/osmium/pkg/mem/vmm"
)

// simControl is an in-process stand-in for the core's translation
// state.
type simControl struct {
	satp vmm.SATP
}

func (c *simControl) SATP() vmm.SATP     { return c.satp }
func (c *simControl) SetSATP(s vmm.SATP) { c.satp = s }
func (c *simControl) FlushTLB()          {}

// kmapCmd implements subcommands.Command for the "kmap" command.
type kmapCmd struct {
	layoutPath string
	frames     int
	translate  string
}

// Name implements subcommands.Command.
func (*kmapCmd) Name() string {
	return "kmap"
}

// Synopsis implements subcommands.Command.
func (*kmapCmd) Synopsis() string {
	return "builds the kernel identity mapping from a layout file and prints it"
}

// Usage implements subcommands.Command.
func (*kmapCmd) Usage() string {
	return `kmap [flags]
`
}

// SetFlags implements subcommands.Command.
func (k *kmapCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&k.layoutPath, "layout", "layout.toml", "path to the kernel layout file.")
	f.IntVar(&k.frames, "frames", 0, "number of frames in the simulated allocator; 0 means the whole free-memory region.")
	f.StringVar(&k.translate, "translate", "", "comma-separated hex virtual addresses to translate after the build.")
}

// Execute implements subcommands.Command.Execute.
func (k *kmapCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	l, err := layout.Load(k.layoutPath)
	if err != nil {
		logrus.Errorf("loading layout: %v", err)
		return subcommands.ExitFailure
	}

	// Table frames come from the free-memory region, just as they
	// would on real hardware.
	avail := int((l.MemoryEnd - l.KernelEnd) / mem.PageSize)
	if k.frames > 0 && k.frames < avail {
		avail = k.frames
	}
	allocator := pmm.NewAllocator(pmm.FrameFromAddress(mem.PhysAddr(l.KernelEnd)), avail)

	as, err := vmm.NewKernel(allocator, l)
	if err != nil {
		logrus.Errorf("building kernel address space: %v", err)
		return subcommands.ExitFailure
	}
	defer as.Release()

	var tc simControl
	as.Activate(&tc)

	fmt.Printf("root table      %s\n", as.RootFrame())
	fmt.Printf("satp            %#x\n", uint64(tc.SATP()))
	fmt.Printf("table frames    %d\n", len(as.TableFrames()))
	fmt.Printf("frames left     %d of %d\n", allocator.FreeFrames(), allocator.TotalFrames())
	fmt.Println("segments:")
	for i := range as.Segments() {
		s := &as.Segments()[i]
		fmt.Printf("  %2d: %s  [%s, %s)\n", i, s, s.Range.Start.Address(), s.Range.End.Address())
	}

	if k.translate == "" {
		return subcommands.ExitSuccess
	}
	for _, field := range strings.Split(k.translate, ",") {
		raw, err := strconv.ParseUint(strings.TrimSpace(field), 0, 64)
		if err != nil {
			logrus.Errorf("bad address %q: %v", field, err)
			return subcommands.ExitUsageError
		}
		va := mem.VirtAddr(raw)
		pa, flags, err := as.Translate(va)
		if err != nil {
			fmt.Fprintf(os.Stdout, "%s -> unmapped\n", va)
			continue
		}
		fmt.Fprintf(os.Stdout, "%s -> %s %s\n", va, pa, flags)
	}
	return subcommands.ExitSuccess
}
