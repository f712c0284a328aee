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

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/osmium-kernel/osmium/pkg/mem"
	"github.com/osmium-kernel/osmium/pkg/mem/layout"
)

// checkCmd implements subcommands.Command for the "check" command.
type checkCmd struct {
	layoutPath string
}

// Name implements subcommands.Command.
func (*checkCmd) Name() string {
	return "check"
}

// Synopsis implements subcommands.Command.
func (*checkCmd) Synopsis() string {
	return "validates a kernel layout file"
}

// Usage implements subcommands.Command.
func (*checkCmd) Usage() string {
	return `check [flags]
`
}

// SetFlags implements subcommands.Command.
func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.layoutPath, "layout", "layout.toml", "path to the kernel layout file.")
}

// Execute implements subcommands.Command.Execute.
func (c *checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	l, err := layout.Load(c.layoutPath)
	if err != nil {
		logrus.Errorf("invalid layout: %v", err)
		return subcommands.ExitFailure
	}
	regions := []struct {
		name       string
		start, end mem.VirtAddr
		perms      string
	}{
		{".text", l.TextStart, l.RodataStart, "r-x"},
		{".rodata", l.RodataStart, l.DataStart, "r--"},
		{".data", l.DataStart, l.BssStart, "rw-"},
		{".bss", l.BssStart, l.BootStackStart, "rw-"},
		{"boot stack", l.BootStackStart, l.KernelEnd, "(not remapped)"},
		{"free memory", l.KernelEnd, l.MemoryEnd, "rw-"},
	}
	for _, r := range regions {
		fmt.Printf("%-12s [%s, %s)  %6d KiB  %s\n",
			r.name, r.start, r.end, (r.end-r.start)/1024, r.perms)
	}
	return subcommands.ExitSuccess
}
