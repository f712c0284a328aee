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

// Binary vmtool exercises the Sv39 mapping core from the host: it
// builds kernel address spaces against a simulated frame allocator and
// reports what the translation hardware would see.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/osmium-kernel/osmium/pkg/mem/vmm"
)

var debug = flag.Bool("debug", false, "enable debug logging.")

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(new(kmapCmd), "")
	subcommands.Register(new(checkCmd), "")

	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	vmm.SetLogger(logrus.StandardLogger())

	os.Exit(int(subcommands.Execute(context.Background())))
}
