// This file is part of flip-jump - https://github.com/Mr-Bossman/flip-jump
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

// Package flipjump glues the assembler, the interpreter and the
// configuration layer together into the handful of operations the
// command-line driver needs: assemble source files to an image, and run an
// image to completion against a chosen I/O adapter. Loading an image from
// disk is vm.Load.
package flipjump

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/Mr-Bossman/flip-jump/asm"
	"github.com/Mr-Bossman/flip-jump/config"
	"github.com/Mr-Bossman/flip-jump/vm"
)

// GarbagePolicyFromString maps a config string to a vm.GarbagePolicy.
func GarbagePolicyFromString(s string) (vm.GarbagePolicy, error) {
	switch s {
	case "stop", "":
		return vm.GarbageStop, nil
	case "warn":
		return vm.GarbageOnlyWarning, nil
	case "slow":
		return vm.GarbageSlowRead, nil
	case "continue":
		return vm.GarbageContinue, nil
	default:
		return 0, errors.Errorf("unknown garbage_policy %q", s)
	}
}

// AssembleFiles reads every named file and assembles them together into a
// single image, per asm.Assemble's "one shared namespace" semantics. The
// second return value holds non-fatal diagnostics.
func AssembleFiles(w vm.WordSize, paths ...string) (*vm.Image, []string, error) {
	srcs := make([]asm.Source, len(paths))
	for i, p := range paths {
		b, err := os.ReadFile(p) // #nosec G304 -- user-supplied source path
		if err != nil {
			return nil, nil, errors.Wrapf(err, "read %s", p)
		}
		srcs[i] = asm.Source{Name: p, Text: string(b)}
	}
	return asm.Assemble(w, srcs...)
}

// RunOptions configures a Run call.
type RunOptions struct {
	Input         io.Reader
	Output        io.Writer
	GarbagePolicy vm.GarbagePolicy
	SlowReadDelay time.Duration
	Logger        *log.Logger
	Hook          vm.BreakHook
	EntryPoint    uint64
}

// Run loads img into a fresh Memory and executes it to completion, applying
// opts. It returns the interpreter's termination statistics; an error
// writing the output stream is stored in their Err field when that field is
// otherwise empty. The returned error reports a failure to set up the run.
func Run(img *vm.Image, opts RunOptions) (vm.TerminationStatistics, error) {
	memOpts := []vm.MemoryOption{vm.WithGarbagePolicy(opts.GarbagePolicy)}
	if opts.Logger != nil {
		memOpts = append(memOpts, vm.WithLogger(opts.Logger))
	}
	if opts.SlowReadDelay > 0 {
		memOpts = append(memOpts, vm.WithSlowReadDelay(opts.SlowReadDelay))
	}
	mem, err := vm.NewMemory(img, memOpts...)
	if err != nil {
		return vm.TerminationStatistics{}, err
	}

	stdio := vm.NewStandardIO(opts.Input, opts.Output)
	instOpts := []vm.Option{vm.WithIO(stdio)}
	if opts.Hook != nil {
		instOpts = append(instOpts, vm.WithBreakHook(opts.Hook))
	}
	if opts.EntryPoint != 0 {
		instOpts = append(instOpts, vm.WithEntryPoint(opts.EntryPoint))
	}

	inst, err := vm.New(mem, instOpts...)
	if err != nil {
		return vm.TerminationStatistics{}, err
	}

	stats := inst.Run()
	if werr := stdio.WriteErr(); werr != nil && stats.Err == nil {
		stats.Err = werr
	}
	return stats, nil
}

// RunOptionsFromConfig builds a RunOptions from a loaded Config, layering
// in the given I/O streams and hook.
func RunOptionsFromConfig(cfg *config.Config, in io.Reader, out io.Writer, hook vm.BreakHook) (RunOptions, error) {
	policy, err := GarbagePolicyFromString(cfg.Run.GarbagePolicy)
	if err != nil {
		return RunOptions{}, err
	}
	delay, err := time.ParseDuration(cfg.Run.SlowReadDelay)
	if err != nil {
		delay = time.Millisecond
	}
	return RunOptions{
		Input:         in,
		Output:        out,
		GarbagePolicy: policy,
		SlowReadDelay: delay,
		Hook:          hook,
	}, nil
}
