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

package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/Mr-Bossman/flip-jump/config"
	"github.com/Mr-Bossman/flip-jump/lang/flipjump"
	"github.com/Mr-Bossman/flip-jump/vm"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: flipjump <asm|run> [flags] file...")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	var err error
	switch os.Args[1] {
	case "asm":
		err = runAsm(os.Args[2:])
	case "run":
		err = runRun(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "flipjump: %+v\n", err)
		os.Exit(1)
	}
}

func runAsm(args []string) error {
	fs := flag.NewFlagSet("asm", flag.ExitOnError)
	out := fs.String("o", "a.fj", "output image `filename`")
	wordSize := fs.Int("w", 64, "word size in bits: 8, 16, 32 or 64")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("asm: no input files")
	}
	w, err := vm.ParseWordSize(*wordSize)
	if err != nil {
		return err
	}

	img, warnings, err := flipjump.AssembleFiles(w, fs.Args()...)
	for _, msg := range warnings {
		fmt.Fprintln(os.Stderr, "flipjump: warning:", msg)
	}
	if err != nil {
		return err
	}

	f, err := os.Create(*out) // #nosec G304 -- user-supplied output path
	if err != nil {
		return errors.Wrap(err, "create output image")
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := img.WriteTo(bw); err != nil {
		return errors.Wrap(err, "write output image")
	}
	return bw.Flush()
}

func runRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	raw := fs.Bool("raw", false, "put the terminal in raw mode for character-at-a-time input")
	entry := fs.Uint64("entry", 0, "initial instruction pointer (bit address)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("run: expected exactly one image file")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	f, err := os.Open(fs.Arg(0)) // #nosec G304 -- user-supplied image path
	if err != nil {
		return errors.Wrap(err, "open image")
	}
	defer f.Close()

	img, err := vm.Load(bufio.NewReader(f))
	if err != nil {
		return errors.Wrap(err, "load image")
	}

	var tearDown func()
	if *raw {
		tearDown, err = setRawIO()
		if err != nil {
			return err
		}
		defer tearDown()
	}

	stdout := bufio.NewWriter(os.Stdout)
	defer stdout.Flush()

	opts, err := flipjump.RunOptionsFromConfig(cfg, os.Stdin, stdout, nil)
	if err != nil {
		return err
	}
	opts.EntryPoint = *entry

	stats, err := flipjump.Run(img, opts)
	if err != nil {
		return err
	}
	if stats.Cause == vm.CauseError {
		return errors.Wrapf(stats.Err, "run terminated at ip=%d", stats.IP)
	}
	fmt.Fprintf(os.Stderr, "flipjump: %s after %d ops, %d flips\n", stats.Cause, stats.OpCount, stats.FlipCount)
	return nil
}
