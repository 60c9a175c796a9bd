// This file is part of meta2 - https://github.com/db47h/meta2
//
// Copyright 2017 Denis Bernard <db047h@gmail.com>
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

// Command meta2m runs a compiled META II program against an input file and
// writes the generated target assembly to standard output.
package main

import (
	"bufio"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/db47h/meta2/asm"
	"github.com/db47h/meta2/vm"
	"gopkg.in/urfave/cli.v2"
)

func main() {
	app := &cli.App{
		Name:      "meta2m",
		Usage:     "run a compiled META II program against an input file",
		ArgsUsage: "<code> <input>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "backtrack",
				Aliases: []string{"b"},
				Usage:   "rewind on rule failure instead of halting the parse",
			},
			&cli.BoolFlag{
				Name:    "dump",
				Aliases: []string{"d"},
				Usage:   "dump the loaded instructions before executing",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 2 {
				cli.ShowAppHelp(c)
				return cli.Exit("", 1)
			}
			codePath, inputPath := c.Args().Get(0), c.Args().Get(1)
			prog, err := load(codePath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("meta2m: %v", err), 1)
			}
			if c.Bool("dump") {
				asm.Disassemble(vm.OpcodeTable, prog, os.Stdout)
			}
			input, err := ioutil.ReadFile(inputPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("meta2m: %v", err), 1)
			}
			w := bufio.NewWriter(os.Stdout)
			opts := []vm.Option{vm.Output(w)}
			if c.Bool("backtrack") {
				opts = append(opts, vm.Backtrack())
			}
			m, err := vm.New(prog, opts...)
			if err != nil {
				return cli.Exit(fmt.Sprintf("meta2m: %s: %v", codePath, err), 1)
			}
			err = m.Exec(inputPath, input)
			if ferr := w.Flush(); err == nil {
				err = ferr
			}
			if err != nil {
				return cli.Exit(fmt.Sprintf("meta2m: %v", err), 1)
			}
			return nil
		},
	}
	app.Run(os.Args)
}

func load(path string) ([]asm.Instr, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return asm.Load(path, bufio.NewReader(f), vm.OpcodeTable)
}
