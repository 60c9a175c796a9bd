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

// Command valgol runs a VALGOL I assembly program, the worked example target
// of the META II system.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/db47h/meta2/asm"
	"github.com/db47h/meta2/valgol"
	"gopkg.in/urfave/cli.v2"
)

func main() {
	app := &cli.App{
		Name:      "valgol",
		Usage:     "run a VALGOL I assembly program",
		ArgsUsage: "<code>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dump",
				Aliases: []string{"d"},
				Usage:   "dump the loaded instructions before executing",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				cli.ShowAppHelp(c)
				return cli.Exit("", 1)
			}
			path := c.Args().Get(0)
			f, err := os.Open(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("valgol: %v", err), 1)
			}
			prog, err := asm.Load(path, bufio.NewReader(f), valgol.OpcodeTable)
			f.Close()
			if err != nil {
				return cli.Exit(fmt.Sprintf("valgol: %v", err), 1)
			}
			if c.Bool("dump") {
				asm.Disassemble(valgol.OpcodeTable, prog, os.Stdout)
			}
			w := bufio.NewWriter(os.Stdout)
			m, err := valgol.New(prog, valgol.Output(w))
			if err != nil {
				return cli.Exit(fmt.Sprintf("valgol: %s: %v", path, err), 1)
			}
			err = m.Exec()
			if ferr := w.Flush(); err == nil {
				err = ferr
			}
			if err != nil {
				return cli.Exit(fmt.Sprintf("valgol: %s: %v", path, err), 1)
			}
			return nil
		},
	}
	app.Run(os.Args)
}
