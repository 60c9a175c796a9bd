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

// Command meta2 compiles a META II grammar to META II machine assembly on
// standard output. Feed the result to meta2m along with an input program.
package main

import (
	"bufio"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/db47h/meta2/lang/meta2"
	"gopkg.in/urfave/cli.v2"
)

func main() {
	app := &cli.App{
		Name:      "meta2",
		Usage:     "compile a META II grammar to META II machine assembly",
		ArgsUsage: "<grammar>",
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				cli.ShowAppHelp(c)
				return cli.Exit("", 1)
			}
			path := c.Args().Get(0)
			src, err := ioutil.ReadFile(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("meta2: %v", err), 1)
			}
			w := bufio.NewWriter(os.Stdout)
			if err = meta2.Compile(path, src, w); err != nil {
				return cli.Exit(fmt.Sprintf("meta2: %v", err), 1)
			}
			if err = w.Flush(); err != nil {
				return cli.Exit(fmt.Sprintf("meta2: %v", err), 1)
			}
			return nil
		},
	}
	app.Run(os.Args)
}
