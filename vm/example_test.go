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

package vm_test

import (
	"os"
	"strings"

	"github.com/db47h/meta2/asm"
	"github.com/db47h/meta2/vm"
)

// Run the compiled form of  A = $ ( .ID .OUT('ID ' *) ) .,  over a list of
// identifiers.
func ExampleMachine_Exec() {
	code := `	ADR A
A
L1
	ID
	BF L2
	CL 'ID '
	CI
	OUT
L2
L3
	BT L1
	SET
	BF L4
L4
L5
	R
	END
`
	prog, err := asm.Load("code", strings.NewReader(code), vm.OpcodeTable)
	if err != nil {
		panic(err)
	}
	m, err := vm.New(prog, vm.Output(os.Stdout))
	if err != nil {
		panic(err)
	}
	if err = m.Exec("in", []byte("alpha beta")); err != nil {
		panic(err)
	}
	// Output:
	//	ID alpha
	//	ID beta
}
