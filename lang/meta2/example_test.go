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

package meta2_test

import (
	"os"

	"github.com/db47h/meta2/lang/meta2"
)

func ExampleCompile() {
	src := ".SYNTAX A  A = 'x' .OUT('X') .,  .END"
	err := meta2.Compile("example.m2", []byte(src), os.Stdout)
	if err != nil {
		panic(err)
	}
	// Output:
	//	ADR A
	// A
	//	TST 'x'
	//	BF L1
	//	CL 'X'
	//	OUT
	// L1
	// L2
	//	R
	//	END
}
