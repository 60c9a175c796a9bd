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
	"bytes"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/db47h/meta2/asm"
	"github.com/db47h/meta2/lang/meta2"
	"github.com/db47h/meta2/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) string {
	t.Helper()
	var b bytes.Buffer
	require.NoError(t, meta2.Compile("test.m2", []byte(src), &b))
	return b.String()
}

func TestCompile_minimal(t *testing.T) {
	out := compile(t, ".SYNTAX A A = .EMPTY .,  .END")
	want := "\tADR A\nA\n\tSET\n\tBF L1\nL1\nL2\n\tR\n\tEND\n"
	assert.Equal(t, want, out)
}

func TestCompile_empty(t *testing.T) {
	out := compile(t, ".SYNTAX A .END")
	assert.Equal(t, "\tADR A\n\tEND\n", out)
}

func TestCompile_alternation(t *testing.T) {
	out := compile(t, ".SYNTAX A  A = 'x' .OUT('X') / 'y' .OUT('Y') .,  .END")
	want := `	ADR A
A
	TST 'x'
	BF L1
	CL 'X'
	OUT
L1
	BT L2
	TST 'y'
	BF L3
	CL 'Y'
	OUT
L3
L2
	R
	END
`
	assert.Equal(t, want, out)
}

func TestCompile_iteration(t *testing.T) {
	out := compile(t, ".SYNTAX A  A = $ 'x' .,  .END")
	want := `	ADR A
A
L1
	TST 'x'
	BT L1
	SET
	BF L2
L2
L3
	R
	END
`
	assert.Equal(t, want, out)
}

func TestCompile_outputForms(t *testing.T) {
	out := compile(t, ".SYNTAX A  A = .ID .LABEL * .OUT('GOT ' *1 '/' *2) .,  .END")
	want := `	ADR A
A
	ID
	BF L1
	LB
	CI
	OUT
	CL 'GOT '
	GN1
	CL '/'
	GN2
	OUT
L1
L2
	R
	END
`
	assert.Equal(t, want, out)
}

func TestCompile_primaries(t *testing.T) {
	out := compile(t, ".SYNTAX A  A = B .NUMBER .STRING ( .EMPTY ) .,  B = .ID .,  .END")
	want := `	ADR A
A
	CLL B
	BF L1
	NUM
	BE
	SR
	BE
	SET
	BF L2
L2
L3
	BE
L1
L4
	R
B
	ID
	BF L5
L5
L6
	R
	END
`
	assert.Equal(t, want, out)
}

func TestCompile_errors(t *testing.T) {
	data := []struct {
		name string
		src  string
		err  string
	}{
		{"unterm_str", ".SYNTAX A\nA = 'x .,\n.END", "test.m2:2: unterminated string literal"},
		{"unknown_kw", ".SYNTAX A\nA = .FOO .,\n.END", "test.m2:2: unknown keyword after `.'"},
		{"stray_dot", ".SYNTAX A\nA = . 'x' .,\n.END", "test.m2:2: unknown keyword after `.'"},
		{"bad_primary", ".SYNTAX A\nA = ) .,\n.END", "test.m2:2: unexpected `)'"},
		{"missing_eq", ".SYNTAX A\nA 'x' .,\n.END", "test.m2:2: unexpected `'x''"},
		{"no_syntax", "A = 'x' ., .END", "test.m2:1: unexpected `A'"},
		{"truncated", ".SYNTAX A\nA = 'x' .,", "test.m2:2: unexpected `'"},
	}
	for _, d := range data {
		err := meta2.Compile("test.m2", []byte(d.src), ioutil.Discard)
		require.Error(t, err, d.name)
		assert.EqualError(t, err, d.err, d.name)
	}
}

// the compiled grammar must behave, not just read well: compile, load and
// run the result against sample inputs
func TestCompile_endToEnd(t *testing.T) {
	code := compile(t, ".SYNTAX A  A = B / 'x' .OUT('PLAIN') .,  B = 'x' .OUT('PAIR') 'y' .,  .END")
	prog, err := asm.Load("code", strings.NewReader(code), vm.OpcodeTable)
	require.NoError(t, err)

	var b bytes.Buffer
	m, err := vm.New(prog, vm.Output(&b), vm.Backtrack())
	require.NoError(t, err)

	require.NoError(t, m.Exec("in", []byte("xy")))
	assert.Equal(t, "\tPAIR\n", b.String())

	b.Reset()
	require.NoError(t, m.Exec("in", []byte("xz")))
	assert.Equal(t, "\tPLAIN\n", b.String(), "failed sub-parse rewinds and the second alternative runs")

	b.Reset()
	err = m.Exec("in", []byte("q"))
	require.EqualError(t, err, "in:1: syntax error")
}

// self-hosting fixed point: compiling the META II self-description with the
// hand-written compiler and running the compiled grammar over its own source must produce the very
// same code, byte for byte
func TestCompile_selfHost(t *testing.T) {
	src, err := ioutil.ReadFile("testdata/metaii.m2")
	require.NoError(t, err)

	var b bytes.Buffer
	require.NoError(t, meta2.Compile("metaii.m2", src, &b))
	first := b.String()

	prog, err := asm.Load("metaii.m2a", strings.NewReader(first), vm.OpcodeTable)
	require.NoError(t, err)

	for _, opts := range [][]vm.Option{nil, {vm.Backtrack()}} {
		var out bytes.Buffer
		m, err := vm.New(prog, append(opts, vm.Output(&out))...)
		require.NoError(t, err)
		require.NoError(t, m.Exec("metaii.m2", src))
		assert.Equal(t, first, out.String())
	}
}
