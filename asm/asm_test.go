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

package asm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/db47h/meta2/asm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// a small machine covering every argument kind
var testOps = []asm.Descr{
	{Mne: "ADR", Op: 0, Kind: asm.ArgID},
	{Mne: "TST", Op: 1, Kind: asm.ArgStr},
	{Mne: "CLL", Op: 2, Kind: asm.ArgID},
	{Mne: "LDL", Op: 3, Kind: asm.ArgNum},
	{Mne: "BLK", Op: 4, Kind: asm.ArgNBlk},
	{Mne: "R", Op: 5, Kind: asm.ArgNone},
}

func TestLoad(t *testing.T) {
	code := `	ADR MAIN
DATA
	BLK 2
MAIN
	TST 'hello'
	CLL SUB
	LDL 42
	R
SUB
	CLL DATA
	R
`
	instrs, err := asm.Load("test", strings.NewReader(code), testOps)
	require.NoError(t, err)
	want := []asm.Instr{
		{Op: 0, Val: 3},             // ADR MAIN
		{Op: asm.Reserved},          // BLK
		{Op: asm.Reserved},          // BLK
		{Op: 1, Str: "hello"},       // TST
		{Op: 2, Val: 7},             // CLL SUB
		{Op: 3, Val: 42},            // LDL
		{Op: 5},                     // R
		{Op: 2, Val: 1},             // CLL DATA (backward ref)
		{Op: 5},                     // R
	}
	require.Equal(t, want, instrs)
	// every resolved index is a valid instruction index
	for i, ir := range instrs {
		if ir.Op == 0 || ir.Op == 2 {
			assert.GreaterOrEqual(t, ir.Val, 0, "instr %d", i)
			assert.Less(t, ir.Val, len(instrs), "instr %d", i)
		}
	}
}

func TestLoad_errors(t *testing.T) {
	data := []struct {
		name string
		code string
		err  string
	}{
		{"dup_label", "A\nA\n\tR\n", "dup_label:2: label `A' redefined"},
		{"bad_label", "1A\n", "bad_label:1: expecting identifier on label line"},
		{"bad_mne", "\tFOO\n", "bad_mne:1: unknown mnemonic `FOO'"},
		{"blank_line", "   \n", "blank_line:1: expecting mnemonic on instruction line"},
		{"missing_id", "\tCLL\n", "missing_id:1: instruction `CLL' requires an identifier argument"},
		{"missing_str", "\tTST\n", "missing_str:1: instruction `TST' requires a string argument"},
		{"empty_str", "\tTST ''\n", "empty_str:1: instruction `TST' requires a string argument"},
		{"unterm_str", "\tTST 'abc\n", "unterm_str:1: instruction `TST' requires a string argument"},
		{"missing_num", "\tLDL x\n", "missing_num:1: instruction `LDL' requires a number argument"},
		{"nblk_range", "\tBLK 257\n", "nblk_range:1: instruction `BLK': block size `257' out of range [0,256]"},
		{"undef_label", "\tCLL NOWHERE\n", "undef_label:1: label `NOWHERE' referenced but never defined"},
	}
	for _, d := range data {
		instrs, err := asm.Load(d.name, strings.NewReader(d.code), testOps)
		require.Error(t, err, d.name)
		assert.Nil(t, instrs, d.name)
		assert.EqualError(t, err, d.err, d.name)
	}
}

func TestLoad_longLine(t *testing.T) {
	code := "\tTST '" + strings.Repeat("x", 2048) + "'\n"
	_, err := asm.Load("long", strings.NewReader(code), testOps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line longer than")
}

func TestDisassemble(t *testing.T) {
	code := `	ADR MAIN
DATA
	BLK 1
MAIN
	TST 'x'
	LDL 7
	R
`
	instrs, err := asm.Load("dis", strings.NewReader(code), testOps)
	require.NoError(t, err)
	var b bytes.Buffer
	asm.Disassemble(testOps, instrs, &b)
	want := `(0) ADR(0) 2
(1)
(2) TST(1) 'x'
(3) LDL(3) 7
(4) R(5)
`
	assert.Equal(t, want, b.String())
}
