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

package valgol_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/db47h/meta2/asm"
	"github.com/db47h/meta2/valgol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, code string) (string, error) {
	t.Helper()
	prog, err := asm.Load("code", strings.NewReader(code), valgol.OpcodeTable)
	require.NoError(t, err)
	var b bytes.Buffer
	m, err := valgol.New(prog, valgol.Output(&b))
	require.NoError(t, err)
	err = m.Exec()
	return b.String(), err
}

// pntLine is what PNT produces for text edited at column 0.
func pntLine(text string) string {
	return text + strings.Repeat(" ", 127-len(text)) + "\n"
}

func TestExec(t *testing.T) {
	// X := (1+2)*3; print "OK" if X = 9, "BAD" otherwise
	code := `	B START
X
	BLK 1
START
	LDL 1
	LDL 2
	ADD
	LDL 3
	MLT
	ST X
	LD X
	LDL 9
	EQU
	BFP BAD
	LDL 0
	EDT 'OK'
	PNT
	HLT
BAD
	LDL 0
	EDT 'BAD'
	PNT
	HLT
	END
`
	out, err := run(t, code)
	require.NoError(t, err)
	assert.Equal(t, pntLine("OK"), out)
}

func TestExec_branches(t *testing.T) {
	// count down from 3, printing a mark per iteration
	code := `	B START
I
	BLK 1
START
	LDL 3
	ST I
LOOP
	LDL 0
	EDT '*'
	PNT
	LD I
	LDL 1
	SUB
	ST I
	LD I
	BTP LOOP
	HLT
	END
`
	out, err := run(t, code)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat(pntLine("*"), 3), out)
}

func TestExec_editColumns(t *testing.T) {
	code := `	B START
START
	LDL 5
	EDT 'A'
	LDL 0
	EDT 'B'
	PNT
	HLT
	END
`
	out, err := run(t, code)
	require.NoError(t, err)
	assert.Equal(t, "B    A"+strings.Repeat(" ", 121)+"\n", out)
}

func TestExec_errors(t *testing.T) {
	data := []struct {
		name string
		code string
		err  string
	}{
		{"run_into_data", "\tB DATA\nDATA\n\tBLK 1\n\tEND\n", "attempt to execute non-executable instruction at index 1"},
		{"sp_unimplemented", "\tB START\nSTART\n\tSP 1\n\tEND\n", "attempt to execute non-executable instruction at index 1"},
		{"underflow", "\tB START\nSTART\n\tADD\n\tHLT\n\tEND\n", "stack underflow"},
		{"edit_overflow", "\tB START\nSTART\n\tLDL 126\n\tEDT 'wide'\n\tHLT\n\tEND\n", "edit of 4 bytes at column 126 exceeds the print area"},
	}
	for _, d := range data {
		_, err := run(t, d.code)
		require.Error(t, err, d.name)
		assert.EqualError(t, err, d.err, d.name)
	}
}
