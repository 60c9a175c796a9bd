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

package asm

import (
	"fmt"
	"io"
)

// Opcode identifies a machine instruction. Values are machine specific and
// declared alongside each machine's OpcodeTable.
type Opcode int

// Reserved tags storage cells emitted by ArgNBlk mnemonics. Machines must
// refuse to execute a Reserved cell.
const Reserved Opcode = -1

// ArgKind describes the argument accepted by a mnemonic.
type ArgKind int

// Argument kinds.
const (
	ArgNone ArgKind = iota // no argument
	ArgID                  // label reference, resolved to an instruction index
	ArgStr                 // single-quoted string
	ArgNum                 // decimal integer
	ArgNBlk                // number of storage cells to reserve
)

// Descr describes one mnemonic of a machine's instruction set.
type Descr struct {
	Mne  string
	Op   Opcode
	Kind ArgKind
}

// Instr is one loaded instruction. Exactly one of Str and Val is meaningful,
// as declared by the opcode's ArgKind: Str holds an ArgStr argument, Val an
// ArgNum value or, after fix-up, the instruction index an ArgID argument
// resolved to. Reserved cells use Val as their storage.
type Instr struct {
	Op  Opcode
	Str string
	Val int
}

// Disassemble writes a readable dump of instrs to w, one instruction per
// line, prefixed with its index. Reserved cells print as bare index lines.
func Disassemble(table []Descr, instrs []Instr, w io.Writer) {
	for i := range instrs {
		ir := &instrs[i]
		if ir.Op == Reserved {
			fmt.Fprintf(w, "(%d)\n", i)
			continue
		}
		d := lookupOp(table, ir.Op)
		if d == nil {
			fmt.Fprintf(w, "(%d) ?(%d)\n", i, ir.Op)
			continue
		}
		switch d.Kind {
		case ArgID, ArgNum:
			fmt.Fprintf(w, "(%d) %s(%d) %d\n", i, d.Mne, ir.Op, ir.Val)
		case ArgStr:
			fmt.Fprintf(w, "(%d) %s(%d) '%s'\n", i, d.Mne, ir.Op, ir.Str)
		default:
			fmt.Fprintf(w, "(%d) %s(%d)\n", i, d.Mne, ir.Op)
		}
	}
}

func lookupOp(table []Descr, op Opcode) *Descr {
	for i := range table {
		if table[i].Op == op {
			return &table[i]
		}
	}
	return nil
}
