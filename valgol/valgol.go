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

// Package valgol implements the VALGOL I machine, the worked example target
// of the META II system: a fixed-size integer stack machine with a 128 byte
// print-edit area. The instruction at index 0 carries the entry point in its
// label argument; BLK reserves data cells that LD and ST address through
// their label arguments. EDT places text in the print area at the column
// given by the stack top, and PNT prints and clears the area.
package valgol

import (
	"io"
	"os"

	"github.com/db47h/meta2/asm"
	"github.com/db47h/meta2/internal/m2i"
	"github.com/pkg/errors"
)

// VALGOL I machine opcodes.
const (
	OpLD  asm.Opcode = iota // push the value of a data cell
	OpLDL                   // push a literal
	OpST                    // pop into a data cell
	OpADD                   // add
	OpSUB                   // subtract
	OpMLT                   // multiply
	OpEQU                   // compare for equality, pushing 1 or 0
	OpB                     // branch
	OpBFP                   // pop, branch if zero
	OpBTP                   // pop, branch if non-zero
	OpEDT                   // edit a string into the print area
	OpPNT                   // print and clear the print area
	OpHLT                   // halt
	OpSP                    // reserved by the original design, unimplemented
	OpBLK                   // reserve data cells; assembly time only
	OpEND                   // end of program marker, never executed
)

// OpcodeTable describes the VALGOL I instruction set to the asm loader.
var OpcodeTable = []asm.Descr{
	{Mne: "LD", Op: OpLD, Kind: asm.ArgID},
	{Mne: "LDL", Op: OpLDL, Kind: asm.ArgNum},
	{Mne: "ST", Op: OpST, Kind: asm.ArgID},
	{Mne: "ADD", Op: OpADD, Kind: asm.ArgNone},
	{Mne: "SUB", Op: OpSUB, Kind: asm.ArgNone},
	{Mne: "MLT", Op: OpMLT, Kind: asm.ArgNone},
	{Mne: "EQU", Op: OpEQU, Kind: asm.ArgNone},
	{Mne: "B", Op: OpB, Kind: asm.ArgID},
	{Mne: "BFP", Op: OpBFP, Kind: asm.ArgID},
	{Mne: "BTP", Op: OpBTP, Kind: asm.ArgID},
	{Mne: "EDT", Op: OpEDT, Kind: asm.ArgStr},
	{Mne: "PNT", Op: OpPNT, Kind: asm.ArgNone},
	{Mne: "HLT", Op: OpHLT, Kind: asm.ArgNone},
	{Mne: "SP", Op: OpSP, Kind: asm.ArgNum},
	{Mne: "BLK", Op: OpBLK, Kind: asm.ArgNBlk},
	{Mne: "END", Op: OpEND, Kind: asm.ArgNone},
}

const (
	stackSize = 64
	pntSize   = 127 // usable columns of the print-edit area
)

// Option interface.
type Option func(*Machine) error

// Output sets the output Writer. It defaults to os.Stdout.
func Output(w io.Writer) Option {
	return func(m *Machine) error { m.out = w; return nil }
}

// Machine is a VALGOL I machine instance. Data cells reserved by BLK live in
// the instruction array itself, so running a program mutates it; load a
// fresh copy to rerun.
type Machine struct {
	prog []asm.Instr
	out  io.Writer

	stack [stackSize]int
	tos   int
	pnt   [pntSize]byte
}

// New creates a Machine executing prog. The entry point is the label
// argument of the instruction at index 0.
func New(prog []asm.Instr, opts ...Option) (*Machine, error) {
	if len(prog) == 0 {
		return nil, errors.New("empty program")
	}
	m := &Machine{prog: prog, out: os.Stdout}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Machine) push(v int) error {
	if m.tos+1 >= stackSize {
		return errors.New("stack overflow")
	}
	m.tos++
	m.stack[m.tos] = v
	return nil
}

func (m *Machine) clearPnt() {
	for i := range m.pnt {
		m.pnt[i] = ' '
	}
}

// Exec runs the program until HLT or the end of the instruction array.
func (m *Machine) Exec() error {
	w := m2i.NewErrWriter(m.out)
	m.tos = -1
	m.clearPnt()

	pc := m.prog[0].Val
	for pc < len(m.prog) {
		ir := &m.prog[pc]
		switch ir.Op {
		case OpLD:
			if err := m.push(m.prog[ir.Val].Val); err != nil {
				return err
			}
		case OpLDL:
			if err := m.push(ir.Val); err != nil {
				return err
			}
		case OpST:
			if m.tos < 0 {
				return errors.New("stack underflow")
			}
			m.prog[ir.Val].Val = m.stack[m.tos]
			m.tos--
		case OpADD:
			if m.tos < 1 {
				return errors.New("stack underflow")
			}
			m.stack[m.tos-1] += m.stack[m.tos]
			m.tos--
		case OpSUB:
			if m.tos < 1 {
				return errors.New("stack underflow")
			}
			m.stack[m.tos-1] -= m.stack[m.tos]
			m.tos--
		case OpMLT:
			if m.tos < 1 {
				return errors.New("stack underflow")
			}
			m.stack[m.tos-1] *= m.stack[m.tos]
			m.tos--
		case OpEQU:
			if m.tos < 1 {
				return errors.New("stack underflow")
			}
			if m.stack[m.tos-1] == m.stack[m.tos] {
				m.stack[m.tos-1] = 1
			} else {
				m.stack[m.tos-1] = 0
			}
			m.tos--
		case OpB:
			pc = ir.Val
			continue
		case OpBFP:
			if m.tos < 0 {
				return errors.New("stack underflow")
			}
			v := m.stack[m.tos]
			m.tos--
			if v == 0 {
				pc = ir.Val
				continue
			}
		case OpBTP:
			if m.tos < 0 {
				return errors.New("stack underflow")
			}
			v := m.stack[m.tos]
			m.tos--
			if v != 0 {
				pc = ir.Val
				continue
			}
		case OpEDT:
			if m.tos < 0 {
				return errors.New("stack underflow")
			}
			col := m.stack[m.tos]
			m.tos--
			if col < 0 || col+len(ir.Str) > pntSize {
				return errors.Errorf("edit of %d bytes at column %d exceeds the print area", len(ir.Str), col)
			}
			copy(m.pnt[col:], ir.Str)
		case OpPNT:
			w.WriteString(string(m.pnt[:]))
			w.WriteString("\n")
			m.clearPnt()
		case OpHLT:
			return w.Err
		default:
			// SP, END and Reserved data cells are not executable.
			return errors.Errorf("attempt to execute non-executable instruction at index %d", pc)
		}
		pc++
	}
	return w.Err
}
